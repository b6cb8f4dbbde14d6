package tree

// Node is one row of the tree. Column 0 holds the key and column 1 the value.
// A node owns its children; parent is a navigational back-reference only.
type Node struct {
	columns  []Value
	children []*Node
	parent   *Node
}

func newNode(columns []Value, parent *Node) *Node {
	return &Node{columns: columns, parent: parent}
}

func emptyColumns(n int) []Value {
	if n < 0 {
		n = 0
	}
	return make([]Value, n)
}

func (n *Node) Parent() *Node { return n.parent }

// Child returns the i-th child or nil when i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *Node) ChildCount() int   { return len(n.children) }
func (n *Node) HasChildren() bool { return len(n.children) > 0 }

// Row is the node's position among its siblings, 0 for a parentless node.
func (n *Node) Row() int {
	if n.parent == nil {
		return 0
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return 0
}

func (n *Node) ColumnCount() int { return len(n.columns) }

// Value returns the cell at col, or null when col is out of range.
func (n *Node) Value(col int) Value {
	if col < 0 || col >= len(n.columns) {
		return Null()
	}
	return n.columns[col]
}

// Key is column 0 rendered as text.
func (n *Node) Key() string { return n.Value(0).String() }

func (n *Node) SetValue(col int, v Value) bool {
	if col < 0 || col >= len(n.columns) {
		return false
	}
	n.columns[col] = v
	return true
}

func (n *Node) AppendChild(columns []Value) *Node {
	c := newNode(columns, n)
	n.children = append(n.children, c)
	return c
}

// InsertChildren inserts count empty rows with columns cells each at position.
func (n *Node) InsertChildren(position, count, columns int) bool {
	if position < 0 || position > len(n.children) || count < 0 {
		return false
	}
	fresh := make([]*Node, count)
	for i := range fresh {
		fresh[i] = newNode(emptyColumns(columns), n)
	}
	n.attach(position, fresh)
	return true
}

// RemoveChildren detaches count children starting at position.
func (n *Node) RemoveChildren(position, count int) bool {
	if position < 0 || count < 0 || position+count > len(n.children) {
		return false
	}
	n.detach(position, count)
	return true
}

// MoveChild reorders one child within this node.
func (n *Node) MoveChild(from, to int) bool {
	if from < 0 || from >= len(n.children) || to < 0 || to >= len(n.children) {
		return false
	}
	moved := n.detach(from, 1)
	n.attach(to, moved)
	return true
}

// InsertColumns adds count null cells at position here and in every descendant.
func (n *Node) InsertColumns(position, count int) bool {
	if position < 0 || position > len(n.columns) || count < 0 {
		return false
	}
	cols := make([]Value, 0, len(n.columns)+count)
	cols = append(cols, n.columns[:position]...)
	cols = append(cols, emptyColumns(count)...)
	cols = append(cols, n.columns[position:]...)
	n.columns = cols
	for _, c := range n.children {
		c.InsertColumns(position, count)
	}
	return true
}

// RemoveColumns drops count cells at position here and in every descendant.
func (n *Node) RemoveColumns(position, count int) bool {
	if position < 0 || count < 0 || position+count > len(n.columns) {
		return false
	}
	n.columns = append(n.columns[:position:position], n.columns[position+count:]...)
	for _, c := range n.children {
		c.RemoveColumns(position, count)
	}
	return true
}

// attach inserts already-built nodes at position and takes ownership of them.
func (n *Node) attach(position int, nodes []*Node) {
	for _, c := range nodes {
		c.parent = n
	}
	children := make([]*Node, 0, len(n.children)+len(nodes))
	children = append(children, n.children[:position]...)
	children = append(children, nodes...)
	children = append(children, n.children[position:]...)
	n.children = children
}

// detach removes count children at position and returns them parentless.
func (n *Node) detach(position, count int) []*Node {
	out := make([]*Node, count)
	copy(out, n.children[position:position+count])
	n.children = append(n.children[:position:position], n.children[position+count:]...)
	for _, c := range out {
		c.parent = nil
	}
	return out
}

// isAncestorOf reports whether n is o or one of o's ancestors.
func (n *Node) isAncestorOf(o *Node) bool {
	for p := o; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Export returns the node as an interchange entry: a branch becomes a
// nested Map, a leaf its scalar value.
func (n *Node) Export() Entry {
	if n.HasChildren() {
		m := make(Map, 0, len(n.children))
		for _, c := range n.children {
			m = append(m, c.Export())
		}
		return Entry{Key: n.Key(), Value: m}
	}
	return Entry{Key: n.Key(), Value: n.Value(1).Any()}
}

// importEntry builds a detached subtree from e with columns cells per node.
func importEntry(e Entry, columns int) *Node {
	cols := emptyColumns(columns)
	if columns > 0 {
		cols[0] = StringValue(e.Key)
	}
	n := newNode(cols, nil)
	if m, ok := e.Value.(Map); ok {
		for _, ce := range m {
			c := importEntry(ce, columns)
			c.parent = n
			n.children = append(n.children, c)
		}
		return n
	}
	if columns > 1 {
		if v, ok := ValueOf(e.Value); ok {
			cols[1] = v
		}
	}
	return n
}
