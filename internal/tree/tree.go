package tree

import (
	"fmt"
	"slices"
)

// Default header labels for the key/value layout.
const (
	HeaderKey   = "Key"
	HeaderValue = "Value"
)

// Column positions of the key/value layout.
const (
	ColumnKey   = 0
	ColumnValue = 1
)

// Handle addresses one cell: a node plus the row and column it was fetched
// at. The zero Handle is the root sentinel ("no parent").
//
// Handles are transient. Any structural mutation may invalidate them; fetch
// a new one through Index or Resolve before reuse.
type Handle struct {
	node   *Node
	row    int
	column int
}

func (h Handle) Valid() bool { return h.node != nil }
func (h Handle) Row() int    { return h.row }
func (h Handle) Column() int { return h.column }

// Path is the sequence of rows leading from the root to a node.
type Path []int

func (p Path) String() string {
	return fmt.Sprint([]int(p))
}

// Flags describe what the presentation layer may do with a cell.
type Flags uint8

const (
	FlagSelectable Flags = 1 << iota
	FlagEditable
	FlagDragEnabled
	FlagDropEnabled
)

func (f Flags) Has(x Flags) bool { return f&x == x }

// Tree is the indexed model over a root node. The root is never exposed as
// an addressable row; its own columns hold the header labels.
type Tree struct {
	root      *Node
	observers []observerSlot
	nextObsID int
}

type observerSlot struct {
	id  int
	obs Observer
}

// New returns an empty tree. Without headers it uses "Key" and "Value".
func New(headers ...string) *Tree {
	if len(headers) == 0 {
		headers = []string{HeaderKey, HeaderValue}
	}
	return &Tree{root: newNode(headerColumns(headers), nil)}
}

// FromMap returns a tree loaded from m.
func FromMap(m Map, headers ...string) *Tree {
	t := New(headers...)
	t.load(m)
	return t
}

func headerColumns(headers []string) []Value {
	cols := make([]Value, len(headers))
	for i, h := range headers {
		cols[i] = StringValue(h)
	}
	return cols
}

// Subscribe registers o for change notifications and returns a function
// that removes it.
func (t *Tree) Subscribe(o Observer) (unsubscribe func()) {
	t.nextObsID++
	id := t.nextObsID
	t.observers = append(t.observers, observerSlot{id: id, obs: o})
	return func() {
		t.observers = slices.DeleteFunc(t.observers, func(s observerSlot) bool { return s.id == id })
	}
}

func (t *Tree) notify(fn func(Observer)) {
	for _, s := range t.observers {
		fn(s.obs)
	}
}

// lookup maps a handle to its node. The zero handle maps to the root.
func (t *Tree) lookup(h Handle) (*Node, error) {
	if !h.Valid() {
		return t.root, nil
	}
	if !t.owns(h.node) {
		return nil, ErrStaleHandle
	}
	return h.node, nil
}

// lookupParent is lookup for handles used as a parent of rows.
func (t *Tree) lookupParent(h Handle) (*Node, error) {
	if h.Valid() && h.column != 0 {
		return nil, ErrNotRowHandle
	}
	return t.lookup(h)
}

func (t *Tree) owns(n *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == t.root {
			return true
		}
	}
	return false
}

// handleFor returns the column-0 handle of n, or the root sentinel.
func (t *Tree) handleFor(n *Node) Handle {
	if n == nil || n == t.root {
		return Handle{}
	}
	return Handle{node: n, row: n.Row()}
}

// Node returns the node behind h, or nil for the root sentinel and for
// handles that no longer belong to the tree. The pointer is stable for as
// long as the node stays in the tree and is suitable as an identity key.
func (t *Tree) Node(h Handle) *Node {
	if !h.Valid() || !t.owns(h.node) {
		return nil
	}
	return h.node
}

// HandleOf returns the column-0 handle of n, or the zero Handle when n is
// nil, the root, or no longer part of the tree.
func (t *Tree) HandleOf(n *Node) Handle {
	if n == nil || n == t.root || !t.owns(n) {
		return Handle{}
	}
	return t.handleFor(n)
}

// Index returns the handle of the row-th child of parent in column.
// It returns the zero Handle when the position does not exist or parent is
// not a column-0 handle.
func (t *Tree) Index(row, column int, parent Handle) Handle {
	p, err := t.lookupParent(parent)
	if err != nil {
		return Handle{}
	}
	if column < 0 || column >= t.ColumnCount() {
		return Handle{}
	}
	c := p.Child(row)
	if c == nil {
		return Handle{}
	}
	return Handle{node: c, row: row, column: column}
}

// Sibling returns the handle of the same row in another column.
func (t *Tree) Sibling(h Handle, column int) Handle {
	if !h.Valid() || column < 0 || column >= t.ColumnCount() {
		return Handle{}
	}
	return Handle{node: h.node, row: h.node.Row(), column: column}
}

// Parent returns the column-0 handle of h's parent, or the root sentinel for
// top-level rows.
func (t *Tree) Parent(h Handle) Handle {
	if !h.Valid() {
		return Handle{}
	}
	return t.handleFor(h.node.parent)
}

func (t *Tree) RowCount(parent Handle) int {
	p, err := t.lookupParent(parent)
	if err != nil {
		return 0
	}
	return p.ChildCount()
}

func (t *Tree) ColumnCount() int { return t.root.ColumnCount() }

// Data returns the cell behind h, or null for invalid handles.
func (t *Tree) Data(h Handle) Value {
	if !h.Valid() {
		return Null()
	}
	n, err := t.lookup(h)
	if err != nil {
		return Null()
	}
	return n.Value(h.column)
}

// HasChildren reports whether h (or the root, for the zero handle) has rows.
func (t *Tree) HasChildren(h Handle) bool {
	n, err := t.lookup(h)
	return err == nil && n.HasChildren()
}

// Flags reports cell capabilities. Value cells of branch nodes are read-only;
// the root sentinel only accepts drops.
func (t *Tree) Flags(h Handle) Flags {
	if !h.Valid() {
		return FlagDropEnabled
	}
	f := FlagSelectable | FlagDragEnabled | FlagDropEnabled
	if h.column == ColumnKey || !h.node.HasChildren() {
		f |= FlagEditable
	}
	return f
}

// SetData writes one cell and emits DataChanged.
func (t *Tree) SetData(h Handle, v Value) error {
	if !h.Valid() {
		return ErrInvalidHandle
	}
	n, err := t.lookup(h)
	if err != nil {
		return err
	}
	if h.column < 0 || h.column >= n.ColumnCount() {
		return ErrOutOfRange
	}
	if h.column >= ColumnValue && n.HasChildren() {
		return ErrBranchValue
	}
	n.SetValue(h.column, v)
	h.row = n.Row()
	t.notify(func(o Observer) { o.DataChanged(h, h) })
	return nil
}

func (t *Tree) HeaderData(section int) string {
	return t.root.Value(section).String()
}

// Headers returns all header labels in column order.
func (t *Tree) Headers() []string {
	out := make([]string, t.ColumnCount())
	for i := range out {
		out[i] = t.HeaderData(i)
	}
	return out
}

func (t *Tree) SetHeaderData(section int, label string) error {
	if !t.root.SetValue(section, StringValue(label)) {
		return ErrOutOfRange
	}
	t.notify(func(o Observer) { o.HeaderDataChanged(section, section) })
	return nil
}

// InsertRows inserts count empty rows under parent starting at position.
func (t *Tree) InsertRows(position, count int, parent Handle) error {
	p, err := t.lookupParent(parent)
	if err != nil {
		return err
	}
	if count < 1 || position < 0 || position > p.ChildCount() {
		return ErrOutOfRange
	}
	ph := t.handleFor(p)
	t.notify(func(o Observer) { o.BeginInsertRows(ph, position, position+count-1) })
	p.InsertChildren(position, count, t.ColumnCount())
	t.notify(func(o Observer) { o.EndInsertRows() })
	return nil
}

// RemoveRows detaches count rows (and their subtrees) under parent.
func (t *Tree) RemoveRows(position, count int, parent Handle) error {
	p, err := t.lookupParent(parent)
	if err != nil {
		return err
	}
	if count < 1 || position < 0 || position+count > p.ChildCount() {
		return ErrOutOfRange
	}
	ph := t.handleFor(p)
	t.notify(func(o Observer) { o.BeginRemoveRows(ph, position, position+count-1) })
	p.RemoveChildren(position, count)
	t.notify(func(o Observer) { o.EndRemoveRows() })
	return nil
}

// MoveRows moves count siblings starting at srcRow under srcParent so that
// the run starts at dstRow under dstParent. dstRow is a position in the
// destination list after the run has been taken out, so a same-parent move
// with dstRow == srcRow is a no-op and moving the run back is always
// MoveRows(dstParent, dstRow, count, srcParent, srcRow).
//
// MoveRows does not touch dstParent's value. Moving under a leaf that
// holds one leaves a branch with a value; callers clear it first.
func (t *Tree) MoveRows(srcParent Handle, srcRow, count int, dstParent Handle, dstRow int) error {
	src, err := t.lookupParent(srcParent)
	if err != nil {
		return err
	}
	dst, err := t.lookupParent(dstParent)
	if err != nil {
		return err
	}
	if count < 1 || srcRow < 0 || srcRow+count > src.ChildCount() {
		return ErrOutOfRange
	}
	limit := dst.ChildCount()
	if src == dst {
		limit -= count
	}
	if dstRow < 0 || dstRow > limit {
		return ErrOutOfRange
	}
	if src == dst && srcRow == dstRow {
		return nil
	}
	for i := srcRow; i < srcRow+count; i++ {
		if src.children[i].isAncestorOf(dst) {
			return ErrCycle
		}
	}

	// Observers get the destination as an index into the list before the
	// move, which is one past the run for downward moves.
	notifyRow := dstRow
	if src == dst && srcRow < dstRow {
		notifyRow += count
	}
	sh, dh := t.handleFor(src), t.handleFor(dst)
	t.notify(func(o Observer) { o.BeginMoveRows(sh, srcRow, srcRow+count-1, dh, notifyRow) })
	moved := src.detach(srcRow, count)
	dst.attach(dstRow, moved)
	t.notify(func(o Observer) { o.EndMoveRows() })
	return nil
}

// InsertColumns adds count columns at position to every node.
func (t *Tree) InsertColumns(position, count int) error {
	if count < 1 || position < 0 || position > t.ColumnCount() {
		return ErrOutOfRange
	}
	t.notify(func(o Observer) { o.BeginInsertColumns(position, position+count-1) })
	t.root.InsertColumns(position, count)
	t.notify(func(o Observer) { o.EndInsertColumns() })
	return nil
}

// RemoveColumns drops count columns at position from every node. Removing
// the last column also removes every row.
func (t *Tree) RemoveColumns(position, count int) error {
	if count < 1 || position < 0 || position+count > t.ColumnCount() {
		return ErrOutOfRange
	}
	t.notify(func(o Observer) { o.BeginRemoveColumns(position, position+count-1) })
	t.root.RemoveColumns(position, count)
	t.notify(func(o Observer) { o.EndRemoveColumns() })

	if t.ColumnCount() == 0 && t.root.HasChildren() {
		return t.RemoveRows(0, t.root.ChildCount(), Handle{})
	}
	return nil
}

// DefaultChildKey returns "New Key #n" for the smallest n >= 1 that no child
// of parent uses.
func (t *Tree) DefaultChildKey(parent Handle) string {
	p, err := t.lookupParent(parent)
	if err != nil {
		return ""
	}
	taken := make(map[string]bool, p.ChildCount())
	for _, c := range p.children {
		taken[c.Key()] = true
	}
	for i := 1; ; i++ {
		k := fmt.Sprintf("New Key #%d", i)
		if !taken[k] {
			return k
		}
	}
}

// AddDefaultChild appends a child with a generated unique key. A non-root
// parent becomes a branch, so its own value is cleared first.
func (t *Tree) AddDefaultChild(parent Handle) (Handle, error) {
	p, err := t.lookupParent(parent)
	if err != nil {
		return Handle{}, err
	}
	key := t.DefaultChildKey(parent)
	if p != t.root && !p.Value(ColumnValue).IsNull() {
		if err := t.SetData(t.Sibling(parent, ColumnValue), Null()); err != nil {
			return Handle{}, err
		}
	}
	row := p.ChildCount()
	if err := t.InsertRows(row, 1, parent); err != nil {
		return Handle{}, err
	}
	h := t.Index(row, ColumnKey, parent)
	if err := t.SetData(h, StringValue(key)); err != nil {
		return Handle{}, err
	}
	return h, nil
}

// DeleteNode removes h's row and its subtree.
func (t *Tree) DeleteNode(h Handle) error {
	if !h.Valid() {
		return ErrInvalidHandle
	}
	n, err := t.lookup(h)
	if err != nil {
		return err
	}
	return t.RemoveRows(n.Row(), 1, t.handleFor(n.parent))
}

// PathOf returns the rows from the root to h's node. The root sentinel has
// an empty path.
func (t *Tree) PathOf(h Handle) Path {
	if !h.Valid() {
		return Path{}
	}
	var rev []int
	for n := h.node; n != nil && n != t.root; n = n.parent {
		rev = append(rev, n.Row())
	}
	slices.Reverse(rev)
	return Path(rev)
}

// Resolve walks path from the root and returns the handle of the final node
// in column. An empty path resolves to the root sentinel.
func (t *Tree) Resolve(path Path, column int) (Handle, error) {
	cur := Handle{}
	for i, row := range path {
		col := ColumnKey
		if i == len(path)-1 {
			col = column
		}
		next := t.Index(row, col, cur)
		if !next.Valid() {
			return Handle{}, fmt.Errorf("%w: %v", ErrStalePath, path)
		}
		cur = next
	}
	return cur, nil
}

// ExportNode snapshots h's subtree as an interchange entry.
func (t *Tree) ExportNode(h Handle) (Entry, error) {
	if !h.Valid() {
		return Entry{}, ErrInvalidHandle
	}
	n, err := t.lookup(h)
	if err != nil {
		return Entry{}, err
	}
	return n.Export(), nil
}

// ImportNode rebuilds the subtree described by e as row under parent.
func (t *Tree) ImportNode(parent Handle, row int, e Entry) error {
	p, err := t.lookupParent(parent)
	if err != nil {
		return err
	}
	if row < 0 || row > p.ChildCount() {
		return ErrOutOfRange
	}
	n := importEntry(e, t.ColumnCount())
	ph := t.handleFor(p)
	t.notify(func(o Observer) { o.BeginInsertRows(ph, row, row) })
	p.attach(row, []*Node{n})
	t.notify(func(o Observer) { o.EndInsertRows() })
	return nil
}

// ToMap exports every top-level row, in order.
func (t *Tree) ToMap() Map {
	m := make(Map, 0, t.root.ChildCount())
	for _, c := range t.root.children {
		m = append(m, c.Export())
	}
	return m
}

// LoadFromMap replaces all rows with the contents of m. Headers are kept.
func (t *Tree) LoadFromMap(m Map) {
	t.load(m)
	t.notify(func(o Observer) { o.ModelReset() })
}

func (t *Tree) load(m Map) {
	t.root = newNode(slices.Clone(t.root.columns), nil)
	cols := t.ColumnCount()
	for _, e := range m {
		n := importEntry(e, cols)
		n.parent = t.root
		t.root.children = append(t.root.children, n)
	}
}
