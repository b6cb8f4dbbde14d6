// Package undo holds the reversible edit commands for a tree.Tree and the
// linear history they are pushed onto.
package undo

import (
	"fmt"
	"slices"

	"kvtree/internal/tree"
)

// Kind tags the payload a Command carries.
type Kind int

const (
	KindInsert Kind = iota
	KindRemove
	KindMove
	KindSetValue
	KindSetHeader
)

func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindRemove:
		return "remove"
	case KindMove:
		return "move"
	case KindSetValue:
		return "set-value"
	case KindSetHeader:
		return "set-header"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Command is one reversible mutation. Exactly one payload is set, selected
// by kind. Commands address nodes by path and re-resolve it on every Apply
// and Reverse, so they never hold a handle across a mutation.
type Command struct {
	kind   Kind
	insert *insertOp
	remove *removeOp
	move   *moveOp
	set    *setValueOp
	header *setHeaderOp
}

func (c *Command) Kind() Kind { return c.kind }

// Text is a short label for menus and status lines.
func (c *Command) Text() string {
	switch c.kind {
	case KindInsert:
		return "add item"
	case KindRemove:
		return "delete item"
	case KindMove:
		return "move item"
	case KindSetValue:
		return "modify item"
	case KindSetHeader:
		return "rename column"
	default:
		return c.kind.String()
	}
}

// Apply performs the mutation against t.
func (c *Command) Apply(t *tree.Tree) error {
	switch c.kind {
	case KindInsert:
		return c.insert.apply(t)
	case KindRemove:
		return c.remove.apply(t)
	case KindMove:
		return c.move.apply(t)
	case KindSetValue:
		return c.set.apply(t, c.set.newValue)
	case KindSetHeader:
		return t.SetHeaderData(c.header.section, c.header.newLabel)
	default:
		return fmt.Errorf("unknown command kind %s", c.kind)
	}
}

// Reverse undoes a previous Apply.
func (c *Command) Reverse(t *tree.Tree) error {
	switch c.kind {
	case KindInsert:
		return c.insert.reverse(t)
	case KindRemove:
		return c.remove.reverse(t)
	case KindMove:
		return c.move.reverse(t)
	case KindSetValue:
		return c.set.apply(t, c.set.oldValue)
	case KindSetHeader:
		return t.SetHeaderData(c.header.section, c.header.oldLabel)
	default:
		return fmt.Errorf("unknown command kind %s", c.kind)
	}
}

func (c *Command) String() string {
	switch c.kind {
	case KindInsert:
		return fmt.Sprintf("insert %s@%d+%d", c.insert.parent, c.insert.position, c.insert.count)
	case KindRemove:
		return fmt.Sprintf("remove %s@%d+%d", c.remove.parent, c.remove.position, c.remove.count)
	case KindMove:
		m := c.move
		return fmt.Sprintf("move %s@%d+%d -> %s@%d", m.srcParent, m.srcRow, m.count, m.dstParent, m.dstRow)
	case KindSetValue:
		return fmt.Sprintf("set %s:%d %#v -> %#v", c.set.path, c.set.column, c.set.oldValue, c.set.newValue)
	case KindSetHeader:
		return fmt.Sprintf("header %d %q -> %q", c.header.section, c.header.oldLabel, c.header.newLabel)
	default:
		return c.kind.String()
	}
}

// NewInsert inserts count rows at position under parent. keys, if given,
// name the new rows in order; remaining rows get a null key.
func NewInsert(t *tree.Tree, parent tree.Handle, position, count int, keys ...string) *Command {
	return &Command{kind: KindInsert, insert: &insertOp{
		parent:   t.PathOf(parent),
		position: position,
		count:    count,
		keys:     slices.Clone(keys),
	}}
}

// NewRemove removes count rows at position under parent.
func NewRemove(t *tree.Tree, parent tree.Handle, position, count int) *Command {
	return &Command{kind: KindRemove, remove: &removeOp{
		parent:   t.PathOf(parent),
		position: position,
		count:    count,
	}}
}

// NewMove moves count rows; see tree.Tree.MoveRows for dstRow semantics.
func NewMove(t *tree.Tree, srcParent tree.Handle, srcRow, count int, dstParent tree.Handle, dstRow int) *Command {
	return &Command{kind: KindMove, move: &moveOp{
		srcParent: t.PathOf(srcParent),
		srcRow:    srcRow,
		count:     count,
		dstParent: t.PathOf(dstParent),
		dstRow:    dstRow,
	}}
}

// NewSetValue writes v into the cell at h, remembering the current value.
func NewSetValue(t *tree.Tree, h tree.Handle, v tree.Value) *Command {
	return &Command{kind: KindSetValue, set: &setValueOp{
		path:     t.PathOf(h),
		column:   h.Column(),
		oldValue: t.Data(h),
		newValue: v,
	}}
}

// NewSetHeader relabels a column header.
func NewSetHeader(t *tree.Tree, section int, label string) *Command {
	return &Command{kind: KindSetHeader, header: &setHeaderOp{
		section:  section,
		oldLabel: t.HeaderData(section),
		newLabel: label,
	}}
}

type insertOp struct {
	parent   tree.Path
	position int
	count    int
	keys     []string

	// Set on apply when the parent was a leaf whose value had to go.
	cleared    bool
	priorValue tree.Value
}

func (op *insertOp) apply(t *tree.Tree) error {
	parent, err := t.Resolve(op.parent, tree.ColumnKey)
	if err != nil {
		return err
	}
	if op.count < 1 || op.position < 0 || op.position > t.RowCount(parent) {
		return tree.ErrOutOfRange
	}

	op.cleared = false
	if parent.Valid() {
		vh := t.Sibling(parent, tree.ColumnValue)
		if v := t.Data(vh); vh.Valid() && !v.IsNull() {
			if err := t.SetData(vh, tree.Null()); err != nil {
				return err
			}
			op.cleared, op.priorValue = true, v
		}
	}

	if err := t.InsertRows(op.position, op.count, parent); err != nil {
		op.restoreParent(t, parent)
		return err
	}
	for i, k := range op.keys {
		if i >= op.count {
			break
		}
		if err := t.SetData(t.Index(op.position+i, tree.ColumnKey, parent), tree.StringValue(k)); err != nil {
			return err
		}
	}
	return nil
}

func (op *insertOp) reverse(t *tree.Tree) error {
	parent, err := t.Resolve(op.parent, tree.ColumnKey)
	if err != nil {
		return err
	}
	if err := t.RemoveRows(op.position, op.count, parent); err != nil {
		return err
	}
	return op.restoreParent(t, parent)
}

func (op *insertOp) restoreParent(t *tree.Tree, parent tree.Handle) error {
	if !op.cleared {
		return nil
	}
	return t.SetData(t.Sibling(parent, tree.ColumnValue), op.priorValue)
}

type removeOp struct {
	parent   tree.Path
	position int
	count    int

	// Captured on every apply, in row order.
	snapshots []tree.Entry
}

func (op *removeOp) apply(t *tree.Tree) error {
	parent, err := t.Resolve(op.parent, tree.ColumnKey)
	if err != nil {
		return err
	}
	if op.count < 1 || op.position < 0 || op.position+op.count > t.RowCount(parent) {
		return tree.ErrOutOfRange
	}
	snaps := make([]tree.Entry, 0, op.count)
	for i := 0; i < op.count; i++ {
		e, err := t.ExportNode(t.Index(op.position+i, tree.ColumnKey, parent))
		if err != nil {
			return err
		}
		snaps = append(snaps, e)
	}
	if err := t.RemoveRows(op.position, op.count, parent); err != nil {
		return err
	}
	op.snapshots = snaps
	return nil
}

func (op *removeOp) reverse(t *tree.Tree) error {
	parent, err := t.Resolve(op.parent, tree.ColumnKey)
	if err != nil {
		return err
	}
	if op.position < 0 || op.position > t.RowCount(parent) {
		return tree.ErrOutOfRange
	}
	for i, e := range op.snapshots {
		if err := t.ImportNode(parent, op.position+i, e); err != nil {
			return err
		}
	}
	return nil
}

type moveOp struct {
	srcParent tree.Path
	srcRow    int
	count     int
	dstParent tree.Path
	dstRow    int

	// Parent paths as they read after apply. A move can shift the rows of
	// its own parents, so reverse must not reuse the paths from before.
	srcAfter tree.Path
	dstAfter tree.Path

	// Set on apply when the destination was a leaf whose value had to go.
	cleared    bool
	priorValue tree.Value
}

func (op *moveOp) apply(t *tree.Tree) error {
	src, err := t.Resolve(op.srcParent, tree.ColumnKey)
	if err != nil {
		return err
	}
	dst, err := t.Resolve(op.dstParent, tree.ColumnKey)
	if err != nil {
		return err
	}
	op.cleared = false
	if dst.Valid() && !t.HasChildren(dst) {
		vh := t.Sibling(dst, tree.ColumnValue)
		if v := t.Data(vh); vh.Valid() && !v.IsNull() {
			if err := t.SetData(vh, tree.Null()); err != nil {
				return err
			}
			op.cleared, op.priorValue = true, v
		}
	}
	if err := t.MoveRows(src, op.srcRow, op.count, dst, op.dstRow); err != nil {
		op.restoreTarget(t, dst)
		return err
	}
	op.srcAfter, op.dstAfter = t.PathOf(src), t.PathOf(dst)
	return nil
}

func (op *moveOp) reverse(t *tree.Tree) error {
	dst, err := t.Resolve(op.dstAfter, tree.ColumnKey)
	if err != nil {
		return err
	}
	src, err := t.Resolve(op.srcAfter, tree.ColumnKey)
	if err != nil {
		return err
	}
	if err := t.MoveRows(dst, op.dstRow, op.count, src, op.srcRow); err != nil {
		return err
	}
	return op.restoreTarget(t, dst)
}

func (op *moveOp) restoreTarget(t *tree.Tree, dst tree.Handle) error {
	if !op.cleared {
		return nil
	}
	return t.SetData(t.Sibling(dst, tree.ColumnValue), op.priorValue)
}

type setValueOp struct {
	path     tree.Path
	column   int
	oldValue tree.Value
	newValue tree.Value
}

func (op *setValueOp) apply(t *tree.Tree, v tree.Value) error {
	if len(op.path) == 0 {
		return tree.ErrInvalidHandle
	}
	h, err := t.Resolve(op.path, op.column)
	if err != nil {
		return err
	}
	if !h.Valid() {
		return tree.ErrOutOfRange
	}
	return t.SetData(h, v)
}

type setHeaderOp struct {
	section  int
	oldLabel string
	newLabel string
}
