package editor

import "kvtree/internal/tree"

// CanDrop reports whether dragging src onto a position under dstParent is
// accepted. Only reordering within the same parent is supported by drag.
func (d *Document) CanDrop(src, dstParent tree.Handle) bool {
	if !src.Valid() || d.check(src) != nil || d.check(dstParent) != nil {
		return false
	}
	return d.tree.Node(d.tree.Parent(src)) == d.tree.Node(d.rowOf(dstParent))
}

func (d *Document) MoveUp(h tree.Handle) error {
	parent, row, err := d.position(h)
	if err != nil {
		return err
	}
	if row == 0 {
		return ErrNoRoom
	}
	return d.RequestMove(parent, row, parent, row-1)
}

func (d *Document) MoveDown(h tree.Handle) error {
	parent, row, err := d.position(h)
	if err != nil {
		return err
	}
	if row >= d.tree.RowCount(parent)-1 {
		return ErrNoRoom
	}
	return d.RequestMove(parent, row, parent, row+1)
}

// Indent makes h the last child of its previous sibling.
func (d *Document) Indent(h tree.Handle) error {
	parent, row, err := d.position(h)
	if err != nil {
		return err
	}
	if row == 0 {
		return ErrNoRoom
	}
	prev := d.tree.Index(row-1, tree.ColumnKey, parent)
	return d.RequestMove(parent, row, prev, d.tree.RowCount(prev))
}

// Outdent moves h out of its parent to the row right after it.
func (d *Document) Outdent(h tree.Handle) error {
	parent, row, err := d.position(h)
	if err != nil {
		return err
	}
	if !parent.Valid() {
		return ErrNoRoom
	}
	grand := d.tree.Parent(parent)
	return d.RequestMove(parent, row, grand, d.tree.Node(parent).Row()+1)
}

func (d *Document) position(h tree.Handle) (parent tree.Handle, row int, err error) {
	if !h.Valid() {
		return tree.Handle{}, 0, tree.ErrInvalidHandle
	}
	if err := d.check(h); err != nil {
		return tree.Handle{}, 0, err
	}
	return d.tree.Parent(h), d.tree.Node(h).Row(), nil
}
