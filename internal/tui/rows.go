package tui

import (
	"kvtree/internal/tree"
)

type treeRow struct {
	node        *tree.Node
	depth       int
	key         string
	value       tree.Value
	hasChildren bool
	collapsed   bool
}

// rowItem adapts a treeRow to list.Item.
type rowItem struct{ row treeRow }

func (i rowItem) FilterValue() string { return i.row.key }

// flattenTree lists the visible rows in display order. Children of collapsed
// nodes are skipped.
func flattenTree(t *tree.Tree, collapsed map[*tree.Node]bool) []treeRow {
	var out []treeRow
	var walk func(parent tree.Handle, depth int)
	walk = func(parent tree.Handle, depth int) {
		for i := 0; i < t.RowCount(parent); i++ {
			h := t.Index(i, tree.ColumnKey, parent)
			n := t.Node(h)
			r := treeRow{
				node:        n,
				depth:       depth,
				key:         t.Data(h).String(),
				value:       t.Data(t.Sibling(h, tree.ColumnValue)),
				hasChildren: t.HasChildren(h),
				collapsed:   collapsed[n],
			}
			out = append(out, r)
			if r.hasChildren && !r.collapsed {
				walk(h, depth+1)
			}
		}
	}
	walk(tree.Handle{}, 0)
	return out
}

// changeTracker records that the tree changed since the last take. The
// model re-flattens when it has.
type changeTracker struct {
	tree.NopObserver
	dirty bool
}

func (c *changeTracker) EndInsertRows()               { c.dirty = true }
func (c *changeTracker) EndRemoveRows()               { c.dirty = true }
func (c *changeTracker) EndMoveRows()                 { c.dirty = true }
func (c *changeTracker) EndInsertColumns()            { c.dirty = true }
func (c *changeTracker) EndRemoveColumns()            { c.dirty = true }
func (c *changeTracker) DataChanged(_, _ tree.Handle) { c.dirty = true }
func (c *changeTracker) HeaderDataChanged(_, _ int)   { c.dirty = true }
func (c *changeTracker) ModelReset()                  { c.dirty = true }

func (c *changeTracker) take() bool {
	d := c.dirty
	c.dirty = false
	return d
}
