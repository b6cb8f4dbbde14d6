// Package editor is the command-issuing surface over a tree.Tree. Every
// user-facing edit becomes exactly one undo.Command pushed onto the
// document's stack, so callers never mutate the tree directly.
package editor

import (
	"log/slog"
	"slices"

	"kvtree/internal/tree"
	"kvtree/internal/undo"
)

type config struct {
	headers   []string
	undoLimit int
	logger    *slog.Logger
}

type Option func(*config)

// WithHeaders sets the column header labels. The default is Key, Value.
func WithHeaders(headers ...string) Option {
	return func(c *config) { c.headers = slices.Clone(headers) }
}

// WithUndoLimit caps the undo history; zero keeps everything.
func WithUndoLimit(n int) Option {
	return func(c *config) { c.undoLimit = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Document owns one tree and its history.
type Document struct {
	tree  *tree.Tree
	stack *undo.Stack
	log   *slog.Logger
}

func New(m tree.Map, opts ...Option) *Document {
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(&cfg)
	}
	t := tree.FromMap(m, cfg.headers...)
	s := undo.NewStack(t)
	s.SetLimit(cfg.undoLimit)
	return &Document{tree: t, stack: s, log: cfg.logger}
}

func (d *Document) Tree() *tree.Tree   { return d.tree }
func (d *Document) Stack() *undo.Stack { return d.stack }
func (d *Document) ToMap() tree.Map    { return d.tree.ToMap() }

// Load replaces the contents and starts a fresh, clean history.
func (d *Document) Load(m tree.Map) {
	d.tree.LoadFromMap(m)
	d.stack.Clear()
	d.log.Debug("load", "rows", len(m))
}

// Modified reports whether the tree differs from the last MarkSaved state.
func (d *Document) Modified() bool { return !d.stack.IsClean() }

func (d *Document) MarkSaved() { d.stack.SetClean() }

func (d *Document) Undo() error {
	text := d.stack.UndoText()
	if err := d.stack.Undo(); err != nil {
		return err
	}
	d.log.Debug("undo", "command", text, "index", d.stack.Index())
	return nil
}

func (d *Document) Redo() error {
	text := d.stack.RedoText()
	if err := d.stack.Redo(); err != nil {
		return err
	}
	d.log.Debug("redo", "command", text, "index", d.stack.Index())
	return nil
}

func (d *Document) push(c *undo.Command) error {
	if err := d.stack.Push(c); err != nil {
		d.log.Debug("rejected", "command", c.String(), "err", err)
		return err
	}
	d.log.Debug("push", "command", c.String(), "index", d.stack.Index())
	return nil
}

// check reports whether h still belongs to the tree. The root sentinel
// always does.
func (d *Document) check(h tree.Handle) error {
	if h.Valid() && d.tree.Node(h) == nil {
		return tree.ErrStaleHandle
	}
	return nil
}

// rowOf returns the column-0 handle for any cell of a row.
func (d *Document) rowOf(h tree.Handle) tree.Handle {
	if !h.Valid() {
		return h
	}
	return d.tree.Sibling(h, tree.ColumnKey)
}

// RequestInsert appends a child with a generated unique key under parent
// and returns the new row's key handle.
func (d *Document) RequestInsert(parent tree.Handle) (tree.Handle, error) {
	return d.RequestInsertNamed(parent, "")
}

// RequestInsertNamed appends a child keyed key under parent. An empty key
// gets a generated one. The insert and its key are one command.
func (d *Document) RequestInsertNamed(parent tree.Handle, key string) (tree.Handle, error) {
	if err := d.check(parent); err != nil {
		return tree.Handle{}, err
	}
	parent = d.rowOf(parent)
	return d.insertAt(parent, d.tree.RowCount(parent), key)
}

// RequestInsertAfter adds a sibling with a generated key right after h.
func (d *Document) RequestInsertAfter(h tree.Handle) (tree.Handle, error) {
	return d.RequestInsertAfterNamed(h, "")
}

// RequestInsertAfterNamed adds a sibling keyed key right after h.
func (d *Document) RequestInsertAfterNamed(h tree.Handle, key string) (tree.Handle, error) {
	if !h.Valid() {
		return d.RequestInsertNamed(h, key)
	}
	if err := d.check(h); err != nil {
		return tree.Handle{}, err
	}
	return d.insertAt(d.tree.Parent(h), d.tree.Node(h).Row()+1, key)
}

func (d *Document) insertAt(parent tree.Handle, row int, key string) (tree.Handle, error) {
	if key == "" {
		key = d.tree.DefaultChildKey(parent)
	} else if d.keyTaken(parent, key, nil) {
		return tree.Handle{}, ErrDuplicateKey
	}
	if err := d.push(undo.NewInsert(d.tree, parent, row, 1, key)); err != nil {
		return tree.Handle{}, err
	}
	return d.tree.Index(row, tree.ColumnKey, parent), nil
}

// keyTaken reports whether a child of parent other than self uses key.
func (d *Document) keyTaken(parent tree.Handle, key string, self *tree.Node) bool {
	for i := 0; i < d.tree.RowCount(parent); i++ {
		sib := d.tree.Index(i, tree.ColumnKey, parent)
		if d.tree.Node(sib) != self && d.tree.Data(sib).String() == key {
			return true
		}
	}
	return false
}

// RequestDelete removes h's row and its subtree.
func (d *Document) RequestDelete(h tree.Handle) error {
	if !h.Valid() {
		return tree.ErrInvalidHandle
	}
	if err := d.check(h); err != nil {
		return err
	}
	return d.push(undo.NewRemove(d.tree, d.tree.Parent(h), d.tree.Node(h).Row(), 1))
}

// RequestMove moves the row at srcRow under srcParent so that it ends up at
// dstRow under dstParent, counted after the row has been taken out.
func (d *Document) RequestMove(srcParent tree.Handle, srcRow int, dstParent tree.Handle, dstRow int) error {
	for _, h := range []tree.Handle{srcParent, dstParent} {
		if err := d.check(h); err != nil {
			return err
		}
	}
	srcParent, dstParent = d.rowOf(srcParent), d.rowOf(dstParent)
	if dstParent.Valid() && !d.tree.HasChildren(dstParent) &&
		!d.tree.Data(d.tree.Sibling(dstParent, tree.ColumnValue)).IsNull() {
		return ErrLeafTarget
	}
	return d.push(undo.NewMove(d.tree, srcParent, srcRow, 1, dstParent, dstRow))
}

// RequestSetValue writes v into the cell at h.
func (d *Document) RequestSetValue(h tree.Handle, v tree.Value) error {
	if !h.Valid() {
		return tree.ErrInvalidHandle
	}
	if err := d.check(h); err != nil {
		return err
	}
	if !d.tree.Flags(h).Has(tree.FlagEditable) {
		return tree.ErrBranchValue
	}
	if d.tree.Data(h).Equal(v) {
		return nil
	}
	return d.push(undo.NewSetValue(d.tree, h, v))
}

// RequestRename changes h's key. Keys stay unique among siblings.
func (d *Document) RequestRename(h tree.Handle, key string) error {
	if !h.Valid() {
		return tree.ErrInvalidHandle
	}
	if err := d.check(h); err != nil {
		return err
	}
	h = d.rowOf(h)
	if d.tree.Data(h).String() == key {
		return nil
	}
	if d.keyTaken(d.tree.Parent(h), key, d.tree.Node(h)) {
		return ErrDuplicateKey
	}
	return d.push(undo.NewSetValue(d.tree, h, tree.StringValue(key)))
}

func (d *Document) RequestSetHeader(section int, label string) error {
	if section < 0 || section >= d.tree.ColumnCount() {
		return tree.ErrOutOfRange
	}
	return d.push(undo.NewSetHeader(d.tree, section, label))
}
