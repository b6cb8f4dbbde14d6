package tui

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kvtree/internal/docs"
	"kvtree/internal/editor"
	"kvtree/internal/format"
	"kvtree/internal/tree"
	"kvtree/internal/undo"
)

type mode int

const (
	modeNormal mode = iota
	modeEditValue
	modeRename
	modeHelp
)

type appModel struct {
	doc   *editor.Document
	title string
	log   *slog.Logger

	width  int
	height int

	mode      mode
	list      list.Model
	layout    *columnLayout
	keys      keyMap
	help      help.Model
	input     textinput.Model
	helpView  viewport.Model
	editNode  *tree.Node
	collapsed map[*tree.Node]bool

	changes     *changeTracker
	unsubscribe func()

	status    string
	statusErr bool
}

func newAppModel(doc *editor.Document, opts ...Option) appModel {
	cfg := config{title: "untitled", logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(&cfg)
	}

	layout := &columnLayout{}
	l := list.New(nil, newTreeItemDelegate(layout), 0, 0)
	// The header/footer are ours, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	in := textinput.New()
	in.Prompt = ""

	changes := &changeTracker{}
	m := appModel{
		doc:         doc,
		title:       cfg.title,
		log:         cfg.logger,
		list:        l,
		layout:      layout,
		keys:        defaultKeyMap(),
		help:        help.New(),
		input:       in,
		helpView:    viewport.New(0, 0),
		collapsed:   map[*tree.Node]bool{},
		changes:     changes,
		unsubscribe: doc.Tree().Subscribe(changes),
	}
	m.refresh(nil)
	return m
}

func (m appModel) close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeEditValue, modeRename:
			return m.updateInput(msg)
		case modeHelp:
			return m.updateHelp(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m appModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	// Pick up edits made to the document outside this model.
	if m.changes.take() {
		m.refresh(nil)
	}
	t := m.doc.Tree()
	node, h := m.selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.openHelp()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.list.CursorUp()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.list.CursorDown()
		return m, nil

	case key.Matches(msg, m.keys.Expand):
		if node != nil && t.HasChildren(h) {
			delete(m.collapsed, node)
			m.refresh(node)
		}
		return m, nil
	case key.Matches(msg, m.keys.Collapse):
		if node == nil {
			return m, nil
		}
		if t.HasChildren(h) && !m.collapsed[node] {
			m.collapsed[node] = true
			m.refresh(node)
			return m, nil
		}
		if p := t.Node(t.Parent(h)); p != nil {
			m.selectNode(p)
		}
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		if node != nil && t.HasChildren(h) {
			if m.collapsed[node] {
				delete(m.collapsed, node)
			} else {
				m.collapsed[node] = true
			}
			m.refresh(node)
		}
		return m, nil

	case key.Matches(msg, m.keys.AddChild):
		nh, err := m.doc.RequestInsert(h)
		if err != nil {
			return m.fail(err)
		}
		if node != nil {
			delete(m.collapsed, node)
		}
		return m.afterInsert(nh)
	case key.Matches(msg, m.keys.AddSibling):
		nh, err := m.doc.RequestInsertAfter(h)
		if err != nil {
			return m.fail(err)
		}
		return m.afterInsert(nh)
	case key.Matches(msg, m.keys.Delete):
		if node == nil {
			return m, nil
		}
		if err := m.doc.RequestDelete(h); err != nil {
			return m.fail(err)
		}
		m.sync(nil)
		return m, nil
	case key.Matches(msg, m.keys.EditValue):
		if node == nil {
			return m, nil
		}
		vh := t.Sibling(h, tree.ColumnValue)
		if !t.Flags(vh).Has(tree.FlagEditable) {
			return m.fail(tree.ErrBranchValue)
		}
		return m.startInput(modeEditValue, node, t.Data(vh).String())
	case key.Matches(msg, m.keys.Rename):
		if node == nil {
			return m, nil
		}
		return m.startInput(modeRename, node, t.Data(h).String())

	case key.Matches(msg, m.keys.MoveUp):
		return m.reorder(node, m.doc.MoveUp)
	case key.Matches(msg, m.keys.MoveDown):
		return m.reorder(node, m.doc.MoveDown)
	case key.Matches(msg, m.keys.Indent):
		if node != nil && h.Row() > 0 {
			prev := t.Node(t.Index(t.Node(h).Row()-1, tree.ColumnKey, t.Parent(h)))
			delete(m.collapsed, prev)
		}
		return m.reorder(node, m.doc.Indent)
	case key.Matches(msg, m.keys.Outdent):
		return m.reorder(node, m.doc.Outdent)

	case key.Matches(msg, m.keys.Undo):
		if err := m.doc.Undo(); err != nil {
			return m.fail(err)
		}
		m.sync(node)
		return m, nil
	case key.Matches(msg, m.keys.Redo):
		if err := m.doc.Redo(); err != nil {
			return m.fail(err)
		}
		m.sync(node)
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m.copyNode(h)
	}

	// Paging and jumps.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		kind := m.mode
		m.mode = modeNormal
		m.input.Blur()
		return m.commitInput(kind)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc, key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit):
		m.mode = modeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.helpView, cmd = m.helpView.Update(msg)
	return m, cmd
}

func (m appModel) startInput(md mode, node *tree.Node, text string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.editNode = node
	m.input.SetValue(text)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m appModel) commitInput(kind mode) (tea.Model, tea.Cmd) {
	t := m.doc.Tree()
	node := m.editNode
	m.editNode = nil
	h := t.HandleOf(node)
	if !h.Valid() {
		return m.fail(tree.ErrStaleHandle)
	}
	text := m.input.Value()
	var err error
	if kind == modeRename {
		err = m.doc.RequestRename(h, text)
	} else {
		err = m.doc.RequestSetValue(t.Sibling(h, tree.ColumnValue), tree.ParseValue(text))
	}
	if err != nil {
		return m.fail(err)
	}
	m.sync(node)
	return m, nil
}

// afterInsert selects the new row and starts renaming it.
func (m appModel) afterInsert(nh tree.Handle) (tea.Model, tea.Cmd) {
	n := m.doc.Tree().Node(nh)
	m.sync(n)
	return m.startInput(modeRename, n, m.doc.Tree().Data(nh).String())
}

func (m appModel) reorder(node *tree.Node, fn func(tree.Handle) error) (tea.Model, tea.Cmd) {
	if node == nil {
		return m, nil
	}
	if err := fn(m.doc.Tree().HandleOf(node)); err != nil {
		return m.fail(err)
	}
	m.sync(node)
	return m, nil
}

func (m appModel) copyNode(h tree.Handle) (tea.Model, tea.Cmd) {
	e, err := m.doc.Tree().ExportNode(h)
	if err != nil {
		return m.fail(err)
	}
	var buf bytes.Buffer
	if err := format.WriteJSON(&buf, tree.Map{e}, true); err != nil {
		return m.fail(err)
	}
	if err := copyToClipboard(strings.TrimRight(buf.String(), "\n")); err != nil {
		return m.fail(fmt.Errorf("copy: %w", err))
	}
	m.status = "copied " + m.doc.KeyPath(h)
	return m, nil
}

func (m appModel) fail(err error) (tea.Model, tea.Cmd) {
	m.log.Debug("edit rejected", "err", err)
	switch {
	case errors.Is(err, undo.ErrNothingToUndo), errors.Is(err, undo.ErrNothingToRedo):
		m.status, m.statusErr = err.Error(), false
	default:
		m.status, m.statusErr = err.Error(), true
	}
	return m, nil
}

func (m *appModel) openHelp() {
	body, _ := docs.Get("keys")
	w := max(20, m.width-4)
	m.helpView.SetContent(docs.Render(body, w))
	m.helpView.GotoTop()
	m.mode = modeHelp
}

// selected returns the focused node and a fresh handle for it. With no
// rows both are zero, and the handle doubles as the root sentinel.
func (m appModel) selected() (*tree.Node, tree.Handle) {
	it, ok := m.list.SelectedItem().(rowItem)
	if !ok {
		return nil, tree.Handle{}
	}
	h := m.doc.Tree().HandleOf(it.row.node)
	if !h.Valid() {
		return nil, tree.Handle{}
	}
	return it.row.node, h
}

// sync re-flattens when the tree reported a change and focuses node.
func (m *appModel) sync(focus *tree.Node) {
	if m.changes.take() {
		m.refresh(focus)
		return
	}
	if focus != nil {
		m.selectNode(focus)
	}
}

// refresh rebuilds the visible rows. Selection follows focus when given,
// otherwise the previously selected node if it is still visible.
func (m *appModel) refresh(focus *tree.Node) {
	m.changes.take()
	if focus == nil {
		focus, _ = m.selected()
	}
	for n := range m.collapsed {
		if !m.doc.Tree().HandleOf(n).Valid() {
			delete(m.collapsed, n)
		}
	}
	if focus != nil {
		m.revealNode(focus)
	}

	rows := flattenTree(m.doc.Tree(), m.collapsed)
	m.layout.fit(rows, m.width)
	items := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, rowItem{row: r})
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if focus != nil && m.selectNode(focus) {
		return
	}
	if len(items) > 0 {
		m.list.Select(min(idx, len(items)-1))
	}
}

// revealNode expands every ancestor of n.
func (m *appModel) revealNode(n *tree.Node) {
	for p := n.Parent(); p != nil; p = p.Parent() {
		delete(m.collapsed, p)
	}
}

func (m *appModel) selectNode(n *tree.Node) bool {
	for i, it := range m.list.Items() {
		if ri, ok := it.(rowItem); ok && ri.row.node == n {
			m.list.Select(i)
			return true
		}
	}
	return false
}

func (m *appModel) resize() {
	// header + column header + status + help
	h := max(1, m.height-4)
	w := max(20, m.width)
	m.list.SetSize(w, h)
	m.help.Width = w
	m.input.Width = max(10, w-20)
	m.helpView.Width = w
	m.helpView.Height = max(1, m.height-2)
	m.refresh(nil)
}

func (m appModel) View() string {
	if m.mode == modeHelp {
		footer := styleMuted().Render("esc/?: close help  ↑/↓: scroll")
		return m.helpView.View() + "\n\n" + footer
	}

	title := m.title
	if m.doc.Modified() {
		title += " " + glyphModified()
	}
	header := lipgloss.NewStyle().Bold(true).Render("kvtree  " + title)

	headers := m.doc.Tree().Headers()
	var colHeader string
	if len(headers) > 1 {
		colHeader = padCell("  "+headers[0], m.layout.keyWidth) + "  " + headers[1]
	} else if len(headers) == 1 {
		colHeader = "  " + headers[0]
	}
	colHeader = lipgloss.NewStyle().Foreground(colorHeaderFg).Underline(true).Render(colHeader)

	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = styleMuted().Render("  (empty: press a to add a key)")
	}

	return strings.Join([]string{header, colHeader, body, m.statusLine(), m.footer()}, "\n")
}

func (m appModel) statusLine() string {
	switch m.mode {
	case modeEditValue:
		return "value: " + m.input.View()
	case modeRename:
		return "key: " + m.input.View()
	}
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return lipgloss.NewStyle().Foreground(colorError).Render(m.status)
	}
	return styleMuted().Render(m.status)
}

func (m appModel) footer() string {
	if m.mode == modeEditValue || m.mode == modeRename {
		return styleMuted().Render("enter: save  esc: cancel")
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}
