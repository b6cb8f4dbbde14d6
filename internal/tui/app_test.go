package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"kvtree/internal/editor"
	"kvtree/internal/tree"
)

func sampleDoc() *editor.Document {
	return editor.New(tree.Map{
		{Key: "server", Value: tree.Map{{Key: "host", Value: "localhost"}, {Key: "port", Value: 8080.0}}},
		{Key: "debug", Value: false},
	})
}

func newTestModel(t *testing.T, doc *editor.Document) appModel {
	t.Helper()
	m := newAppModel(doc, WithTitle("test.json"))
	t.Cleanup(m.close)
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return mm.(appModel)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		mm, _ := m.Update(keyMsg(k))
		m = mm.(appModel)
	}
	return m
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	mm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return mm.(appModel)
}

func selectedKey(m appModel) string {
	it, ok := m.list.SelectedItem().(rowItem)
	if !ok {
		return ""
	}
	return it.row.key
}

func visibleKeys(m appModel) string {
	var out []string
	for _, it := range m.list.Items() {
		out = append(out, it.(rowItem).row.key)
	}
	return strings.Join(out, ",")
}

func TestFlattenTree_RespectsCollapsed(t *testing.T) {
	doc := sampleDoc()
	rows := flattenTree(doc.Tree(), nil)
	if len(rows) != 4 || rows[1].depth != 1 || !rows[0].hasChildren {
		t.Fatalf("unexpected rows %+v", rows)
	}
	server := rows[0].node
	rows = flattenTree(doc.Tree(), map[*tree.Node]bool{server: true})
	if len(rows) != 2 || !rows[0].collapsed {
		t.Fatalf("expected collapsed server to hide its children, got %+v", rows)
	}
}

func TestApp_NavigateAndCollapse(t *testing.T) {
	m := newTestModel(t, sampleDoc())
	if got := visibleKeys(m); got != "server,host,port,debug" {
		t.Fatalf("unexpected rows %s", got)
	}
	m = press(t, m, "left")
	if got := visibleKeys(m); got != "server,debug" {
		t.Fatalf("expected server collapsed, got %s", got)
	}
	m = press(t, m, "right", "down", "down")
	if selectedKey(m) != "port" {
		t.Fatalf("expected port selected, got %q", selectedKey(m))
	}
	m = press(t, m, "left")
	if selectedKey(m) != "server" {
		t.Fatalf("expected left on a leaf to jump to the parent, got %q", selectedKey(m))
	}
	m = press(t, m, "space")
	if got := visibleKeys(m); got != "server,debug" {
		t.Fatalf("expected space to toggle collapse, got %s", got)
	}
}

func TestApp_EditValueAndUndo(t *testing.T) {
	doc := sampleDoc()
	m := newTestModel(t, doc)
	m = press(t, m, "down", "down", "e")
	if m.mode != modeEditValue || m.input.Value() != "8080" {
		t.Fatalf("expected value editor with 8080, got mode %d value %q", m.mode, m.input.Value())
	}
	m = press(t, m, "ctrl+u")
	m = typeText(t, m, "9090")
	m = press(t, m, "enter")
	if got, _ := doc.ToMap()[0].Value.(tree.Map).Get("port"); got != 9090.0 {
		t.Fatalf("expected port 9090, got %#v", got)
	}
	if !strings.Contains(m.View(), "9090") {
		t.Fatalf("expected the view to show the new value")
	}
	m = press(t, m, "u")
	if got, _ := doc.ToMap()[0].Value.(tree.Map).Get("port"); got != 8080.0 {
		t.Fatalf("expected undo to restore 8080, got %#v", got)
	}
	m = press(t, m, "ctrl+r")
	if got, _ := doc.ToMap()[0].Value.(tree.Map).Get("port"); got != 9090.0 {
		t.Fatalf("expected redo to reapply 9090, got %#v", got)
	}
	if selectedKey(m) != "port" {
		t.Fatalf("expected selection to stay on port, got %q", selectedKey(m))
	}
}

func TestApp_EditBranchValueRejected(t *testing.T) {
	m := newTestModel(t, sampleDoc())
	m = press(t, m, "e")
	if m.mode != modeNormal || !m.statusErr || !strings.Contains(m.View(), tree.ErrBranchValue.Error()) {
		t.Fatalf("expected a status error for editing a branch, got mode %d status %q", m.mode, m.status)
	}
}

func TestApp_AddChildThenRename(t *testing.T) {
	doc := sampleDoc()
	m := newTestModel(t, doc)
	m = press(t, m, "a")
	if m.mode != modeRename || m.input.Value() != "New Key #1" {
		t.Fatalf("expected rename of the new key, got mode %d %q", m.mode, m.input.Value())
	}
	if selectedKey(m) != "New Key #1" {
		t.Fatalf("expected the new row selected, got %q", selectedKey(m))
	}
	m = press(t, m, "ctrl+u")
	m = typeText(t, m, "tls")
	m = press(t, m, "enter")
	server, _ := doc.ToMap().Get("server")
	if keys := strings.Join(server.(tree.Map).Keys(), ","); keys != "host,port,tls" {
		t.Fatalf("expected tls appended under server, got %s", keys)
	}
	if doc.Stack().Count() != 2 {
		t.Fatalf("expected insert and rename commands, got %d", doc.Stack().Count())
	}
}

func TestApp_RenameDuplicateShowsError(t *testing.T) {
	m := newTestModel(t, sampleDoc())
	m = press(t, m, "down", "r", "ctrl+u")
	m = typeText(t, m, "port")
	m = press(t, m, "enter")
	if !m.statusErr || !strings.Contains(m.status, editor.ErrDuplicateKey.Error()) {
		t.Fatalf("expected duplicate key error, got %q", m.status)
	}
}

func TestApp_DeleteAndUndo(t *testing.T) {
	doc := sampleDoc()
	m := newTestModel(t, doc)
	m = press(t, m, "d")
	if got := visibleKeys(m); got != "debug" || selectedKey(m) != "debug" {
		t.Fatalf("expected only debug left and selected, got %s (%q)", got, selectedKey(m))
	}
	m = press(t, m, "u")
	if got := visibleKeys(m); got != "server,host,port,debug" {
		t.Fatalf("expected undo to restore server, got %s", got)
	}
	m = press(t, m, "u")
	if m.status != "nothing to undo" || m.statusErr {
		t.Fatalf("expected a plain notice at the start of history, got %q", m.status)
	}
}

func TestApp_ReorderKeys(t *testing.T) {
	doc := sampleDoc()
	m := newTestModel(t, doc)
	m = press(t, m, "J")
	if got := visibleKeys(m); got != "debug,server,host,port" || selectedKey(m) != "server" {
		t.Fatalf("expected server moved down and still selected, got %s (%q)", got, selectedKey(m))
	}
	m = press(t, m, "K", "down", "down", "<")
	if got := strings.Join(doc.ToMap().Keys(), ","); got != "server,port,debug" {
		t.Fatalf("expected port outdented after server, got %s", got)
	}
	m = press(t, m, ">")
	if got := strings.Join(doc.ToMap().Keys(), ","); got != "server,debug" {
		t.Fatalf("expected port indented back, got %s", got)
	}
	if selectedKey(m) != "port" {
		t.Fatalf("expected port to stay selected, got %q", selectedKey(m))
	}
	m = press(t, m, "K", "K")
	if !m.statusErr || m.status != editor.ErrNoRoom.Error() {
		t.Fatalf("expected ErrNoRoom at the top, got %q", m.status)
	}
}

func TestApp_CopyNode(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = orig })

	m := newTestModel(t, sampleDoc())
	m = press(t, m, "down", "y")
	if copied != "{\n  \"host\": \"localhost\"\n}" {
		t.Fatalf("unexpected clipboard %q", copied)
	}
	if m.status != "copied server/host" {
		t.Fatalf("unexpected status %q", m.status)
	}

	writeClipboard = func(string) error { return errors.New("no clipboard") }
	m = press(t, m, "y")
	if !m.statusErr {
		t.Fatalf("expected clipboard failure to surface")
	}
}

func TestApp_EmptyTreeAddsAtRoot(t *testing.T) {
	doc := editor.New(nil)
	m := newTestModel(t, doc)
	if !strings.Contains(m.View(), "empty") {
		t.Fatalf("expected an empty-tree hint")
	}
	m = press(t, m, "a", "esc")
	if got := strings.Join(doc.ToMap().Keys(), ","); got != "New Key #1" {
		t.Fatalf("expected a top-level key, got %s", got)
	}
	if !strings.Contains(m.View(), glyphModified()) {
		t.Fatalf("expected the modified marker in the header")
	}
}

func TestApp_ExternalEditsRefresh(t *testing.T) {
	doc := sampleDoc()
	m := newTestModel(t, doc)
	// A script or other caller edits the document between key presses.
	if err := doc.RequestDelete(mustLookup(t, doc, "debug")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	m = press(t, m, "down")
	if got := visibleKeys(m); got != "server,host,port" || selectedKey(m) != "host" {
		t.Fatalf("expected rows rebuilt on the next key, got %s (%q)", got, selectedKey(m))
	}
	m = press(t, m, "u")
	if got := visibleKeys(m); got != "server,host,port,debug" {
		t.Fatalf("expected rows rebuilt after undo, got %s", got)
	}
}

func TestApp_HelpScreen(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	m := newTestModel(t, sampleDoc())
	m = press(t, m, "?")
	if m.mode != modeHelp || !strings.Contains(m.View(), "Editor keys") {
		t.Fatalf("expected the help screen")
	}
	m = press(t, m, "esc")
	if m.mode != modeNormal {
		t.Fatalf("expected esc to close help")
	}
	mm, cmd := m.Update(keyMsg("q"))
	if _, ok := mm.(appModel); !ok || cmd == nil {
		t.Fatalf("expected q to quit")
	}
}

func mustLookup(t *testing.T, doc *editor.Document, path string) tree.Handle {
	t.Helper()
	h, err := doc.Lookup(path)
	if err != nil {
		t.Fatalf("lookup %q: %v", path, err)
	}
	return h
}
