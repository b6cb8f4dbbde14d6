package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Toggle   key.Binding

	AddChild   key.Binding
	AddSibling key.Binding
	Delete     key.Binding
	EditValue  key.Binding
	Rename     key.Binding
	MoveUp     key.Binding
	MoveDown   key.Binding
	Indent     key.Binding
	Outdent    key.Binding
	Undo       key.Binding
	Redo       key.Binding
	Copy       key.Binding

	Help key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k", "ctrl+p"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j", "ctrl+n"), key.WithHelp("↓/j", "down")),
		Expand:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
		Collapse: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),

		AddChild:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add child")),
		AddSibling: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add sibling")),
		Delete:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		EditValue:  key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit value")),
		Rename:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		MoveUp:     key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		MoveDown:   key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		Indent:     key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "indent")),
		Outdent:    key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "outdent")),
		Undo:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "redo")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy json")),

		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AddChild, k.EditValue, k.Rename, k.Delete, k.Undo, k.Redo, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Expand, k.Collapse, k.Toggle},
		{k.AddChild, k.AddSibling, k.Delete, k.EditValue, k.Rename},
		{k.MoveUp, k.MoveDown, k.Indent, k.Outdent},
		{k.Undo, k.Redo, k.Copy, k.Help, k.Quit},
	}
}
