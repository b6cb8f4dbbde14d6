package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"kvtree/internal/tree"
)

// columnLayout is shared by the delegate and the header line so the value
// column lines up in both.
type columnLayout struct {
	keyWidth int
}

// fit sizes the key column to the widest visible key, capped at half the
// screen.
func (l *columnLayout) fit(rows []treeRow, width int) {
	w := 8
	for _, r := range rows {
		if n := r.depth*2 + 2 + xansi.StringWidth(r.key); n > w {
			w = n
		}
	}
	if lim := width / 2; lim > 8 && w > lim {
		w = lim
	}
	l.keyWidth = w
}

type treeItemDelegate struct {
	layout   *columnLayout
	normal   lipgloss.Style
	selected lipgloss.Style
	null     lipgloss.Style
	str      lipgloss.Style
	scalar   lipgloss.Style
}

func newTreeItemDelegate(layout *columnLayout) treeItemDelegate {
	return treeItemDelegate{
		layout: layout,
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		null:   styleMuted().Italic(true),
		str:    lipgloss.NewStyle().Foreground(colorString),
		scalar: lipgloss.NewStyle().Foreground(colorAccent),
	}
}

func (d treeItemDelegate) Height() int                             { return 1 }
func (d treeItemDelegate) Spacing() int                            { return 0 }
func (d treeItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d treeItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	width := m.Width()
	it, ok := item.(rowItem)
	if !ok || width < 4 {
		fmt.Fprint(w, "")
		return
	}
	focused := index == m.Index()

	twisty := " "
	if it.row.hasChildren {
		if it.row.collapsed {
			twisty = glyphTwistyCollapsed()
		} else {
			twisty = glyphTwistyExpanded()
		}
	}
	lead := strings.Repeat("  ", it.row.depth) + twisty + " "
	keyCell := padCell(lead+it.row.key, d.layout.keyWidth)

	if focused {
		// One style for the whole row keeps the highlight unbroken.
		line := keyCell + "  " + valueText(it.row)
		fmt.Fprint(w, renderRow(width, d.selected, line))
		return
	}

	valStyle := d.scalar
	switch {
	case it.row.hasChildren || it.row.value.IsNull():
		valStyle = d.null
	case it.row.value.Kind() == tree.KindString:
		valStyle = d.str
	}
	out := d.normal.Render(keyCell+"  ") + valStyle.Render(valueText(it.row))
	if xansi.StringWidth(out) > width {
		out = xansi.Truncate(out, width, "…")
	}
	fmt.Fprint(w, out)
}

// valueText is what the value column shows. Branches have no value.
func valueText(r treeRow) string {
	switch {
	case r.hasChildren:
		return ""
	case r.value.IsNull():
		return "null"
	case r.value.Kind() == tree.KindString:
		return fmt.Sprintf("%q", r.value.String())
	default:
		return r.value.String()
	}
}

// padCell pads or cuts s to exactly width cells.
func padCell(s string, width int) string {
	w := xansi.StringWidth(s)
	if w > width {
		if width < 2 {
			return xansi.Cut(s, 0, width)
		}
		return xansi.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", width-w)
}

func renderRow(width int, style lipgloss.Style, line string) string {
	plainW := xansi.StringWidth(line)
	if plainW < width {
		line += strings.Repeat(" ", width-plainW)
	} else if plainW > width {
		line = xansi.Truncate(line, width, "…")
	}
	return style.Render(line)
}
