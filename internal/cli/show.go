package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	ltree "github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"kvtree/internal/tree"
)

func newShowCmd(app *App) *cobra.Command {
	var depth int
	var path string

	cmd := &cobra.Command{
		Use:     "show <file>",
		Aliases: []string{"ls", "tree"},
		Short:   "Print a file as an outline",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readTree(cmd.InOrStdin(), args[0], false)
			if err != nil {
				return writeErr(cmd, err)
			}
			doc := app.newDocument(m)
			if path == "." || path == "/" {
				path = ""
			}
			root, err := doc.Lookup(path)
			if err != nil {
				return writeErr(cmd, err)
			}

			r := lipgloss.NewRenderer(cmd.OutOrStdout())
			st := outlineStyles{
				key:    r.NewStyle().Bold(true),
				str:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"}),
				scalar: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "111"}),
				null:   r.NewStyle().Faint(true),
				enum:   r.NewStyle().Faint(true).PaddingRight(1),
			}

			label := "."
			if root.Valid() {
				label = doc.KeyPath(root)
			}
			out := ltree.Root(st.key.Render(label)).
				Enumerator(ltree.RoundedEnumerator).
				EnumeratorStyle(st.enum)
			addChildren(out, doc.Tree(), root, depth, st)

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out.String())
			return err
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "Only show this many levels (0 = all)")
	cmd.Flags().StringVarP(&path, "path", "p", "", "Start at this key path (a/b/c)")

	return cmd
}

type outlineStyles struct {
	key    lipgloss.Style
	str    lipgloss.Style
	scalar lipgloss.Style
	null   lipgloss.Style
	enum   lipgloss.Style
}

func (st outlineStyles) value(v tree.Value) string {
	switch v.Kind() {
	case tree.KindNull:
		return st.null.Render("null")
	case tree.KindString:
		return st.str.Render(v.GoString())
	default:
		return st.scalar.Render(v.String())
	}
}

// addChildren appends the rows under parent to out. depth counts the
// levels still allowed; zero or less means unlimited, one means leaves only.
func addChildren(out *ltree.Tree, t *tree.Tree, parent tree.Handle, depth int, st outlineStyles) {
	for row := 0; row < t.RowCount(parent); row++ {
		kh := t.Index(row, tree.ColumnKey, parent)
		key := st.key.Render(t.Data(kh).String())
		if !t.HasChildren(kh) {
			vh := t.Index(row, tree.ColumnValue, parent)
			out.Child(key + ": " + st.value(t.Data(vh)))
			continue
		}
		if depth == 1 {
			out.Child(key + st.null.Render(" {…}"))
			continue
		}
		sub := ltree.Root(key).
			Enumerator(ltree.RoundedEnumerator).
			EnumeratorStyle(st.enum)
		next := depth - 1
		if depth <= 0 {
			next = 0
		}
		addChildren(sub, t, kh, next, st)
		out.Child(sub)
	}
}
