package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"kvtree/internal/tree"
	"kvtree/internal/tui"
)

func newEditCmd(app *App) *cobra.Command {
	var out string
	var write bool

	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Open a file in the interactive editor",
		Long: `Open a file in the interactive editor. A missing file starts as an empty
tree. On exit the result goes to --out, back to the file with -w, or to
stdout in --format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, app, args[0], out, write)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the edited tree to this file on exit")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the edited tree back to the input file on exit")

	return cmd
}

func runEdit(cmd *cobra.Command, app *App, path, out string, write bool) error {
	if write && path == "" {
		return writeErr(cmd, errUsage("-w needs a file argument"))
	}
	if path == "-" {
		return writeErr(cmd, errUsage("the editor needs the terminal; use run or convert to read stdin"))
	}
	if write && out != "" {
		return writeErr(cmd, errUsage("use either -w or --out, not both"))
	}

	var m tree.Map
	if path != "" {
		var err error
		if m, err = readTree(cmd.InOrStdin(), path, true); err != nil {
			return writeErr(cmd, err)
		}
	}

	doc := app.newDocument(m)
	title := "untitled"
	if path != "" {
		title = filepath.Base(path)
	}
	app.log().Debug("edit", "path", path, "rows", len(m))

	if err := app.runEditor(doc, tui.WithTitle(title), tui.WithLogger(app.log())); err != nil {
		return writeErr(cmd, err)
	}

	switch {
	case write:
		out = path
	case out == "":
		return writeOut(cmd.OutOrStdout(), app, doc.ToMap())
	}
	if !doc.Modified() && out == path {
		return nil
	}
	if err := writeTree(out, doc.ToMap(), app.Format, app.Pretty); err != nil {
		return writeErr(cmd, err)
	}
	doc.MarkSaved()
	return nil
}
