package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"kvtree/internal/script"
)

func newRunCmd(app *App) *cobra.Command {
	var keepGoing bool
	var write bool
	var out string

	cmd := &cobra.Command{
		Use:   "run <file> <script|->",
		Short: "Apply an edit script to a file",
		Long: `Apply an edit script, one command per line, to a file. A missing file
starts empty. The result goes to --out, back to the file with -w, or to
stdout in --format. Run "kvtree docs scripts" for the command list.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if write && out != "" {
				return writeErr(cmd, errUsage("use either -w or --out, not both"))
			}
			path, scriptPath := args[0], args[1]
			if path == "-" && scriptPath == "-" {
				return writeErr(cmd, errUsage("only one of the file and the script can be stdin"))
			}
			if write && path == "-" {
				return writeErr(cmd, errUsage("-w needs a file argument"))
			}

			m, err := readTree(cmd.InOrStdin(), path, true)
			if err != nil {
				return writeErr(cmd, err)
			}
			doc := app.newDocument(m)

			var src io.Reader = cmd.InOrStdin()
			if scriptPath != "-" {
				f, err := os.Open(scriptPath)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				src = f
			}

			opts := []script.Option{
				script.WithOutput(cmd.OutOrStdout()),
				script.WithFormat(app.Format, app.Pretty),
				script.WithLogger(app.log()),
			}
			if keepGoing {
				opts = append(opts, script.KeepGoing())
			}
			if err := script.New(doc, opts...).Run(cmd.Context(), src); err != nil {
				return writeErr(cmd, err)
			}

			if write {
				out = path
			}
			if out == "" {
				return writeOut(cmd.OutOrStdout(), app, doc.ToMap())
			}
			if err := writeTree(out, doc.ToMap(), app.Format, app.Pretty); err != nil {
				return writeErr(cmd, err)
			}
			doc.MarkSaved()
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Run every line and report all failures at the end")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the input file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the result to this file")

	return cmd
}
