package cli

import (
	"github.com/spf13/cobra"

	"kvtree/internal/format"
)

func newConvertCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "convert <file|->",
		Short: "Re-encode a file in another format",
		Long: `Re-encode a file. With --out the encoding follows the target extension;
otherwise the result goes to stdout in --format. "-" reads JSON from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readTree(cmd.InOrStdin(), args[0], false)
			if err != nil {
				return writeErr(cmd, err)
			}
			if out == "" {
				return writeOut(cmd.OutOrStdout(), app, m)
			}
			app.log().Debug("convert", "from", args[0], "to", out, "format", format.FromPath(out))
			if err := writeTree(out, m, app.Format, app.Pretty); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")

	return cmd
}
