package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"kvtree/internal/docs"
	"kvtree/internal/format"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool
	var width int

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				topics := docs.Topics()
				sort.Strings(topics)
				return format.WriteJSON(cmd.OutOrStdout(), map[string]any{"topics": topics}, app.Pretty)
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, unknownTopicError{topic: topic})
			}

			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), docs.Render(body, width))
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap rendered text at this width")

	return cmd
}
