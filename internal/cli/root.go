// Package cli is the kvtree command line: an interactive editor plus
// scriptable commands that read, edit and convert key/value files.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"kvtree/internal/editor"
	"kvtree/internal/format"
	"kvtree/internal/tree"
	"kvtree/internal/tui"
)

type App struct {
	Format    string
	Pretty    bool
	DebugLog  string
	UndoLimit int

	// runEditor starts the interactive editor. Tests replace it.
	runEditor func(doc *editor.Document, opts ...tui.Option) error

	logger   *slog.Logger
	closeLog func() error
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{runEditor: tui.Run})
}

func newRootCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:          "kvtree",
		Short:        "Edit nested key/value files as a tree, with undo",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		Example: strings.TrimSpace(`
  # Open a file in the interactive editor (shortcut for: kvtree edit <file>)
  kvtree config.json

  # Start from an empty tree and save it on exit
  kvtree --out new.yaml

  # Print a file as an outline
  kvtree show config.yaml

  # Apply an edit script and write the result back
  kvtree run config.json edits.kv -w

  # Convert between formats
  kvtree convert config.yaml --out config.json
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No file => empty tree.
			return runEdit(cmd, app, "", out, false)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.openLog()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.closeLogFile()
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the edited tree to this file on exit")

	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("KVTREE_FORMAT", "json"), "Output format (json|yaml|edn|ini)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON and EDN output")
	cmd.PersistentFlags().StringVar(&app.DebugLog, "debug-log", envOr("KVTREE_DEBUG_LOG", ""), "Append debug logs to this file")
	cmd.PersistentFlags().IntVar(&app.UndoLimit, "undo-limit", 0, "Maximum undo steps to keep (0 = unlimited)")

	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newConvertCmd(app))
	cmd.AddCommand(newRunCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// IsCommand reports whether name is a subcommand or alias of the root
// command, including cobra's generated help and completion commands.
func IsCommand(root *cobra.Command, name string) bool {
	switch name {
	case "help", "completion":
		return true
	}
	for _, c := range root.Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return true
		}
	}
	return false
}

// openLog routes debug logging to --debug-log. Without it everything is
// discarded, since the editor owns the terminal.
func (app *App) openLog() error {
	app.logger = slog.New(slog.DiscardHandler)
	if app.DebugLog == "" {
		return nil
	}
	f, err := tea.LogToFile(app.DebugLog, "kvtree")
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	app.logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	app.closeLog = f.Close
	return nil
}

func (app *App) closeLogFile() error {
	if app.closeLog == nil {
		return nil
	}
	err := app.closeLog()
	app.closeLog = nil
	return err
}

func (app *App) log() *slog.Logger {
	if app.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return app.logger
}

func (app *App) newDocument(m tree.Map) *editor.Document {
	return editor.New(m,
		editor.WithUndoLimit(app.UndoLimit),
		editor.WithLogger(app.log()),
	)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(w io.Writer, app *App, m tree.Map) error {
	return format.Write(w, m, app.Format, app.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
