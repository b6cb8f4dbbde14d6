// Package tui is the interactive editor: a bubbletea program that shows a
// kvtree document as an outline and turns key presses into editor requests.
package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"kvtree/internal/editor"
)

type config struct {
	title  string
	logger *slog.Logger
}

type Option func(*config)

// WithTitle sets the name shown in the header, usually the file name.
func WithTitle(title string) Option { return func(c *config) { c.title = title } }

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run blocks until the user quits. Edits are applied to doc as they happen.
func Run(doc *editor.Document, opts ...Option) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference()

	m := newAppModel(doc, opts...)
	defer m.close()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
