package docs

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	rendererMu sync.Mutex
	// Cache renderers by wrap width + style. WithAutoStyle can block on
	// terminal background queries, so a fixed style is picked up front.
	renderers = map[string]*glamour.TermRenderer{}
)

// Render formats md for a terminal of the given width. On any renderer
// failure the raw markdown is returned.
func Render(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	style := Style()
	key := style + ":" + strconv.Itoa(width)
	rendererMu.Lock()
	r := renderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			rendererMu.Unlock()
			return md
		}
		renderers[key] = rr
		r = rr
	}
	rendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// Style picks the glamour standard style: "notty" when color is disabled,
// otherwise "light" or "dark" for the terminal background.
func Style() string {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return "notty"
	}
	dark, ok := BackgroundFromEnv()
	if !ok {
		dark = lipgloss.HasDarkBackground()
	}
	if dark {
		return "dark"
	}
	return "light"
}

// BackgroundFromEnv reports the terminal background the environment asks
// for. ok is false when nothing says, leaving detection to the terminal.
//
// Priority:
// 1) KVTREE_THEME=light|dark
// 2) KVTREE_DARKBG=true|false
// 3) COLORFGBG heuristic ("fg;bg", bg >= 7 is a light background)
func BackgroundFromEnv() (dark, ok bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KVTREE_THEME"))) {
	case "light":
		return false, true
	case "dark":
		return true, true
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("KVTREE_DARKBG"))); err == nil {
		return b, true
	}
	fgbg := strings.TrimSpace(os.Getenv("COLORFGBG"))
	if i := strings.LastIndexByte(fgbg, ';'); i >= 0 {
		fgbg = fgbg[i+1:]
	}
	if bg, err := strconv.Atoi(strings.TrimSpace(fgbg)); err == nil {
		return bg < 7, true
	}
	return false, false
}
