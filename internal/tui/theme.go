package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"kvtree/internal/docs"
)

// Colors adapt to the background; faint is only applied on dark ones.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
	colorString     lipgloss.TerminalColor = ac("28", "114")
	colorError      lipgloss.TerminalColor = ac("160", "203")
	colorHeaderFg   lipgloss.TerminalColor = ac("240", "245")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// applyColorProfilePreference sets Lip Gloss's color profile for the TUI.
// Only NO_COLOR turns color off (CLICOLOR is for piped output); otherwise
// TERM/COLORTERM may raise the detected profile but never lower it.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(upgradeProfile(termenv.ColorProfile(), os.Getenv("TERM"), os.Getenv("COLORTERM")))
}

// upgradeProfile raises detected to what the terminal variables claim.
// termenv profiles are ordered from TrueColor (0) down to Ascii.
func upgradeProfile(detected termenv.Profile, term, colorterm string) termenv.Profile {
	if detected == termenv.Ascii {
		return detected
	}
	want := detected
	colorterm = strings.ToLower(colorterm)
	switch {
	case strings.Contains(colorterm, "truecolor"), strings.Contains(colorterm, "24bit"):
		want = termenv.TrueColor
	case strings.Contains(strings.ToLower(term), "256color"):
		want = termenv.ANSI256
	}
	return min(want, detected)
}

// applyThemePreference overrides Lip Gloss's background detection when the
// environment names a background (see docs.BackgroundFromEnv).
func applyThemePreference() {
	if dark, ok := docs.BackgroundFromEnv(); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
}
