package tui

import (
	"os"
	"strings"
	"sync/atomic"
)

// glyphSet holds the symbols drawn around rows. Some terminal fonts render
// the Unicode twisties poorly; KVTREE_TUI_GLYPHS=ascii selects plain ones.
type glyphSet struct {
	name      string
	collapsed string
	expanded  string
	modified  string
}

var (
	unicodeGlyphs = glyphSet{name: "unicode", collapsed: "▸", expanded: "▾", modified: "●"}
	asciiGlyphs   = glyphSet{name: "ascii", collapsed: ">", expanded: "v", modified: "*"}
)

var activeGlyphs atomic.Pointer[glyphSet]

// applyGlyphPreference reads KVTREE_TUI_GLYPHS. Unknown values leave the
// current set alone.
func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KVTREE_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		setGlyphs(&unicodeGlyphs)
	case "ascii":
		setGlyphs(&asciiGlyphs)
	}
}

func setGlyphs(gs *glyphSet) { activeGlyphs.Store(gs) }

func glyphs() *glyphSet {
	if gs := activeGlyphs.Load(); gs != nil {
		return gs
	}
	return &unicodeGlyphs
}

func glyphTwistyCollapsed() string { return glyphs().collapsed }
func glyphTwistyExpanded() string  { return glyphs().expanded }
func glyphModified() string        { return glyphs().modified }
