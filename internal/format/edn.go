package format

import (
	"io"
	"math"
	"strconv"
	"strings"

	"kvtree/internal/tree"
)

// WriteEDN writes m as an EDN map. Keys that are valid keywords are written
// as keywords, everything else as strings.
func WriteEDN(w io.Writer, m tree.Map, pretty bool) error {
	enc := ednWriter{pretty: pretty}
	enc.mapping(m, 0)
	enc.b.WriteByte('\n')
	_, err := io.WriteString(w, enc.b.String())
	return err
}

type ednWriter struct {
	b      strings.Builder
	pretty bool
}

const ednIndent = "  "

func (e *ednWriter) value(v any, depth int) {
	switch t := v.(type) {
	case tree.Map:
		e.mapping(t, depth)
	case string:
		e.b.WriteString(strconv.Quote(t))
	case bool:
		e.b.WriteString(strconv.FormatBool(t))
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<63 {
			e.b.WriteString(strconv.FormatInt(int64(t), 10))
		} else {
			e.b.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
		}
	default:
		e.b.WriteString("nil")
	}
}

// mapping writes {k v ...}. Pretty output puts each entry on its own line
// indented one step deeper than the braces.
func (e *ednWriter) mapping(m tree.Map, depth int) {
	e.b.WriteByte('{')
	for i, entry := range m {
		switch {
		case e.pretty:
			e.b.WriteByte('\n')
			e.b.WriteString(strings.Repeat(ednIndent, depth+1))
		case i > 0:
			e.b.WriteByte(' ')
		}
		e.key(entry.Key)
		e.b.WriteByte(' ')
		e.value(entry.Value, depth+1)
	}
	if e.pretty && len(m) > 0 {
		e.b.WriteByte('\n')
		e.b.WriteString(strings.Repeat(ednIndent, depth))
	}
	e.b.WriteByte('}')
}

func (e *ednWriter) key(k string) {
	if isKeyword(k) {
		e.b.WriteByte(':')
		e.b.WriteString(k)
		return
	}
	e.b.WriteString(strconv.Quote(k))
}

// isKeyword accepts a conservative subset of EDN keyword names: a letter
// followed by letters, digits and a few punctuation marks.
func isKeyword(s string) bool {
	switch s {
	case "", "nil", "true", "false":
		return false
	}
	for i, r := range s {
		letter := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
		if letter {
			continue
		}
		if i == 0 || !(r >= '0' && r <= '9' || strings.ContainsRune("*+!-_?.", r)) {
			return false
		}
	}
	return true
}
