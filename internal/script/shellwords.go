package script

import (
	"strings"
	"unicode"
)

// splitShellWords splits a command line into words. Single quotes keep
// everything literal; double quotes keep spaces; a backslash outside single
// quotes makes the next rune literal. An empty quoted word ('' or "") is
// kept as an empty argument.
func splitShellWords(s string) []string {
	var (
		words []string
		word  strings.Builder
		quote rune // 0, '\'' or '"'
		have  bool // the current word has started, even if empty
	)
	end := func() {
		if have {
			words = append(words, word.String())
		}
		word.Reset()
		have = false
	}

	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case r == '\\':
			if i+1 < len(rs) {
				i++
				word.WriteRune(rs[i])
			}
			have = true
		case quote == '"':
			if r == '"' {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote, have = r, true
		case unicode.IsSpace(r):
			end()
		default:
			word.WriteRune(r)
			have = true
		}
	}
	end()
	return words
}
