package editor

import (
	"strings"

	"kvtree/internal/tree"
)

// Lookup resolves a slash-separated key path such as "a/b/c" to the key
// handle of the last node. A literal slash in a key is written `\/` and a
// literal backslash `\\`. The empty path is the root sentinel. When siblings
// share a key the first one wins.
func (d *Document) Lookup(keyPath string) (tree.Handle, error) {
	cur := tree.Handle{}
	for _, key := range SplitKeyPath(keyPath) {
		next := tree.Handle{}
		for i := 0; i < d.tree.RowCount(cur); i++ {
			h := d.tree.Index(i, tree.ColumnKey, cur)
			if d.tree.Data(h).String() == key {
				next = h
				break
			}
		}
		if !next.Valid() {
			return tree.Handle{}, NotFoundError{Kind: "key", ID: keyPath}
		}
		cur = next
	}
	return cur, nil
}

// KeyPath is the inverse of Lookup.
func (d *Document) KeyPath(h tree.Handle) string {
	var keys []string
	for cur := d.rowOf(h); cur.Valid(); cur = d.tree.Parent(cur) {
		keys = append(keys, d.tree.Data(cur).String())
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[len(keys)-1-i] = escapeKey(k)
	}
	return strings.Join(parts, "/")
}

// SplitKeyPath splits on unescaped slashes and unescapes each key.
func SplitKeyPath(keyPath string) []string {
	if keyPath == "" {
		return nil
	}
	var (
		out []string
		b   strings.Builder
	)
	for i := 0; i < len(keyPath); i++ {
		c := keyPath[i]
		switch {
		case c == '\\' && i+1 < len(keyPath) && (keyPath[i+1] == '/' || keyPath[i+1] == '\\'):
			i++
			b.WriteByte(keyPath[i])
		case c == '/':
			out = append(out, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(out, b.String())
}

func escapeKey(k string) string {
	k = strings.ReplaceAll(k, `\`, `\\`)
	return strings.ReplaceAll(k, "/", `\/`)
}
