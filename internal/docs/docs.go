// Package docs embeds the markdown help topics shown by `kvtree docs` and
// the TUI help screen.
package docs

import (
	"embed"
	"io/fs"
	"slices"
	"strings"
)

//go:embed content/*.md
var embedded embed.FS

var content, _ = fs.Sub(embedded, "content")

const ext = ".md"

// Topics lists the topic names, sorted.
func Topics() []string {
	entries, err := fs.ReadDir(content, ".")
	if err != nil {
		return []string{}
	}
	topics := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ext); ok && !e.IsDir() && name != "" {
			topics = append(topics, name)
		}
	}
	slices.Sort(topics)
	return topics
}

// Get returns the markdown for topic. Names are case-insensitive and may
// not contain path separators.
func Get(topic string) (string, bool) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" || strings.ContainsAny(topic, `/\.`) {
		return "", false
	}
	b, err := fs.ReadFile(content, topic+ext)
	if err != nil {
		return "", false
	}
	return string(b), true
}
