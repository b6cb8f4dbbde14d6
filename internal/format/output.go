// Package format reads and writes the nested key/value interchange form in
// JSON, YAML and EDN. Every codec keeps mapping order.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"kvtree/internal/tree"
)

const (
	JSON = "json"
	YAML = "yaml"
	EDN  = "edn"
	INI  = "ini"
)

// Write writes m in the requested format.
//
// Supported formats:
// - json (default)
// - yaml
// - edn (output only)
// - ini (one level of sections)
func Write(w io.Writer, m tree.Map, format string, pretty bool) error {
	switch format {
	case "", JSON:
		return WriteJSON(w, m, pretty)
	case YAML, "yml":
		return WriteYAML(w, m)
	case EDN:
		return WriteEDN(w, m, pretty)
	case INI:
		return WriteINI(w, m)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes v as one line of JSON, or indented when pretty.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Decode reads a map in the given input format.
func Decode(r io.Reader, format string) (tree.Map, error) {
	switch format {
	case "", JSON:
		return DecodeJSON(r)
	case YAML, "yml":
		return DecodeYAML(r)
	case INI:
		return DecodeINI(r)
	case EDN:
		return nil, fmt.Errorf("edn is an output-only format")
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// DecodeJSON reads one JSON object, keeping key order.
func DecodeJSON(r io.Reader) (tree.Map, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(b)) == "" {
		return tree.Map{}, nil
	}
	var m tree.Map
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// FromPath picks a format from a file extension. Unknown extensions map to
// the empty string, which Write and Decode treat as json.
func FromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".yaml", ".yml":
		return YAML
	case ".edn":
		return EDN
	case ".ini", ".cfg", ".conf":
		return INI
	default:
		return ""
	}
}
