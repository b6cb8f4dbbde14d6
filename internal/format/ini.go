package format

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/ini.v1"

	"kvtree/internal/tree"
)

// ErrTooDeep is returned when writing INI for a map nested more than one
// level: INI has sections and keys, nothing below.
var ErrTooDeep = errors.New("ini holds at most one level of sections")

// DecodeINI reads an INI file. Keys outside any section become top-level
// entries; each section becomes a nested map. Values are typed with
// tree.ParseValue, since INI itself only stores text.
func DecodeINI(r io.Reader) (tree.Map, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg, err := ini.Load(b)
	if err != nil {
		return nil, err
	}
	m := tree.Map{}
	for _, sec := range cfg.Sections() {
		keys := iniKeys(sec)
		if sec.Name() == ini.DefaultSection {
			m = append(m, keys...)
			continue
		}
		m = append(m, tree.Entry{Key: sec.Name(), Value: keys})
	}
	return m, nil
}

func iniKeys(sec *ini.Section) tree.Map {
	out := make(tree.Map, 0, len(sec.Keys()))
	for _, k := range sec.Keys() {
		out = append(out, tree.Entry{Key: k.Name(), Value: tree.ParseValue(k.Value()).Any()})
	}
	return out
}

// WriteINI writes m as INI. Top-level scalars go first, before any section
// header, so their position relative to sections is not kept.
func WriteINI(w io.Writer, m tree.Map) error {
	cfg := ini.Empty()
	def := cfg.Section("")
	for _, e := range m {
		if _, ok := e.Value.(tree.Map); ok {
			continue
		}
		if _, err := def.NewKey(e.Key, iniText(e.Value)); err != nil {
			return fmt.Errorf("key %q: %w", e.Key, err)
		}
	}
	for _, e := range m {
		sub, ok := e.Value.(tree.Map)
		if !ok {
			continue
		}
		sec, err := cfg.NewSection(e.Key)
		if err != nil {
			return fmt.Errorf("section %q: %w", e.Key, err)
		}
		for _, se := range sub {
			if _, nested := se.Value.(tree.Map); nested {
				return fmt.Errorf("%s/%s: %w", e.Key, se.Key, ErrTooDeep)
			}
			if _, err := sec.NewKey(se.Key, iniText(se.Value)); err != nil {
				return fmt.Errorf("key %q: %w", se.Key, err)
			}
		}
	}
	_, err := cfg.WriteTo(w)
	return err
}

func iniText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(v)
	}
}
