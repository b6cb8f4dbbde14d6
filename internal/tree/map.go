package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Entry is one key of a Map. Value is nil, string, float64, bool or Map.
type Entry struct {
	Key   string
	Value any
}

// Map is the nested interchange form of a tree. Unlike map[string]any it
// keeps keys in insertion order.
type Map []Entry

// ErrListValue is returned when decoding input that contains an array.
var ErrListValue = errors.New("lists are not supported in key/value trees")

func (m Map) Len() int { return len(m) }

func (m Map) Keys() []string {
	out := make([]string, 0, len(m))
	for _, e := range m {
		out = append(out, e.Key)
	}
	return out
}

// Get returns the value of the first entry named key.
func (m Map) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the first entry named key or appends a new one.
func (m *Map) Set(key string, v any) {
	for i := range *m {
		if (*m)[i].Key == key {
			(*m)[i].Value = v
			return
		}
	}
	*m = append(*m, Entry{Key: key, Value: v})
}

// Equal compares keys, nesting, order and scalar values.
func (m Map) Equal(o Map) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if m[i].Key != o[i].Key {
			return false
		}
		if !entryValueEqual(m[i].Value, o[i].Value) {
			return false
		}
	}
	return true
}

func entryValueEqual(a, b any) bool {
	am, aIsMap := a.(Map)
	bm, bIsMap := b.(Map)
	if aIsMap || bIsMap {
		return aIsMap && bIsMap && am.Equal(bm)
	}
	av, ok1 := ValueOf(a)
	bv, ok2 := ValueOf(b)
	return ok1 && ok2 && av.Equal(bv)
}

// FromAny converts a map[string]any (keys sorted, since Go maps have no
// order) or a Map into a Map. Nested map[string]any values convert
// recursively.
func FromAny(v any) (Map, error) {
	switch t := v.(type) {
	case Map:
		return t, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Map, 0, len(t))
		for _, k := range keys {
			cv, err := fromAnyValue(t[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out = append(out, Entry{Key: k, Value: cv})
		}
		return out, nil
	case nil:
		return Map{}, nil
	default:
		return nil, fmt.Errorf("expected a mapping, got %T", v)
	}
}

func fromAnyValue(v any) (any, error) {
	switch t := v.(type) {
	case Map, map[string]any:
		return FromAny(t)
	case []any:
		return nil, ErrListValue
	}
	sv, ok := ValueOf(v)
	if !ok {
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
	return sv.Any(), nil
}

// MarshalJSON writes the entries as a JSON object in order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Key, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. Arrays are rejected.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}
	out, err := decodeObject(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after JSON object")
	}
	*m = out
	return nil
}

// decodeObject reads entries after an opening '{' through the closing '}'.
func decodeObject(dec *json.Decoder) (Map, error) {
	out := Map{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, Entry{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if t == '{' {
			return decodeObject(dec)
		}
		return nil, ErrListValue
	case string, float64, bool, nil:
		return t, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}
