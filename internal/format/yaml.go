package format

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"kvtree/internal/tree"
)

// DecodeYAML reads one YAML document whose top level is a mapping. Mapping
// order is kept; sequences are rejected.
func DecodeYAML(r io.Reader) (tree.Map, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return tree.Map{}, nil
		}
		return nil, err
	}
	n := &doc
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return tree.Map{}, nil
		}
		n = n.Content[0]
	}
	n = resolveAlias(n)
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		return tree.Map{}, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping at the top level", n.Line)
	}
	return yamlMapping(n)
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func yamlMapping(n *yaml.Node) (tree.Map, error) {
	m := make(tree.Map, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := resolveAlias(n.Content[i])
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
		}
		v, err := yamlValue(n.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.Value, err)
		}
		m = append(m, tree.Entry{Key: k.Value, Value: v})
	}
	return m, nil
}

func yamlValue(n *yaml.Node) (any, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		return yamlMapping(n)
	case yaml.SequenceNode:
		return nil, fmt.Errorf("line %d: %w", n.Line, tree.ErrListValue)
	case yaml.ScalarNode:
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}

	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("line %d: non-finite number %s", n.Line, n.Value)
		}
		return f, nil
	default:
		// Strings, timestamps and custom tags keep their source text.
		return n.Value, nil
	}
}

// WriteYAML writes m as a block-style YAML document.
func WriteYAML(w io.Writer, m tree.Map) error {
	n, err := yamlNode(m)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return err
	}
	return enc.Close()
}

func yamlNode(m tree.Map) (*yaml.Node, error) {
	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m {
		k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}
		var v *yaml.Node
		if sub, ok := e.Value.(tree.Map); ok {
			var err error
			if v, err = yamlNode(sub); err != nil {
				return nil, err
			}
		} else {
			v = &yaml.Node{}
			if err := v.Encode(e.Value); err != nil {
				return nil, fmt.Errorf("%s: %w", e.Key, err)
			}
		}
		out.Content = append(out.Content, k, v)
	}
	return out, nil
}
