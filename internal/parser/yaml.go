package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"catalog-sync/internal/catalog"

	"gopkg.in/yaml.v3"
)

// YAMLParser reads catalogs from the yaml.v3 node tree, which keeps mapping
// order.
type YAMLParser struct{}

func NewYAMLParser() *YAMLParser { return &YAMLParser{} }

func (p *YAMLParser) CanParse(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func (p *YAMLParser) Ext() string { return ".yaml" }

// Decode reads a YAML mapping. Sequences become branches keyed by position
// and scalars not tagged as strings are dropped.
func (p *YAMLParser) Decode(data []byte) (*catalog.Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return catalog.NewMap(), nil
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("catalog root must be a mapping")
	}
	m, err := decodeYAML(root)
	if err != nil {
		return nil, err
	}
	return m.(*catalog.Map), nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func decodeYAML(n *yaml.Node) (catalog.Node, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		m := catalog.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := resolveAlias(n.Content[i])
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", key.Line)
			}
			child, err := decodeYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			if child != nil {
				m.Set(key.Value, child)
			}
		}
		return m, nil
	case yaml.SequenceNode:
		m := catalog.NewMap()
		for i, item := range n.Content {
			child, err := decodeYAML(item)
			if err != nil {
				return nil, err
			}
			if child != nil {
				m.Set(strconv.Itoa(i), child)
			}
		}
		return m, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!str" {
			return catalog.Leaf(n.Value), nil
		}
		return nil, nil
	default:
		return nil, nil
	}
}

// Encode writes root as a YAML document. List gaps are null.
func (p *YAMLParser) Encode(root catalog.Node) ([]byte, error) {
	n, err := encodeYAML(root)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close yaml encoder: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeYAML(n catalog.Node) (*yaml.Node, error) {
	switch v := n.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case catalog.Leaf:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(v)}, nil
	case *catalog.Map:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range v.Keys() {
			child, _ := v.Get(key)
			cn, err := encodeYAML(child)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				cn,
			)
		}
		return out, nil
	case *catalog.List:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, child := range v.Items() {
			cn, err := encodeYAML(child)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, cn)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("encode: unexpected node %T", n)
	}
}
