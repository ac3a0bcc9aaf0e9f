package resource

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLParser reads nested YAML mappings, flattening them with '.'-joined keys.
type YAMLParser struct{}

// NewYAMLParser returns the YAML parser.
func NewYAMLParser() *YAMLParser { return &YAMLParser{} }

func (p *YAMLParser) Format() string       { return "yaml" }
func (p *YAMLParser) Extensions() []string { return []string{".yml", ".yaml"} }

func (p *YAMLParser) Parse(data []byte) ([]Pair, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(stripBOM(data), &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Line: root.Line, Msg: "top-level yaml value must be a mapping"}
	}

	var pairs []Pair
	seen := make(map[string]struct{})
	if err := walkYAML(root, "", &pairs, seen); err != nil {
		return nil, err
	}
	return pairs, nil
}

func walkYAML(node *yaml.Node, prefix string, out *[]Pair, seen map[string]struct{}) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		key := joinKey(prefix, k.Value)
		if v.Kind == yaml.AliasNode && v.Alias != nil {
			v = v.Alias
		}

		switch v.Kind {
		case yaml.MappingNode:
			if err := walkYAML(v, key, out, seen); err != nil {
				return err
			}
		case yaml.ScalarNode:
			if v.Tag == "!!null" {
				continue
			}
			if _, dup := seen[key]; dup {
				return &ParseError{Line: k.Line, Msg: fmt.Sprintf("duplicate key %q", key)}
			}
			seen[key] = struct{}{}
			*out = append(*out, Pair{Key: key, Value: v.Value})
		default:
			return &ParseError{Line: v.Line, Msg: fmt.Sprintf("key %q: sequences are not supported", key)}
		}
	}
	return nil
}
