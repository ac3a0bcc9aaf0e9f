package resource

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// TOMLParser reads TOML tables, flattening them with '.'-joined keys in sorted order.
type TOMLParser struct{}

// NewTOMLParser returns the TOML parser.
func NewTOMLParser() *TOMLParser { return &TOMLParser{} }

func (p *TOMLParser) Format() string       { return "toml" }
func (p *TOMLParser) Extensions() []string { return []string{".toml"} }

func (p *TOMLParser) Parse(data []byte) ([]Pair, error) {
	var doc map[string]any
	if err := toml.Unmarshal(stripBOM(data), &doc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, _ := derr.Position()
			return nil, &ParseError{Line: row, Msg: derr.Error()}
		}
		return nil, err
	}

	var pairs []Pair
	if err := flattenTOML(doc, "", &pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}

func flattenTOML(table map[string]any, prefix string, out *[]Pair) error {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := joinKey(prefix, k)
		switch v := table[k].(type) {
		case string:
			*out = append(*out, Pair{Key: key, Value: v})
		case map[string]any:
			if err := flattenTOML(v, key, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %q: value must be a string", key)
		}
	}
	return nil
}
