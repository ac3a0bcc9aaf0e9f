package resource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// JSONParser reads nested JSON objects, flattening them with '.'-joined keys.
// Leaves must be strings; top-level keys starting with '$' are metadata and skipped.
type JSONParser struct{}

// NewJSONParser returns the JSON parser.
func NewJSONParser() *JSONParser { return &JSONParser{} }

func (p *JSONParser) Format() string       { return "json" }
func (p *JSONParser) Extensions() []string { return []string{".json"} }

func (p *JSONParser) Parse(data []byte) ([]Pair, error) {
	dec := json.NewDecoder(bytes.NewReader(stripBOM(data)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("top-level json value must be an object")
	}

	var pairs []Pair
	seen := make(map[string]struct{})
	if err := walkJSONObject(dec, "", &pairs, seen); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level object")
	}
	return pairs, nil
}

func walkJSONObject(dec *json.Decoder, prefix string, out *[]Pair, seen map[string]struct{}) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("invalid json: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("invalid json: unexpected token %v", tok)
		}

		if prefix == "" && len(name) > 0 && name[0] == '$' {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return fmt.Errorf("invalid json: %w", err)
			}
			continue
		}

		key := joinKey(prefix, name)
		tok, err = dec.Token()
		if err != nil {
			return fmt.Errorf("invalid json: %w", err)
		}

		switch v := tok.(type) {
		case json.Delim:
			if v != '{' {
				return fmt.Errorf("key %q: arrays are not supported", key)
			}
			if err := walkJSONObject(dec, key, out, seen); err != nil {
				return err
			}
		case string:
			if _, dup := seen[key]; dup {
				return fmt.Errorf("duplicate key %q", key)
			}
			seen[key] = struct{}{}
			*out = append(*out, Pair{Key: key, Value: v})
		default:
			return fmt.Errorf("key %q: value must be a string", key)
		}
	}

	// closing '}'
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
