package resource

import (
	"fmt"
	"path"
	"strings"
)

// Parser decodes one resource format into ordered key/value pairs.
type Parser interface {
	// Format returns the format name, e.g. "properties".
	Format() string
	// Extensions lists the handled file extensions including the dot.
	Extensions() []string
	// Parse decodes data. Errors are wrapped into MalformedResourceError by the scanner.
	Parse(data []byte) ([]Pair, error)
}

// ParseError locates a parse failure inside a file.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Registry maps file extensions to parsers.
type Registry struct {
	byExt map[string]Parser
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Parser)}
}

// DefaultRegistry returns a registry with every built-in format.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewPropertiesParser())
	r.Register(NewJSONParser())
	r.Register(NewYAMLParser())
	r.Register(NewTOMLParser())
	r.Register(NewPOParser())
	return r
}

// Register adds p for each of its extensions, replacing earlier registrations.
func (r *Registry) Register(p Parser) {
	for _, ext := range p.Extensions() {
		r.byExt[strings.ToLower(ext)] = p
	}
}

// For returns the parser for name's extension.
func (r *Registry) For(name string) (Parser, error) {
	ext := strings.ToLower(path.Ext(name))
	p, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("no parser registered for %q", ext)
	}
	return p, nil
}

// ParseValues parses data as the format of name and returns a key/value map.
func (r *Registry) ParseValues(name string, data []byte) (map[string]string, error) {
	p, err := r.For(name)
	if err != nil {
		return nil, err
	}
	pairs, err := p.Parse(data)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		values[kv.Key] = kv.Value
	}
	return values, nil
}

func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
