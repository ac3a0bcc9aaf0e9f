package resource

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// PropertiesParser reads Java .properties files.
//
// Supported: '=' / ':' / whitespace separators, '#' and '!' comments, backslash
// line continuation and the standard escapes including \uXXXX. A line without a
// key, a bad escape or a duplicate key is malformed.
type PropertiesParser struct{}

// NewPropertiesParser returns the .properties parser.
func NewPropertiesParser() *PropertiesParser { return &PropertiesParser{} }

func (p *PropertiesParser) Format() string       { return "properties" }
func (p *PropertiesParser) Extensions() []string { return []string{".properties"} }

func (p *PropertiesParser) Parse(data []byte) ([]Pair, error) {
	text := strings.ReplaceAll(string(stripBOM(data)), "\r\n", "\n")
	raw := strings.Split(text, "\n")

	var pairs []Pair
	seen := make(map[string]int)

	for i := 0; i < len(raw); i++ {
		start := i + 1
		logical := strings.TrimLeft(raw[i], " \t\f")
		if logical == "" || logical[0] == '#' || logical[0] == '!' {
			continue
		}
		for continues(logical) && i+1 < len(raw) {
			i++
			logical = logical[:len(logical)-1] + strings.TrimLeft(raw[i], " \t\f")
		}
		if continues(logical) {
			logical = logical[:len(logical)-1]
		}

		rawKey, rawValue := splitProperty(logical)
		if rawKey == "" {
			return nil, &ParseError{Line: start, Msg: "missing key"}
		}
		key, err := unescapeProperty(rawKey)
		if err != nil {
			return nil, &ParseError{Line: start, Msg: err.Error()}
		}
		value, err := unescapeProperty(rawValue)
		if err != nil {
			return nil, &ParseError{Line: start, Msg: err.Error()}
		}
		if first, dup := seen[key]; dup {
			return nil, &ParseError{Line: start, Msg: fmt.Sprintf("duplicate key %q (first on line %d)", key, first)}
		}
		seen[key] = start
		pairs = append(pairs, Pair{Key: key, Value: value})
	}

	return pairs, nil
}

// continues reports whether s ends with an odd number of backslashes.
func continues(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// splitProperty splits a logical line at the first unescaped separator.
func splitProperty(s string) (key, value string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '\\' {
			i += 2
			continue
		}
		if c == '=' || c == ':' || c == ' ' || c == '\t' || c == '\f' {
			break
		}
		i++
	}
	if i > len(s) {
		i = len(s)
	}
	key = s[:i]
	rest := strings.TrimLeft(s[i:], " \t\f")
	if rest != "" && (rest[0] == '=' || rest[0] == ':') {
		rest = strings.TrimLeft(rest[1:], " \t\f")
	}
	return key, rest
}

func unescapeProperty(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		i++
		if i >= len(runes) {
			break
		}
		switch runes[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			if i+4 >= len(runes) {
				return "", fmt.Errorf("truncated \\u escape")
			}
			code, err := strconv.ParseUint(string(runes[i+1:i+5]), 16, 16)
			if err != nil {
				return "", fmt.Errorf("invalid \\u escape %q", string(runes[i+1:i+5]))
			}
			i += 4
			r1 := rune(code)
			if utf16.IsSurrogate(r1) && i+6 < len(runes) && runes[i+1] == '\\' && runes[i+2] == 'u' {
				if low, err := strconv.ParseUint(string(runes[i+3:i+7]), 16, 16); err == nil {
					if dec := utf16.DecodeRune(r1, rune(low)); dec != unicode.ReplacementChar {
						b.WriteRune(dec)
						i += 6
						continue
					}
				}
			}
			b.WriteRune(r1)
		default:
			b.WriteRune(runes[i])
		}
	}
	return b.String(), nil
}
