package resource

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validator checks translated files against their source strings.
//
// Every translated key must exist in the source and carry the same number of
// MessageFormat elements ({0}, {count,number}, ...). Apostrophes are literal text,
// not quote characters.
type Validator struct {
	source map[string]string
}

// NewValidator returns a validator for one source file's values.
func NewValidator(source map[string]string) *Validator {
	return &Validator{source: source}
}

// Validate returns nil when translated is consistent with the source, otherwise an
// error listing every failing entry. context names the translated file in messages.
func (v *Validator) Validate(context string, translated map[string]string) error {
	keys := make([]string, 0, len(translated))
	for k := range translated {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var failures []error
	for _, key := range keys {
		actual, err := CountFormatElements(translated[key])
		if err != nil {
			failures = append(failures, fmt.Errorf("entry '%s' in %s is invalid: %w", key, context, err))
			continue
		}
		src, ok := v.source[key]
		if !ok {
			failures = append(failures, fmt.Errorf("entry '%s' in %s is invalid: no corresponding source entry", key, context))
			continue
		}
		expected, err := CountFormatElements(src)
		if err != nil {
			failures = append(failures, fmt.Errorf("source entry '%s' is invalid: %w", key, err))
			continue
		}
		if expected != actual {
			failures = append(failures, fmt.Errorf(
				"entry '%s' in %s has %d formats instead of %d (expected %q, got %q)",
				key, context, actual, expected, src, translated[key],
			))
		}
	}
	return errors.Join(failures...)
}

// CountFormatElements returns the number of top-level MessageFormat elements in s.
// Unbalanced braces and empty elements are errors.
func CountFormatElements(s string) (int, error) {
	depth, count := 0, 0
	var arg strings.Builder
	for _, r := range s {
		switch r {
		case '{':
			if depth == 0 {
				count++
				arg.Reset()
			} else {
				arg.WriteRune(r)
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				name, _, _ := strings.Cut(arg.String(), ",")
				if strings.TrimSpace(name) == "" {
					return 0, errors.New("format element without argument")
				}
			} else {
				arg.WriteRune(r)
			}
		default:
			if depth > 0 {
				arg.WriteRune(r)
			}
		}
	}
	if depth != 0 {
		return 0, errors.New("unmatched braces in the pattern")
	}
	return count, nil
}
