package crowdin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type envelopeKind int

const (
	kindData envelopeKind = iota + 1
	kindPage
	kindError
	kindErrors
)

func (k envelopeKind) String() string {
	switch k {
	case kindData:
		return "data"
	case kindPage:
		return "page"
	case kindError:
		return "error"
	case kindErrors:
		return "errors"
	default:
		return "unknown"
	}
}

// Pagination is the page window echoed by list endpoints.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type apiError struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

type apiFieldError struct {
	Key    string     `json:"key"`
	Errors []apiError `json:"errors"`
}

// envelope is a classified response body. Exactly the fields of Kind are set.
type envelope struct {
	Kind       envelopeKind
	Data       json.RawMessage
	Items      []json.RawMessage
	Pagination Pagination
	Error      apiError
	Errors     []apiFieldError
}

// Message renders an error envelope for humans.
func (e envelope) Message() string {
	switch e.Kind {
	case kindError:
		return e.Error.Message
	case kindErrors:
		parts := make([]string, 0, len(e.Errors))
		for _, fe := range e.Errors {
			msgs := make([]string, 0, len(fe.Errors))
			for _, inner := range fe.Errors {
				msgs = append(msgs, inner.Message)
			}
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Key, strings.Join(msgs, ", ")))
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

var errUnknownShape = errors.New("unrecognized response shape")

func decodeEnvelope(body []byte) (envelope, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return envelope{}, fmt.Errorf("decoding response: %w", err)
	}

	if raw, ok := probe["error"]; ok {
		var e apiError
		if err := json.Unmarshal(raw, &e); err != nil {
			return envelope{}, fmt.Errorf("decoding error object: %w", err)
		}
		return envelope{Kind: kindError, Error: e}, nil
	}

	if raw, ok := probe["errors"]; ok {
		var wrapped []struct {
			Error apiFieldError `json:"error"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return envelope{}, fmt.Errorf("decoding errors list: %w", err)
		}
		out := envelope{Kind: kindErrors, Errors: make([]apiFieldError, 0, len(wrapped))}
		for _, w := range wrapped {
			out.Errors = append(out.Errors, w.Error)
		}
		return out, nil
	}

	raw, ok := probe["data"]
	if !ok {
		return envelope{}, errUnknownShape
	}

	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var wrapped []struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return envelope{}, fmt.Errorf("decoding page: %w", err)
		}
		out := envelope{Kind: kindPage, Items: make([]json.RawMessage, 0, len(wrapped))}
		for _, w := range wrapped {
			out.Items = append(out.Items, w.Data)
		}
		if p, ok := probe["pagination"]; ok {
			if err := json.Unmarshal(p, &out.Pagination); err != nil {
				return envelope{}, fmt.Errorf("decoding pagination: %w", err)
			}
		}
		return out, nil
	}

	if len(trimmed) > 0 && trimmed[0] == '{' {
		return envelope{Kind: kindData, Data: raw}, nil
	}
	return envelope{}, errUnknownShape
}

func decodeData[T any](body []byte) (T, error) {
	var out T
	env, err := decodeEnvelope(body)
	if err != nil {
		return out, err
	}
	if env.Kind != kindData {
		return out, fmt.Errorf("expected data object, got %s", env.Kind)
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decoding data: %w", err)
	}
	return out, nil
}

func decodePage[T any](body []byte) ([]T, error) {
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if env.Kind != kindPage {
		return nil, fmt.Errorf("expected data list, got %s", env.Kind)
	}
	out := make([]T, 0, len(env.Items))
	for _, item := range env.Items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("decoding list item: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}
