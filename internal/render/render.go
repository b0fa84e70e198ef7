// Package render substitutes {name} placeholders in message bodies.
//
// Rendering never partially succeeds: on any problem the original body is
// returned together with an error describing why, so callers can log the
// condition and keep sending the unmodified text.
package render

import (
	"fmt"
	"strings"
)

type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("template placeholder %q not found in data", e.Key)
}

type SyntaxError struct {
	Pos    int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax error at %d: %s", e.Pos, e.Reason)
}

// Render replaces every {name} in body with data[name]. "{{" and "}}" are
// literal braces. Format specs, conversions, attribute and index lookups and
// positional fields are not supported and count as syntax errors.
func Render(body string, data map[string]any) (string, error) {
	var b strings.Builder
	b.Grow(len(body))

	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch ch {
		case '{':
			if i+1 < len(body) && body[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(body[i+1:], "{}")
			if end < 0 || body[i+1+end] == '{' {
				return body, &SyntaxError{Pos: i, Reason: "unterminated placeholder"}
			}
			name := body[i+1 : i+1+end]
			if err := checkName(name, i); err != nil {
				return body, err
			}
			v, ok := data[name]
			if !ok {
				return body, &MissingKeyError{Key: name}
			}
			b.WriteString(formatValue(v))
			i += end + 1
		case '}':
			if i+1 < len(body) && body[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return body, &SyntaxError{Pos: i, Reason: "single '}' encountered"}
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), nil
}

func checkName(name string, pos int) error {
	if name == "" {
		return &SyntaxError{Pos: pos, Reason: "positional placeholder"}
	}
	if strings.ContainsAny(name, ":!.[]") {
		return &SyntaxError{Pos: pos, Reason: fmt.Sprintf("unsupported placeholder %q", name)}
	}
	if strings.Trim(name, "0123456789") == "" {
		return &SyntaxError{Pos: pos, Reason: "positional placeholder"}
	}
	return nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
