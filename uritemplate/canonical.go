package uritemplate

import (
	"strings"

	"github.com/teranos/uritemplates/errors"
)

// legacyCodes are the single-letter fields the %x form may name.
const legacyCodes = "YymbdjHMSvxX"

// MakeCanonical rewrites the legacy %{field,opt=val} and %x syntax to
// $(field;opt=val) and $x, and turns every * outside a field into $x.
// Canonical fields are copied through untouched.
func MakeCanonical(spec string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(spec) + 8)

	for i := 0; i < len(spec); i++ {
		c := spec[i]
		switch c {
		case '*':
			sb.WriteString("$x")

		case '$':
			if i+1 < len(spec) && spec[i+1] == '(' {
				end := strings.IndexByte(spec[i:], ')')
				if end < 0 {
					// Compile reports the unterminated field
					sb.WriteString(spec[i:])
					return sb.String(), nil
				}
				sb.WriteString(spec[i : i+end+1])
				i += end
				continue
			}
			sb.WriteByte(c)

		case '%':
			if i+1 >= len(spec) {
				return "", legacyError(spec, i, "%", "dangling %")
			}
			next := spec[i+1]
			switch {
			case next == '{':
				end := strings.IndexByte(spec[i+2:], '}')
				if end < 0 {
					return "", legacyError(spec, i, spec[i:], "unterminated %{")
				}
				content := spec[i+2 : i+2+end]
				if content == "" {
					return "", legacyError(spec, i, "%{}", "empty %{}")
				}
				sb.WriteString("$(")
				sb.WriteString(strings.Join(splitQualifiers(content), ";"))
				sb.WriteByte(')')
				i += 2 + end
			case strings.IndexByte(legacyCodes, next) >= 0:
				sb.WriteByte('$')
				sb.WriteByte(next)
				i++
			default:
				return "", legacyError(spec, i, spec[i:i+2], "unsupported legacy code")
			}

		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}

func legacyError(spec string, pos int, token, reason string) error {
	err := errors.NewCompileError(errors.ErrUnsupportedLegacySyntax, "%s", reason)
	return newTemplateError(ErrorKindCompile, spec, err).
		WithPosition(pos).
		WithToken(token).
		WithSuggestion("use the $(field;qualifier=value) form")
}

// listQualifiers take comma-separated values themselves.
var listQualifiers = []string{"values=", "names="}

// splitQualifiers splits field content into the field name followed by its
// qualifiers. Qualifiers are separated by ';', or by ',' when the content
// holds no ';'. In the comma form a piece without '=' following a list
// qualifier continues that list.
func splitQualifiers(content string) []string {
	if strings.Contains(content, ";") {
		return strings.Split(content, ";")
	}
	raw := strings.Split(content, ",")
	parts := []string{raw[0]}
	for _, p := range raw[1:] {
		last := parts[len(parts)-1]
		if len(parts) > 1 && !strings.Contains(p, "=") && isListQualifier(last) {
			parts[len(parts)-1] = last + "," + p
			continue
		}
		parts = append(parts, p)
	}
	return parts
}

func isListQualifier(part string) bool {
	for _, prefix := range listQualifiers {
		if strings.HasPrefix(part, prefix) {
			return true
		}
	}
	return false
}
