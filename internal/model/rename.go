package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateRenamePattern checks that a rename pattern only uses the {n} and
// {orig} fields and that its braces balance. "{{" and "}}" are literal braces.
func ValidateRenamePattern(pattern string) error {
	_, err := expandPattern(pattern, 1, "")
	return err
}

// Rename expands a pattern for board n (1-based) and the original name.
// Invalid patterns return the original name unchanged.
func Rename(pattern string, n int, orig string) string {
	out, err := expandPattern(pattern, n, orig)
	if err != nil {
		return orig
	}
	return out
}

func expandPattern(pattern string, n int, orig string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '{':
			if i+1 < len(pattern) && pattern[i+1] == '{' {
				sb.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(pattern[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed '{' in %q", ErrInvalidPattern, pattern)
			}
			field := pattern[i+1 : i+end]
			switch field {
			case "n":
				sb.WriteString(strconv.Itoa(n))
			case "orig":
				sb.WriteString(orig)
			default:
				return "", fmt.Errorf("%w: unknown field %q in %q", ErrInvalidPattern, field, pattern)
			}
			i += end
		case '}':
			if i+1 < len(pattern) && pattern[i+1] == '}' {
				sb.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: single '}' in %q", ErrInvalidPattern, pattern)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}
