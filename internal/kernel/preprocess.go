package kernel

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadDefine is returned for a define that is not `#define NAME [VALUE]`
// with NAME a plain identifier.
var ErrBadDefine = errors.New("kernel: malformed define")

// ExpandDefines applies object-like `#define NAME VALUE` lines for targets
// without a preprocessor, such as WGSL. Define lines are blanked so line
// numbers in compiler diagnostics still match the input, and every later
// whole-word occurrence of NAME is replaced by VALUE. A value may refer to
// macros defined above it. Function-like macros are rejected.
func ExpandDefines(source string) (string, error) {
	lines := strings.Split(source, "\n")
	macros := make(map[string]string)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#define") {
			name, value, err := parseDefineLine(trimmed)
			if err != nil {
				return "", fmt.Errorf("line %d: %w", i+1, err)
			}
			macros[name] = substitute(value, macros)
			lines[i] = ""
			continue
		}
		if len(macros) > 0 {
			lines[i] = substitute(line, macros)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func parseDefineLine(line string) (string, string, error) {
	rest := strings.TrimPrefix(line, "#define")
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return "", "", fmt.Errorf("%w: %q", ErrBadDefine, line)
	}
	rest = strings.TrimSpace(rest)

	end := identEnd(rest, 0)
	if end == 0 {
		return "", "", fmt.Errorf("%w: %q", ErrBadDefine, line)
	}
	if end < len(rest) && rest[end] == '(' {
		return "", "", fmt.Errorf("%w: function-like macro in %q", ErrBadDefine, line)
	}
	if end < len(rest) && rest[end] != ' ' && rest[end] != '\t' {
		return "", "", fmt.Errorf("%w: %q", ErrBadDefine, line)
	}
	return rest[:end], strings.TrimSpace(rest[end:]), nil
}

// substitute replaces identifier tokens of s found in macros.
func substitute(s string, macros map[string]string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case isIdentStart(c):
			end := identEnd(s, i)
			tok := s[i:end]
			if v, ok := macros[tok]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(tok)
			}
			i = end
		case isDigit(c):
			// Skip numeric literals whole so suffixes like 1u or 2e5f are
			// never mistaken for identifiers.
			end := i + 1
			for end < len(s) && (isIdentPart(s[end]) || s[end] == '.') {
				end++
			}
			b.WriteString(s[i:end])
			i = end
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// identEnd returns the end of the identifier starting at s[i], or i if none.
func identEnd(s string, i int) int {
	if i >= len(s) || !isIdentStart(s[i]) {
		return i
	}
	j := i + 1
	for j < len(s) && isIdentPart(s[j]) {
		j++
	}
	return j
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// ParseDefine parses a command-line macro of the form NAME=VALUE or NAME.
// A bare NAME defines it as 1. VALUE is kept as written, trimmed of
// surrounding space, so it reaches the kernel text unchanged.
func ParseDefine(s string) (Define, error) {
	name, value, hasValue := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" || identEnd(name, 0) != len(name) {
		return Define{}, fmt.Errorf("%w: invalid name in %q", ErrBadDefine, s)
	}
	if !hasValue {
		return Define{Name: name, Value: 1}, nil
	}
	return Define{Name: name, Value: strings.TrimSpace(value)}, nil
}
