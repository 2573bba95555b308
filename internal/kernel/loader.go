// Package kernel loads GPU kernel sources with injected preprocessor
// macros and hands them to a compiler supplied by the caller.
package kernel

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Define is a single `#define NAME VALUE` macro.
type Define struct {
	Name  string
	Value any
}

// String renders the macro as a preprocessor line.
func (d Define) String() string {
	return "#define " + d.Name + " " + FormatValue(d.Value)
}

// Compiler turns kernel source text into a module handle of type M.
// The handle is owned by the caller.
type Compiler[M any] interface {
	Compile(source string) (M, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc[M any] func(source string) (M, error)

// Compile calls f(source).
func (f CompilerFunc[M]) Compile(source string) (M, error) {
	return f(source)
}

// Source reads the kernel file at path and prepends one define line per
// entry of defines, in order:
//
//	#define N 4
//	#define EPS 1e-05
//	<file contents>
//
// A missing file yields an error wrapping fs.ErrNotExist.
func Source(path string, defines ...Define) (string, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read kernel source: %w", err)
	}

	lines := make([]string, 0, len(defines)+1)
	for _, d := range defines {
		lines = append(lines, d.String())
	}
	lines = append(lines, string(code))
	return strings.Join(lines, "\n"), nil
}

// Load builds the source with Source and compiles it with c. On failure it
// returns the zero handle and the compiler's error, wrapped with the path.
func Load[M any](c Compiler[M], path string, defines ...Define) (M, error) {
	var zero M

	source, err := Source(path, defines...)
	if err != nil {
		return zero, err
	}

	module, err := c.Compile(source)
	if err != nil {
		return zero, fmt.Errorf("compile %s: %w", path, err)
	}
	return module, nil
}

// FormatValue renders a macro value. Floats use the shortest round-trip
// form with a decimal point or exponent (1e-05, 2.0, 1.5e+20), integers
// print as-is, booleans become 1 or 0, and anything else goes through
// fmt.Sprint.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "1"
		}
		return "0"
	case float64:
		return formatFloat(x, 64)
	case float32:
		return formatFloat(float64(x), 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// formatFloat switches to exponent notation outside [1e-4, 1e16), the same
// thresholds as the shortest-repr convention used by numeric tooling.
func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	exp := strconv.FormatFloat(f, 'e', -1, bitSize)
	if f != 0 {
		e, err := strconv.Atoi(exp[strings.IndexByte(exp, 'e')+1:])
		if err == nil && (e < -4 || e >= 16) {
			return exp
		}
	}

	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
