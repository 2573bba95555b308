// Package tensor provides the tagged tensor type used by gradbench: host
// values, a dtype tag, and an optional gradient slot.
package tensor

import "math"

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// Round converts v to the precision of the data type.
// Float32 values are rounded through float32, Float64 values pass through.
func (dt DataType) Round(v float64) float64 {
	if dt == Float32 {
		return float64(float32(v))
	}
	return v
}

// Promote returns the wider of two data types.
func Promote(a, b DataType) DataType {
	if a == Float64 || b == Float64 {
		return Float64
	}
	return Float32
}

// ParseDataType maps "float32"/"f32" and "float64"/"f64" to a DataType.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float32", "f32":
		return Float32, true
	case "float64", "f64":
		return Float64, true
	default:
		return Float32, false
	}
}

// isFinite reports whether v is neither NaN nor ±Inf.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
