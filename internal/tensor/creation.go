package tensor

import (
	"fmt"
	"math/rand"
)

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape, dtype DataType) (*Tensor, error) {
	return New(append([]float64(nil), data...), shape, dtype)
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float64, dtype DataType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	data := make([]float64, shape.NumElements())
	for i := range data {
		data[i] = value
	}
	return New(data, shape, dtype)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType) (*Tensor, error) {
	return Full(shape, 0, dtype)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType) (*Tensor, error) {
	return Full(shape, 1, dtype)
}

// Scalar creates a zero-dimensional tensor.
func Scalar(value float64, dtype DataType) *Tensor {
	t, _ := New([]float64{value}, Shape{}, dtype)
	return t
}

// Randn creates a tensor with values drawn from the standard normal
// distribution of rng.
func Randn(shape Shape, dtype DataType, rng *rand.Rand) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	data := make([]float64, shape.NumElements())
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return New(data, shape, dtype)
}
