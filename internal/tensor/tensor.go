package tensor

import (
	"errors"
	"fmt"
)

// GradFn is the backward half of the operation that produced a tensor.
// It is implemented by the differentiable operations in package autodiff.
type GradFn interface {
	// Name identifies the operation in error messages.
	Name() string

	// Inputs returns the tensors the operation read.
	Inputs() []*Tensor

	// Backward maps the gradient of the output to one gradient per input,
	// aligned with Inputs. A nil entry means no gradient flows to that input.
	Backward(outputGrad []float64) [][]float64
}

var (
	// ErrNonScalarBackward is returned when Backward is called on a tensor
	// holding more than one element.
	ErrNonScalarBackward = errors.New("tensor: backward requires a single-element output")

	// ErrNoGraph is returned when Backward is called on a tensor that is not
	// connected to any tensor requiring gradients.
	ErrNoGraph = errors.New("tensor: output does not require grad and has no grad function")
)

// Tensor is a host-resident n-dimensional array of floating point values.
//
// The gradient slot is explicit: it is nil until a backward pass reaches a
// leaf tensor created with RequireGrad, and HasGrad reports its presence.
type Tensor struct {
	data  []float64
	shape Shape
	dtype DataType

	requiresGrad bool
	grad         *Tensor
	gradFn       GradFn
}

// New creates a tensor that takes ownership of data. Values are rounded to
// the precision of dtype.
func New(data []float64, shape Shape, dtype DataType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	for i, v := range data {
		data[i] = dtype.Round(v)
	}
	return &Tensor{
		data:  data,
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// FromOp creates a non-leaf tensor produced by fn. It requires grad when any
// of fn's inputs does.
func FromOp(data []float64, shape Shape, dtype DataType, fn GradFn) *Tensor {
	t := &Tensor{
		data:  data,
		shape: shape.Clone(),
		dtype: dtype,
	}
	for i, v := range data {
		data[i] = dtype.Round(v)
	}
	for _, in := range fn.Inputs() {
		if in != nil && in.requiresGrad {
			t.requiresGrad = true
			t.gradFn = fn
			break
		}
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the underlying values without copying.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// ToHost returns a detached copy of the values.
func (t *Tensor) ToHost() []float64 {
	out := make([]float64, len(t.data))
	copy(out, t.data)
	return out
}

// Item returns the value of a single-element tensor.
// Panics if the tensor holds more than one element.
func (t *Tensor) Item() float64 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("Item() only works for single-element tensors, got shape %v", t.shape))
	}
	return t.data[0]
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) At(indices ...int) float64 {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}

	offset := 0
	strides := t.shape.ComputeStrides()
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * strides[i]
	}
	return t.data[offset]
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v", t.dtype, t.shape)
}

// RequireGrad marks this tensor as a leaf whose gradient slot is populated
// by Backward. Returns the tensor itself for method chaining.
func (t *Tensor) RequireGrad() *Tensor {
	t.requiresGrad = true
	return t
}

// RequiresGrad returns true if gradients flow to this tensor.
func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

// IsLeaf reports whether the tensor was created by the user rather than by
// a differentiable operation.
func (t *Tensor) IsLeaf() bool {
	return t.gradFn == nil
}

// Grad returns the gradient slot, or nil if it is unset.
func (t *Tensor) Grad() *Tensor {
	return t.grad
}

// HasGrad reports whether the gradient slot is populated.
func (t *Tensor) HasGrad() bool {
	return t.grad != nil
}

// Clone returns a deep copy of the values without gradient tracking.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		data:  t.ToHost(),
		shape: t.shape.Clone(),
		dtype: t.dtype,
	}
}

// ZeroGrad resets the gradient slot to zeros in place.
// It is a no-op when the slot is unset.
func (t *Tensor) ZeroGrad() {
	if t == nil || t.grad == nil {
		return
	}
	clear(t.grad.data)
}

// ZeroGrad zeroes the gradient slot of every tensor that has one and skips
// the rest, nil tensors included.
func ZeroGrad(xs ...*Tensor) {
	for _, x := range xs {
		x.ZeroGrad()
	}
}

// accumulateGrad adds g into the gradient slot, allocating it on first use.
func (t *Tensor) accumulateGrad(g []float64) {
	if t.grad == nil {
		t.grad = &Tensor{
			data:  make([]float64, len(t.data)),
			shape: t.shape.Clone(),
			dtype: t.dtype,
		}
	}
	dst := t.grad.data
	for i := range dst {
		dst[i] = t.dtype.Round(dst[i] + g[i])
	}
}

// CountNonFinite returns the number of NaN or infinite entries in values.
func CountNonFinite(values []float64) int {
	n := 0
	for _, v := range values {
		if !isFinite(v) {
			n++
		}
	}
	return n
}
