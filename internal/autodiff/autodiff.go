// Package autodiff implements the differentiable operations that build the
// computation graph walked by tensor.Tensor.Backward.
//
// Each function computes its forward result eagerly on the host and, when
// any input requires grad, attaches an operation that knows its backward
// rule:
//
//	x, _ := tensor.FromSlice([]float64{2}, tensor.Shape{1}, tensor.Float32)
//	x.RequireGrad()
//	y, _ := autodiff.Mul(x, x) // y = x²
//	s := autodiff.Sum(y)
//	_ = s.Backward()
//	fmt.Println(x.Grad().Data()) // dy/dx = 2x = [4]
//
// Binary operations require equal shapes; scalar operands go through
// AddScalar and MulScalar.
package autodiff

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/gradbench/internal/tensor"
)

// ErrShapeMismatch is returned when element-wise operands differ in shape.
var ErrShapeMismatch = errors.New("autodiff: shape mismatch")

func checkSameShape(name string, a, b *tensor.Tensor) error {
	if !a.Shape().Equal(b.Shape()) {
		return fmt.Errorf("%w: %s of %v and %v", ErrShapeMismatch, name, a.Shape(), b.Shape())
	}
	return nil
}

// Add returns a + b.
func Add(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return binary(addOp, a, b)
}

// Sub returns a - b.
func Sub(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return binary(subOp, a, b)
}

// Mul returns a * b element-wise.
func Mul(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return binary(mulOp, a, b)
}

// Div returns a / b element-wise.
func Div(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return binary(divOp, a, b)
}

// AddScalar returns x + c.
func AddScalar(x *tensor.Tensor, c float64) *tensor.Tensor {
	return unary(unaryRule{
		name:    "AddScalar",
		forward: func(v float64) float64 { return v + c },
		deriv:   func(_, _ float64) float64 { return 1 },
	}, x)
}

// MulScalar returns x * c.
func MulScalar(x *tensor.Tensor, c float64) *tensor.Tensor {
	return unary(unaryRule{
		name:    "MulScalar",
		forward: func(v float64) float64 { return v * c },
		deriv:   func(_, _ float64) float64 { return c },
	}, x)
}

// Neg returns -x.
func Neg(x *tensor.Tensor) *tensor.Tensor {
	return MulScalar(x, -1)
}

// Exp returns e^x.
func Exp(x *tensor.Tensor) *tensor.Tensor {
	return unary(expRule, x)
}

// Log returns the natural logarithm of x.
func Log(x *tensor.Tensor) *tensor.Tensor {
	return unary(logRule, x)
}

// Log1p returns log(1 + x).
func Log1p(x *tensor.Tensor) *tensor.Tensor {
	return unary(log1pRule, x)
}

// Abs returns |x|. The subgradient at zero is zero.
func Abs(x *tensor.Tensor) *tensor.Tensor {
	return unary(absRule, x)
}

// ReLU returns max(x, 0).
func ReLU(x *tensor.Tensor) *tensor.Tensor {
	return unary(reluRule, x)
}

// Sigmoid returns 1 / (1 + e^-x).
func Sigmoid(x *tensor.Tensor) *tensor.Tensor {
	return unary(sigmoidRule, x)
}

// Tanh returns the hyperbolic tangent of x.
func Tanh(x *tensor.Tensor) *tensor.Tensor {
	return unary(tanhRule, x)
}

// Square returns x².
func Square(x *tensor.Tensor) *tensor.Tensor {
	return unary(squareRule, x)
}

// Sqrt returns √x.
func Sqrt(x *tensor.Tensor) *tensor.Tensor {
	return unary(sqrtRule, x)
}

// Sum reduces x to a scalar.
func Sum(x *tensor.Tensor) *tensor.Tensor {
	return reduce("Sum", x, 1)
}

// Mean reduces x to its arithmetic mean.
func Mean(x *tensor.Tensor) *tensor.Tensor {
	return reduce("Mean", x, 1/float64(x.NumElements()))
}

// Max returns the largest element of x as a scalar cut from the graph.
// NaN propagates.
func Max(x *tensor.Tensor) *tensor.Tensor {
	m := math.Inf(-1)
	for _, v := range x.Data() {
		m = math.Max(m, v)
	}
	return tensor.Scalar(m, x.DType())
}

// Cast converts x to dtype. Gradients flow back to x in x's own dtype.
func Cast(x *tensor.Tensor, dtype tensor.DataType) *tensor.Tensor {
	op := &castOp{input: x}
	return tensor.FromOp(x.ToHost(), x.Shape(), dtype, op)
}
