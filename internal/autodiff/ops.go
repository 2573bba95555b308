package autodiff

import (
	"math"

	"github.com/born-ml/gradbench/internal/parallel"
	"github.com/born-ml/gradbench/internal/tensor"
)

// unaryRule describes an element-wise function and its derivative.
// deriv receives the input value and the forward output value.
type unaryRule struct {
	name    string
	forward func(x float64) float64
	deriv   func(x, y float64) float64
}

var (
	expRule = unaryRule{
		name:    "Exp",
		forward: math.Exp,
		deriv:   func(_, y float64) float64 { return y },
	}
	logRule = unaryRule{
		name:    "Log",
		forward: math.Log,
		deriv:   func(x, _ float64) float64 { return 1 / x },
	}
	log1pRule = unaryRule{
		name:    "Log1p",
		forward: math.Log1p,
		deriv:   func(x, _ float64) float64 { return 1 / (1 + x) },
	}
	absRule = unaryRule{
		name:    "Abs",
		forward: math.Abs,
		deriv: func(x, _ float64) float64 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			default:
				return 0
			}
		},
	}
	reluRule = unaryRule{
		name: "ReLU",
		forward: func(x float64) float64 {
			if x > 0 {
				return x
			}
			return 0
		},
		deriv: func(x, _ float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		},
	}
	sigmoidRule = unaryRule{
		name: "Sigmoid",
		forward: func(x float64) float64 {
			if x >= 0 {
				return 1 / (1 + math.Exp(-x))
			}
			e := math.Exp(x)
			return e / (1 + e)
		},
		deriv: func(_, y float64) float64 { return y * (1 - y) },
	}
	tanhRule = unaryRule{
		name:    "Tanh",
		forward: math.Tanh,
		deriv:   func(_, y float64) float64 { return 1 - y*y },
	}
	squareRule = unaryRule{
		name:    "Square",
		forward: func(x float64) float64 { return x * x },
		deriv:   func(x, _ float64) float64 { return 2 * x },
	}
	sqrtRule = unaryRule{
		name:    "Sqrt",
		forward: math.Sqrt,
		deriv:   func(_, y float64) float64 { return 0.5 / y },
	}
)

// unaryOp records an element-wise function for the backward pass.
//
// Backward pass:
//   - grad_x[i] = outputGrad[i] * f'(x[i])
type unaryOp struct {
	rule   unaryRule
	input  *tensor.Tensor
	output []float64
}

func unary(rule unaryRule, x *tensor.Tensor) *tensor.Tensor {
	in := x.Data()
	out := make([]float64, len(in))
	parallel.Range(len(in), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = rule.forward(in[i])
		}
	})
	op := &unaryOp{rule: rule, input: x}
	result := tensor.FromOp(out, x.Shape(), x.DType(), op)
	op.output = result.Data()
	return result
}

func (op *unaryOp) Name() string { return op.rule.name }

func (op *unaryOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input} }

func (op *unaryOp) Backward(outputGrad []float64) [][]float64 {
	x := op.input.Data()
	g := make([]float64, len(x))
	parallel.Range(len(x), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			g[i] = outputGrad[i] * op.rule.deriv(x[i], op.output[i])
		}
	})
	return [][]float64{g}
}

// binaryKind selects the element-wise binary operation.
type binaryKind int

const (
	addOp binaryKind = iota
	subOp
	mulOp
	divOp
)

var binaryNames = [...]string{addOp: "Add", subOp: "Sub", mulOp: "Mul", divOp: "Div"}

// binaryOp records an element-wise binary operation.
//
// Backward pass:
//   - Add: grad_a = g, grad_b = g
//   - Sub: grad_a = g, grad_b = -g
//   - Mul: grad_a = g * b, grad_b = g * a
//   - Div: grad_a = g / b, grad_b = -g * a / b²
type binaryOp struct {
	kind binaryKind
	a, b *tensor.Tensor
}

func binary(kind binaryKind, a, b *tensor.Tensor) (*tensor.Tensor, error) {
	if err := checkSameShape(binaryNames[kind], a, b); err != nil {
		return nil, err
	}
	av, bv := a.Data(), b.Data()
	out := make([]float64, len(av))
	parallel.Range(len(av), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			switch kind {
			case addOp:
				out[i] = av[i] + bv[i]
			case subOp:
				out[i] = av[i] - bv[i]
			case mulOp:
				out[i] = av[i] * bv[i]
			case divOp:
				out[i] = av[i] / bv[i]
			}
		}
	})
	op := &binaryOp{kind: kind, a: a, b: b}
	return tensor.FromOp(out, a.Shape(), tensor.Promote(a.DType(), b.DType()), op), nil
}

func (op *binaryOp) Name() string { return binaryNames[op.kind] }

func (op *binaryOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.a, op.b} }

func (op *binaryOp) Backward(outputGrad []float64) [][]float64 {
	av, bv := op.a.Data(), op.b.Data()
	ga := make([]float64, len(av))
	gb := make([]float64, len(bv))
	parallel.Range(len(outputGrad), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			g := outputGrad[i]
			switch op.kind {
			case addOp:
				ga[i], gb[i] = g, g
			case subOp:
				ga[i], gb[i] = g, -g
			case mulOp:
				ga[i], gb[i] = g*bv[i], g*av[i]
			case divOp:
				ga[i] = g / bv[i]
				gb[i] = -g * av[i] / (bv[i] * bv[i])
			}
		}
	})
	return [][]float64{ga, gb}
}

// reduceOp records a full reduction scaled by a constant (1 for Sum,
// 1/n for Mean).
//
// Backward pass:
//   - grad_x[i] = outputGrad * scale
type reduceOp struct {
	name  string
	input *tensor.Tensor
	scale float64
}

func reduce(name string, x *tensor.Tensor, scale float64) *tensor.Tensor {
	var s float64
	for _, v := range x.Data() {
		s += v
	}
	op := &reduceOp{name: name, input: x, scale: scale}
	return tensor.FromOp([]float64{s * scale}, tensor.Shape{}, x.DType(), op)
}

func (op *reduceOp) Name() string { return op.name }

func (op *reduceOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input} }

func (op *reduceOp) Backward(outputGrad []float64) [][]float64 {
	g := make([]float64, op.input.NumElements())
	for i := range g {
		g[i] = outputGrad[0] * op.scale
	}
	return [][]float64{g}
}

// castOp records a dtype conversion. The gradient passes through unchanged;
// the input's gradient slot rounds it to the input's dtype.
type castOp struct {
	input *tensor.Tensor
}

func (op *castOp) Name() string { return "Cast" }

func (op *castOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input} }

func (op *castOp) Backward(outputGrad []float64) [][]float64 {
	return [][]float64{append([]float64(nil), outputGrad...)}
}
