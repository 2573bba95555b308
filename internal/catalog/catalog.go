// Package catalog registers the demonstration implementations compared and
// timed by the gradbench command: pairs of naive and numerically stable
// formulations of common reductions, plus float64 references of each.
package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/born-ml/gradbench/internal/autodiff"
	"github.com/born-ml/gradbench/internal/bench"
	"github.com/born-ml/gradbench/internal/tensor"
)

// Float64Suffix marks the float64 reference of a variant.
const Float64Suffix = "64"

var (
	// ErrUnknownOp is returned by Lookup for an unregistered operation.
	ErrUnknownOp = errors.New("catalog: unknown op")

	// ErrUnknownVariant is returned by Lookup for an unregistered variant.
	ErrUnknownVariant = errors.New("catalog: unknown variant")

	// ErrNoInput is returned when an implementation is called without x.
	ErrNoInput = errors.New("catalog: missing input tensor")
)

var registry = map[string]map[string]bench.Forward{
	"logsumexp": {
		"naive":  logSumExpNaive,
		"stable": logSumExpStable,
	},
	"softplus": {
		"naive":  softplusNaive,
		"stable": softplusStable,
	},
	"sigmoid": {
		"naive":   sigmoidNaive,
		"builtin": sigmoidBuiltin,
	},
}

func init() {
	for _, variants := range registry {
		for _, name := range slices.Collect(maps.Keys(variants)) {
			variants[name+Float64Suffix] = bench.Float64(variants[name])
		}
	}
}

// Ops returns the registered operation names in sorted order.
func Ops() []string {
	return slices.Sorted(maps.Keys(registry))
}

// Variants returns the variants of op in sorted order, or nil if op is not
// registered.
func Variants(op string) []string {
	variants, ok := registry[op]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(variants))
}

// Lookup returns the implementation of op named variant.
func Lookup(op, variant string) (bench.Forward, error) {
	variants, ok := registry[op]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownOp, op, Ops())
	}
	fn, ok := variants[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%q (have %v)", ErrUnknownVariant, op, variant, Variants(op))
	}
	return fn, nil
}

func first(inputs []*tensor.Tensor) (*tensor.Tensor, error) {
	if len(inputs) == 0 || inputs[0] == nil {
		return nil, ErrNoInput
	}
	return inputs[0], nil
}

// log(Σ exp(x)); overflows once any x exceeds the dtype's exp range.
func logSumExpNaive(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	x, err := first(inputs)
	if err != nil {
		return nil, err
	}
	return autodiff.Log(autodiff.Sum(autodiff.Exp(x))), nil
}

// m + log(Σ exp(x - m)) with m = max(x) held constant.
func logSumExpStable(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	x, err := first(inputs)
	if err != nil {
		return nil, err
	}
	m := autodiff.Max(x).Item()
	shifted := autodiff.Exp(autodiff.AddScalar(x, -m))
	return autodiff.AddScalar(autodiff.Log(autodiff.Sum(shifted)), m), nil
}

// Σ log(1 + exp(x)).
func softplusNaive(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	x, err := first(inputs)
	if err != nil {
		return nil, err
	}
	return autodiff.Sum(autodiff.Log(autodiff.AddScalar(autodiff.Exp(x), 1))), nil
}

// Σ relu(x) + log1p(exp(-|x|)).
func softplusStable(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	x, err := first(inputs)
	if err != nil {
		return nil, err
	}
	tail := autodiff.Log1p(autodiff.Exp(autodiff.Neg(autodiff.Abs(x))))
	y, err := autodiff.Add(autodiff.ReLU(x), tail)
	if err != nil {
		return nil, err
	}
	return autodiff.Sum(y), nil
}

// Σ 1 / (1 + exp(-x)).
func sigmoidNaive(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	x, err := first(inputs)
	if err != nil {
		return nil, err
	}
	ones, err := tensor.Ones(x.Shape(), x.DType())
	if err != nil {
		return nil, err
	}
	y, err := autodiff.Div(ones, autodiff.AddScalar(autodiff.Exp(autodiff.Neg(x)), 1))
	if err != nil {
		return nil, err
	}
	return autodiff.Sum(y), nil
}

// Σ sigmoid(x) with the fused derivative.
func sigmoidBuiltin(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	x, err := first(inputs)
	if err != nil {
		return nil, err
	}
	return autodiff.Sum(autodiff.Sigmoid(x)), nil
}
