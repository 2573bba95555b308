package bench

import (
	"github.com/born-ml/gradbench/internal/autodiff"
	"github.com/born-ml/gradbench/internal/tensor"
)

// Float64 wraps fn so every Float32 argument is cast to Float64 before the
// call. The cast is differentiable, so gradients still reach the original
// Float32 tensors. Float64 arguments and nil pass through unchanged.
func Float64(fn Forward) Forward {
	return func(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
		cast := make([]*tensor.Tensor, len(inputs))
		for i, x := range inputs {
			if x != nil && x.DType() == tensor.Float32 {
				cast[i] = autodiff.Cast(x, tensor.Float64)
				continue
			}
			cast[i] = x
		}
		return fn(cast...)
	}
}
