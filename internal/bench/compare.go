package bench

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/born-ml/gradbench/internal/logger"
	"github.com/born-ml/gradbench/internal/tensor"
)

var (
	// ErrNoGradient is returned when a backward pass leaves the compared
	// input without a gradient.
	ErrNoGradient = errors.New("bench: input has no gradient after backward")

	// ErrLengthMismatch is returned when compared arrays differ in length.
	ErrLengthMismatch = errors.New("bench: compared arrays differ in length")
)

// Comparison holds the host copies produced by Compare, indexed A then B.
type Comparison struct {
	Forward  [2][]float64
	Gradient [2][]float64

	// ForwardDiff and GradientDiff are the maximum absolute element-wise
	// differences between the A and B entries. NaN propagates.
	ForwardDiff  float64
	GradientDiff float64
}

// Compare runs implA and then implB on (inputs, args...), backpropagates
// each output into inputs, and prints the maximum absolute differences of
// the forward outputs and of the input gradients to w:
//
//	fwd diff: 0.00e+00
//	bwd diff: 1.19e-07
//
// The gradient slot of inputs is zeroed after each implementation, so it is
// left zeroed on return; its values are untouched. No tolerance is applied.
func Compare(w io.Writer, implA, implB Forward, inputs *tensor.Tensor, args ...*tensor.Tensor) (*Comparison, error) {
	callArgs := append([]*tensor.Tensor{inputs}, args...)

	var cmp Comparison
	for i, impl := range [2]Forward{implA, implB} {
		label := string(rune('A' + i))

		out, err := impl(callArgs...)
		if err != nil {
			return nil, fmt.Errorf("impl %s forward: %w", label, err)
		}
		if err := out.Backward(); err != nil {
			return nil, fmt.Errorf("impl %s backward: %w", label, err)
		}
		if !inputs.HasGrad() {
			return nil, fmt.Errorf("impl %s: %w", label, ErrNoGradient)
		}

		cmp.Forward[i] = out.ToHost()
		cmp.Gradient[i] = inputs.Grad().ToHost()
		tensor.ZeroGrad(inputs)
	}

	var err error
	if cmp.ForwardDiff, err = MaxAbsDiff(cmp.Forward[0], cmp.Forward[1]); err != nil {
		return nil, fmt.Errorf("forward outputs: %w", err)
	}
	if cmp.GradientDiff, err = MaxAbsDiff(cmp.Gradient[0], cmp.Gradient[1]); err != nil {
		return nil, fmt.Errorf("gradients: %w", err)
	}

	if n := tensor.CountNonFinite(cmp.Forward[0]) + tensor.CountNonFinite(cmp.Forward[1]); n > 0 {
		logger.Log.Warn("non-finite forward values", "count", n)
	}

	fmt.Fprintf(w, "fwd diff: %s\n", formatDiff(cmp.ForwardDiff))
	fmt.Fprintf(w, "bwd diff: %s\n", formatDiff(cmp.GradientDiff))

	return &cmp, nil
}

// MaxAbsDiff returns max |a[i] - b[i]|. NaN anywhere yields NaN; empty
// inputs yield 0.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}
	var m float64
	for i := range a {
		m = math.Max(m, math.Abs(a[i]-b[i]))
	}
	return m, nil
}

// formatDiff renders d with two exponent digits, spelling non-finite values
// nan, inf and -inf.
func formatDiff(d float64) string {
	switch {
	case math.IsNaN(d):
		return "nan"
	case math.IsInf(d, 1):
		return "inf"
	case math.IsInf(d, -1):
		return "-inf"
	}
	return fmt.Sprintf("%.2e", d)
}
