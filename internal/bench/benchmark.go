package bench

import (
	"errors"
	"fmt"

	"github.com/born-ml/gradbench/internal/logger"
	"github.com/born-ml/gradbench/internal/tensor"
)

// Series names produced by BenchmarkFwdBwd, in report order.
const (
	SeriesForward  = "fwd"
	SeriesBackward = "bwd"
	SeriesTotal    = "tot"
)

// ErrInvalidOptions is returned for negative trial counts.
var ErrInvalidOptions = errors.New("bench: warmup and nloops must be non-negative")

// Options controls the number of benchmark trials.
type Options struct {
	// Warmup trials run first and their timings are discarded.
	Warmup int
	// NLoops trials are timed and reported.
	NLoops int
}

// DefaultOptions returns 5 warmup trials and 20 timed trials.
func DefaultOptions() Options {
	return Options{Warmup: 5, NLoops: 20}
}

// BenchmarkFwdBwd times fwd and the backward pass of its output.
//
// One trial times fwd(inputs...), then times Backward on the returned
// output, then zeroes the gradient slots of inputs. opts.Warmup trials run
// first and are discarded; exactly opts.NLoops trials follow and are
// returned in trial order as the fwd, bwd and tot series, where
// tot[i] = fwd[i] + bwd[i].
//
// fwd must return a single-element output: Backward is seeded with one and
// fails with tensor.ErrNonScalarBackward otherwise.
func BenchmarkFwdBwd(dev Device, fwd Forward, opts Options, inputs ...*tensor.Tensor) (*Timings, error) {
	if opts.Warmup < 0 || opts.NLoops < 0 {
		return nil, fmt.Errorf("%w: warmup=%d nloops=%d", ErrInvalidOptions, opts.Warmup, opts.NLoops)
	}

	for i := 0; i < opts.Warmup; i++ {
		if _, _, err := fwdBwdTimes(dev, fwd, inputs); err != nil {
			return nil, fmt.Errorf("warmup trial %d: %w", i, err)
		}
	}
	logger.Log.Debug("warmup complete", "device", dev.Name(), "trials", opts.Warmup)

	fwdTimes := make([]float64, opts.NLoops)
	bwdTimes := make([]float64, opts.NLoops)
	totTimes := make([]float64, opts.NLoops)
	for i := 0; i < opts.NLoops; i++ {
		f, b, err := fwdBwdTimes(dev, fwd, inputs)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		fwdTimes[i], bwdTimes[i], totTimes[i] = f, b, f+b
		logger.Log.Debug("trial", "index", i, "fwd_ms", f, "bwd_ms", b)
	}

	timings := NewTimings()
	timings.Add(SeriesForward, fwdTimes)
	timings.Add(SeriesBackward, bwdTimes)
	timings.Add(SeriesTotal, totTimes)
	return timings, nil
}

// fwdBwdTimes runs one trial and returns its forward and backward times.
func fwdBwdTimes(dev Device, fwd Forward, inputs []*tensor.Tensor) (float64, float64, error) {
	output, fwdTime, err := Timed(dev, func() (*tensor.Tensor, error) {
		return fwd(inputs...)
	})
	if err != nil {
		return 0, 0, fmt.Errorf("forward: %w", err)
	}

	_, bwdTime, err := Timed(dev, func() (struct{}, error) {
		return struct{}{}, output.Backward()
	})
	if err != nil {
		return 0, 0, fmt.Errorf("backward: %w", err)
	}

	tensor.ZeroGrad(inputs...)
	return fwdTime, bwdTime, nil
}
