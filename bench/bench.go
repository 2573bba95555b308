// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bench compares and times alternative implementations of a
// differentiable operation.
//
// Example:
//
//	x, _ := tensor.Randn(tensor.Shape{4096}, tensor.Float32, rng)
//	x.RequireGrad()
//
//	// Print max abs differences of outputs and gradients.
//	_, err := bench.Compare(os.Stdout, naive, stable, x)
//
//	// Time forward and backward passes on the host.
//	t, err := bench.BenchmarkFwdBwd(cpu.New(), stable, bench.DefaultOptions(), x)
//	_ = bench.Report(os.Stdout, t) // fwd: 0.12ms (0.10-0.19ms) ...
package bench

import (
	"io"

	"github.com/born-ml/gradbench/internal/bench"
	"github.com/born-ml/gradbench/tensor"
)

// Forward computes a single-element output from its inputs.
type Forward = bench.Forward

// Device is the timing primitive of a compute device.
type Device = bench.Device

// Event marks a position in a device's execution queue.
type Event = bench.Event

// Comparison holds the outputs and gradients produced by Compare.
type Comparison = bench.Comparison

// Options controls the number of benchmark trials.
type Options = bench.Options

// Timings maps ordered series names to millisecond samples.
type Timings = bench.Timings

// Stats holds the mean, min and max of one series.
type Stats = bench.Stats

// Series names produced by BenchmarkFwdBwd.
const (
	SeriesForward  = bench.SeriesForward
	SeriesBackward = bench.SeriesBackward
	SeriesTotal    = bench.SeriesTotal
)

// Errors.
var (
	ErrNoGradient     = bench.ErrNoGradient
	ErrLengthMismatch = bench.ErrLengthMismatch
	ErrInvalidOptions = bench.ErrInvalidOptions
	ErrEmptySeries    = bench.ErrEmptySeries
)

// Compare runs implA then implB, backpropagates each, and prints the max
// abs differences of outputs and input gradients to w.
func Compare(w io.Writer, implA, implB Forward, inputs *tensor.Tensor, args ...*tensor.Tensor) (*Comparison, error) {
	return bench.Compare(w, implA, implB, inputs, args...)
}

// MaxAbsDiff returns the largest |a[i] - b[i]|. NaN propagates.
func MaxAbsDiff(a, b []float64) (float64, error) {
	return bench.MaxAbsDiff(a, b)
}

// Timed runs fn once and returns its result with the device time it took.
func Timed[T any](dev Device, fn func() (T, error)) (T, float64, error) {
	return bench.Timed(dev, fn)
}

// DefaultOptions returns 5 warmup trials and 20 timed trials.
func DefaultOptions() Options {
	return bench.DefaultOptions()
}

// BenchmarkFwdBwd times fwd and the backward pass of its output.
func BenchmarkFwdBwd(dev Device, fwd Forward, opts Options, inputs ...*tensor.Tensor) (*Timings, error) {
	return bench.BenchmarkFwdBwd(dev, fwd, opts, inputs...)
}

// NewTimings returns an empty Timings.
func NewTimings() *Timings {
	return bench.NewTimings()
}

// ComputeStats calculates mean, min and max over samples.
func ComputeStats(samples []float64) (Stats, error) {
	return bench.ComputeStats(samples)
}

// Report prints one "name: mean ms (min-max ms)" line per series.
func Report(w io.Writer, t *Timings) error {
	return bench.Report(w, t)
}

// WriteJSON writes every series with its statistics as JSON.
func WriteJSON(w io.Writer, t *Timings) error {
	return bench.WriteJSON(w, t)
}

// Float64 wraps fn so float32 arguments are promoted to float64.
func Float64(fn Forward) Forward {
	return bench.Float64(fn)
}
