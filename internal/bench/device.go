// Package bench validates and times alternative implementations of a
// differentiable operation: it compares forward outputs and input gradients
// of two implementations, times forward and backward passes with device
// markers, and summarises the timings.
package bench

import "github.com/born-ml/gradbench/internal/tensor"

// Forward computes a single-element output from its inputs. Calling
// Backward on the output populates the gradient slots of inputs that
// require grad.
type Forward func(inputs ...*tensor.Tensor) (*tensor.Tensor, error)

// Device is the timing primitive of a compute device.
//
// Work submitted by the code under test may run asynchronously; Synchronize
// blocks until every queued operation has completed.
type Device interface {
	// Name identifies the device in logs and reports.
	Name() string

	// NewEvent creates an unrecorded marker.
	NewEvent() (Event, error)

	// Synchronize waits for all queued device work to finish.
	Synchronize() error
}

// Event marks a position in the device's execution queue.
type Event interface {
	// Record places the marker at the current end of the queue.
	Record() error

	// ElapsedTime returns the milliseconds between this marker and end.
	// Both markers must have been recorded and the device synchronized.
	ElapsedTime(end Event) (float64, error)
}
