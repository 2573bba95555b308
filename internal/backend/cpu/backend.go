// Package cpu implements the host timing device. CPU work runs
// synchronously, so markers read the monotonic clock directly.
package cpu

import (
	"errors"
	"time"

	"github.com/born-ml/gradbench/internal/bench"
)

var (
	// ErrNotRecorded is returned when elapsed time is requested for a marker
	// that was never recorded.
	ErrNotRecorded = errors.New("cpu: event not recorded")

	// ErrForeignEvent is returned when a CPU event is compared with an event
	// from another device.
	ErrForeignEvent = errors.New("cpu: end event belongs to another device")
)

// Backend is the CPU timing device.
type Backend struct {
	now func() time.Time
}

// Compile-time check that Backend implements bench.Device.
var _ bench.Device = (*Backend)(nil)

// New creates a CPU device reading the wall clock's monotonic reading.
func New() *Backend {
	return &Backend{now: time.Now}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "CPU"
}

// NewEvent creates an unrecorded marker.
func (b *Backend) NewEvent() (bench.Event, error) {
	return &event{now: b.now}, nil
}

// Synchronize returns immediately: there is no queue to drain.
func (b *Backend) Synchronize() error {
	return nil
}

type event struct {
	now      func() time.Time
	at       time.Time
	recorded bool
}

func (e *event) Record() error {
	e.at = e.now()
	e.recorded = true
	return nil
}

func (e *event) ElapsedTime(end bench.Event) (float64, error) {
	other, ok := end.(*event)
	if !ok {
		return 0, ErrForeignEvent
	}
	if !e.recorded || !other.recorded {
		return 0, ErrNotRecorded
	}
	return float64(other.at.Sub(e.at)) / float64(time.Millisecond), nil
}
