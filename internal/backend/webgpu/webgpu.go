// Package webgpu implements the WebGPU timing device and WGSL module
// compiler. Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO
// bindings; the native library is only wired on Windows; other platforms
// get a stub whose constructor reports ErrUnavailable.
//
// WebGPU has no timestamp queries without an optional feature, so markers
// drain the queue before reading the host clock. Elapsed times therefore
// include the submission latency of the fence itself.
package webgpu

import (
	"errors"
	"time"

	"github.com/born-ml/gradbench/internal/bench"
)

var (
	// ErrUnavailable is returned when no WebGPU adapter can be created.
	ErrUnavailable = errors.New("webgpu: not available")

	// ErrCompile is returned when a WGSL module or pipeline fails to build.
	ErrCompile = errors.New("webgpu: compile failed")

	// ErrNotRecorded is returned when elapsed time is requested for a
	// marker that was never recorded.
	ErrNotRecorded = errors.New("webgpu: event not recorded")

	// ErrForeignEvent is returned when markers of different devices are
	// compared.
	ErrForeignEvent = errors.New("webgpu: end event belongs to another device")
)

// event is a fence-backed marker: Record waits for the queue to drain and
// then stamps the host clock.
type event struct {
	sync     func() error
	now      func() time.Time
	at       time.Time
	recorded bool
}

func newEvent(sync func() error, now func() time.Time) *event {
	return &event{sync: sync, now: now}
}

func (e *event) Record() error {
	if err := e.sync(); err != nil {
		return err
	}
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
