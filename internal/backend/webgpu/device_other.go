//go:build !windows

package webgpu

import (
	"github.com/born-ml/gradbench/internal/bench"
	"github.com/born-ml/gradbench/internal/kernel"
)

// Backend is the WebGPU device. This platform has no native binding, so
// New always fails.
type Backend struct{}

var (
	_ bench.Device             = (*Backend)(nil)
	_ kernel.Compiler[*Module] = (*Backend)(nil)
)

// New reports ErrUnavailable.
func New() (*Backend, error) {
	return nil, ErrUnavailable
}

// IsAvailable reports false.
func IsAvailable() bool {
	return false
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// NewEvent reports ErrUnavailable.
func (b *Backend) NewEvent() (bench.Event, error) {
	return nil, ErrUnavailable
}

// Synchronize reports ErrUnavailable.
func (b *Backend) Synchronize() error {
	return ErrUnavailable
}

// Compile reports ErrUnavailable.
func (b *Backend) Compile(string) (*Module, error) {
	return nil, ErrUnavailable
}

// Release is a no-op.
func (b *Backend) Release() {}

// Module is a compiled WGSL shader module.
type Module struct{}

// Build reports ErrUnavailable.
func (m *Module) Build(string) error {
	return ErrUnavailable
}

// Release is a no-op.
func (m *Module) Release() {}
