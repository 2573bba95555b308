// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU timing device and WGSL compiler.
//
// Native bindings are available on Windows; elsewhere New returns
// ErrUnavailable.
//
// Example:
//
//	gpu, err := webgpu.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gpu.Release()
//
//	t, err := bench.BenchmarkFwdBwd(gpu, fwd, bench.DefaultOptions(), x)
package webgpu

import (
	"github.com/born-ml/gradbench/bench"
	internalwebgpu "github.com/born-ml/gradbench/internal/backend/webgpu"
	"github.com/born-ml/gradbench/kernel"
)

// Backend is the WebGPU device.
type Backend = internalwebgpu.Backend

// Module is a compiled WGSL shader module.
type Module = internalwebgpu.Module

// Errors.
var (
	ErrUnavailable = internalwebgpu.ErrUnavailable
	ErrCompile     = internalwebgpu.ErrCompile
)

var (
	_ bench.Device             = (*Backend)(nil)
	_ kernel.Compiler[*Module] = (*Backend)(nil)
)

// New creates a WebGPU device. Call Release when done.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable reports whether a WebGPU adapter can be acquired.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
