// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the host timing device. CPU work is synchronous, so
// markers read the monotonic clock directly.
//
// Example:
//
//	t, err := bench.BenchmarkFwdBwd(cpu.New(), fwd, bench.DefaultOptions(), x)
package cpu

import (
	"github.com/born-ml/gradbench/bench"
	internalcpu "github.com/born-ml/gradbench/internal/backend/cpu"
)

// Backend is the CPU timing device.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements bench.Device.
var _ bench.Device = (*Backend)(nil)

// New creates a new CPU device.
func New() *Backend {
	return internalcpu.New()
}
