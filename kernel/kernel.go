// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package kernel loads GPU kernel sources with injected #define macros.
//
// Example:
//
//	gpu, _ := webgpu.New()
//	module, err := kernel.Load[*webgpu.Module](gpu, "softplus.wgsl",
//	    kernel.Define{Name: "BLOCK", Value: 256},
//	    kernel.Define{Name: "EPS", Value: 1e-5},
//	)
package kernel

import "github.com/born-ml/gradbench/internal/kernel"

// Define is a single `#define NAME VALUE` macro.
type Define = kernel.Define

// Compiler turns kernel source text into a module handle.
type Compiler[M any] = kernel.Compiler[M]

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc[M any] = kernel.CompilerFunc[M]

// ErrBadDefine is returned for malformed macros.
var ErrBadDefine = kernel.ErrBadDefine

// Source returns the define lines followed by the file text.
func Source(path string, defines ...Define) (string, error) {
	return kernel.Source(path, defines...)
}

// Load builds the source for path and compiles it with c.
func Load[M any](c Compiler[M], path string, defines ...Define) (M, error) {
	return kernel.Load(c, path, defines...)
}

// FormatValue renders a macro value the way Source writes it.
func FormatValue(v any) string {
	return kernel.FormatValue(v)
}

// ParseDefine parses NAME=VALUE or NAME.
func ParseDefine(s string) (Define, error) {
	return kernel.ParseDefine(s)
}

// ExpandDefines applies object-like #define lines for preprocessor-less
// targets such as WGSL.
func ExpandDefines(source string) (string, error) {
	return kernel.ExpandDefines(source)
}
