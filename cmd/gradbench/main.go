// Package main provides the gradbench CLI: compare, time and compile
// differentiable operations and the kernels behind them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
