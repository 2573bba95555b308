// Package parallel splits element-wise loops across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how Range splits work.
type Config struct {
	Workers  int // Goroutines to use; 1 or less runs inline.
	MinChunk int // Smallest span handed to one goroutine.
}

// DefaultConfig uses one worker per CPU and chunks of at least 16Ki
// elements, below which goroutine startup dominates a float loop.
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		MinChunk: 1 << 14,
	}
}

// Default is the configuration used by Range.
var Default = DefaultConfig()

// Range calls fn over disjoint spans [lo, hi) covering [0, n) and returns
// once every call has finished. fn must only touch indices in its span.
func Range(n int, fn func(lo, hi int)) {
	RangeWith(Default, n, fn)
}

// RangeWith is Range with an explicit configuration.
func RangeWith(cfg Config, n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	chunk := max((n+cfg.Workers-1)/max(cfg.Workers, 1), cfg.MinChunk, 1)
	if cfg.Workers <= 1 || chunk >= n {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(lo, hi)
		}()
	}
	wg.Wait()
}
