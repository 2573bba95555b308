package bench

import "fmt"

// Timed runs fn once and measures the device time it took, including any
// asynchronous work fn queued: a start marker is recorded just before the
// call, an end marker just after, and the device is synchronized before the
// elapsed time is read.
//
// The measurement covers a single call; callers repeat it to average.
func Timed[T any](dev Device, fn func() (T, error)) (T, float64, error) {
	var zero T

	start, err := dev.NewEvent()
	if err != nil {
		return zero, 0, fmt.Errorf("create start event: %w", err)
	}
	end, err := dev.NewEvent()
	if err != nil {
		return zero, 0, fmt.Errorf("create end event: %w", err)
	}

	if err := start.Record(); err != nil {
		return zero, 0, fmt.Errorf("record start event: %w", err)
	}
	out, err := fn()
	if err != nil {
		return zero, 0, err
	}
	if err := end.Record(); err != nil {
		return zero, 0, fmt.Errorf("record end event: %w", err)
	}

	if err := dev.Synchronize(); err != nil {
		return zero, 0, fmt.Errorf("synchronize %s: %w", dev.Name(), err)
	}

	ms, err := start.ElapsedTime(end)
	if err != nil {
		return zero, 0, fmt.Errorf("elapsed time: %w", err)
	}
	return out, ms, nil
}
