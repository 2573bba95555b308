package bench

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrEmptySeries is returned when statistics are requested for a series
// without samples.
var ErrEmptySeries = errors.New("bench: empty timing series")

// Timings maps series names to millisecond samples and remembers the order
// in which series were added.
type Timings struct {
	names  []string
	series map[string][]float64
}

// NewTimings returns an empty Timings.
func NewTimings() *Timings {
	return &Timings{series: make(map[string][]float64)}
}

// Add stores samples under name. Re-adding a name replaces its samples and
// keeps its position.
func (t *Timings) Add(name string, samples []float64) {
	if _, ok := t.series[name]; !ok {
		t.names = append(t.names, name)
	}
	t.series[name] = samples
}

// Names returns the series names in insertion order.
func (t *Timings) Names() []string {
	return append([]string(nil), t.names...)
}

// Get returns the samples stored under name.
func (t *Timings) Get(name string) ([]float64, bool) {
	s, ok := t.series[name]
	return s, ok
}

// Len returns the number of series.
func (t *Timings) Len() int {
	return len(t.names)
}

// Stats holds aggregate statistics of one series.
type Stats struct {
	Mean float64
	Min  float64
	Max  float64
}

// ComputeStats calculates mean, min and max over samples. NaN propagates.
func ComputeStats(samples []float64) (Stats, error) {
	if len(samples) == 0 {
		return Stats{}, ErrEmptySeries
	}
	s := Stats{Min: samples[0], Max: samples[0]}
	var sum float64
	for _, v := range samples {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
	}
	s.Mean = sum / float64(len(samples))
	return s, nil
}

// Report writes one line per series, in order:
//
//	fwd: 1.23ms (1.01-1.90ms)
//
// It fails on the first series without samples.
func Report(w io.Writer, t *Timings) error {
	for _, name := range t.names {
		s, err := ComputeStats(t.series[name])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Fprintf(w, "%s: %.2fms (%.2f-%.2fms)\n", name, s.Mean, s.Min, s.Max)
	}
	return nil
}

type jsonSeries struct {
	Name    string    `json:"name"`
	Samples []float64 `json:"samples_ms"`
	MeanMS  float64   `json:"mean_ms"`
	MinMS   float64   `json:"min_ms"`
	MaxMS   float64   `json:"max_ms"`
}

// WriteJSON writes the samples and statistics of every series as JSON.
func WriteJSON(w io.Writer, t *Timings) error {
	out := make([]jsonSeries, 0, len(t.names))
	for _, name := range t.names {
		s, err := ComputeStats(t.series[name])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, jsonSeries{
			Name:    name,
			Samples: t.series[name],
			MeanMS:  s.Mean,
			MinMS:   s.Min,
			MaxMS:   s.Max,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
