// Package metrics exposes benchmark and comparison results as Prometheus
// metrics. Everything is registered on Registry rather than the default
// registerer so a run can be written out as a node-exporter textfile.
package metrics

import (
	"fmt"

	"github.com/born-ml/gradbench/internal/bench"
	"github.com/born-ml/gradbench/internal/tensor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every gradbench collector.
var Registry = prometheus.NewRegistry()

var (
	PassDuration = promauto.With(Registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gradbench_pass_duration_milliseconds",
		Help:    "Device time of forward, backward and total passes",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 16),
	}, []string{"op", "series"})

	RunsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "gradbench_runs_total",
		Help: "Benchmark runs recorded per operation",
	}, []string{"op"})

	MaxAbsDiff = promauto.With(Registry).NewGaugeVec(prometheus.GaugeOpts{
		Name: "gradbench_max_abs_diff",
		Help: "Maximum absolute difference between two implementations",
	}, []string{"op", "pass"})

	NonFiniteTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "gradbench_non_finite_values_total",
		Help: "NaN or Inf values seen in compared outputs and gradients",
	}, []string{"op", "pass"})
)

// ObserveTimings records every sample of every series in t under op.
func ObserveTimings(op string, t *bench.Timings) {
	for _, name := range t.Names() {
		samples, _ := t.Get(name)
		h := PassDuration.WithLabelValues(op, name)
		for _, ms := range samples {
			h.Observe(ms)
		}
	}
	RunsTotal.WithLabelValues(op).Inc()
}

// ObserveComparison records the forward and gradient differences of cmp
// and counts its non-finite values.
func ObserveComparison(op string, cmp *bench.Comparison) {
	MaxAbsDiff.WithLabelValues(op, bench.SeriesForward).Set(cmp.ForwardDiff)
	MaxAbsDiff.WithLabelValues(op, bench.SeriesBackward).Set(cmp.GradientDiff)

	var fwd, bwd int
	for i := range cmp.Forward {
		fwd += tensor.CountNonFinite(cmp.Forward[i])
		bwd += tensor.CountNonFinite(cmp.Gradient[i])
	}
	NonFiniteTotal.WithLabelValues(op, bench.SeriesForward).Add(float64(fwd))
	NonFiniteTotal.WithLabelValues(op, bench.SeriesBackward).Add(float64(bwd))
}

// WriteTextfile writes the current state of Registry to path in the text
// exposition format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
