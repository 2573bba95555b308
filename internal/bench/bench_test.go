package bench_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/born-ml/gradbench/internal/autodiff"
	"github.com/born-ml/gradbench/internal/bench"
	"github.com/born-ml/gradbench/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice is a deterministic clock: every Record advances time by a step
// that grows by 0.25ms, so consecutive measurements differ.
type fakeDevice struct {
	clock   float64
	step    float64
	records int
	syncs   int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{step: 1}
}

func (d *fakeDevice) Name() string { return "fake" }

func (d *fakeDevice) NewEvent() (bench.Event, error) {
	return &fakeEvent{dev: d}, nil
}

func (d *fakeDevice) Synchronize() error {
	d.syncs++
	return nil
}

type fakeEvent struct {
	dev *fakeDevice
	at  float64
}

func (e *fakeEvent) Record() error {
	e.dev.records++
	e.dev.clock += e.dev.step
	e.dev.step += 0.25
	e.at = e.dev.clock
	return nil
}

func (e *fakeEvent) ElapsedTime(end bench.Event) (float64, error) {
	return end.(*fakeEvent).at - e.at, nil
}

func input(t *testing.T, dtype tensor.DataType, data ...float64) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape{len(data)}, dtype)
	require.NoError(t, err)
	return x.RequireGrad()
}

// sumSquares computes sum(x²); its gradient is 2x.
func sumSquares(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	sq, err := autodiff.Mul(inputs[0], inputs[0])
	if err != nil {
		return nil, err
	}
	return autodiff.Sum(sq), nil
}

// sumScaled computes sum(x * w) for a second, constant argument w.
func sumScaled(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
	p, err := autodiff.Mul(inputs[0], inputs[1])
	if err != nil {
		return nil, err
	}
	return autodiff.Sum(p), nil
}

func TestCompare_IdenticalImplementations(t *testing.T) {
	x := input(t, tensor.Float32, 1, -2, 3)
	var buf bytes.Buffer

	cmp, err := bench.Compare(&buf, sumSquares, sumSquares, x)
	require.NoError(t, err)

	assert.Equal(t, "fwd diff: 0.00e+00\nbwd diff: 0.00e+00\n", buf.String())
	assert.Len(t, cmp.Forward, 2)
	assert.Len(t, cmp.Gradient, 2)
	assert.Equal(t, []float64{14}, cmp.Forward[0])
	assert.Equal(t, []float64{2, -4, 6}, cmp.Gradient[1])
}

func TestCompare_OrderAndGradientZeroing(t *testing.T) {
	x := input(t, tensor.Float64, 1, 2)
	w, err := tensor.FromSlice([]float64{10, 20}, tensor.Shape{2}, tensor.Float64)
	require.NoError(t, err)

	// implB ignores its second argument's values but still receives it.
	implB := func(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
		require.Len(t, inputs, 2)
		return sumSquares(inputs[0])
	}

	var buf bytes.Buffer
	cmp, err := bench.Compare(&buf, sumScaled, implB, x, w)
	require.NoError(t, err)

	assert.Equal(t, []float64{50}, cmp.Forward[0])
	assert.Equal(t, []float64{5}, cmp.Forward[1])
	// Without zeroing between implementations B would see [12, 24].
	assert.Equal(t, []float64{10, 20}, cmp.Gradient[0])
	assert.Equal(t, []float64{2, 4}, cmp.Gradient[1])
	assert.Equal(t, 45.0, cmp.ForwardDiff)
	assert.Equal(t, 16.0, cmp.GradientDiff)
	assert.Equal(t, "fwd diff: 4.50e+01\nbwd diff: 1.60e+01\n", buf.String())

	assert.Equal(t, []float64{1, 2}, x.Data())
	require.True(t, x.HasGrad())
	assert.Equal(t, []float64{0, 0}, x.Grad().Data())
}

func TestCompare_NaNPropagates(t *testing.T) {
	x := input(t, tensor.Float64, 0, 1)
	nanImpl := func(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
		return autodiff.Sum(autodiff.Log(autodiff.MulScalar(inputs[0], -1))), nil
	}

	var buf bytes.Buffer
	cmp, err := bench.Compare(&buf, sumSquares, nanImpl, x)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(cmp.ForwardDiff))
	assert.Contains(t, buf.String(), "fwd diff: nan\n")
}

func TestCompare_InfiniteDiff(t *testing.T) {
	x := input(t, tensor.Float32, 100, 100)
	overflow := func(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
		return autodiff.Sum(autodiff.Exp(inputs[0])), nil
	}
	finite := func(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
		return autodiff.Sum(inputs[0]), nil
	}

	var buf bytes.Buffer
	cmp, err := bench.Compare(&buf, overflow, finite, x)
	require.NoError(t, err)
	assert.True(t, math.IsInf(cmp.ForwardDiff, 1))
	assert.Equal(t, "fwd diff: inf\nbwd diff: inf\n", buf.String())
}

func TestCompare_NoGradientOnInputs(t *testing.T) {
	x := input(t, tensor.Float64, 1)
	other := input(t, tensor.Float64, 2)
	ignoresInputs := func(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
		return autodiff.Sum(inputs[1]), nil
	}

	_, err := bench.Compare(&bytes.Buffer{}, ignoresInputs, ignoresInputs, x, other)
	require.ErrorIs(t, err, bench.ErrNoGradient)
}

func TestCompare_ForwardError(t *testing.T) {
	x := input(t, tensor.Float64, 1)
	boom := errors.New("boom")
	failing := func(...*tensor.Tensor) (*tensor.Tensor, error) { return nil, boom }

	_, err := bench.Compare(&bytes.Buffer{}, sumSquares, failing, x)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "impl B")
}

func TestMaxAbsDiff(t *testing.T) {
	d, err := bench.MaxAbsDiff([]float64{1, 5}, []float64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, 4.0, d)

	_, err = bench.MaxAbsDiff([]float64{1}, []float64{1, 2})
	require.ErrorIs(t, err, bench.ErrLengthMismatch)
}

func TestTimed(t *testing.T) {
	dev := newFakeDevice()
	calls := 0

	out, ms, err := bench.Timed(dev, func() (string, error) {
		calls++
		assert.Equal(t, 1, dev.records, "start marker must be recorded before the call")
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, dev.records)
	assert.Equal(t, 1, dev.syncs)
	assert.Equal(t, 1.25, ms)
}

func TestTimed_ErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := bench.Timed(newFakeDevice(), func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
}

func TestBenchmarkFwdBwd_LengthsAndTotals(t *testing.T) {
	x := input(t, tensor.Float32, 1, 2, 3)

	timings, err := bench.BenchmarkFwdBwd(newFakeDevice(), sumSquares, bench.Options{Warmup: 0, NLoops: 3}, x)
	require.NoError(t, err)

	assert.Equal(t, []string{"fwd", "bwd", "tot"}, timings.Names())
	fwd, _ := timings.Get(bench.SeriesForward)
	bwd, _ := timings.Get(bench.SeriesBackward)
	tot, _ := timings.Get(bench.SeriesTotal)
	require.Len(t, fwd, 3)
	require.Len(t, bwd, 3)
	require.Len(t, tot, 3)
	for i := range tot {
		assert.Equal(t, fwd[i]+bwd[i], tot[i])
	}
	assert.NotEqual(t, fwd[0], fwd[2])

	assert.Equal(t, []float64{0, 0, 0}, x.Grad().Data())
	assert.Equal(t, []float64{1, 2, 3}, x.Data())
}

func TestBenchmarkFwdBwd_WarmupDiscarded(t *testing.T) {
	x := input(t, tensor.Float64, 1, 2)
	calls := 0
	counted := func(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
		calls++
		return sumSquares(inputs...)
	}

	cold, err := bench.BenchmarkFwdBwd(newFakeDevice(), counted, bench.Options{Warmup: 0, NLoops: 4}, x)
	require.NoError(t, err)
	warm, err := bench.BenchmarkFwdBwd(newFakeDevice(), counted, bench.Options{Warmup: 5, NLoops: 4}, x)
	require.NoError(t, err)

	coldFwd, _ := cold.Get("fwd")
	warmFwd, _ := warm.Get("fwd")
	assert.Len(t, warmFwd, len(coldFwd))
	assert.Equal(t, 4+9, calls)
	// Warmup trials consumed the early, shorter clock steps.
	assert.Greater(t, warmFwd[0], coldFwd[0])
}

func TestBenchmarkFwdBwd_ZeroLoops(t *testing.T) {
	x := input(t, tensor.Float64, 1)

	timings, err := bench.BenchmarkFwdBwd(newFakeDevice(), sumSquares, bench.Options{NLoops: 0}, x)
	require.NoError(t, err)
	fwd, ok := timings.Get("fwd")
	assert.True(t, ok)
	assert.Empty(t, fwd)

	err = bench.Report(&bytes.Buffer{}, timings)
	require.ErrorIs(t, err, bench.ErrEmptySeries)
}

func TestBenchmarkFwdBwd_InvalidOptions(t *testing.T) {
	_, err := bench.BenchmarkFwdBwd(newFakeDevice(), sumSquares, bench.Options{Warmup: -1, NLoops: 3})
	require.ErrorIs(t, err, bench.ErrInvalidOptions)
}

func TestBenchmarkFwdBwd_NonScalarOutput(t *testing.T) {
	x := input(t, tensor.Float64, 1, 2)
	vector := func(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
		return autodiff.Exp(inputs[0]), nil
	}

	_, err := bench.BenchmarkFwdBwd(newFakeDevice(), vector, bench.Options{NLoops: 1}, x)
	require.ErrorIs(t, err, tensor.ErrNonScalarBackward)
}

func TestDefaultOptions(t *testing.T) {
	assert.Equal(t, bench.Options{Warmup: 5, NLoops: 20}, bench.DefaultOptions())
}

func TestReport(t *testing.T) {
	timings := bench.NewTimings()
	timings.Add("a", []float64{1.0, 2.0, 3.0})

	var buf bytes.Buffer
	require.NoError(t, bench.Report(&buf, timings))
	assert.Equal(t, "a: 2.00ms (1.00-3.00ms)\n", buf.String())
}

func TestReport_PreservesOrder(t *testing.T) {
	timings := bench.NewTimings()
	timings.Add("z", []float64{1})
	timings.Add("a", []float64{2})
	timings.Add("z", []float64{3})

	var buf bytes.Buffer
	require.NoError(t, bench.Report(&buf, timings))
	assert.Equal(t, "z: 3.00ms (3.00-3.00ms)\na: 2.00ms (2.00-2.00ms)\n", buf.String())
	assert.Equal(t, 2, timings.Len())
}

func TestComputeStats(t *testing.T) {
	s, err := bench.ComputeStats([]float64{4, 1, 7})
	require.NoError(t, err)
	assert.Equal(t, bench.Stats{Mean: 4, Min: 1, Max: 7}, s)

	s, err = bench.ComputeStats([]float64{1, math.NaN()})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(s.Mean))
	assert.True(t, math.IsNaN(s.Max))

	_, err = bench.ComputeStats(nil)
	require.ErrorIs(t, err, bench.ErrEmptySeries)
}

func TestWriteJSON(t *testing.T) {
	timings := bench.NewTimings()
	timings.Add("fwd", []float64{1, 3})

	var buf bytes.Buffer
	require.NoError(t, bench.WriteJSON(&buf, timings))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "fwd", decoded[0]["name"])
	assert.Equal(t, 2.0, decoded[0]["mean_ms"])
}

func TestFloat64_CastsAndKeepsGradientPath(t *testing.T) {
	x := input(t, tensor.Float32, 0.1, 0.2)

	var seen tensor.DataType
	probe := func(inputs ...*tensor.Tensor) (*tensor.Tensor, error) {
		seen = inputs[0].DType()
		return sumSquares(inputs...)
	}

	out, err := bench.Float64(probe)(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float64, seen)
	assert.Equal(t, tensor.Float64, out.DType())

	require.NoError(t, out.Backward())
	require.True(t, x.HasGrad())
	assert.Equal(t, tensor.Float32, x.Grad().DType())
	assert.InDelta(t, 0.2, x.Grad().Data()[0], 1e-6)
}

func TestCompare_Float32AgainstFloat64Reference(t *testing.T) {
	x := input(t, tensor.Float32, 0.1, 0.2, 0.3)

	var buf bytes.Buffer
	cmp, err := bench.Compare(&buf, sumSquares, bench.Float64(sumSquares), x)
	require.NoError(t, err)
	assert.Less(t, cmp.ForwardDiff, 1e-6)
	assert.Less(t, cmp.GradientDiff, 1e-6)
}
