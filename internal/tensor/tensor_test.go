package tensor_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/gradbench/internal/autodiff"
	"github.com/born-ml/gradbench/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squaredSum builds sum(x²) so x's gradient is 2x.
func squaredSum(t *testing.T, x *tensor.Tensor) *tensor.Tensor {
	t.Helper()
	sq, err := autodiff.Mul(x, x)
	require.NoError(t, err)
	return autodiff.Sum(sq)
}

func TestFromSlice_ShapeMismatch(t *testing.T) {
	_, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{2, 2}, tensor.Float32)
	require.Error(t, err)
}

func TestFromSlice_InvalidShape(t *testing.T) {
	_, err := tensor.FromSlice(nil, tensor.Shape{0}, tensor.Float32)
	require.Error(t, err)
}

func TestFromSlice_CopiesInput(t *testing.T) {
	src := []float64{1, 2}
	x, err := tensor.FromSlice(src, tensor.Shape{2}, tensor.Float64)
	require.NoError(t, err)

	src[0] = 42
	assert.Equal(t, 1.0, x.Data()[0])
}

func TestFloat32_RoundsValues(t *testing.T) {
	x, err := tensor.FromSlice([]float64{0.1}, tensor.Shape{1}, tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, float64(float32(0.1)), x.Data()[0])

	y, err := tensor.FromSlice([]float64{0.1}, tensor.Shape{1}, tensor.Float64)
	require.NoError(t, err)
	assert.Equal(t, 0.1, y.Data()[0])
}

func TestToHost_IsDetached(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3}, tensor.Float64)
	require.NoError(t, err)

	host := x.ToHost()
	host[1] = -7

	assert.Equal(t, []float64{1, 2, 3}, x.Data())
}

func TestAt(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.Float64)
	require.NoError(t, err)

	assert.Equal(t, 6.0, x.At(1, 2))
	assert.Equal(t, 2.0, x.At(0, 1))
	assert.Panics(t, func() { x.At(2, 0) })
}

func TestZeroGrad_PreservesValueAndZeroesSlot(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, -2, 3}, tensor.Shape{3}, tensor.Float32)
	require.NoError(t, err)
	x.RequireGrad()

	require.NoError(t, squaredSum(t, x).Backward())
	require.True(t, x.HasGrad())
	assert.Equal(t, []float64{2, -4, 6}, x.Grad().Data())

	tensor.ZeroGrad(x)

	assert.Equal(t, []float64{1, -2, 3}, x.Data())
	require.True(t, x.HasGrad())
	assert.Equal(t, []float64{0, 0, 0}, x.Grad().Data())
	assert.True(t, x.Grad().Shape().Equal(x.Shape()))
	assert.Equal(t, x.DType(), x.Grad().DType())
}

func TestZeroGrad_NoSlotIsNoop(t *testing.T) {
	plain, err := tensor.Ones(tensor.Shape{2}, tensor.Float64)
	require.NoError(t, err)
	unset, err := tensor.Ones(tensor.Shape{2}, tensor.Float64)
	require.NoError(t, err)
	unset.RequireGrad()

	assert.NotPanics(t, func() {
		tensor.ZeroGrad(plain, unset, nil)
	})
	assert.False(t, plain.HasGrad())
	assert.False(t, unset.HasGrad())
	assert.Equal(t, []float64{1, 1}, plain.Data())
}

func TestBackward_Accumulates(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2}, tensor.Float64)
	require.NoError(t, err)
	x.RequireGrad()

	require.NoError(t, squaredSum(t, x).Backward())
	require.NoError(t, squaredSum(t, x).Backward())

	assert.Equal(t, []float64{4, 8}, x.Grad().Data())
}

func TestBackward_NonScalar(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2}, tensor.Float64)
	require.NoError(t, err)
	x.RequireGrad()

	y := autodiff.Exp(x)
	err = y.Backward()
	require.ErrorIs(t, err, tensor.ErrNonScalarBackward)
	assert.False(t, x.HasGrad())
}

func TestBackward_NoGraph(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2}, tensor.Float64)
	require.NoError(t, err)

	err = autodiff.Sum(x).Backward()
	require.ErrorIs(t, err, tensor.ErrNoGraph)
}

func TestBackward_DiamondGraph(t *testing.T) {
	// y = sum(exp(x) * exp(x)) reuses exp(x) twice; dy/dx = 2·exp(2x).
	x, err := tensor.FromSlice([]float64{0, 0.5}, tensor.Shape{2}, tensor.Float64)
	require.NoError(t, err)
	x.RequireGrad()

	e := autodiff.Exp(x)
	p, err := autodiff.Mul(e, e)
	require.NoError(t, err)
	require.NoError(t, autodiff.Sum(p).Backward())

	for i, v := range []float64{0, 0.5} {
		assert.InDelta(t, 2*math.Exp(2*v), x.Grad().Data()[i], 1e-12)
	}
}

func TestBackward_OnlyLeavesRequiringGradReceiveSlot(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2}, tensor.Float64)
	require.NoError(t, err)
	x.RequireGrad()
	w, err := tensor.FromSlice([]float64{3, 4}, tensor.Shape{2}, tensor.Float64)
	require.NoError(t, err)

	p, err := autodiff.Mul(x, w)
	require.NoError(t, err)
	require.NoError(t, autodiff.Sum(p).Backward())

	assert.Equal(t, []float64{3, 4}, x.Grad().Data())
	assert.False(t, w.HasGrad())
	assert.True(t, x.IsLeaf())
	assert.False(t, p.IsLeaf())
}

func TestCountNonFinite(t *testing.T) {
	assert.Equal(t, 0, tensor.CountNonFinite([]float64{1, 2}))
	assert.Equal(t, 2, tensor.CountNonFinite([]float64{math.NaN(), 1, math.Inf(-1)}))
}

func TestRandn_Deterministic(t *testing.T) {
	a, err := tensor.Randn(tensor.Shape{4}, tensor.Float32, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := tensor.Randn(tensor.Shape{4}, tensor.Float32, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, a.Data(), b.Data())
}

func TestDataType(t *testing.T) {
	assert.Equal(t, 4, tensor.Float32.Size())
	assert.Equal(t, "float64", tensor.Float64.String())
	assert.Equal(t, tensor.Float64, tensor.Promote(tensor.Float32, tensor.Float64))

	dt, ok := tensor.ParseDataType("f64")
	assert.True(t, ok)
	assert.Equal(t, tensor.Float64, dt)
	_, ok = tensor.ParseDataType("int8")
	assert.False(t, ok)
}
