package raster

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noData = -9999

var testGeoTransform = [6]float64{76.5, 0.001, 0, 12.4, 0, -0.001}

func mustRaster(t *testing.T, width, height int, values ...float64) *Raster {
	t.Helper()
	r, err := FromValues(NewGrid(width, height, testGeoTransform), values, noData)
	require.NoError(t, err)
	return r
}

func TestNormalizedDifference(t *testing.T) {
	nir := mustRaster(t, 2, 2, 0.5, 0.3, noData, 0)
	red := mustRaster(t, 2, 2, 0.1, 0.3, 0.2, 0)

	ndvi, err := NormalizedDifference(nir, red)
	require.NoError(t, err)

	v, ok := ndvi.At(0, 0)
	require.True(t, ok)
	assert.InDelta(t, 0.4/0.6, v, 1e-12)

	v, ok = ndvi.At(1, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = ndvi.At(0, 1)
	assert.False(t, ok, "NoData operand must propagate")

	_, ok = ndvi.At(1, 1)
	assert.False(t, ok, "zero denominator must be NoData")
}

func TestNormalizedDifferenceRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	values := func() []float64 {
		out := make([]float64, 64*64)
		for i := range out {
			out[i] = rng.Float64()
		}
		return out
	}
	a := mustRaster(t, 64, 64, values()...)
	b := mustRaster(t, 64, 64, values()...)

	nd, err := NormalizedDifference(a, b)
	require.NoError(t, err)
	for i, v := range nd.Data {
		if !nd.Valid[i] {
			continue
		}
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestDivideByZeroIsNoData(t *testing.T) {
	a := mustRaster(t, 3, 1, 1, -4, 0)
	zero := Fill(a.Grid, 0)

	out, err := Divide(a, zero)
	require.NoError(t, err)
	assert.Equal(t, 0, out.ValidCount())
	for _, v := range out.Data {
		assert.False(t, math.IsInf(v, 0))
		assert.False(t, math.IsNaN(v))
	}
}

func TestDivide(t *testing.T) {
	a := mustRaster(t, 2, 1, 6, 1)
	b := mustRaster(t, 2, 1, 3, noData)

	out, err := Divide(a, b)
	require.NoError(t, err)
	v, ok := out.At(0, 0)
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
	_, ok = out.At(1, 0)
	assert.False(t, ok)
}

func TestClampIsIdempotent(t *testing.T) {
	r := mustRaster(t, 5, 1, -3, -0.5, 0.2, 1.7, noData)

	once := Clamp(r, 0, 1)
	twice := Clamp(once, 0, 1)

	assert.Equal(t, once, twice)
	assert.Equal(t, []float64{0, 0, 0.2, 1, 0}, once.Data)
	assert.Equal(t, []bool{true, true, true, true, false}, once.Valid)
}

func TestAffine(t *testing.T) {
	r := mustRaster(t, 2, 1, 10000, noData)
	bt := Affine(r, 0.00341802, 149.0)

	v, ok := bt.At(0, 0)
	require.True(t, ok)
	assert.InDelta(t, 183.1802, v, 1e-9)
	_, ok = bt.At(1, 0)
	assert.False(t, ok)
}

func TestLog(t *testing.T) {
	r := mustRaster(t, 3, 1, math.E, 0, -1)
	out := Log(r)

	v, ok := out.At(0, 0)
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-12)
	assert.Equal(t, 1, out.ValidCount())
}

func TestOperationsDoNotMutateInputs(t *testing.T) {
	a := mustRaster(t, 2, 1, 2, 4)
	b := mustRaster(t, 2, 1, 1, 0)
	before := a.Clone()

	_, err := Multiply(a, b)
	require.NoError(t, err)
	_ = Affine(a, 2, 1)
	_ = Clamp(a, 0, 1)

	assert.Equal(t, before, a)
}

func TestMisalignedRasters(t *testing.T) {
	a := mustRaster(t, 2, 1, 1, 2)
	b, err := FromValues(NewGrid(1, 2, testGeoTransform), []float64{1, 2}, noData)
	require.NoError(t, err)

	_, err = NormalizedDifference(a, b)
	var alignErr *AlignmentError
	require.ErrorAs(t, err, &alignErr)
	assert.Equal(t, "normalized difference", alignErr.Op)

	shifted := a.Clone()
	shifted.Grid.GeoTransform[0] += 0.5
	_, err = Divide(a, shifted)
	assert.ErrorAs(t, err, &alignErr)
}

func TestCropAndWindow(t *testing.T) {
	r := mustRaster(t, 3, 3,
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	)

	out := Crop(r, 1, 1, 3, 2)
	assert.Equal(t, 3, out.Grid.Width)
	assert.Equal(t, 2, out.Grid.Height)
	assert.InDelta(t, 76.501, out.Grid.GeoTransform[0], 1e-12)
	assert.InDelta(t, 12.399, out.Grid.GeoTransform[3], 1e-12)
	assert.Equal(t, []float64{5, 6, 0, 8, 9, 0}, out.Data)
	assert.Equal(t, []bool{true, true, false, true, true, false}, out.Valid)
}

func TestGridPixelLookup(t *testing.T) {
	g := NewGrid(10, 10, testGeoTransform)

	lon, lat := g.PixelCenter(2, 3)
	assert.InDelta(t, 76.5025, lon, 1e-12)
	assert.InDelta(t, 12.3965, lat, 1e-12)

	x, y, ok := g.PixelAt(lon, lat)
	require.True(t, ok)
	assert.Equal(t, 2, x)
	assert.Equal(t, 3, y)

	_, _, ok = g.PixelAt(0, 0)
	assert.False(t, ok)
}

func TestForEachRowCoversLargeGrid(t *testing.T) {
	g := NewGrid(512, 300, testGeoTransform)
	r := Fill(g, 2)

	out := Affine(r, 3, 1)
	assert.Equal(t, g.Size(), out.ValidCount())
	for _, v := range out.Data {
		require.Equal(t, 7.0, v)
	}
}

func TestFromValuesRejectsWrongLength(t *testing.T) {
	_, err := FromValues(NewGrid(2, 2, testGeoTransform), []float64{1}, noData)
	assert.Error(t, err)
}
