package composite

import (
	"testing"
	"time"

	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/raster"
	"github.com/forest-guardian/urban-heat-island/internal/region"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noData = -9999

// 4x4 grid with unit pixels covering lon [0, 4] and lat [0, 4].
var grid = raster.NewGrid(4, 4, [6]float64{0, 1, 0, 4, 0, -1})

func pixel(t *testing.T, values ...float64) *raster.Raster {
	t.Helper()
	g := raster.NewGrid(len(values), 1, grid.GeoTransform)
	r, err := raster.FromValues(g, values, noData)
	require.NoError(t, err)
	return r
}

func TestMedianOfValidObservations(t *testing.T) {
	out, err := Composite([]*raster.Raster{pixel(t, noData), pixel(t, 5), pixel(t, 7)}, Median)
	require.NoError(t, err)
	v, ok := out.At(0, 0)
	require.True(t, ok)
	assert.Equal(t, 6.0, v)
}

func TestReducers(t *testing.T) {
	inputs := func() []*raster.Raster {
		return []*raster.Raster{pixel(t, noData), pixel(t, 5), pixel(t, 7)}
	}
	cases := map[string]float64{
		ReducerMedian: 6,
		ReducerMean:   6,
		ReducerMin:    5,
		ReducerMax:    7,
	}
	for name, want := range cases {
		reduce, err := ParseReducer(name)
		require.NoError(t, err)
		out, err := Composite(inputs(), reduce)
		require.NoError(t, err)
		v, _ := out.At(0, 0)
		assert.Equal(t, want, v, name)
	}
}

func TestMedianOddAndSingle(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{9, 1, 3}))
	assert.Equal(t, 4.0, Median([]float64{4}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
}

func TestSingleImageCompositeIsIdentity(t *testing.T) {
	values := make([]float64, grid.Size())
	for i := range values {
		values[i] = float64(i) * 0.25
	}
	values[5] = noData
	in, err := raster.FromValues(grid, values, noData)
	require.NoError(t, err)

	out, err := Composite([]*raster.Raster{in}, Median)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestShardedMedianWithHoles(t *testing.T) {
	big := raster.NewGrid(300, 300, [6]float64{0, 1, 0, 300, 0, -1})
	require.GreaterOrEqual(t, big.Size(), 1<<16)

	layers := make([][]float64, 3)
	for k := range layers {
		layers[k] = make([]float64, big.Size())
	}
	for i := 0; i < big.Size(); i++ {
		layers[0][i] = float64(i % 7)
		layers[1][i] = float64(i%5) + 10
		layers[2][i] = float64(i % 13)
		if i%3 == 0 {
			layers[0][i] = noData
		}
		if i%11 == 0 {
			layers[1][i] = noData
		}
		if i%17 == 0 {
			layers[2][i] = noData
		}
	}
	rasters := make([]*raster.Raster, len(layers))
	for k, values := range layers {
		r, err := raster.FromValues(big, values, noData)
		require.NoError(t, err)
		rasters[k] = r
	}

	out, err := Composite(rasters, Median)
	require.NoError(t, err)
	require.Equal(t, big, out.Grid)

	for i := 0; i < big.Size(); i++ {
		var valid []float64
		for _, values := range layers {
			if values[i] != noData {
				valid = append(valid, values[i])
			}
		}
		if len(valid) == 0 {
			require.False(t, out.Valid[i], "pixel %d", i)
			continue
		}
		require.True(t, out.Valid[i], "pixel %d", i)
		require.Equal(t, Median(valid), out.Data[i], "pixel %d", i)
	}
}

func TestPixelWithoutObservationsIsNoData(t *testing.T) {
	out, err := Composite([]*raster.Raster{pixel(t, 1, noData), pixel(t, 3, noData)}, Median)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, out.Valid)
}

func TestEmptyComposite(t *testing.T) {
	_, err := Composite(nil, Median)
	var empty *EmptyCompositeError
	require.ErrorAs(t, err, &empty)
	assert.Zero(t, empty.Images)

	_, err = Composite([]*raster.Raster{pixel(t, noData), pixel(t, noData)}, Median)
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, 2, empty.Images)
}

func TestCompositeMisaligned(t *testing.T) {
	_, err := Composite([]*raster.Raster{pixel(t, 1), pixel(t, 1, 2)}, Median)
	var alignment *raster.AlignmentError
	assert.ErrorAs(t, err, &alignment)
}

func TestUnknownReducer(t *testing.T) {
	_, err := ParseReducer("mode")
	assert.Error(t, err)

	reduce, err := ParseReducer("")
	require.NoError(t, err)
	assert.Equal(t, 2.0, reduce([]float64{3, 1, 2}))
}

func TestClipGridIsRegionWindow(t *testing.T) {
	reg, err := region.New("box", orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{3, 3}})
	require.NoError(t, err)

	clipped, err := Clip(raster.Fill(grid, 1), reg)
	require.NoError(t, err)
	assert.Equal(t, raster.NewGrid(2, 2, [6]float64{1, 1, 0, 3, 0, -1}), clipped.Grid)
	assert.Equal(t, 4, clipped.ValidCount())
}

func TestClipMasksPixelsOutsideRegion(t *testing.T) {
	reg, err := region.New("triangle", orb.Polygon{{{0, 0}, {4, 0}, {0, 4}, {0, 0}}})
	require.NoError(t, err)

	clipped, err := Clip(raster.Fill(grid, 1), reg)
	require.NoError(t, err)
	assert.Equal(t, grid, clipped.Grid)

	_, ok := clipped.At(0, 3)
	assert.True(t, ok, "pixel centred at (0.5, 0.5) is inside")
	_, ok = clipped.At(3, 0)
	assert.False(t, ok, "pixel centred at (3.5, 3.5) is outside")
}

func TestClipExtendsPastFootprint(t *testing.T) {
	reg, err := region.New("wide", orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{6, 4}})
	require.NoError(t, err)

	clipped, err := Clip(raster.Fill(grid, 1), reg)
	require.NoError(t, err)
	assert.Equal(t, 4, clipped.Grid.Width)
	assert.Equal(t, 2, clipped.Grid.Height)
	assert.Equal(t, 4, clipped.ValidCount())
}

func image(t *testing.T, date time.Time, lst float64) *imagery.MultibandImage {
	t.Helper()
	img, err := imagery.NewMultibandImage(date.Format("20060102"), "LANDSAT/LC08/C02/T1_L2", date, 0.1,
		map[string]*raster.Raster{"LST": raster.Fill(grid, lst)})
	require.NoError(t, err)
	return img
}

func TestCompositeRegion(t *testing.T) {
	c := imagery.NewCollection(
		image(t, time.Date(2021, 3, 20, 0, 0, 0, 0, time.UTC), 30),
		image(t, time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC), 20),
	)
	reg, err := region.New("box", orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{3, 3}})
	require.NoError(t, err)

	out, err := CompositeRegion(c, []string{"LST"}, Median, reg)
	require.NoError(t, err)
	assert.Equal(t, ID, out.ID)
	assert.Equal(t, time.Date(2021, 3, 20, 0, 0, 0, 0, time.UTC), out.Date)

	lst, ok := out.Band("LST")
	require.True(t, ok)
	v, valid := lst.At(1, 1)
	require.True(t, valid)
	assert.Equal(t, 25.0, v)
}

func TestCompositeRegionOutsideFootprint(t *testing.T) {
	c := imagery.NewCollection(image(t, time.Now(), 30))
	reg, err := region.New("far", orb.Bound{Min: orb.Point{10, 10}, Max: orb.Point{11, 11}})
	require.NoError(t, err)

	_, err = CompositeRegion(c, []string{"LST"}, Median, reg)
	var empty *EmptyCompositeError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "LST", empty.Band)
}

func TestCompositeBandsEmptyCollection(t *testing.T) {
	_, err := CompositeBands(nil, []string{"NDVI"}, Median)
	var empty *EmptyCompositeError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "NDVI", empty.Band)
}
