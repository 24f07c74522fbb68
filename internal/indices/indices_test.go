package indices

import (
	"testing"
	"time"

	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/raster"
	"github.com/forest-guardian/urban-heat-island/internal/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var grid = raster.NewGrid(1, 1, [6]float64{76.6, 0.0003, 0, 12.3, 0, -0.0003})

func scene(t *testing.T, bands map[string]float64) *imagery.MultibandImage {
	t.Helper()
	rasters := make(map[string]*raster.Raster, len(bands))
	for name, v := range bands {
		rasters[name] = raster.Fill(grid, v)
	}
	img, err := imagery.NewMultibandImage("LC08_144051_20200115", "LANDSAT/LC08/C02/T1_L2",
		time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), 0.02, rasters)
	require.NoError(t, err)
	return img
}

func value(t *testing.T, img *imagery.MultibandImage, band string) float64 {
	t.Helper()
	r, ok := img.Band(band)
	require.True(t, ok, "band %s", band)
	v, valid := r.At(0, 0)
	require.True(t, valid)
	return v
}

func TestCalculateLandsat8(t *testing.T) {
	img := scene(t, map[string]float64{
		"SR_B3": 0.08, "SR_B4": 0.05, "SR_B5": 0.35, "SR_B6": 0.20, "ST_B10": 44000,
	})

	out, err := Calculate(img, sensor.Landsat8)
	require.NoError(t, err)

	assert.Equal(t, []string{NDBI, NDVI, NDWI}, out.BandNames())
	assert.InDelta(t, (0.35-0.05)/(0.35+0.05), value(t, out, NDVI), 1e-12)
	assert.InDelta(t, (0.20-0.35)/(0.20+0.35), value(t, out, NDBI), 1e-12)
	assert.InDelta(t, (0.08-0.35)/(0.08+0.35), value(t, out, NDWI), 1e-12)
	assert.Equal(t, img.Date, out.Date)
	assert.Len(t, img.Bands, 5, "input image must be left untouched")
}

func TestNDWIVariantFollowsProfile(t *testing.T) {
	img := scene(t, map[string]float64{"B3": 0.1, "B4": 0.05, "B8": 0.3, "B11": 0.2})

	out, err := Calculate(img, sensor.Sentinel2, NDWI)
	require.NoError(t, err)
	assert.InDelta(t, (0.3-0.2)/(0.3+0.2), value(t, out, NDWI), 1e-12)
}

func TestMissingBand(t *testing.T) {
	img := scene(t, map[string]float64{"SR_B4": 0.05})

	_, err := Calculate(img, sensor.Landsat8, NDVI)
	var missing *MissingBandError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, sensor.NIR, missing.Role)
	assert.Equal(t, "SR_B5", missing.Band)
	assert.Equal(t, "LC08_144051_20200115", missing.ImageID)
}

func TestUnknownIndex(t *testing.T) {
	img := scene(t, map[string]float64{"SR_B4": 0.05})
	_, err := Calculate(img, sensor.Landsat8, "EVI")
	assert.ErrorContains(t, err, "unknown index")
}
