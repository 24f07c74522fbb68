package output

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forest-guardian/urban-heat-island/internal/correlation"
	"github.com/forest-guardian/urban-heat-island/internal/properties"
	"github.com/forest-guardian/urban-heat-island/internal/raster"
	"github.com/forest-guardian/urban-heat-island/internal/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRamp(t *testing.T) {
	p := properties.Palettes["NDVI"]
	assert.Equal(t, properties.Red, Ramp(p, -1))
	assert.Equal(t, properties.Red, Ramp(p, -3))
	assert.Equal(t, properties.Yellow, Ramp(p, 0))
	assert.Equal(t, properties.Green, Ramp(p, 1))
	assert.Equal(t, properties.Color{R: 128, G: 192, B: 0}, Ramp(p, 0.5))
}

func TestCreateMapImage(t *testing.T) {
	grid := raster.NewGrid(3, 2, [6]float64{76.62, 0.0003, 0, 12.31, 0, -0.0003})
	r, err := raster.FromValues(grid, []float64{15, -9999, 50, 20, 30, 40}, -9999)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "maps", "lst.png")
	require.NoError(t, CreateMapImage(r, "LST", path, 2))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())

	_, _, _, a := img.At(2, 0).RGBA()
	assert.Zero(t, a, "NoData pixel is transparent")
	red, green, _, _ := img.At(0, 0).RGBA()
	assert.Zero(t, red>>8)
	assert.Equal(t, uint32(128), green>>8)
}

func TestCreateMapImageEmpty(t *testing.T) {
	r := raster.New(raster.NewGrid(2, 2, [6]float64{0, 1, 0, 0, 0, -1}))
	assert.Error(t, CreateMapImage(r, "LST", filepath.Join(t.TempDir(), "x.png"), 1))
}

func table() *sample.Sample {
	return &sample.Sample{
		Columns: []string{"NDVI", "LST"},
		Rows: []sample.Row{
			{X: 1, Y: 2, Lon: 76.61, Lat: 12.3, Values: []float64{0.1, 35}},
			{X: 3, Y: 4, Lon: 76.62, Lat: 12.29, Values: []float64{0.4, 31}},
			{X: 5, Y: 6, Lon: 76.63, Lat: 12.28, Values: []float64{0.6, 29}},
		},
	}
}

func TestCreateScatterChart(t *testing.T) {
	s := table()
	res, err := correlation.Correlate(s, "NDVI", "LST")
	require.NoError(t, err)
	trend, err := correlation.FitTrend(s, "NDVI", "LST")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "charts", "ndvi_lst.png")
	require.NoError(t, CreateScatterChart(s, res, trend, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestCreateSampleCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, CreateSampleCSV(table(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "row,x,y,lon,lat,band,value", lines[0])
	assert.Equal(t, "0,1,2,76.61,12.3,NDVI,0.1", lines[1])
	assert.Equal(t, "0,1,2,76.61,12.3,LST,35", lines[2])
}

func TestCreateCorrelationCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "correlation.csv")
	require.NoError(t, CreateCorrelationCSV([]correlation.Result{{X: "NDVI", Y: "LST", N: 3, R: -0.5, R2: 0.25}}, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x,y,n,r,r2\nNDVI,LST,3,-0.5,0.25\n", string(raw))
}
