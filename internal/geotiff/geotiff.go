package geotiff

import (
	"errors"
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/urban-heat-island/internal/raster"
)

// NoData is the value written for invalid pixels.
const NoData = -9999

// ignoreWarnings keeps GDAL warnings out of the error path.
var ignoreWarnings = godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
	if ec <= godal.CE_Warning {
		return nil
	}
	return errors.New(msg)
})

// Reader loads GeoTIFF bands with GDAL.
type Reader struct{}

// Read returns band i of the file under names[i]. The band's declared
// nodata value, when present, marks invalid pixels.
func (Reader) Read(path string, names []string) (map[string]*raster.Raster, error) {
	ds, err := godal.Open(path, ignoreWarnings)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer ds.Close()

	st := ds.Structure()
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	bands := ds.Bands()
	if len(names) > len(bands) {
		return nil, fmt.Errorf("%s has %d bands, manifest lists %d", path, len(bands), len(names))
	}

	grid := raster.NewGrid(st.SizeX, st.SizeY, gt)
	out := make(map[string]*raster.Raster, len(names))
	for i, name := range names {
		data := make([]float64, grid.Size())
		if err := bands[i].Read(0, 0, data, st.SizeX, st.SizeY); err != nil {
			return nil, fmt.Errorf("failed to read band %s: %w", name, err)
		}
		nd, ok := bands[i].NoData()
		if !ok {
			nd = math.NaN()
		}
		r, err := raster.FromValues(grid, data, nd)
		if err != nil {
			return nil, err
		}
		out[name] = r
	}
	return out, nil
}
