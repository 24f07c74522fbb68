package geotiff

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/sirupsen/logrus"
)

// ErrOversize is returned when an export holds more pixels than allowed.
var ErrOversize = errors.New("export exceeds the maximum pixel count")

// Sink writes composites as Float32 GeoTIFFs in EPSG:4326, one band per
// composite band in name order.
type Sink struct {
	Dir       string
	MaxPixels float64
	// Resolution is the requested export scale in metres. Zero or the
	// native sensor resolution are accepted; anything else would need
	// resampling, which is not supported.
	Resolution float64
	Native     float64
	Logger     logrus.FieldLogger
}

// Check validates an export of img without writing anything.
func (s *Sink) Check(img *imagery.MultibandImage) error {
	grid, ok := img.Grid()
	if !ok {
		return fmt.Errorf("image %s has no bands", img.ID)
	}
	if s.Resolution != 0 && s.Native != 0 && math.Abs(s.Resolution-s.Native) > 1e-9 {
		return fmt.Errorf("export resolution %vm differs from native %vm, resampling is not supported", s.Resolution, s.Native)
	}
	if s.MaxPixels > 0 && float64(grid.Size()) > s.MaxPixels {
		return fmt.Errorf("%s: %d pixels > %.0f: %w", img.ID, grid.Size(), s.MaxPixels, ErrOversize)
	}
	return nil
}

// Export writes img to <Dir>/<name>.tif and returns the file path.
func (s *Sink) Export(img *imagery.MultibandImage, name string) (string, error) {
	if err := s.Check(img); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	grid, _ := img.Grid()
	names := img.BandNames()
	path := filepath.Join(s.Dir, name+".tif")

	ds, err := godal.Create(godal.GTiff, path, len(names), godal.Float32, grid.Width, grid.Height,
		godal.CreationOption("COMPRESS=LZW", "TILED=YES"), ignoreWarnings)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := s.write(ds, img, names); err != nil {
		ds.Close()
		return "", err
	}
	if err := ds.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"path": path, "bands": names}).Info("composite exported")
	}
	return path, nil
}

func (s *Sink) write(ds *godal.Dataset, img *imagery.MultibandImage, names []string) error {
	grid, _ := img.Grid()
	if err := ds.SetGeoTransform(grid.GeoTransform); err != nil {
		return fmt.Errorf("failed to set GeoTransform: %w", err)
	}
	sr, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return err
	}
	defer sr.Close()
	if err := ds.SetSpatialRef(sr); err != nil {
		return fmt.Errorf("failed to set spatial reference: %w", err)
	}

	bands := ds.Bands()
	for i, name := range names {
		values := img.Bands[name].Values(NoData)
		buf := make([]float32, len(values))
		for j, v := range values {
			buf[j] = float32(v)
		}
		if err := bands[i].SetNoData(NoData); err != nil {
			return err
		}
		if err := bands[i].SetDescription(name); err != nil {
			return err
		}
		if err := bands[i].Write(0, 0, buf, grid.Width, grid.Height); err != nil {
			return fmt.Errorf("failed to write band %s: %w", name, err)
		}
	}
	return nil
}
