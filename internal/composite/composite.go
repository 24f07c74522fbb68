package composite

import (
	"fmt"

	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/raster"
	"github.com/forest-guardian/urban-heat-island/internal/region"
)

// ID of the image returned by CompositeBands.
const ID = "composite"

// EmptyCompositeError is returned when a composite holds no valid pixel,
// either because the collection was empty or every observation was NoData.
type EmptyCompositeError struct {
	Band   string
	Images int
}

func (e *EmptyCompositeError) Error() string {
	if e.Images == 0 {
		return fmt.Sprintf("composite %s: image collection is empty", e.Band)
	}
	return fmt.Sprintf("composite %s: no valid pixel across %d images", e.Band, e.Images)
}

// Composite reduces aligned rasters to one. A pixel with no valid observation
// is NoData. All rasters must be available before any pixel is reduced.
func Composite(rasters []*raster.Raster, reduce Reducer) (*raster.Raster, error) {
	if len(rasters) == 0 {
		return nil, &EmptyCompositeError{}
	}
	if err := raster.CheckAligned("composite", rasters...); err != nil {
		return nil, err
	}

	grid := rasters[0].Grid
	out := raster.New(grid)
	raster.ForEachRow(grid, func(y int) {
		values := make([]float64, 0, len(rasters))
		for i := y * grid.Width; i < (y+1)*grid.Width; i++ {
			values = values[:0]
			for _, r := range rasters {
				if r.Valid[i] {
					values = append(values, r.Data[i])
				}
			}
			if len(values) == 0 {
				continue
			}
			out.Data[i] = reduce(values)
			out.Valid[i] = true
		}
	})

	if out.ValidCount() == 0 {
		return nil, &EmptyCompositeError{Images: len(rasters)}
	}
	return out, nil
}

// CompositeBands reduces each named band of the collection. The result
// carries the source of the first image and the date of the latest one.
func CompositeBands(c imagery.Collection, bands []string, reduce Reducer) (*imagery.MultibandImage, error) {
	if len(c) == 0 {
		band := ""
		if len(bands) > 0 {
			band = bands[0]
		}
		return nil, &EmptyCompositeError{Band: band}
	}

	out := make(map[string]*raster.Raster, len(bands))
	for _, band := range bands {
		rasters, err := c.Select(band)
		if err != nil {
			return nil, err
		}
		r, err := Composite(rasters, reduce)
		if err != nil {
			return nil, withBand(err, band)
		}
		out[band] = r
	}

	latest := c[len(c)-1]
	return imagery.NewMultibandImage(ID, c[0].Source, latest.Date, 0, out)
}

// Clip crops r to the pixel window covering the region and sets every pixel
// whose centre lies outside the region to NoData. The result's grid is the
// region window, whatever the input footprint.
func Clip(r *raster.Raster, reg region.Region) (*raster.Raster, error) {
	x0, y0, width, height, err := reg.Window(r.Grid)
	if err != nil {
		return nil, err
	}
	cropped := raster.Crop(r, x0, y0, width, height)
	return raster.Mask(cropped, func(x, y int, _ float64) bool {
		return reg.ContainsPixel(cropped.Grid, x, y)
	}), nil
}

// ClipImage clips every band of img to the region.
func ClipImage(img *imagery.MultibandImage, reg region.Region) (*imagery.MultibandImage, error) {
	bands := make(map[string]*raster.Raster, len(img.Bands))
	for _, name := range img.BandNames() {
		clipped, err := Clip(img.Bands[name], reg)
		if err != nil {
			return nil, fmt.Errorf("failed to clip %s: %w", name, err)
		}
		bands[name] = clipped
	}
	return img.WithBands(bands)
}

// CompositeRegion reduces the collection and clips the composite to the
// region once. A band left without valid pixels after clipping is an
// *EmptyCompositeError.
func CompositeRegion(c imagery.Collection, bands []string, reduce Reducer, reg region.Region) (*imagery.MultibandImage, error) {
	composite, err := CompositeBands(c, bands, reduce)
	if err != nil {
		return nil, err
	}
	clipped, err := ClipImage(composite, reg)
	if err != nil {
		return nil, err
	}
	for _, name := range clipped.BandNames() {
		if clipped.Bands[name].ValidCount() == 0 {
			return nil, &EmptyCompositeError{Band: name, Images: len(c)}
		}
	}
	return clipped, nil
}

func withBand(err error, band string) error {
	if empty, ok := err.(*EmptyCompositeError); ok {
		return &EmptyCompositeError{Band: band, Images: empty.Images}
	}
	return fmt.Errorf("failed to composite %s: %w", band, err)
}
