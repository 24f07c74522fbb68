package raster

import (
	"fmt"
	"math"
)

// Grid describes the pixel layout of a raster: its size and a GDAL-style
// geotransform (originX, pixelWidth, rowRotation, originY, colRotation, pixelHeight).
type Grid struct {
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	GeoTransform [6]float64 `json:"geo_transform"`
}

func NewGrid(width, height int, geoTransform [6]float64) Grid {
	return Grid{Width: width, Height: height, GeoTransform: geoTransform}
}

func (g Grid) Size() int {
	return g.Width * g.Height
}

// Aligned reports whether two grids share extent, resolution and pixel alignment.
func (g Grid) Aligned(other Grid) bool {
	return g.Width == other.Width && g.Height == other.Height && g.GeoTransform == other.GeoTransform
}

// PixelCenter returns the geographic coordinate of the centre of pixel (x, y).
func (g Grid) PixelCenter(x, y int) (float64, float64) {
	gt := g.GeoTransform
	lon := gt[0] + gt[1]*(float64(x)+0.5) + gt[2]*(float64(y)+0.5)
	lat := gt[3] + gt[4]*(float64(x)+0.5) + gt[5]*(float64(y)+0.5)
	return lon, lat
}

// PixelAt returns the pixel containing the geographic coordinate. Rotated
// geotransforms are not supported.
func (g Grid) PixelAt(lon, lat float64) (int, int, bool) {
	gt := g.GeoTransform
	if gt[1] == 0 || gt[5] == 0 {
		return 0, 0, false
	}
	x := int(math.Floor((lon - gt[0]) / gt[1]))
	y := int(math.Floor((lat - gt[3]) / gt[5]))
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return x, y, false
	}
	return x, y, true
}

// Bounds returns minX, minY, maxX, maxY of the grid extent.
func (g Grid) Bounds() [4]float64 {
	gt := g.GeoTransform
	x0, x1 := gt[0], gt[0]+gt[1]*float64(g.Width)
	y0, y1 := gt[3], gt[3]+gt[5]*float64(g.Height)
	return [4]float64{math.Min(x0, x1), math.Min(y0, y1), math.Max(x0, x1), math.Max(y0, y1)}
}

// Resolution returns the absolute pixel width and height.
func (g Grid) Resolution() (float64, float64) {
	return math.Abs(g.GeoTransform[1]), math.Abs(g.GeoTransform[5])
}

// Window returns the sub-grid starting at pixel (x0, y0) with the given size.
func (g Grid) Window(x0, y0, width, height int) Grid {
	gt := g.GeoTransform
	return Grid{
		Width:  width,
		Height: height,
		GeoTransform: [6]float64{
			gt[0] + float64(x0)*gt[1] + float64(y0)*gt[2],
			gt[1],
			gt[2],
			gt[3] + float64(x0)*gt[4] + float64(y0)*gt[5],
			gt[4],
			gt[5],
		},
	}
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d@%v", g.Width, g.Height, g.GeoTransform)
}

// Raster is a single band of float64 pixels over a Grid. Valid is the
// per-pixel validity mask; Data holds 0 wherever Valid is false.
type Raster struct {
	Grid  Grid      `json:"grid"`
	Data  []float64 `json:"data"`
	Valid []bool    `json:"valid"`
}

// New returns a raster on grid with every pixel NoData.
func New(grid Grid) *Raster {
	return &Raster{
		Grid:  grid,
		Data:  make([]float64, grid.Size()),
		Valid: make([]bool, grid.Size()),
	}
}

// FromValues builds a raster from row-major values. Pixels equal to noData,
// NaN or infinite are marked invalid.
func FromValues(grid Grid, values []float64, noData float64) (*Raster, error) {
	if len(values) != grid.Size() {
		return nil, fmt.Errorf("expected %d values for grid %s, got %d", grid.Size(), grid, len(values))
	}
	r := New(grid)
	for i, v := range values {
		if v == noData || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		r.Data[i] = v
		r.Valid[i] = true
	}
	return r, nil
}

// Fill returns a raster on grid with every pixel set to value.
func Fill(grid Grid, value float64) *Raster {
	r := New(grid)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return r
	}
	for i := range r.Data {
		r.Data[i] = value
		r.Valid[i] = true
	}
	return r
}

// At returns the value of pixel (x, y) and whether it is valid.
func (r *Raster) At(x, y int) (float64, bool) {
	if x < 0 || y < 0 || x >= r.Grid.Width || y >= r.Grid.Height {
		return 0, false
	}
	i := y*r.Grid.Width + x
	return r.Data[i], r.Valid[i]
}

func (r *Raster) ValidCount() int {
	n := 0
	for _, ok := range r.Valid {
		if ok {
			n++
		}
	}
	return n
}

// Values returns a copy of the pixel values with invalid pixels replaced by noData.
func (r *Raster) Values(noData float64) []float64 {
	out := make([]float64, len(r.Data))
	for i, v := range r.Data {
		if r.Valid[i] {
			out[i] = v
		} else {
			out[i] = noData
		}
	}
	return out
}

// MinMax returns the smallest and largest valid values. ok is false when the
// raster holds no valid pixel.
func (r *Raster) MinMax() (lo, hi float64, ok bool) {
	for i, v := range r.Data {
		if !r.Valid[i] {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, ok
}

func (r *Raster) Clone() *Raster {
	out := &Raster{
		Grid:  r.Grid,
		Data:  make([]float64, len(r.Data)),
		Valid: make([]bool, len(r.Valid)),
	}
	copy(out.Data, r.Data)
	copy(out.Valid, r.Valid)
	return out
}
