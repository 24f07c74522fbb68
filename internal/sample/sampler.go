package sample

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/forest-guardian/urban-heat-island/internal/imagery"
	"github.com/forest-guardian/urban-heat-island/internal/raster"
	"github.com/forest-guardian/urban-heat-island/internal/region"
)

// Sampler draws reproducible pixel samples. The same region, raster content,
// size and seed always produce the same rows in the same order.
type Sampler struct {
	Size int
	Seed int64
}

func NewSampler(size int, seed int64) (*Sampler, error) {
	if size < 1 {
		return nil, fmt.Errorf("sample size must be at least 1, got %d", size)
	}
	return &Sampler{Size: size, Seed: seed}, nil
}

// Draw picks up to Size distinct pixels of img whose centres lie inside reg
// and reads every band at each of them. A pixel that is NoData in any band is
// dropped without drawing a replacement, so the sample may hold fewer rows.
func (s *Sampler) Draw(img *imagery.MultibandImage, reg region.Region, bands []string) (*Sample, error) {
	if len(bands) == 0 {
		return nil, errors.New("sample needs at least one band")
	}
	rasters := make([]*raster.Raster, len(bands))
	for i, name := range bands {
		r, ok := img.Band(name)
		if !ok {
			return nil, fmt.Errorf("image %s has no band %s", img.ID, name)
		}
		rasters[i] = r
	}
	grid := rasters[0].Grid

	candidates := candidates(grid, reg)
	picked := s.pick(candidates)

	out := &Sample{Columns: append([]string(nil), bands...)}
	for _, idx := range picked {
		x, y := idx%grid.Width, idx/grid.Width
		values := make([]float64, len(rasters))
		complete := true
		for i, r := range rasters {
			if !r.Valid[idx] {
				complete = false
				break
			}
			values[i] = r.Data[idx]
		}
		if !complete {
			continue
		}
		lon, lat := grid.PixelCenter(x, y)
		out.Rows = append(out.Rows, Row{X: x, Y: y, Lon: lon, Lat: lat, Values: values})
	}
	return out, nil
}

// candidates lists the row-major indices of pixels centred inside reg.
func candidates(grid raster.Grid, reg region.Region) []int {
	var out []int
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			if reg.ContainsPixel(grid, x, y) {
				out = append(out, y*grid.Width+x)
			}
		}
	}
	return out
}

// pick runs a seeded partial Fisher-Yates shuffle over a copy of candidates
// and returns the first min(Size, len(candidates)) entries in draw order.
func (s *Sampler) pick(candidates []int) []int {
	pool := append([]int(nil), candidates...)
	n := min(s.Size, len(pool))
	rng := rand.New(rand.NewSource(s.Seed))
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
