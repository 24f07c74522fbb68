package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/forest-guardian/urban-heat-island/internal/properties"
	"github.com/forest-guardian/urban-heat-island/internal/raster"
)

// CreateMapImage renders band r as a PNG using the band's palette. NoData
// pixels stay transparent. scale enlarges every pixel to scale×scale.
func CreateMapImage(r *raster.Raster, band, outputImagePath string, scale int) error {
	if scale < 1 {
		scale = 1
	}
	lo, hi, ok := r.MinMax()
	if !ok {
		return fmt.Errorf("band %s has no valid pixel to render", band)
	}
	palette := properties.PaletteFor(band, lo, hi)

	dc := gg.NewContext(r.Grid.Width*scale, r.Grid.Height*scale)
	for y := 0; y < r.Grid.Height; y++ {
		for x := 0; x < r.Grid.Width; x++ {
			v, ok := r.At(x, y)
			if !ok {
				continue
			}
			c := Ramp(palette, v)
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			dc.DrawRectangle(float64(x*scale), float64(y*scale), float64(scale), float64(scale))
			dc.Fill()
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputImagePath), 0755); err != nil {
		return err
	}
	if err := dc.SavePNG(outputImagePath); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// Ramp maps v onto the palette, clamping values outside [Min, Max].
func Ramp(p properties.Palette, v float64) properties.Color {
	if len(p.Colors) == 1 || p.Max <= p.Min {
		return p.Colors[0]
	}
	t := math.Max(0, math.Min(1, (v-p.Min)/(p.Max-p.Min)))
	pos := t * float64(len(p.Colors)-1)
	i := int(math.Floor(pos))
	if i >= len(p.Colors)-1 {
		return p.Colors[len(p.Colors)-1]
	}
	f := pos - float64(i)
	a, b := p.Colors[i], p.Colors[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return properties.Color{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B)}
}
