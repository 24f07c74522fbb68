package raster

import "math"

// Every operation in this file returns a new raster and never mutates its
// inputs. A pixel that is NoData in any operand is NoData in the result, and
// invalid-domain conditions (zero denominator, log of a non-positive value,
// non-finite results) produce NoData instead of an error.

type unaryFunc func(v float64) (float64, bool)

type binaryFunc func(a, b float64) (float64, bool)

func apply(r *Raster, fn unaryFunc) *Raster {
	out := New(r.Grid)
	width := r.Grid.Width
	ForEachRow(r.Grid, func(y int) {
		for i := y * width; i < (y+1)*width; i++ {
			if !r.Valid[i] {
				continue
			}
			v, ok := fn(r.Data[i])
			setResult(out, i, v, ok)
		}
	})
	return out
}

func combine(op string, a, b *Raster, fn binaryFunc) (*Raster, error) {
	if err := CheckAligned(op, a, b); err != nil {
		return nil, err
	}
	out := New(a.Grid)
	width := a.Grid.Width
	ForEachRow(a.Grid, func(y int) {
		for i := y * width; i < (y+1)*width; i++ {
			if !a.Valid[i] || !b.Valid[i] {
				continue
			}
			v, ok := fn(a.Data[i], b.Data[i])
			setResult(out, i, v, ok)
		}
	})
	return out, nil
}

func setResult(out *Raster, i int, v float64, ok bool) {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	out.Data[i] = v
	out.Valid[i] = true
}

// NormalizedDifference computes (a - b) / (a + b). Pixels where a + b == 0 are NoData.
func NormalizedDifference(a, b *Raster) (*Raster, error) {
	return combine("normalized difference", a, b, func(x, y float64) (float64, bool) {
		sum := x + y
		if sum == 0 {
			return 0, false
		}
		return (x - y) / sum, true
	})
}

// Affine computes r*scale + offset.
func Affine(r *Raster, scale, offset float64) *Raster {
	return apply(r, func(v float64) (float64, bool) {
		return v*scale + offset, true
	})
}

// Clamp bounds every pixel to [lo, hi].
func Clamp(r *Raster, lo, hi float64) *Raster {
	return apply(r, func(v float64) (float64, bool) {
		return math.Max(lo, math.Min(hi, v)), true
	})
}

// Log computes the natural logarithm. Pixels <= 0 are NoData.
func Log(r *Raster) *Raster {
	return apply(r, func(v float64) (float64, bool) {
		if v <= 0 {
			return 0, false
		}
		return math.Log(v), true
	})
}

// Divide computes a / b. Pixels where b == 0 are NoData.
func Divide(a, b *Raster) (*Raster, error) {
	return combine("divide", a, b, func(x, y float64) (float64, bool) {
		if y == 0 {
			return 0, false
		}
		return x / y, true
	})
}

func Multiply(a, b *Raster) (*Raster, error) {
	return combine("multiply", a, b, func(x, y float64) (float64, bool) {
		return x * y, true
	})
}

// Mask returns a copy of r with every pixel for which keep returns false set to NoData.
func Mask(r *Raster, keep func(x, y int, v float64) bool) *Raster {
	out := New(r.Grid)
	width := r.Grid.Width
	ForEachRow(r.Grid, func(y int) {
		for x := 0; x < width; x++ {
			i := y*width + x
			if r.Valid[i] && keep(x, y, r.Data[i]) {
				out.Data[i] = r.Data[i]
				out.Valid[i] = true
			}
		}
	})
	return out
}

// Crop returns the pixel window of r starting at (x0, y0). Parts of the
// window falling outside r are NoData.
func Crop(r *Raster, x0, y0, width, height int) *Raster {
	out := New(r.Grid.Window(x0, y0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v, ok := r.At(x0+x, y0+y)
			if !ok {
				continue
			}
			i := y*width + x
			out.Data[i] = v
			out.Valid[i] = true
		}
	}
	return out
}
