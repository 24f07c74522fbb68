package raster

import "fmt"

// AlignmentError is returned when rasters taking part in one elementwise or
// reduction operation do not share a grid. It is never recovered by resampling.
type AlignmentError struct {
	Op       string
	Expected Grid
	Actual   Grid
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("%s: raster grid %s is not aligned with %s", e.Op, e.Actual, e.Expected)
}

// CheckAligned returns an *AlignmentError naming op if any raster differs from the first.
func CheckAligned(op string, rasters ...*Raster) error {
	if len(rasters) == 0 {
		return nil
	}
	ref := rasters[0].Grid
	for _, r := range rasters[1:] {
		if !ref.Aligned(r.Grid) {
			return &AlignmentError{Op: op, Expected: ref, Actual: r.Grid}
		}
	}
	return nil
}
