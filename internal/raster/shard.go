package raster

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Rasters smaller than this are processed on the calling goroutine.
const minShardPixels = 1 << 16

// ForEachRow calls fn once per row of grid. Large grids are split into row
// ranges processed concurrently; fn must only touch pixels of its own row.
func ForEachRow(grid Grid, fn func(y int)) {
	if grid.Size() < minShardPixels {
		for y := 0; y < grid.Height; y++ {
			fn(y)
		}
		return
	}

	workers := runtime.GOMAXPROCS(0)
	rowsPerShard := (grid.Height + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < grid.Height; start += rowsPerShard {
		start, end := start, min(start+rowsPerShard, grid.Height)
		g.Go(func() error {
			for y := start; y < end; y++ {
				fn(y)
			}
			return nil
		})
	}
	_ = g.Wait()
}
