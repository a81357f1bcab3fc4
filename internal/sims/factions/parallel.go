package factions

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// slabFunc processes rows [lo, hi) and returns the number of conflict deaths
// it observed.
type slabFunc func(lo, hi int) int

// forEachSlab splits rows [0, rows) into contiguous slabs, one per worker,
// runs fn on each and returns the sum of the per-slab results once every
// worker has finished. With a single worker fn runs on the calling goroutine.
// Slab boundaries depend only on rows and workers, and each worker keeps its
// own partial sum, so the result does not depend on scheduling.
func forEachSlab(workers, rows int, fn slabFunc) (int, error) {
	if rows <= 0 {
		return 0, nil
	}
	if workers > rows {
		workers = rows
	}
	if workers <= 1 {
		return fn(0, rows), nil
	}

	partial := make([]int, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := rows * w / workers
		hi := rows * (w + 1) / workers
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("worker %d rows [%d,%d): %v", w, lo, hi, r)
				}
			}()
			partial[w] = fn(lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	sum := 0
	for _, n := range partial {
		sum += n
	}
	return sum, nil
}
