package core

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrAllocation reports that a grid buffer could not be allocated.
var ErrAllocation = errors.New("grid allocation failed")

// Allocator hands out grid buffers. Alloc returns an error wrapping
// ErrAllocation when the request cannot be served; it never panics.
type Allocator interface {
	Alloc(rows, cols int) (*Grid, error)
	Release(g *Grid)
}

// HeapAllocator allocates straight from the Go heap. It only fails on
// dimensions that cannot describe a grid.
type HeapAllocator struct{}

// Alloc implements Allocator.
func (HeapAllocator) Alloc(rows, cols int) (*Grid, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, err
	}
	return &Grid{Rows: rows, Cols: cols, data: make([]Faction, rows*cols)}, nil
}

// Release implements Allocator. Memory is reclaimed by the garbage collector.
func (HeapAllocator) Release(*Grid) {}

// Arena is an Allocator with a fixed cell budget. A budget of zero means
// unlimited. It is safe for concurrent use.
type Arena struct {
	mu     sync.Mutex
	budget int
	inUse  int
	live   map[*Grid]struct{}
}

// NewArena returns an arena that can hold at most maxCells cells at once.
func NewArena(maxCells int) *Arena {
	if maxCells < 0 {
		maxCells = 0
	}
	return &Arena{budget: maxCells, live: make(map[*Grid]struct{})}
}

// Alloc implements Allocator.
func (a *Arena) Alloc(rows, cols int) (*Grid, error) {
	if err := checkDims(rows, cols); err != nil {
		return nil, err
	}
	n := rows * cols

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.budget > 0 && a.inUse+n > a.budget {
		return nil, fmt.Errorf("%w: %d cells requested, %d of %d in use", ErrAllocation, n, a.inUse, a.budget)
	}
	g := &Grid{Rows: rows, Cols: cols, data: make([]Faction, n)}
	a.inUse += n
	a.live[g] = struct{}{}
	return g, nil
}

// Release implements Allocator. Releasing a grid the arena did not hand out,
// or releasing twice, is a no-op.
func (a *Arena) Release(g *Grid) {
	if g == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.live[g]; !ok {
		return
	}
	delete(a.live, g)
	a.inUse -= len(g.data)
}

// InUse returns the number of cells currently handed out.
func (a *Arena) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inUse
}

// Live returns the number of grids currently handed out.
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

func checkDims(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrAllocation, rows, cols)
	}
	if rows > math.MaxInt/cols {
		return fmt.Errorf("%w: %dx%d overflows", ErrAllocation, rows, cols)
	}
	return nil
}
