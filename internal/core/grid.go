package core

import "fmt"

// Grid stores a 2D grid of faction identifiers in row-major order.
type Grid struct {
	Rows, Cols int
	data       []Faction
}

// MooreOffsets lists the (dRow, dCol) pairs of the eight Moore neighbours.
var MooreOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// NewGrid allocates a grid on the heap. Callers that need allocation
// failures to be observable go through an Allocator instead.
func NewGrid(rows, cols int) *Grid {
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}
	return &Grid{Rows: rows, Cols: cols, data: make([]Faction, rows*cols)}
}

// GridFromRows builds a grid from a slice of equally long rows.
func GridFromRows(rows [][]Faction) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("grid: empty rows")
	}
	g := NewGrid(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != g.Cols {
			return nil, fmt.Errorf("grid: row %d has %d cells, want %d", r, len(row), g.Cols)
		}
		copy(g.data[r*g.Cols:], row)
	}
	return g, nil
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *Grid) Cells() []Faction { return g.data }

// Size reports the grid dimensions.
func (g *Grid) Size() Size { return Size{Rows: g.Rows, Cols: g.Cols} }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.data) }

// Index returns the linear slice index for (row, col).
func (g *Grid) Index(row, col int) int { return row*g.Cols + col }

// InBounds reports whether (row, col) addresses a cell of the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// Get returns the faction at (row, col). The second result is false when the
// position lies outside the grid, in which case the faction is meaningless.
func (g *Grid) Get(row, col int) (Faction, bool) {
	if !g.InBounds(row, col) {
		return Neutral, false
	}
	return g.data[row*g.Cols+col], true
}

// Set stores f at (row, col). The position must be in bounds.
func (g *Grid) Set(row, col int, f Faction) {
	g.data[row*g.Cols+col] = f
}

// Fill sets every cell to f.
func (g *Grid) Fill(f Faction) {
	for i := range g.data {
		g.data[i] = f
	}
}

// Clear fills the grid with the neutral faction.
func (g *Grid) Clear() { g.Fill(Neutral) }

// Clone returns a heap copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{Rows: g.Rows, Cols: g.Cols, data: make([]Faction, len(g.data))}
	copy(out.data, g.data)
	return out
}

// CopyFrom copies the cells of src, which must have the same dimensions.
func (g *Grid) CopyFrom(src *Grid) error {
	if !g.SameShape(src) {
		return fmt.Errorf("grid: copy %dx%d into %dx%d", src.Rows, src.Cols, g.Rows, g.Cols)
	}
	copy(g.data, src.data)
	return nil
}

// CopyRows copies rows [lo, hi) of src into g. Shapes must match.
func (g *Grid) CopyRows(src *Grid, lo, hi int) {
	copy(g.data[lo*g.Cols:hi*g.Cols], src.data[lo*src.Cols:hi*src.Cols])
}

// SameShape reports whether both grids have identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return o != nil && g.Rows == o.Rows && g.Cols == o.Cols
}

// Equal reports whether both grids have the same shape and cells.
func (g *Grid) Equal(o *Grid) bool {
	if !g.SameShape(o) {
		return false
	}
	for i, v := range g.data {
		if o.data[i] != v {
			return false
		}
	}
	return true
}

// Count returns how many cells hold faction f.
func (g *Grid) Count(f Faction) int {
	n := 0
	for _, v := range g.data {
		if v == f {
			n++
		}
	}
	return n
}

// Validate checks that every cell lies in [0, factions).
func (g *Grid) Validate(factions int) error {
	for i, v := range g.data {
		if int(v) >= factions {
			return fmt.Errorf("grid: cell (%d,%d) holds faction %d, want < %d", i/g.Cols, i%g.Cols, v, factions)
		}
	}
	return nil
}
