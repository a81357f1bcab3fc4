package core

// Faction identifies the group a live cell belongs to. Neutral marks a dead cell.
type Faction uint8

// Neutral is the reserved "no faction" identifier.
const Neutral Faction = 0

// MaxFactions is the largest faction cardinality a Faction can represent,
// neutral included.
const MaxFactions = 256

// Size describes the dimensions of a simulation grid.
type Size struct {
	Rows int
	Cols int
}

// Cells returns the number of cells in a grid of this size.
func (s Size) Cells() int { return s.Rows * s.Cols }

// Sink receives a read-only view of the grid once per exported generation.
// Implementations must not retain g past the call and must not report errors
// back to the caller; exporting is a side effect only.
type Sink interface {
	Export(g *Grid, generation int)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(g *Grid, generation int)

// Export calls f(g, generation).
func (f SinkFunc) Export(g *Grid, generation int) { f(g, generation) }
