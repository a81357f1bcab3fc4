package world

import (
	"faction-ca/internal/core"
	rngcore "faction-ca/pkg/core"
)

// Random returns a deterministic world where each cell is live with the
// given density and live cells are spread uniformly over the factions.
func Random(rows, cols, factions int, density float64, seed int64) *core.Grid {
	g := core.NewGrid(rows, cols)
	rngcore.FillFactions(rngcore.NewRNG(seed).Source(), g.Cells(), factions, density)
	return g
}

// RandomInvasion returns a sparse plan in which one faction lands on a
// random rectangle covering roughly a quarter of the world.
func RandomInvasion(rows, cols, factions int, seed int64) *core.Grid {
	rng := rngcore.NewRNG(seed)
	src := rng.Source()
	g := core.NewGrid(rows, cols)
	if factions < 2 {
		return g
	}
	f := core.Faction(1 + rng.Uint8n(uint8(factions-1)))
	h := max(1, rows/2)
	w := max(1, cols/2)
	top := src.IntN(rows - h + 1)
	left := src.IntN(cols - w + 1)
	for r := top; r < top+h; r++ {
		for c := left; c < left+w; c++ {
			if rng.Chance(0.5) {
				g.Set(r, c, f)
			}
		}
	}
	return g
}
