package factions

import "faction-ca/internal/core"

// Next computes the faction (row, col) holds in the next generation and
// whether the transition counts towards the death toll. overlay may be nil.
//
// Next reads cur and overlay only, so it may run concurrently for any set of
// cells as long as nobody writes to either grid.
func (r Rules) Next(cur, overlay *core.Grid, row, col int) (core.Faction, bool) {
	cell, _ := cur.Get(row, col)

	// An invasion lands regardless of neighbours. Landing on any live cell
	// counts, including one already held by the invading faction.
	if overlay != nil {
		if inv, _ := overlay.Get(row, col); inv != core.Neutral {
			return inv, cell != core.Neutral
		}
	}

	nc := CountNeighbors(cur, row, col)

	if cell == core.Neutral {
		return r.born(&nc), false
	}

	if r.Fight(nc.Hostile(cell)) {
		return core.Neutral, true
	}
	if !r.Survive(nc.Count(cell)) {
		return core.Neutral, false
	}
	return cell, false
}

// born picks the faction a neutral cell is born into. Ties go to the highest
// birthable faction id.
func (r Rules) born(nc *NeighborCounts) core.Faction {
	next := core.Neutral
	for f := 1; f < r.Factions; f++ {
		if r.Birth(nc.Count(core.Faction(f))) {
			next = core.Faction(f)
		}
	}
	return next
}
