package factions

import "faction-ca/internal/core"

// NeighborCounts maps faction identifiers to how many of the eight Moore
// neighbours hold them. A cell has at most eight neighbours, so eight
// entries always suffice regardless of the faction cardinality.
type NeighborCounts struct {
	ids     [8]core.Faction
	counts  [8]uint8
	n       int
	live    int
	neutral int
}

// CountNeighbors tallies the in-bounds Moore neighbours of (row, col).
// The cell itself and positions outside the grid are never counted.
func CountNeighbors(g *core.Grid, row, col int) NeighborCounts {
	var nc NeighborCounts
	for _, off := range core.MooreOffsets {
		f, ok := g.Get(row+off[0], col+off[1])
		if !ok {
			continue
		}
		nc.add(f)
	}
	return nc
}

func (nc *NeighborCounts) add(f core.Faction) {
	if f == core.Neutral {
		nc.neutral++
		return
	}
	nc.live++
	for i := 0; i < nc.n; i++ {
		if nc.ids[i] == f {
			nc.counts[i]++
			return
		}
	}
	nc.ids[nc.n] = f
	nc.counts[nc.n] = 1
	nc.n++
}

// Count returns the number of neighbours holding faction f.
func (nc *NeighborCounts) Count(f core.Faction) int {
	if f == core.Neutral {
		return nc.neutral
	}
	for i := 0; i < nc.n; i++ {
		if nc.ids[i] == f {
			return int(nc.counts[i])
		}
	}
	return 0
}

// Live returns the number of non-neutral neighbours.
func (nc *NeighborCounts) Live() int { return nc.live }

// Hostile returns the number of live neighbours whose faction differs from f.
func (nc *NeighborCounts) Hostile(f core.Faction) int {
	if f == core.Neutral {
		return nc.live
	}
	return nc.live - nc.Count(f)
}

// Total returns the number of in-bounds neighbours.
func (nc *NeighborCounts) Total() int { return nc.live + nc.neutral }
