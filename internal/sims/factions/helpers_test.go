package factions

import (
	"testing"

	"faction-ca/internal/core"
	rngcore "faction-ca/pkg/core"
)

// gridOf builds a grid from rows of space-separated digits.
func gridOf(t *testing.T, rows ...string) *core.Grid {
	t.Helper()
	cells := make([][]core.Faction, len(rows))
	for r, row := range rows {
		for _, ch := range row {
			if ch == ' ' {
				continue
			}
			cells[r] = append(cells[r], core.Faction(ch-'0'))
		}
	}
	g, err := core.GridFromRows(cells)
	if err != nil {
		t.Fatalf("gridOf: %v", err)
	}
	return g
}

func randomGrid(seed int64, rows, cols, factions int, density float64) *core.Grid {
	g := core.NewGrid(rows, cols)
	rngcore.FillFactions(rngcore.NewRNG(seed).Source(), g.Cells(), factions, density)
	return g
}

func assertGrid(t *testing.T, got *core.Grid, want *core.Grid) {
	t.Helper()
	if !got.SameShape(want) {
		t.Fatalf("grid is %dx%d, expected %dx%d", got.Rows, got.Cols, want.Rows, want.Cols)
	}
	for r := 0; r < want.Rows; r++ {
		for c := 0; c < want.Cols; c++ {
			g, _ := got.Get(r, c)
			w, _ := want.Get(r, c)
			if g != w {
				t.Fatalf("cell (%d,%d) = %d, expected %d", r, c, g, w)
			}
		}
	}
}
