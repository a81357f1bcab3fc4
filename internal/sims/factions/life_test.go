package factions

import (
	"testing"

	"faction-ca/internal/core"
	"faction-ca/pkg/sims/life"
)

// With a single live faction the classic rules reduce to Conway's Life.
func TestSingleFactionMatchesPlainLife(t *testing.T) {
	const rows, cols, gens = 23, 31, 40
	ref := life.New(rows, cols)
	ref.Reset(17, 0.35)

	start := core.NewGrid(rows, cols)
	for i, v := range ref.Cells() {
		start.Cells()[i] = core.Faction(v)
	}

	for _, threads := range []int{1, 3, 8} {
		e, err := New(Config{Threads: threads, RuleSet: "classic", Factions: 2}, start, nil)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		oracle := life.New(rows, cols)
		copy(oracle.Cells(), ref.Cells())

		for g := 1; g <= gens; g++ {
			if err := e.Step(); err != nil {
				t.Fatalf("Step: %v", err)
			}
			oracle.Step()
			for i, v := range oracle.Cells() {
				if core.Faction(v) != e.Grid().Cells()[i] {
					t.Fatalf("threads=%d generation %d: cell %d = %d, plain life has %d",
						threads, g, i, e.Grid().Cells()[i], v)
				}
			}
		}
		if e.DeathToll() != 0 {
			t.Fatalf("threads=%d: single faction recorded %d conflict deaths", threads, e.DeathToll())
		}
		e.Close()
	}
}
