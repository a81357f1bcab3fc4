package factions

import (
	"slices"
	"strings"
	"testing"
)

func TestFromMapOverridesDefaults(t *testing.T) {
	cfg := FromMap(map[string]string{
		"threads":    "6",
		"sequential": "true",
		"rules":      "pacifist",
		"factions":   "4",
	})
	if cfg.Threads != 6 || !cfg.Sequential || cfg.RuleSet != "pacifist" || cfg.Factions != 4 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.workers() != 1 {
		t.Fatalf("sequential config uses %d workers, expected 1", cfg.workers())
	}
}

func TestFromMapIgnoresInvalidValues(t *testing.T) {
	def := DefaultConfig()
	cfg := FromMap(map[string]string{
		"threads":  "-2",
		"factions": "999",
	})
	if cfg.Threads != def.Threads {
		t.Fatalf("threads = %d, expected default %d", cfg.Threads, def.Threads)
	}
	if cfg.Factions != DefaultFactions {
		t.Fatalf("factions = %d, expected %d", cfg.Factions, DefaultFactions)
	}
}

func TestRegistryListsBuiltinRulesets(t *testing.T) {
	names := RuleNames()
	for _, want := range []string{"classic", "highlife", "pacifist"} {
		if !slices.Contains(names, want) {
			t.Fatalf("ruleset %q not registered (have %v)", want, names)
		}
	}

	r, err := LookupRules("highlife", 3)
	if err != nil {
		t.Fatalf("LookupRules: %v", err)
	}
	if !r.Birth(6) || !r.Birth(3) || r.Birth(4) {
		t.Fatal("highlife births on 3 or 6 only")
	}

	if _, err := LookupRules("missing", 3); err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected unknown ruleset error, got %v", err)
	}
	if _, err := LookupRules("classic", 300); err == nil {
		t.Fatal("expected cardinality above 256 to be rejected")
	}
}

func TestForEachSlabSumsPartials(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 7, 50} {
		covered := make([]int, 17)
		sum, err := forEachSlab(workers, len(covered), func(lo, hi int) int {
			for i := lo; i < hi; i++ {
				covered[i]++
			}
			return hi - lo
		})
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if sum != len(covered) {
			t.Fatalf("workers=%d: sum %d, expected %d", workers, sum, len(covered))
		}
		for i, n := range covered {
			if n != 1 {
				t.Fatalf("workers=%d: row %d visited %d times", workers, i, n)
			}
		}
	}
}

func TestForEachSlabReportsWorkerPanic(t *testing.T) {
	_, err := forEachSlab(4, 8, func(lo, hi int) int {
		if lo == 0 {
			panic("boom")
		}
		return 0
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected panic to surface as error, got %v", err)
	}
}
