package main

import (
	"slices"
	"testing"

	"faction-ca/internal/config"
	"faction-ca/internal/runner"
)

func TestThreadCounts(t *testing.T) {
	got, err := threadCounts("", 6)
	if err != nil {
		t.Fatalf("threadCounts: %v", err)
	}
	if !slices.Equal(got, []int{1, 2, 4, 6}) {
		t.Fatalf("got %v", got)
	}
	got, err = threadCounts("3, 5", 0)
	if err != nil {
		t.Fatalf("threadCounts: %v", err)
	}
	if !slices.Equal(got, []int{3, 5}) {
		t.Fatalf("got %v", got)
	}
	if _, err := threadCounts("2,x", 4); err == nil {
		t.Fatal("expected error for bad list")
	}
	if _, err := threadCounts("", 0); err == nil {
		t.Fatal("expected error for zero limit")
	}
}

func TestRunOnceMatchesAcrossThreads(t *testing.T) {
	cfg := config.Default()
	cfg.Factions = 4
	cfg.Generations = 12
	cfg.Random = config.RandomWorld{Rows: 24, Cols: 17, Density: 0.5, Seed: 8, Invasions: 2}
	job, err := runner.Prepare(cfg)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	ref, err := runOnce(job, 1, true, 1)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	for _, n := range []int{2, 4, 8} {
		res, err := runOnce(job, n, false, 2)
		if err != nil {
			t.Fatalf("threads=%d: %v", n, err)
		}
		if res.toll != ref.toll || !res.final.Equal(ref.final) {
			t.Fatalf("threads=%d diverged: toll %d vs %d", n, res.toll, ref.toll)
		}
		if res.workers != n {
			t.Fatalf("threads=%d ran with %d workers", n, res.workers)
		}
	}
}
