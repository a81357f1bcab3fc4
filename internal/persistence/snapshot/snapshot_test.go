package snapshot

import (
	"bytes"
	"path/filepath"
	"testing"

	"faction-ca/internal/core"
	"faction-ca/internal/sims/factions"
	"faction-ca/internal/world"
)

func TestFrameWriterRecordsEveryGeneration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames", "run.jsonl.zst")
	fw, err := NewFrameWriter(path, nil)
	if err != nil {
		t.Fatalf("NewFrameWriter: %v", err)
	}

	start := world.Random(12, 9, 5, 0.5, 77)
	var grids []*core.Grid
	record := core.SinkFunc(func(g *core.Grid, _ int) { grids = append(grids, g.Clone()) })

	if _, err := factions.RunSimulation(3, 6, start, nil,
		factions.WithRuleSet("classic", 5),
		factions.WithSink(Multi{fw, record}),
	); err != nil {
		t.Fatalf("RunSimulation: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if fw.Frames() != 7 {
		t.Fatalf("wrote %d frames, expected 7", fw.Frames())
	}

	frames, err := ReadFrames(path)
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(frames) != len(grids) {
		t.Fatalf("read %d frames, expected %d", len(frames), len(grids))
	}
	for i, fr := range frames {
		if fr.Generation != i {
			t.Fatalf("frame %d has generation %d", i, fr.Generation)
		}
		g, err := fr.Grid()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if !g.Equal(grids[i]) {
			t.Fatalf("frame %d does not match generation %d", i, i)
		}
		if fr.Live != g.Len()-g.Count(core.Neutral) {
			t.Fatalf("frame %d live=%d inconsistent with cells", i, fr.Live)
		}
	}
	if !frameGrid(t, frames[0]).Equal(start) {
		t.Fatal("generation 0 should be the start world")
	}
}

func frameGrid(t *testing.T, f Frame) *core.Grid {
	t.Helper()
	g, err := f.Grid()
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	return g
}

func TestFrameRejectsInconsistentCells(t *testing.T) {
	if _, err := (Frame{Rows: 2, Cols: 2, Cells: []byte{1, 2, 3}}).Grid(); err == nil {
		t.Fatal("expected error for short cell data")
	}
}

func TestTextSinkWritesWorldBlocks(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTextSink(&buf)
	g := core.NewGrid(2, 3)
	g.Set(0, 1, 4)
	sink.Export(g, 0)
	g.Set(1, 2, 2)
	sink.Export(g, 1)
	if err := sink.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	want := "\n=== WORLD 0 ===\n0 4 0\n0 0 0\n\n=== WORLD 1 ===\n0 4 0\n0 0 2\n"
	if got := buf.String(); got != want {
		t.Fatalf("output:\n%s\nexpected:\n%s", got, want)
	}
}
