package core

import (
	"errors"
	"math"
	"testing"
)

func TestGetReportsOutOfBounds(t *testing.T) {
	g := NewGrid(3, 4)
	g.Set(2, 3, 7)

	if f, ok := g.Get(2, 3); !ok || f != 7 {
		t.Fatalf("Get(2,3) = (%d, %v), expected (7, true)", f, ok)
	}
	for _, pos := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 4}, {-1, -1}, {3, 4}} {
		if _, ok := g.Get(pos[0], pos[1]); ok {
			t.Fatalf("Get(%d,%d) reported in bounds", pos[0], pos[1])
		}
	}
	if g.Index(2, 3) != 11 {
		t.Fatalf("Index(2,3) = %d, expected 11", g.Index(2, 3))
	}
}

func TestGridFromRowsRejectsRaggedRows(t *testing.T) {
	if _, err := GridFromRows([][]Faction{{1, 2}, {3}}); err == nil {
		t.Fatal("expected ragged rows to be rejected")
	}
	if _, err := GridFromRows(nil); err == nil {
		t.Fatal("expected empty rows to be rejected")
	}
	g, err := GridFromRows([][]Faction{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatalf("GridFromRows: %v", err)
	}
	if f, _ := g.Get(1, 0); f != 3 {
		t.Fatalf("(1,0) = %d, expected 3", f)
	}
}

func TestCloneAndCopyAreIndependent(t *testing.T) {
	g := NewGrid(2, 2)
	g.Fill(4)
	c := g.Clone()
	c.Set(0, 0, 1)
	if f, _ := g.Get(0, 0); f != 4 {
		t.Fatal("Clone shares storage with the original")
	}

	dst := NewGrid(2, 2)
	if err := dst.CopyFrom(c); err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if !dst.Equal(c) {
		t.Fatal("CopyFrom produced a different grid")
	}
	if err := dst.CopyFrom(NewGrid(3, 2)); err == nil {
		t.Fatal("expected shape mismatch error")
	}
	if dst.Count(4) != 3 || dst.Count(1) != 1 {
		t.Fatalf("unexpected counts %d/%d", dst.Count(4), dst.Count(1))
	}
}

func TestValidateChecksCardinality(t *testing.T) {
	g := NewGrid(2, 3)
	g.Set(1, 2, 9)
	if err := g.Validate(10); err != nil {
		t.Fatalf("Validate(10): %v", err)
	}
	if err := g.Validate(9); err == nil {
		t.Fatal("expected faction 9 to be rejected for cardinality 9")
	}
}

func TestArenaEnforcesBudget(t *testing.T) {
	a := NewArena(20)
	g1, err := a.Alloc(3, 3)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	g2, err := a.Alloc(3, 3)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if _, err := a.Alloc(3, 3); !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}
	if a.InUse() != 18 || a.Live() != 2 {
		t.Fatalf("in use %d cells in %d grids", a.InUse(), a.Live())
	}

	a.Release(g1)
	a.Release(g1)
	a.Release(NewGrid(3, 3))
	if a.InUse() != 9 {
		t.Fatalf("in use %d after release, expected 9", a.InUse())
	}
	if _, err := a.Alloc(3, 3); err != nil {
		t.Fatalf("Alloc after release: %v", err)
	}
	a.Release(g2)
}

func TestAllocatorsRejectBadDimensions(t *testing.T) {
	for _, alloc := range []Allocator{HeapAllocator{}, NewArena(0)} {
		for _, dims := range [][2]int{{0, 3}, {3, 0}, {-1, 2}, {math.MaxInt / 2, 3}} {
			if _, err := alloc.Alloc(dims[0], dims[1]); !errors.Is(err, ErrAllocation) {
				t.Fatalf("%T.Alloc(%d,%d) = %v, expected ErrAllocation", alloc, dims[0], dims[1], err)
			}
		}
	}
	g, err := HeapAllocator{}.Alloc(2, 5)
	if err != nil || g.Len() != 10 {
		t.Fatalf("HeapAllocator.Alloc(2,5) = %v, %v", g, err)
	}
}

func TestParameterSnapshotLookup(t *testing.T) {
	s := ParameterSnapshot{Groups: []ParameterGroup{
		{Name: "A", Params: []Parameter{{Key: "x", Value: "1"}}},
		{Name: "B", Params: []Parameter{{Key: "y", Value: "two"}}},
	}}
	if p, ok := s.Lookup("y"); !ok || p.Value != "two" {
		t.Fatalf("Lookup(y) = %+v, %v", p, ok)
	}
	if _, ok := s.Lookup("z"); ok {
		t.Fatal("Lookup(z) found a parameter")
	}
	flat := s.Flatten()
	if len(flat) != 2 || flat["x"] != "1" {
		t.Fatalf("Flatten = %v", flat)
	}
	if got := s.String(); got != "A: x=1\nB: y=two\n" {
		t.Fatalf("String = %q", got)
	}
}
