package main

import (
	"testing"

	"faction-ca/internal/config"
)

func TestParseDims(t *testing.T) {
	var rw config.RandomWorld
	if err := parseDims("120X80", &rw); err != nil {
		t.Fatalf("parseDims: %v", err)
	}
	if rw.Rows != 120 || rw.Cols != 80 {
		t.Fatalf("parsed %dx%d", rw.Rows, rw.Cols)
	}
	for _, bad := range []string{"", "12", "ax3", "3xb"} {
		if err := parseDims(bad, &rw); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
