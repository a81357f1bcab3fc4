package life

import "testing"

func TestBlinkerOscillation(t *testing.T) {
	life := New(5, 5)
	life.Set(1, 2, true)
	life.Set(2, 2, true)
	life.Set(3, 2, true)

	check := func(step int, expects map[[2]int]bool) {
		t.Helper()
		for r := 0; r < 5; r++ {
			for c := 0; c < 5; c++ {
				if want := expects[[2]int{r, c}]; life.Alive(r, c) != want {
					t.Fatalf("step %d: cell (%d,%d) alive=%v, expected %v", step, r, c, !want, want)
				}
			}
		}
	}

	life.Step()
	check(1, map[[2]int]bool{{2, 1}: true, {2, 2}: true, {2, 3}: true})
	life.Step()
	check(2, map[[2]int]bool{{1, 2}: true, {2, 2}: true, {3, 2}: true})
}

func TestEdgesDoNotWrap(t *testing.T) {
	life := New(4, 4)
	// A blinker along the top edge would be sustained by wrapping.
	life.Set(0, 0, true)
	life.Set(0, 1, true)
	life.Set(0, 2, true)
	life.Step()
	if life.Alive(3, 1) {
		t.Fatal("birth on the opposite edge means the board wrapped")
	}
	if !life.Alive(1, 1) || !life.Alive(0, 1) {
		t.Fatal("expected the blinker to turn vertical against the edge")
	}
}

func TestResetIsDeterministic(t *testing.T) {
	a, b := New(8, 8), New(8, 8)
	a.Reset(3, 0.5)
	b.Reset(3, 0.5)
	for i, v := range a.Cells() {
		if v > 1 {
			t.Fatalf("cell %d = %d, expected 0 or 1", i, v)
		}
		if v != b.Cells()[i] {
			t.Fatal("same seed produced different boards")
		}
	}
}
