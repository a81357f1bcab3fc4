package factions

import "faction-ca/internal/core"

// Invasion forces the non-zero cells of Plan onto the world at Generation.
// Plan must match the world's dimensions and is never modified.
type Invasion struct {
	Generation int
	Plan       *core.Grid
}

// Schedule hands out invasions in order as generations advance. Entries must
// be supplied in non-decreasing generation order; they are not sorted.
type Schedule struct {
	entries []Invasion
	next    int
	dropped int
}

// NewSchedule wraps entries. The slice is copied; the plans are not.
func NewSchedule(entries []Invasion) *Schedule {
	return &Schedule{entries: append([]Invasion(nil), entries...)}
}

// Take returns the plan scheduled for generation gen, if any, and advances
// past it. At most one plan is returned per generation. Entries left behind
// for an earlier generation (a second plan sharing an index that was already
// applied) are dropped rather than blocking later invasions.
func (s *Schedule) Take(gen int) (*core.Grid, bool) {
	for s.next < len(s.entries) && s.entries[s.next].Generation < gen {
		s.next++
		s.dropped++
	}
	if s.next >= len(s.entries) || s.entries[s.next].Generation != gen {
		return nil, false
	}
	plan := s.entries[s.next].Plan
	s.next++
	return plan, true
}

// Len returns the number of scheduled entries.
func (s *Schedule) Len() int { return len(s.entries) }

// Remaining returns the number of entries not yet consumed or dropped.
func (s *Schedule) Remaining() int { return len(s.entries) - s.next }

// Dropped returns how many entries were skipped without being applied.
func (s *Schedule) Dropped() int { return s.dropped }
