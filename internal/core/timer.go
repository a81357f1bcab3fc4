package core

import "time"

// PhaseTimer accumulates wall time spent in the named phases of a run.
// It is meant for the driving goroutine only.
type PhaseTimer struct {
	now    func() time.Time
	order  []string
	totals map[string]time.Duration
	counts map[string]int
}

// PhaseTotal is the accumulated time and number of samples for one phase.
type PhaseTotal struct {
	Phase   string
	Total   time.Duration
	Samples int
}

// NewPhaseTimer constructs an empty timer.
func NewPhaseTimer() *PhaseTimer {
	return &PhaseTimer{
		now:    time.Now,
		totals: make(map[string]time.Duration),
		counts: make(map[string]int),
	}
}

// Start begins timing phase and returns the function that stops it.
func (t *PhaseTimer) Start(phase string) func() {
	begin := t.now()
	return func() { t.Add(phase, t.now().Sub(begin)) }
}

// Add records d against phase.
func (t *PhaseTimer) Add(phase string, d time.Duration) {
	if _, ok := t.totals[phase]; !ok {
		t.order = append(t.order, phase)
	}
	t.totals[phase] += d
	t.counts[phase]++
}

// Total returns the accumulated time for phase.
func (t *PhaseTimer) Total(phase string) time.Duration { return t.totals[phase] }

// Phases returns every phase in first-seen order.
func (t *PhaseTimer) Phases() []PhaseTotal {
	out := make([]PhaseTotal, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, PhaseTotal{Phase: p, Total: t.totals[p], Samples: t.counts[p]})
	}
	return out
}
