package snapshot

import (
	"fmt"
	"io"
	"sync"

	"faction-ca/internal/core"
	"faction-ca/internal/world"
)

// TextSink prints each generation as a "=== WORLD n ===" block.
type TextSink struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewTextSink writes blocks to w.
func NewTextSink(w io.Writer) *TextSink { return &TextSink{w: w} }

// Export implements core.Sink.
func (s *TextSink) Export(g *core.Grid, generation int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, "\n=== WORLD %d ===\n%s", generation, world.FormatRows(g))
}

// Err returns the first write error, if any.
func (s *TextSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Multi fans an export out to every sink in order.
type Multi []core.Sink

// Export implements core.Sink.
func (m Multi) Export(g *core.Grid, generation int) {
	for _, s := range m {
		if s != nil {
			s.Export(g, generation)
		}
	}
}
