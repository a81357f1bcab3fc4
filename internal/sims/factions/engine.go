package factions

import (
	"errors"
	"fmt"
	"time"

	"faction-ca/internal/core"
)

// ErrClosed is returned when stepping an engine that was closed or aborted.
var ErrClosed = errors.New("engine closed")

// GenerationStat records what happened during one generation.
type GenerationStat struct {
	Generation int
	Deaths     int
	Invaded    bool
	Duration   time.Duration
}

// Engine advances a multi-faction world one generation at a time. The
// current and next grids form a ping-pong pair owned by the engine; the
// caller's start grid and invasion plans are only read.
type Engine struct {
	cfg     Config
	rules   Rules
	alloc   core.Allocator
	workers int

	cur     *core.Grid
	nxt     *core.Grid
	overlay *core.Grid

	schedule   *Schedule
	generation int
	deathToll  int
	stats      []GenerationStat
	timer      *core.PhaseTimer
	closed     bool
}

// New prepares an engine for start and the given invasions. start is copied;
// neither it nor the plans are retained for writing.
func New(cfg Config, start *core.Grid, invasions []Invasion) (*Engine, error) {
	if start == nil {
		return nil, fmt.Errorf("factions: nil start world")
	}
	if cfg.Factions == 0 {
		cfg.Factions = DefaultFactions
	}
	rules, err := cfg.rules()
	if err != nil {
		return nil, err
	}
	alloc := cfg.Allocator
	if alloc == nil {
		alloc = core.HeapAllocator{}
	}

	e := &Engine{
		cfg:      cfg,
		rules:    rules,
		alloc:    alloc,
		workers:  cfg.workers(),
		schedule: NewSchedule(invasions),
		timer:    core.NewPhaseTimer(),
	}
	if e.cur, err = alloc.Alloc(start.Rows, start.Cols); err != nil {
		e.release()
		return nil, err
	}
	if e.nxt, err = alloc.Alloc(start.Rows, start.Cols); err != nil {
		e.release()
		return nil, err
	}
	if err := e.copyIn(e.cur, start); err != nil {
		e.release()
		return nil, err
	}

	e.logf("world %dx%d, %d invasions, ruleset %s (%d factions), %d workers",
		start.Rows, start.Cols, e.schedule.Len(), rules.Name, rules.Factions, e.workers)
	e.export()
	return e, nil
}

// Step advances the world by one generation. On allocation failure every
// engine-owned grid is released and the engine can no longer be used.
func (e *Engine) Step() error {
	if e.closed {
		return ErrClosed
	}
	begin := time.Now()
	gen := e.generation + 1

	var overlay *core.Grid
	if plan, ok := e.schedule.Take(gen); ok {
		stop := e.timer.Start("invasion")
		if e.overlay == nil {
			g, err := e.alloc.Alloc(e.cur.Rows, e.cur.Cols)
			if err != nil {
				stop()
				e.abort(gen, err)
				return err
			}
			e.overlay = g
		}
		if err := e.copyIn(e.overlay, plan); err != nil {
			stop()
			e.abort(gen, err)
			return err
		}
		overlay = e.overlay
		stop()
	}

	stop := e.timer.Start("transition")
	cur, nxt, rules := e.cur, e.nxt, e.rules
	deaths, err := forEachSlab(e.workers, cur.Rows, func(lo, hi int) int {
		dead := 0
		for row := lo; row < hi; row++ {
			for col := 0; col < cur.Cols; col++ {
				f, conflict := rules.Next(cur, overlay, row, col)
				nxt.Set(row, col, f)
				if conflict {
					dead++
				}
			}
		}
		return dead
	})
	stop()
	if err != nil {
		e.abort(gen, err)
		return err
	}

	e.cur, e.nxt = e.nxt, e.cur
	e.generation = gen
	e.deathToll += deaths
	e.stats = append(e.stats, GenerationStat{
		Generation: gen,
		Deaths:     deaths,
		Invaded:    overlay != nil,
		Duration:   time.Since(begin),
	})
	e.export()
	return nil
}

// Run advances the world by generations steps and returns the cumulative
// death toll. On failure it returns zero and the error; the engine is then
// unusable.
func (e *Engine) Run(generations int) (int, error) {
	for i := 0; i < generations; i++ {
		if err := e.Step(); err != nil {
			return 0, err
		}
	}
	if n := e.schedule.Dropped(); n > 0 {
		e.logf("%d invasions skipped (duplicate or out-of-order generation)", n)
	}
	return e.deathToll, nil
}

// Close releases the engine's grids. It is safe to call more than once.
func (e *Engine) Close() {
	e.release()
	e.closed = true
}

// Grid returns the current generation. The grid belongs to the engine and is
// overwritten by the step after next; callers must not modify it.
func (e *Engine) Grid() *core.Grid { return e.cur }

// Snapshot returns a heap copy of the current generation.
func (e *Engine) Snapshot() *core.Grid {
	if e.cur == nil {
		return nil
	}
	return e.cur.Clone()
}

// Generation returns the number of generations computed so far.
func (e *Engine) Generation() int { return e.generation }

// DeathToll returns the cumulative number of conflict deaths.
func (e *Engine) DeathToll() int { return e.deathToll }

// Workers returns the number of workers each parallel phase uses.
func (e *Engine) Workers() int { return e.workers }

// Rules returns the ruleset in use.
func (e *Engine) Rules() Rules { return e.rules }

// Stats returns per-generation statistics.
func (e *Engine) Stats() []GenerationStat {
	return append([]GenerationStat(nil), e.stats...)
}

// Phases returns accumulated timings for the invasion and transition phases.
func (e *Engine) Phases() []core.PhaseTotal { return e.timer.Phases() }

// copyIn copies src into the engine-owned dst using the worker pool. Each
// worker writes a disjoint row range.
func (e *Engine) copyIn(dst, src *core.Grid) error {
	if !dst.SameShape(src) {
		return fmt.Errorf("factions: grid %dx%d does not match world %dx%d", src.Rows, src.Cols, dst.Rows, dst.Cols)
	}
	_, err := forEachSlab(e.workers, dst.Rows, func(lo, hi int) int {
		dst.CopyRows(src, lo, hi)
		return 0
	})
	return err
}

func (e *Engine) export() {
	if e.cfg.Sink == nil {
		return
	}
	stop := e.timer.Start("export")
	e.cfg.Sink.Export(e.cur, e.generation)
	stop()
}

func (e *Engine) abort(gen int, err error) {
	e.logf("generation %d: %v; aborting run", gen, err)
	e.release()
	e.closed = true
	e.deathToll = 0
}

func (e *Engine) release() {
	for _, g := range []*core.Grid{e.cur, e.nxt, e.overlay} {
		if g != nil {
			e.alloc.Release(g)
		}
	}
	e.cur, e.nxt, e.overlay = nil, nil, nil
}

func (e *Engine) logf(format string, args ...any) {
	if e.cfg.Logger != nil {
		e.cfg.Logger.Printf(format, args...)
	}
}

// RunSimulation advances start by generations steps with the given worker
// count hint and returns the cumulative death toll. The result is the same
// for every thread count. On allocation failure the error wraps
// core.ErrAllocation and no toll is reported.
func RunSimulation(threads, generations int, start *core.Grid, invasions []Invasion, opts ...Option) (int, error) {
	cfg := DefaultConfig()
	cfg.Threads = threads
	for _, opt := range opts {
		opt(&cfg)
	}
	e, err := New(cfg, start, invasions)
	if err != nil {
		return 0, err
	}
	defer e.Close()
	return e.Run(generations)
}
