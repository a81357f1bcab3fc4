// Package runner turns resolved settings into a start world, runs the
// engine with the configured outputs and reports the outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"faction-ca/internal/config"
	"faction-ca/internal/core"
	"faction-ca/internal/persistence/runindex"
	"faction-ca/internal/persistence/snapshot"
	"faction-ca/internal/sims/factions"
	"faction-ca/internal/transport/stream"
	"faction-ca/internal/world"
)

// Job is a fully loaded simulation input.
type Job struct {
	Name        string
	Start       *core.Grid
	Invasions   []factions.Invasion
	Rules       string
	Factions    int
	Generations int
	// Params records where the inputs came from.
	Params map[string]string
}

// Prepare loads the start world and invasion plans named by cfg. A
// scenario supplies its own factions, rules and (when non-zero)
// generation count.
func Prepare(cfg config.Run) (*Job, error) {
	job := &Job{
		Rules:       cfg.Rules,
		Factions:    cfg.Factions,
		Generations: cfg.Generations,
		Params:      map[string]string{},
	}

	switch {
	case cfg.Scenario != "":
		sc, err := world.LoadScenario(cfg.Scenario)
		if err != nil {
			return nil, err
		}
		job.Name = sc.Name
		job.Start = sc.World
		job.Invasions = sc.Invasions
		job.Rules = sc.Rules
		job.Factions = sc.Factions
		if sc.Generations > 0 {
			job.Generations = sc.Generations
		}
		job.Params["scenario"] = cfg.Scenario
	case cfg.World != "":
		g, err := world.LoadGrid(cfg.World, cfg.Factions)
		if err != nil {
			return nil, err
		}
		job.Name = strings.TrimSuffix(filepath.Base(cfg.World), filepath.Ext(cfg.World))
		job.Start = g
		job.Params["world"] = cfg.World
	default:
		rw := cfg.Random
		job.Name = fmt.Sprintf("random-%dx%d-%d", rw.Rows, rw.Cols, rw.Seed)
		job.Start = world.Random(rw.Rows, rw.Cols, cfg.Factions, rw.Density, rw.Seed)
		for i := 0; i < rw.Invasions; i++ {
			gen := max(1, (i+1)*cfg.Generations/(rw.Invasions+1))
			job.Invasions = append(job.Invasions, factions.Invasion{
				Generation: gen,
				Plan:       world.RandomInvasion(rw.Rows, rw.Cols, cfg.Factions, rw.Seed+int64(i)+1),
			})
		}
		job.Params["seed"] = strconv.FormatInt(rw.Seed, 10)
		job.Params["density"] = strconv.FormatFloat(rw.Density, 'g', -1, 64)
	}

	specs, err := cfg.InvasionSpecs()
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		plan, err := world.LoadGrid(spec.Path, job.Factions)
		if err != nil {
			return nil, fmt.Errorf("invasion at generation %d: %w", spec.Generation, err)
		}
		if !plan.SameShape(job.Start) {
			return nil, fmt.Errorf("invasion at generation %d: plan is %dx%d, world is %dx%d",
				spec.Generation, plan.Rows, plan.Cols, job.Start.Rows, job.Start.Cols)
		}
		job.Invasions = append(job.Invasions, factions.Invasion{Generation: spec.Generation, Plan: plan})
	}
	sort.SliceStable(job.Invasions, func(i, j int) bool {
		return job.Invasions[i].Generation < job.Invasions[j].Generation
	})
	return job, nil
}

// Result summarises a finished run.
type Result struct {
	RunID     int64
	Threads   int
	Workers   int
	DeathToll int
	Elapsed   time.Duration
	Final     *core.Grid
	Stats     []factions.GenerationStat
	Phases    []core.PhaseTotal
	Params    core.ParameterSnapshot
}

// Execute runs job with the engine and outputs configured in cfg. Text
// blocks go to out when cfg.Print is set. logger may be nil.
func Execute(ctx context.Context, job *Job, cfg config.Run, out io.Writer, logger *log.Logger) (*Result, error) {
	var sinks snapshot.Multi
	var closers []func() error

	if cfg.Export != "" {
		fw, err := snapshot.NewFrameWriter(cfg.Export, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fw)
		closers = append(closers, fw.Close)
	}
	var text *snapshot.TextSink
	if cfg.Print {
		text = snapshot.NewTextSink(out)
		sinks = append(sinks, text)
	}
	if cfg.Stream != "" {
		hub := stream.NewHub(logger)
		stop, err := serve(cfg.Stream, hub, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, hub)
		closers = append(closers, func() error {
			hub.Close()
			return stop()
		})
	}
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	ecfg := factions.FromMap(cfg.EngineMap())
	ecfg.RuleSet = job.Rules
	ecfg.Factions = job.Factions
	ecfg.Logger = logger
	if len(sinks) > 0 {
		ecfg.Sink = sinks
	}

	began := time.Now()
	eng, err := factions.New(ecfg, job.Start, job.Invasions)
	if err != nil {
		return nil, errors.Join(err, closeAll())
	}
	defer eng.Close()
	toll, err := eng.Run(job.Generations)
	elapsed := time.Since(began)
	if err != nil {
		return nil, errors.Join(err, closeAll())
	}
	if err := closeAll(); err != nil {
		return nil, err
	}
	if text != nil {
		if err := text.Err(); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Threads:   ecfg.Threads,
		Workers:   eng.Workers(),
		DeathToll: toll,
		Elapsed:   elapsed,
		Final:     eng.Snapshot(),
		Stats:     eng.Stats(),
		Phases:    eng.Phases(),
		Params:    eng.Parameters(),
	}

	if cfg.Index != "" {
		id, err := record(ctx, cfg.Index, job, res)
		if err != nil {
			return nil, fmt.Errorf("run index: %w", err)
		}
		res.RunID = id
	}
	return res, nil
}

func record(ctx context.Context, path string, job *Job, res *Result) (int64, error) {
	idx, err := runindex.OpenSQLite(path)
	if err != nil {
		return 0, err
	}
	defer idx.Close()

	params := make(map[string]string, len(job.Params))
	for k, v := range job.Params {
		params[k] = v
	}
	for k, v := range res.Params.Flatten() {
		params[k] = v
	}
	return idx.RecordRun(ctx, runindex.Run{
		StartedAt:   time.Now().Add(-res.Elapsed),
		Name:        job.Name,
		Rows:        job.Start.Rows,
		Cols:        job.Start.Cols,
		Factions:    job.Factions,
		Rules:       job.Rules,
		Threads:     res.Threads,
		Workers:     res.Workers,
		Generations: job.Generations,
		DeathToll:   res.DeathToll,
		Duration:    res.Elapsed,
		Digest:      runindex.Digest(res.Final),
		Params:      params,
	}, res.Stats)
}

// serve starts an HTTP server exposing hub at /frames and returns a
// function that shuts it down.
func serve(addr string, hub *stream.Hub, logger *log.Logger) (func() error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/frames", hub)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && logger != nil {
			logger.Printf("stream: %v", err)
		}
	}()
	if logger != nil {
		logger.Printf("stream: serving frames on ws://%s/frames", ln.Addr())
	}
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

// Report writes the run summary.
func Report(w io.Writer, res *Result) {
	fmt.Fprintf(w, "Number of threads used for parallel: %d\n", res.Workers)
	fmt.Fprintf(w, "Death toll: %d\n", res.DeathToll)
	fmt.Fprintf(w, "Elapsed: %s\n", res.Elapsed.Round(time.Microsecond))
	if res.RunID > 0 {
		fmt.Fprintf(w, "Recorded run %d\n", res.RunID)
	}
}
