package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"faction-ca/internal/config"
	"faction-ca/internal/core"
	"faction-ca/internal/runner"
	"faction-ca/internal/sims/factions"
)

type sweepResult struct {
	threads   int
	workers   int
	toll      int
	elapsed   time.Duration
	final     *core.Grid
	transform time.Duration
}

func main() {
	logger := log.New(os.Stderr, "[goi-sweep] ", log.LstdFlags|log.Lmicroseconds)

	configPath := flag.String("config", "", "YAML run configuration")
	maxThreads := flag.Int("max-threads", runtime.NumCPU(), "largest thread count to try")
	list := flag.String("threads", "", "explicit comma-separated thread counts (overrides -max-threads)")
	repeat := flag.Int("repeat", 1, "runs per thread count; the fastest is reported")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	job, err := runner.Prepare(cfg)
	if err != nil {
		logger.Fatalf("load: %v", err)
	}

	counts, err := threadCounts(*list, *maxThreads)
	if err != nil {
		logger.Fatalf("threads: %v", err)
	}

	fmt.Printf("Sweeping %s (%dx%d, %d generations, %d invasions) over threads %v\n",
		job.Name, job.Start.Rows, job.Start.Cols, job.Generations, len(job.Invasions), counts)

	ref, err := runOnce(job, 1, true, *repeat)
	if err != nil {
		logger.Fatalf("sequential run: %v", err)
	}
	fmt.Printf("sequential  toll=%d  %s\n", ref.toll, ref.elapsed.Round(time.Microsecond))

	mismatches := 0
	for _, n := range counts {
		res, err := runOnce(job, n, false, *repeat)
		if err != nil {
			logger.Fatalf("threads=%d: %v", n, err)
		}
		status := "ok"
		if res.toll != ref.toll || !res.final.Equal(ref.final) {
			status = "MISMATCH"
			mismatches++
		}
		speedup := float64(ref.elapsed) / float64(max(res.elapsed, 1))
		fmt.Printf("threads=%-3d toll=%d  %s  transition=%s  speedup=%.2fx  %s\n",
			res.workers, res.toll, res.elapsed.Round(time.Microsecond),
			res.transform.Round(time.Microsecond), speedup, status)
	}
	if mismatches > 0 {
		logger.Fatalf("%d thread counts diverged from the sequential run", mismatches)
	}
}

// threadCounts returns 1, 2, 4, ... up to limit, or the explicit list.
func threadCounts(list string, limit int) ([]int, error) {
	if strings.TrimSpace(list) != "" {
		var out []int
		for _, part := range strings.Split(list, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("bad thread count %q", part)
			}
			out = append(out, n)
		}
		return out, nil
	}
	if limit < 1 {
		return nil, fmt.Errorf("max threads must be positive, got %d", limit)
	}
	var out []int
	for n := 1; n <= limit; n *= 2 {
		out = append(out, n)
	}
	if out[len(out)-1] != limit {
		out = append(out, limit)
	}
	return out, nil
}

func runOnce(job *runner.Job, threads int, sequential bool, repeat int) (sweepResult, error) {
	best := sweepResult{threads: threads}
	for i := 0; i < max(repeat, 1); i++ {
		cfg := factions.Config{
			Threads:    threads,
			Sequential: sequential,
			RuleSet:    job.Rules,
			Factions:   job.Factions,
		}
		began := time.Now()
		eng, err := factions.New(cfg, job.Start, job.Invasions)
		if err != nil {
			return best, err
		}
		toll, err := eng.Run(job.Generations)
		elapsed := time.Since(began)
		if err != nil {
			eng.Close()
			return best, err
		}
		if best.final == nil || elapsed < best.elapsed {
			best.workers = eng.Workers()
			best.toll = toll
			best.elapsed = elapsed
			best.final = eng.Snapshot()
			for _, p := range eng.Phases() {
				if p.Phase == "transition" {
					best.transform = p.Total
				}
			}
		}
		eng.Close()
	}
	return best, nil
}
