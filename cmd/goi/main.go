package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"

	"faction-ca/internal/config"
	"faction-ca/internal/runner"
	"faction-ca/internal/sims/factions"
)

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	logger := log.New(os.Stderr, "[goi] ", log.LstdFlags|log.Lmicroseconds)

	configPath := flag.String("config", "", "YAML run configuration")
	scenario := flag.String("scenario", "", "YAML scenario with world and invasions")
	worldPath := flag.String("world", "", "start world in text grid format")
	threads := flag.Int("threads", 0, "worker count (0 = number of CPUs)")
	generations := flag.Int("generations", 0, "generations to simulate")
	rules := flag.String("rules", "", "ruleset: "+strings.Join(factions.RuleNames(), ", "))
	factionCount := flag.Int("factions", 0, "number of factions including neutral")
	sequential := flag.Bool("sequential", false, "run on a single goroutine")
	export := flag.String("export", "", "write zstd-compressed JSONL frames to this path")
	printWorlds := flag.Bool("print", false, "print every generation to stdout")
	index := flag.String("index", "", "record the run in this SQLite database")
	streamAddr := flag.String("stream", "", "serve frames over websocket at host:port/frames")
	random := flag.String("random", "", "random start world as ROWSxCOLS")
	seed := flag.Int64("seed", 0, "seed for random worlds")
	density := flag.Float64("density", 0, "live-cell density for random worlds")
	quiet := flag.Bool("quiet", false, "suppress progress logging")
	var invasions kvList
	flag.Var(&invasions, "invade", "invasion in generation=path form (repeatable)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	generationsSet := false
	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scenario":
			cfg.Scenario, cfg.World = *scenario, ""
		case "world":
			cfg.World, cfg.Scenario = *worldPath, ""
		case "threads":
			cfg.Threads = *threads
		case "generations":
			cfg.Generations = *generations
			generationsSet = true
		case "rules":
			cfg.Rules = *rules
		case "factions":
			cfg.Factions = *factionCount
		case "sequential":
			cfg.Sequential = *sequential
		case "export":
			cfg.Export = *export
		case "print":
			cfg.Print = *printWorlds
		case "index":
			cfg.Index = *index
		case "stream":
			cfg.Stream = *streamAddr
		case "random":
			cfg.Scenario, cfg.World = "", ""
			if err := parseDims(*random, &cfg.Random); err != nil {
				flagErr = err
			}
		case "seed":
			cfg.Random.Seed = *seed
		case "density":
			cfg.Random.Density = *density
		case "invade":
			cfg.Invasions = append(cfg.Invasions, invasions...)
		}
	})
	if flagErr != nil {
		logger.Fatalf("flags: %v", flagErr)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	job, err := runner.Prepare(cfg)
	if err != nil {
		logger.Fatalf("load: %v", err)
	}
	if generationsSet {
		job.Generations = cfg.Generations
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var engineLog *log.Logger
	if !*quiet {
		engineLog = logger
	}
	res, err := runner.Execute(ctx, job, cfg, os.Stdout, engineLog)
	if err != nil {
		logger.Fatalf("run: %v", err)
	}
	runner.Report(os.Stdout, res)
	if !*quiet {
		for _, p := range res.Phases {
			logger.Printf("phase %-10s %4d samples, %s total", p.Phase, p.Samples, p.Total)
		}
	}
}
