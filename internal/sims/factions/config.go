package factions

import (
	"log"
	"runtime"
	"strconv"

	"faction-ca/internal/core"
)

// Config controls how an Engine advances the world.
type Config struct {
	// Threads is the worker count hint. Zero or less means runtime.NumCPU().
	Threads int
	// Sequential runs every phase on the calling goroutine and ignores Threads.
	Sequential bool

	// RuleSet names a registered ruleset; Factions is its cardinality.
	RuleSet  string
	Factions int
	// Rules overrides RuleSet/Factions when set.
	Rules *Rules

	// Allocator serves every engine-owned grid. Nil means the heap.
	Allocator core.Allocator
	// Sink, when set, receives the world after generation 0 and after
	// every generation.
	Sink core.Sink
	// Logger, when set, receives run progress. The engine is silent otherwise.
	Logger *log.Logger
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Threads:  runtime.NumCPU(),
		RuleSet:  DefaultRuleSet,
		Factions: DefaultFactions,
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["threads"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Threads = parsed
		}
	}
	if v, ok := cfg["sequential"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Sequential = parsed
		}
	}
	if v, ok := cfg["rules"]; ok && v != "" {
		c.RuleSet = v
	}
	if v, ok := cfg["factions"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 2 && parsed <= core.MaxFactions {
			c.Factions = parsed
		}
	}
	return c
}

// Option adjusts a Config.
type Option func(*Config)

// WithRules installs a custom ruleset.
func WithRules(r Rules) Option { return func(c *Config) { c.Rules = &r } }

// WithRuleSet selects a registered ruleset by name.
func WithRuleSet(name string, factions int) Option {
	return func(c *Config) {
		c.RuleSet = name
		c.Factions = factions
	}
}

// WithAllocator routes grid allocation through a.
func WithAllocator(a core.Allocator) Option { return func(c *Config) { c.Allocator = a } }

// WithSink exports every generation to s.
func WithSink(s core.Sink) Option { return func(c *Config) { c.Sink = s } }

// WithLogger enables progress logging.
func WithLogger(l *log.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithSequential selects the single-goroutine variant.
func WithSequential() Option { return func(c *Config) { c.Sequential = true } }

func (c Config) rules() (Rules, error) {
	if c.Rules != nil {
		r := *c.Rules
		if r.Name == "" {
			r.Name = "custom"
		}
		return r, r.Validate()
	}
	return LookupRules(c.RuleSet, c.Factions)
}

func (c Config) workers() int {
	if c.Sequential {
		return 1
	}
	if c.Threads <= 0 {
		return runtime.NumCPU()
	}
	return c.Threads
}
