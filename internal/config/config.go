// Package config resolves run settings for the goi commands. Values come
// from defaults, then an optional YAML file, then GOI_* environment
// variables; commands apply their flags last and call Validate.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"faction-ca/internal/sims/factions"
)

// Run is the complete set of knobs for one simulation run.
type Run struct {
	Scenario    string   `yaml:"scenario" env:"GOI_SCENARIO"`
	World       string   `yaml:"world" env:"GOI_WORLD"`
	Invasions   []string `yaml:"invasions" env:"GOI_INVASIONS" envSeparator:","`
	Threads     int      `yaml:"threads" env:"GOI_THREADS"`
	Sequential  bool     `yaml:"sequential" env:"GOI_SEQUENTIAL"`
	Generations int      `yaml:"generations" env:"GOI_GENERATIONS"`
	Rules       string   `yaml:"rules" env:"GOI_RULES"`
	Factions    int      `yaml:"factions" env:"GOI_FACTIONS"`

	Export string `yaml:"export" env:"GOI_EXPORT"`
	Print  bool   `yaml:"print" env:"GOI_PRINT"`
	Index  string `yaml:"index" env:"GOI_INDEX"`
	Stream string `yaml:"stream" env:"GOI_STREAM"`

	Random RandomWorld `yaml:"random" envPrefix:"GOI_RANDOM_"`
}

// RandomWorld describes the generated start world used when neither a
// scenario nor a world file is given.
type RandomWorld struct {
	Rows    int     `yaml:"rows" env:"ROWS"`
	Cols    int     `yaml:"cols" env:"COLS"`
	Density float64 `yaml:"density" env:"DENSITY"`
	Seed    int64   `yaml:"seed" env:"SEED"`
	// Invasions adds this many generated invasions, evenly spaced.
	Invasions int `yaml:"invasions" env:"INVASIONS"`
}

// Default returns the settings used when nothing is configured.
func Default() Run {
	return Run{
		Threads:     runtime.NumCPU(),
		Generations: 100,
		Rules:       factions.DefaultRuleSet,
		Factions:    factions.DefaultFactions,
		Random: RandomWorld{
			Rows:    64,
			Cols:    64,
			Density: 0.5,
			Seed:    1,
		},
	}
}

// Load reads path (if non-empty) over the defaults and applies
// environment overrides.
func Load(path string) (Run, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		if path != "" {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
		return cfg, err
	}
	return cfg, nil
}

// ParseEnv loads GOI_* overrides into target. Unset variables leave the
// current values alone.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Normalize fills zero values that have a natural default.
func (r *Run) Normalize() {
	r.Scenario = strings.TrimSpace(r.Scenario)
	r.World = strings.TrimSpace(r.World)
	r.Rules = strings.ToLower(strings.TrimSpace(r.Rules))
	if r.Rules == "" {
		r.Rules = factions.DefaultRuleSet
	}
	if r.Threads == 0 {
		r.Threads = runtime.NumCPU()
	}
	if r.Factions == 0 {
		r.Factions = factions.DefaultFactions
	}
}

// Validate reports the first inconsistent setting.
func (r Run) Validate() error {
	if r.Scenario != "" && r.World != "" {
		return fmt.Errorf("scenario and world are mutually exclusive")
	}
	if r.Threads < 1 {
		return fmt.Errorf("threads must be positive, got %d", r.Threads)
	}
	if r.Generations < 0 {
		return fmt.Errorf("generations must not be negative, got %d", r.Generations)
	}
	if r.Factions < 2 || r.Factions > 256 {
		return fmt.Errorf("factions must be in [2, 256], got %d", r.Factions)
	}
	if _, err := factions.LookupRules(r.Rules, r.Factions); err != nil {
		return err
	}
	if _, err := r.InvasionSpecs(); err != nil {
		return err
	}
	if r.Scenario == "" && r.World == "" {
		rw := r.Random
		if rw.Rows <= 0 || rw.Cols <= 0 {
			return fmt.Errorf("random world needs positive dimensions, got %dx%d", rw.Rows, rw.Cols)
		}
		if rw.Density < 0 || rw.Density > 1 {
			return fmt.Errorf("random density must be in [0, 1], got %g", rw.Density)
		}
		if rw.Invasions < 0 {
			return fmt.Errorf("random invasions must not be negative, got %d", rw.Invasions)
		}
	}
	return nil
}

// EngineMap renders the engine-facing settings for factions.FromMap.
func (r Run) EngineMap() map[string]string {
	return map[string]string{
		"threads":    strconv.Itoa(r.Threads),
		"sequential": strconv.FormatBool(r.Sequential),
		"rules":      r.Rules,
		"factions":   strconv.Itoa(r.Factions),
	}
}

// InvasionSpec is a "generation=path" invasion reference.
type InvasionSpec struct {
	Generation int
	Path       string
}

// InvasionSpecs parses every entry of Invasions.
func (r Run) InvasionSpecs() ([]InvasionSpec, error) {
	out := make([]InvasionSpec, 0, len(r.Invasions))
	for _, raw := range r.Invasions {
		spec, err := ParseInvasion(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

// ParseInvasion parses "generation=path".
func ParseInvasion(raw string) (InvasionSpec, error) {
	gen, path, ok := strings.Cut(strings.TrimSpace(raw), "=")
	if !ok || strings.TrimSpace(path) == "" {
		return InvasionSpec{}, fmt.Errorf("invasion %q: expected generation=path", raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(gen))
	if err != nil {
		return InvasionSpec{}, fmt.Errorf("invasion %q: %w", raw, err)
	}
	if n < 1 {
		return InvasionSpec{}, fmt.Errorf("invasion %q: generation must be at least 1", raw)
	}
	return InvasionSpec{Generation: n, Path: strings.TrimSpace(path)}, nil
}
