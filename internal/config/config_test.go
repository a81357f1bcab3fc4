package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"faction-ca/internal/sims/factions"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threads != runtime.NumCPU() || cfg.Rules != "classic" || cfg.Factions != 10 || cfg.Generations != 100 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Random.Rows != 64 || cfg.Random.Density != 0.5 {
		t.Fatalf("unexpected random defaults %+v", cfg.Random)
	}
}

func TestLoadReadsYAMLThenEnv(t *testing.T) {
	path := writeFile(t, "run.yaml", `
world: start.txt
threads: 3
generations: 40
rules: HighLife
factions: 6
invasions: ["2=a.txt", "9=b.txt"]
random:
  seed: 7
`)
	t.Setenv("GOI_GENERATIONS", "25")
	t.Setenv("GOI_RANDOM_SEED", "99")
	t.Setenv("GOI_SEQUENTIAL", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World != "start.txt" || cfg.Threads != 3 || cfg.Factions != 6 {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.Rules != "highlife" {
		t.Fatalf("rules not normalized: %q", cfg.Rules)
	}
	if cfg.Generations != 25 || cfg.Random.Seed != 99 || !cfg.Sequential {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Random.Rows != 64 {
		t.Fatalf("unset nested value lost its default: %+v", cfg.Random)
	}
	specs, err := cfg.InvasionSpecs()
	if err != nil {
		t.Fatalf("InvasionSpecs: %v", err)
	}
	if len(specs) != 2 || specs[1].Generation != 9 || specs[1].Path != "b.txt" {
		t.Fatalf("unexpected invasions %+v", specs)
	}
}

func TestEnvInvasionList(t *testing.T) {
	t.Setenv("GOI_INVASIONS", "3=x.txt,4=y.txt")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Invasions) != 2 || cfg.Invasions[0] != "3=x.txt" {
		t.Fatalf("unexpected invasions %v", cfg.Invasions)
	}
}

func TestLoadRejectsBadSettings(t *testing.T) {
	cases := map[string]string{
		"both sources":   "world: a.txt\nscenario: b.yaml\n",
		"unknown rules":  "rules: seeds\n",
		"too few":        "factions: 1\n",
		"negative gens":  "generations: -1\n",
		"bad invasion":   "invasions: [\"a.txt\"]\n",
		"zero gen":       "invasions: [\"0=a.txt\"]\n",
		"bad density":    "random:\n  density: 1.5\n",
		"negative rows":  "random:\n  rows: -4\n",
		"negative count": "threads: -2\n",
		"not yaml":       "threads: [\n",
	}
	for name, body := range cases {
		if _, err := Load(writeFile(t, "bad.yaml", body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEngineMapFeedsFactionsConfig(t *testing.T) {
	cfg := Default()
	cfg.Threads = 5
	cfg.Sequential = true
	cfg.Rules = "pacifist"
	cfg.Factions = 7

	ec := factions.FromMap(cfg.EngineMap())
	if ec.Threads != 5 || !ec.Sequential || ec.RuleSet != "pacifist" || ec.Factions != 7 {
		t.Fatalf("unexpected engine config %+v", ec)
	}
}

func TestParseInvasion(t *testing.T) {
	spec, err := ParseInvasion(" 12 = plans/wave.txt ")
	if err != nil {
		t.Fatalf("ParseInvasion: %v", err)
	}
	if spec.Generation != 12 || spec.Path != "plans/wave.txt" {
		t.Fatalf("unexpected spec %+v", spec)
	}
	for _, raw := range []string{"", "=a", "3=", "x=a", "-1=a"} {
		if _, err := ParseInvasion(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
