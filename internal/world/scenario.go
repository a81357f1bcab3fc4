package world

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"faction-ca/internal/core"
	"faction-ca/internal/sims/factions"
)

const scenarioSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["world"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string"},
    "factions": {"type": "integer", "minimum": 2, "maximum": 256},
    "rules": {"type": "string", "minLength": 1},
    "generations": {"type": "integer", "minimum": 0},
    "world": {"$ref": "#/definitions/source"},
    "invasions": {
      "type": "array",
      "items": {
        "allOf": [{"$ref": "#/definitions/source"}],
        "required": ["generation"],
        "properties": {
          "generation": {"type": "integer", "minimum": 1}
        }
      }
    }
  },
  "definitions": {
    "source": {
      "type": "object",
      "properties": {
        "path": {"type": "string", "minLength": 1},
        "rows": {"type": "array", "minItems": 1, "items": {"type": "string"}}
      },
      "oneOf": [
        {"required": ["path"], "not": {"required": ["rows"]}},
        {"required": ["rows"], "not": {"required": ["path"]}}
      ]
    }
  }
}`

var scenarioSchema = jsonschema.MustCompileString("https://faction-ca.dev/schemas/scenario.schema.json", scenarioSchemaJSON)

// GridSource points at a text grid file or carries the rows inline.
type GridSource struct {
	Path string   `yaml:"path,omitempty"`
	Rows []string `yaml:"rows,omitempty"`
}

// InvasionSource is a GridSource applied at Generation.
type InvasionSource struct {
	Generation int `yaml:"generation"`
	GridSource `yaml:",inline"`
}

// ScenarioFile is the on-disk YAML document.
type ScenarioFile struct {
	Name        string           `yaml:"name,omitempty"`
	Factions    int              `yaml:"factions,omitempty"`
	Rules       string           `yaml:"rules,omitempty"`
	Generations int              `yaml:"generations,omitempty"`
	World       GridSource       `yaml:"world"`
	Invasions   []InvasionSource `yaml:"invasions,omitempty"`
}

// Scenario is a fully loaded start world with its invasion schedule.
type Scenario struct {
	Name        string
	Factions    int
	Rules       string
	Generations int
	World       *core.Grid
	Invasions   []factions.Invasion
}

// LoadScenario reads a YAML scenario. Relative grid paths resolve against
// the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(b, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// ParseScenario validates and loads a YAML scenario document.
func ParseScenario(data []byte, dir string) (*Scenario, error) {
	if err := ValidateScenario(data); err != nil {
		return nil, err
	}
	var doc ScenarioFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	sc := &Scenario{
		Name:        doc.Name,
		Factions:    doc.Factions,
		Rules:       doc.Rules,
		Generations: doc.Generations,
	}
	if sc.Factions == 0 {
		sc.Factions = factions.DefaultFactions
	}
	if sc.Rules == "" {
		sc.Rules = factions.DefaultRuleSet
	}

	world, err := doc.World.load(dir, sc.Factions)
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	sc.World = world

	last := 0
	for i, inv := range doc.Invasions {
		if inv.Generation < last {
			return nil, fmt.Errorf("invasion %d: generation %d before %d", i, inv.Generation, last)
		}
		last = inv.Generation
		plan, err := inv.load(dir, sc.Factions)
		if err != nil {
			return nil, fmt.Errorf("invasion %d: %w", i, err)
		}
		if !plan.SameShape(world) {
			return nil, fmt.Errorf("invasion %d: plan is %dx%d, world is %dx%d", i, plan.Rows, plan.Cols, world.Rows, world.Cols)
		}
		sc.Invasions = append(sc.Invasions, factions.Invasion{Generation: inv.Generation, Plan: plan})
	}
	return sc, nil
}

// ValidateScenario checks a YAML document against the scenario schema.
func ValidateScenario(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	// Round-trip through JSON so the validator sees json.Number and
	// map[string]any only.
	jb, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	if err := scenarioSchema.Validate(doc); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	return nil
}

func (s GridSource) load(dir string, factionCount int) (*core.Grid, error) {
	if len(s.Rows) > 0 {
		return ParseRows(s.Rows, factionCount)
	}
	p := s.Path
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	return LoadGrid(p, factionCount)
}
