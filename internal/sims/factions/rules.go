package factions

import (
	"fmt"
	"sort"
	"sync"

	"faction-ca/internal/core"
)

// Predicate decides a rule outcome from a neighbour count.
type Predicate func(n int) bool

// Rules bundles the three policy predicates with the faction cardinality
// they operate on. Factions includes the neutral identifier 0.
type Rules struct {
	Name     string
	Factions int

	// Birth is tested per live faction against its neighbour count when the
	// cell is neutral.
	Birth Predicate
	// Survive is tested against the same-faction neighbour count of a live
	// cell that did not fight.
	Survive Predicate
	// Fight is tested against the hostile neighbour count of a live cell.
	Fight Predicate
}

// DefaultFactions matches the cardinality of the classic ruleset, neutral included.
const DefaultFactions = 10

// DefaultRuleSet names the ruleset used when none is configured.
const DefaultRuleSet = "classic"

func classicBirth(n int) bool   { return n == 3 }
func classicSurvive(n int) bool { return n == 2 || n == 3 }
func classicFight(n int) bool   { return n > 0 }

// ClassicRules returns the default birth/survival/fight predicates.
func ClassicRules(factions int) Rules {
	return Rules{
		Name:     "classic",
		Factions: factions,
		Birth:    classicBirth,
		Survive:  classicSurvive,
		Fight:    classicFight,
	}
}

// Validate checks the cardinality against what a Faction can hold and that
// every predicate is set.
func (r Rules) Validate() error {
	if r.Factions < 2 || r.Factions > core.MaxFactions {
		return fmt.Errorf("rules %q: factions %d outside [2, %d]", r.Name, r.Factions, core.MaxFactions)
	}
	if r.Birth == nil || r.Survive == nil || r.Fight == nil {
		return fmt.Errorf("rules %q: missing predicate", r.Name)
	}
	return nil
}

// RulesFactory builds a ruleset for the given faction cardinality.
type RulesFactory func(factions int) Rules

var (
	rulesMu  sync.RWMutex
	rulesets = map[string]RulesFactory{}
)

// RegisterRules adds a ruleset factory under the provided name.
func RegisterRules(name string, f RulesFactory) {
	if name == "" || f == nil {
		return
	}
	rulesMu.Lock()
	defer rulesMu.Unlock()
	rulesets[name] = f
}

// LookupRules builds the named ruleset and validates it.
func LookupRules(name string, factions int) (Rules, error) {
	if name == "" {
		name = DefaultRuleSet
	}
	rulesMu.RLock()
	f, ok := rulesets[name]
	rulesMu.RUnlock()
	if !ok {
		return Rules{}, fmt.Errorf("unknown ruleset %q", name)
	}
	r := f(factions)
	r.Name = name
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

// RuleNames lists the registered rulesets in sorted order.
func RuleNames() []string {
	rulesMu.RLock()
	defer rulesMu.RUnlock()
	names := make([]string, 0, len(rulesets))
	for n := range rulesets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterRules("classic", ClassicRules)
	RegisterRules("highlife", func(factions int) Rules {
		r := ClassicRules(factions)
		r.Birth = func(n int) bool { return n == 3 || n == 6 }
		return r
	})
	// A single hostile neighbour is tolerated.
	RegisterRules("pacifist", func(factions int) Rules {
		r := ClassicRules(factions)
		r.Fight = func(n int) bool { return n > 1 }
		return r
	})
}
