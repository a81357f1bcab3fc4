package factions

import (
	"strconv"

	"faction-ca/internal/core"
)

// Parameters describes the settings this engine was started with.
func (e *Engine) Parameters() core.ParameterSnapshot {
	rows, cols := 0, 0
	if e.cur != nil {
		rows, cols = e.cur.Rows, e.cur.Cols
	}
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("rows", "Rows", rows),
				intParam("cols", "Cols", cols),
				intParam("invasions", "Scheduled invasions", e.schedule.Len()),
			},
		},
		{
			Name: "Rules",
			Params: []core.Parameter{
				stringParam("rules", "Ruleset", e.rules.Name),
				intParam("factions", "Factions", e.rules.Factions),
			},
		},
		{
			Name: "Parallelism",
			Params: []core.Parameter{
				intParam("threads", "Thread hint", e.cfg.Threads),
				intParam("workers", "Workers", e.workers),
				boolParam("sequential", "Sequential", e.cfg.Sequential),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}

func stringParam(key, label, value string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeString,
		Value: value,
	}
}
