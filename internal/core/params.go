package core

import "strings"

// ParamType enumerates supported parameter value kinds.
type ParamType string

const (
	// ParamTypeInt denotes integer-valued parameters.
	ParamTypeInt ParamType = "int"
	// ParamTypeFloat denotes floating-point parameters.
	ParamTypeFloat ParamType = "float"
	// ParamTypeBool denotes boolean parameters.
	ParamTypeBool ParamType = "bool"
	// ParamTypeString denotes free-form parameters such as rule names.
	ParamTypeString ParamType = "string"
)

// Parameter describes a single value a run was configured with.
type Parameter struct {
	Key         string
	Label       string
	Type        ParamType
	Value       string
	Description string
}

// ParameterGroup clusters related parameters for presentation purposes.
type ParameterGroup struct {
	Name    string
	Params  []Parameter
	Summary string
}

// ParameterSnapshot captures the settings a run was started with.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}

// Lookup finds a parameter by key across all groups.
func (s ParameterSnapshot) Lookup(key string) (Parameter, bool) {
	for _, g := range s.Groups {
		for _, p := range g.Params {
			if p.Key == key {
				return p, true
			}
		}
	}
	return Parameter{}, false
}

// Flatten returns every parameter as key/value pairs.
func (s ParameterSnapshot) Flatten() map[string]string {
	out := make(map[string]string)
	for _, g := range s.Groups {
		for _, p := range g.Params {
			out[p.Key] = p.Value
		}
	}
	return out
}

// String renders the snapshot as "group: key=value ..." lines.
func (s ParameterSnapshot) String() string {
	var b strings.Builder
	for _, g := range s.Groups {
		b.WriteString(g.Name)
		b.WriteString(":")
		for _, p := range g.Params {
			b.WriteString(" ")
			b.WriteString(p.Key)
			b.WriteString("=")
			b.WriteString(p.Value)
		}
		b.WriteString("\n")
	}
	return b.String()
}
