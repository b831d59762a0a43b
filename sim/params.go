package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/desflow/desflow/sim/workload"
)

// ClassSpec defines one entity class.
type ClassSpec struct {
	Name string `yaml:"name"`
	// Weight is the relative probability of an arrival belonging to this
	// class. Must be > 0.
	Weight float64 `yaml:"weight"`
	// Priority orders admission under the priority discipline; higher wins.
	Priority int `yaml:"priority"`
	// RenegeAfter is the patience of queued entities: after this long in a
	// queue the entity abandons the system. Zero disables reneging.
	RenegeAfter float64 `yaml:"renege_after,omitempty"`
}

// ResourceSpec defines one capacity-limited resource.
type ResourceSpec struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
	// Discipline is "fifo" (default) or "priority".
	Discipline  string            `yaml:"discipline,omitempty"`
	ServiceTime workload.DistSpec `yaml:"service_time"`
}

// WarmStartSpec seeds the simulation with non-empty state instead of starting
// empty: entities already in service (with residual service times drawn at
// start) and entities already queued.
type WarmStartSpec struct {
	InService map[string]int `yaml:"in_service,omitempty"`
	Queued    map[string]int `yaml:"queued,omitempty"`
}

// Parameters is the validated configuration of a single run.
type Parameters struct {
	Name    string  `yaml:"name,omitempty"`
	Seed    int64   `yaml:"seed"`
	Horizon float64 `yaml:"horizon"`
	// Warmup excludes samples before this time from summaries. Raw samples
	// are always kept.
	Warmup float64 `yaml:"warmup,omitempty"`
	// MaxEvents caps processed events (0 = unlimited); the run completes
	// when either the horizon or the cap is reached.
	MaxEvents int64 `yaml:"max_events,omitempty"`
	// MaxArrivals caps generated arrivals (0 = unlimited).
	MaxArrivals int64 `yaml:"max_arrivals,omitempty"`

	Arrival   workload.ArrivalSpec `yaml:"arrival"`
	Classes   []ClassSpec          `yaml:"classes,omitempty"`
	Resources []ResourceSpec       `yaml:"resources"`
	// Route is the ordered list of resource names every entity visits.
	Route     []string       `yaml:"route"`
	WarmStart *WarmStartSpec `yaml:"warm_start,omitempty"`
}

// withDefaults returns a copy with optional fields filled in: a single
// default class when none are given, FIFO discipline where omitted.
func (p Parameters) withDefaults() Parameters {
	if len(p.Classes) == 0 {
		p.Classes = []ClassSpec{{Name: "default", Weight: 1.0}}
	}
	resources := make([]ResourceSpec, len(p.Resources))
	copy(resources, p.Resources)
	for i := range resources {
		if resources[i].Discipline == "" {
			resources[i].Discipline = string(DisciplineFIFO)
		}
	}
	p.Resources = resources
	return p
}

// Validate checks every field and fails fast with a ValidationError before
// any event is scheduled.
func (p *Parameters) Validate() error {
	if p.Horizon <= 0 || math.IsNaN(p.Horizon) || math.IsInf(p.Horizon, 0) {
		return &ValidationError{Field: "horizon", Msg: fmt.Sprintf("must be positive and finite, got %f", p.Horizon)}
	}
	if p.Warmup < 0 || p.Warmup >= p.Horizon {
		return &ValidationError{Field: "warmup", Msg: fmt.Sprintf("must be in [0, horizon), got %f", p.Warmup)}
	}
	if p.MaxEvents < 0 {
		return &ValidationError{Field: "max_events", Msg: "must be non-negative"}
	}
	if p.MaxArrivals < 0 {
		return &ValidationError{Field: "max_arrivals", Msg: "must be non-negative"}
	}

	if !workload.IsValidArrivalProcess(p.Arrival.Process) {
		return &ValidationError{Field: "arrival.process", Msg: fmt.Sprintf("unknown process %q; valid: poisson, gamma, weibull, constant", p.Arrival.Process)}
	}
	if p.Arrival.Rate <= 0 || math.IsNaN(p.Arrival.Rate) || math.IsInf(p.Arrival.Rate, 0) {
		return &ValidationError{Field: "arrival.rate", Msg: fmt.Sprintf("must be positive and finite, got %f", p.Arrival.Rate)}
	}
	if p.Arrival.CV != nil && *p.Arrival.CV <= 0 {
		return &ValidationError{Field: "arrival.cv", Msg: fmt.Sprintf("must be positive, got %f", *p.Arrival.CV)}
	}

	classNames := make(map[string]bool)
	for i, c := range p.Classes {
		field := fmt.Sprintf("classes[%d]", i)
		if c.Name == "" {
			return &ValidationError{Field: field + ".name", Msg: "must not be empty"}
		}
		if classNames[c.Name] {
			return &ValidationError{Field: field + ".name", Msg: fmt.Sprintf("duplicate class %q", c.Name)}
		}
		classNames[c.Name] = true
		if c.Weight <= 0 {
			return &ValidationError{Field: field + ".weight", Msg: fmt.Sprintf("must be positive, got %f", c.Weight)}
		}
		if c.RenegeAfter < 0 {
			return &ValidationError{Field: field + ".renege_after", Msg: fmt.Sprintf("must be non-negative, got %f", c.RenegeAfter)}
		}
	}

	if len(p.Resources) == 0 {
		return &ValidationError{Field: "resources", Msg: "at least one resource required"}
	}
	resourceNames := make(map[string]bool)
	for i, r := range p.Resources {
		field := fmt.Sprintf("resources[%d]", i)
		if r.Name == "" {
			return &ValidationError{Field: field + ".name", Msg: "must not be empty"}
		}
		if resourceNames[r.Name] {
			return &ValidationError{Field: field + ".name", Msg: fmt.Sprintf("duplicate resource %q", r.Name)}
		}
		resourceNames[r.Name] = true
		if r.Capacity < 0 {
			return &ValidationError{Field: field + ".capacity", Msg: fmt.Sprintf("must be non-negative, got %d", r.Capacity)}
		}
		switch Discipline(r.Discipline) {
		case DisciplineFIFO, DisciplinePriority, "":
		default:
			return &ValidationError{Field: field + ".discipline", Msg: fmt.Sprintf("unknown discipline %q; valid: fifo, priority", r.Discipline)}
		}
		if err := r.ServiceTime.Validate(); err != nil {
			return &ValidationError{Field: field + ".service_time", Msg: err.Error()}
		}
	}

	if len(p.Route) == 0 {
		return &ValidationError{Field: "route", Msg: "must list at least one resource"}
	}
	for i, name := range p.Route {
		if !resourceNames[name] {
			return &ValidationError{Field: fmt.Sprintf("route[%d]", i), Msg: fmt.Sprintf("unknown resource %q", name)}
		}
	}

	if p.WarmStart != nil {
		capacities := make(map[string]int, len(p.Resources))
		for _, r := range p.Resources {
			capacities[r.Name] = r.Capacity
		}
		routeNames := make(map[string]bool, len(p.Route))
		for _, name := range p.Route {
			routeNames[name] = true
		}
		for name, n := range p.WarmStart.InService {
			if !resourceNames[name] {
				return &ValidationError{Field: "warm_start.in_service", Msg: fmt.Sprintf("unknown resource %q", name)}
			}
			if !routeNames[name] {
				return &ValidationError{Field: "warm_start.in_service", Msg: fmt.Sprintf("resource %q is not on the route", name)}
			}
			if n < 0 || n > capacities[name] {
				return &ValidationError{Field: "warm_start.in_service", Msg: fmt.Sprintf("%s: count %d outside [0, capacity=%d]", name, n, capacities[name])}
			}
		}
		for name, n := range p.WarmStart.Queued {
			if !resourceNames[name] {
				return &ValidationError{Field: "warm_start.queued", Msg: fmt.Sprintf("unknown resource %q", name)}
			}
			if !routeNames[name] {
				return &ValidationError{Field: "warm_start.queued", Msg: fmt.Sprintf("resource %q is not on the route", name)}
			}
			if n < 0 {
				return &ValidationError{Field: "warm_start.queued", Msg: fmt.Sprintf("%s: count must be non-negative, got %d", name, n)}
			}
		}
	}

	return nil
}

// ScenarioFile is the top-level structure of a YAML scenario file: one
// Parameters block per scenario, run independently.
type ScenarioFile struct {
	Scenarios []Parameters `yaml:"scenarios"`
}

// LoadScenarios reads and parses a YAML scenario file. Uses strict parsing:
// unrecognized keys (typos) are rejected. Each scenario is validated; the
// first invalid one fails the load.
func LoadScenarios(path string) ([]Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var file ScenarioFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario file %s defines no scenarios", path)
	}
	for i := range file.Scenarios {
		if err := file.Scenarios[i].Validate(); err != nil {
			return nil, fmt.Errorf("scenario %d (%s): %w", i, file.Scenarios[i].Name, err)
		}
	}
	return file.Scenarios, nil
}
