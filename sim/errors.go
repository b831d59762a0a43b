package sim

import "fmt"

// ValidationError reports a bad parameter value. It is returned before any
// event is scheduled; a run that fails validation never starts.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Msg)
}

// SchedulingError reports an attempt to schedule an event into the past.
// This is a programming defect: the engine aborts the run.
type SchedulingError struct {
	Time  float64
	Clock float64
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("cannot schedule event at t=%.6f before clock t=%.6f", e.Time, e.Clock)
}

// ResourceInvariantError reports a resource whose bookkeeping violates
// occupancy or queue invariants. Fatal: the engine aborts the run.
type ResourceInvariantError struct {
	Resource string
	Msg      string
}

func (e *ResourceInvariantError) Error() string {
	return fmt.Sprintf("resource %s invariant violated: %s", e.Resource, e.Msg)
}

// UnhandledEventError reports an event kind the engine has no handler for.
type UnhandledEventError struct {
	Kind EventKind
}

func (e *UnhandledEventError) Error() string {
	return fmt.Sprintf("no handler for event kind %q", e.Kind)
}
