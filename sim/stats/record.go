// Package stats holds the sample schema, the append-only collector, and the
// post-simulation summarizer. It stores pure data types and has no dependency
// on the engine package, so export and dashboard collaborators can consume
// snapshots without importing the simulator.
package stats

// SampleKind tags the metric a sample belongs to.
type SampleKind string

const (
	// KindWait records the time an entity waited before being admitted to a
	// resource. Value = wait duration.
	KindWait SampleKind = "wait"
	// KindService records one service completion. Value = service duration.
	KindService SampleKind = "service"
	// KindQueueLength records a change in a resource's queue length.
	// Value = new length.
	KindQueueLength SampleKind = "queue_length"
	// KindOccupancy records a change in a resource's occupancy.
	// Value = new occupancy, Limit = capacity.
	KindOccupancy SampleKind = "occupancy"
	// KindSojourn records a completed entity's total time in system.
	// Value = departure - arrival.
	KindSojourn SampleKind = "sojourn"
	// KindRenege records an entity abandoning a queue. Value = time spent
	// waiting before giving up.
	KindRenege SampleKind = "renege"
)

// Sample is an immutable record emitted at a state transition. Once recorded
// it is owned exclusively by the Collector; fields are never mutated.
type Sample struct {
	Kind     SampleKind
	Time     float64
	EntityID int64
	Class    string
	Resource string
	Value    float64
	// Limit carries the resource capacity for occupancy samples and is zero
	// otherwise.
	Limit int
}
