package sim

// EventKind tags a scheduled state transition.
type EventKind string

const (
	// KindArrival brings a new entity into the system.
	KindArrival EventKind = "Arrival"
	// KindServiceStart begins service for an entity that holds a slot.
	KindServiceStart EventKind = "ServiceStart"
	// KindServiceEnd completes service and releases the slot.
	KindServiceEnd EventKind = "ServiceEnd"
	// KindDeparture archives an entity that finished its route.
	KindDeparture EventKind = "Departure"
	// KindRenege removes an entity that abandoned a queue.
	KindRenege EventKind = "Renege"
)

// Event is a scheduled state transition. Events are totally ordered by
// (time, seq): the sequence number is assigned at Schedule time, so
// simultaneous events are processed in insertion order and replay is
// deterministic.
//
// A cancelled event stays in the queue (lazy deletion) and is skipped by
// PopNext. This keeps Cancel O(1) and scheduling O(log n).
type Event struct {
	time      float64
	seq       uint64
	Kind      EventKind
	Entity    *Entity
	Resource  *Resource
	cancelled bool
}

// Timestamp returns the simulation time at which the event fires.
func (e *Event) Timestamp() float64 {
	return e.time
}

// Seq returns the insertion sequence number, the tie-breaker for
// simultaneous events.
func (e *Event) Seq() uint64 {
	return e.seq
}

// Cancelled reports whether the event has been marked inert.
func (e *Event) Cancelled() bool {
	return e.cancelled
}
