package sim

// EntityID identifies a single unit of flow within one run.
type EntityID int64

// EntityState is the lifecycle state of an entity.
type EntityState string

const (
	EntityArrived   EntityState = "ARRIVED"
	EntityWaiting   EntityState = "WAITING"
	EntityInService EntityState = "IN_SERVICE"
	EntityDeparted  EntityState = "DEPARTED"
	EntityReneged   EntityState = "RENEGED"
)

// Entity is a unit flowing through the system (a job, customer, or part).
// Created when its arrival event is processed, mutated as it moves along the
// route, and archived to statistics on departure.
type Entity struct {
	ID          EntityID
	Class       string
	Priority    int
	ArrivalTime float64
	State       EntityState

	// StageIdx indexes the route; the entity is at or waiting for
	// Route[StageIdx]. Past the last index the entity departs.
	StageIdx int

	// WaitStarted is the clock value at which the entity last began waiting
	// for (or was granted) a resource. Wait time at admission is
	// clock - WaitStarted.
	WaitStarted float64

	// Waits accumulates waiting time per resource name.
	Waits map[string]float64

	// DepartTime is set when the entity leaves the system, by departure
	// or by reneging.
	DepartTime float64

	// renegeHandle is the pending renege event while the entity waits in a
	// queue; cancelled on admission.
	renegeHandle *Event

	// queueSeq is the arrival-order tie-breaker assigned by the resource
	// that enqueued this entity.
	queueSeq uint64
}

// newEntity creates an entity in the ARRIVED state.
func newEntity(id EntityID, class string, priority int, arrival float64) *Entity {
	return &Entity{
		ID:          id,
		Class:       class,
		Priority:    priority,
		ArrivalTime: arrival,
		State:       EntityArrived,
		Waits:       make(map[string]float64),
	}
}

// TimeInSystem returns the sojourn time for departed or reneged entities.
func (e *Entity) TimeInSystem() float64 {
	return e.DepartTime - e.ArrivalTime
}
