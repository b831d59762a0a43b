package sim

import "container/heap"

// eventHeap implements heap.Interface over *Event ordered by (time, seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// EventQueue is a min-priority structure of pending events keyed by
// (time, seq). It is single-owner state: thread-unsafe by design, one queue
// per run.
type EventQueue struct {
	heap    eventHeap
	clock   float64
	nextSeq uint64
}

// NewEventQueue creates an empty queue with the clock at zero.
func NewEventQueue() *EventQueue {
	q := &EventQueue{heap: make(eventHeap, 0)}
	heap.Init(&q.heap)
	return q
}

// Schedule inserts an event and returns a handle usable with Cancel.
// Scheduling into the past is a defect and fails with a SchedulingError.
func (q *EventQueue) Schedule(t float64, kind EventKind, entity *Entity, resource *Resource) (*Event, error) {
	if t < q.clock {
		return nil, &SchedulingError{Time: t, Clock: q.clock}
	}
	ev := &Event{
		time:     t,
		seq:      q.nextSeq,
		Kind:     kind,
		Entity:   entity,
		Resource: resource,
	}
	q.nextSeq++
	heap.Push(&q.heap, ev)
	return ev, nil
}

// PopNext removes and returns the earliest pending event, skipping cancelled
// entries, and advances the queue clock to its timestamp. Returns nil when
// no live events remain.
func (q *EventQueue) PopNext() *Event {
	for q.heap.Len() > 0 {
		ev := heap.Pop(&q.heap).(*Event)
		if ev.cancelled {
			continue
		}
		q.clock = ev.time
		return ev
	}
	return nil
}

// Cancel marks an event inert without disturbing heap order. Returns false if
// the handle is nil or already cancelled.
func (q *EventQueue) Cancel(ev *Event) bool {
	if ev == nil || ev.cancelled {
		return false
	}
	ev.cancelled = true
	return true
}

// Len returns the number of queued entries, cancelled ones included.
func (q *EventQueue) Len() int {
	return q.heap.Len()
}

// Clock returns the timestamp of the most recently popped event.
func (q *EventQueue) Clock() float64 {
	return q.clock
}
