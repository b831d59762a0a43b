package sim

import (
	"github.com/emirpasic/gods/trees/redblacktree"
)

// Discipline selects the admission order of a resource's wait queue.
type Discipline string

const (
	// DisciplineFIFO admits waiting entities in arrival order.
	DisciplineFIFO Discipline = "fifo"
	// DisciplinePriority admits higher-priority entities first, ties broken
	// by arrival order.
	DisciplinePriority Discipline = "priority"
)

// Admission is the outcome of a resource request.
type Admission int

const (
	// Granted means the entity occupies a slot immediately.
	Granted Admission = iota
	// Queued means the entity joined the wait queue.
	Queued
)

// queueKey orders the priority-discipline wait queue: higher priority first,
// then arrival order.
type queueKey struct {
	priority int
	seq      uint64
}

func compareQueueKeys(a, b any) int {
	ka, kb := a.(queueKey), b.(queueKey)
	// Higher priority sorts first (tree minimum is the queue head).
	if ka.priority != kb.priority {
		if ka.priority > kb.priority {
			return -1
		}
		return 1
	}
	switch {
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}

// Resource is a capacity-limited contention point. Invariants: occupancy never
// exceeds capacity, and the wait queue is non-empty only while all slots are
// occupied.
type Resource struct {
	Name       string
	Capacity   int
	Discipline Discipline

	occupancy int
	fifo      []*Entity
	tree      *redblacktree.Tree // only for DisciplinePriority
	nextSeq   uint64
}

// NewResource creates an empty resource. Capacity zero is legal: every
// request queues.
func NewResource(name string, capacity int, discipline Discipline) *Resource {
	r := &Resource{
		Name:       name,
		Capacity:   capacity,
		Discipline: discipline,
	}
	if discipline == DisciplinePriority {
		r.tree = redblacktree.NewWith(compareQueueKeys)
	}
	return r
}

// Request admits the entity if a slot is free, otherwise enqueues it per the
// resource's discipline.
func (r *Resource) Request(e *Entity) (Admission, error) {
	if r.occupancy > r.Capacity {
		return Queued, &ResourceInvariantError{Resource: r.Name, Msg: "occupancy exceeds capacity"}
	}
	if r.occupancy < r.Capacity {
		r.occupancy++
		return Granted, nil
	}
	e.queueSeq = r.nextSeq
	r.nextSeq++
	if r.Discipline == DisciplinePriority {
		r.tree.Put(queueKey{priority: e.Priority, seq: e.queueSeq}, e)
	} else {
		r.fifo = append(r.fifo, e)
	}
	return Queued, nil
}

// Release frees one slot. If entities are waiting, the head of the queue is
// admitted (occupancy stays at capacity) and returned so the caller can
// schedule its service start. Returns nil when nothing was waiting.
func (r *Resource) Release() (*Entity, error) {
	if r.occupancy <= 0 {
		return nil, &ResourceInvariantError{Resource: r.Name, Msg: "release with zero occupancy"}
	}
	r.occupancy--
	next := r.dequeueHead()
	if next != nil {
		r.occupancy++
	}
	if r.occupancy > r.Capacity {
		return nil, &ResourceInvariantError{Resource: r.Name, Msg: "occupancy exceeds capacity"}
	}
	return next, nil
}

func (r *Resource) dequeueHead() *Entity {
	if r.Discipline == DisciplinePriority {
		node := r.tree.Left()
		if node == nil {
			return nil
		}
		e := node.Value.(*Entity)
		r.tree.Remove(node.Key)
		return e
	}
	if len(r.fifo) == 0 {
		return nil
	}
	e := r.fifo[0]
	r.fifo = r.fifo[1:]
	return e
}

// Remove takes a waiting entity out of the queue (reneging). Returns false if
// the entity is not queued here.
func (r *Resource) Remove(e *Entity) bool {
	if r.Discipline == DisciplinePriority {
		key := queueKey{priority: e.Priority, seq: e.queueSeq}
		if _, found := r.tree.Get(key); !found {
			return false
		}
		r.tree.Remove(key)
		return true
	}
	for i, queued := range r.fifo {
		if queued == e {
			r.fifo = append(r.fifo[:i], r.fifo[i+1:]...)
			return true
		}
	}
	return false
}

// Occupancy returns the number of occupied slots.
func (r *Resource) Occupancy() int {
	return r.occupancy
}

// QueueLen returns the number of waiting entities.
func (r *Resource) QueueLen() int {
	if r.Discipline == DisciplinePriority {
		return r.tree.Size()
	}
	return len(r.fifo)
}
