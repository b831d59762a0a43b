package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/desflow/desflow/sim/stats"
	"github.com/desflow/desflow/sim/workload"
)

// RunState is the engine's lifecycle state.
type RunState string

const (
	StateIdle      RunState = "IDLE"
	StateRunning   RunState = "RUNNING"
	StateCompleted RunState = "COMPLETED"
	StateAborted   RunState = "ABORTED"
)

// RunResult carries everything a run produced: the final sample snapshot, the
// run status, and admission accounting. On an aborted run the samples
// collected so far are preserved and Err names the cause.
type RunResult struct {
	Scenario string
	Status   RunState
	Err      error

	Clock float64
	// EndTime bounds time-weighted integrals: the horizon when the run
	// reached it, otherwise the clock at the last processed event.
	EndTime float64
	Warmup  float64

	EventsProcessed int64
	EventCounts     map[EventKind]int64

	// Admission accounting. In a drained run every request resolves:
	// Requests == ImmediateAdmissions + QueuedAdmissions + Reneged.
	Requests            int64
	ImmediateAdmissions int64
	QueuedAdmissions    int64
	Reneged             int64
	Completed           int64

	Samples []stats.Sample
}

// Summarize aggregates the result's snapshot with the run's warmup window.
func (r *RunResult) Summarize() *stats.Summary {
	return stats.Summarize(r.Samples, stats.Options{Warmup: r.Warmup, EndTime: r.EndTime})
}

// Simulator is the core object holding simulation time, system state, and the
// event loop. One Simulator per run; it is not reusable.
type Simulator struct {
	Clock   float64
	Horizon float64

	Events    *EventQueue
	Resources map[string]*Resource
	Collector *stats.Collector
	RNG       *PartitionedRNG

	params Parameters
	state  RunState

	route    []*Resource
	routeIdx map[string]int // resource name → first index in route

	arrivals    workload.ArrivalSampler
	service     map[string]workload.DurationSampler
	classes     []ClassSpec
	totalWeight float64

	nextEntityID      EntityID
	arrivalsGenerated int64
	processed         int64
	eventCounts       map[EventKind]int64

	requests            int64
	immediateAdmissions int64
	queuedAdmissions    int64
	reneged             int64
	completed           int64
}

// NewSimulator validates the parameters and builds a run-ready engine in the
// Idle state. A ValidationError here means no event was ever scheduled.
func NewSimulator(p Parameters) (*Simulator, error) {
	p = p.withDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	arrivals, err := workload.NewArrivalSampler(p.Arrival)
	if err != nil {
		return nil, &ValidationError{Field: "arrival", Msg: err.Error()}
	}

	s := &Simulator{
		Horizon:     p.Horizon,
		Events:      NewEventQueue(),
		Resources:   make(map[string]*Resource, len(p.Resources)),
		Collector:   stats.NewCollector(),
		RNG:         NewPartitionedRNG(p.Seed),
		params:      p,
		state:       StateIdle,
		routeIdx:    make(map[string]int, len(p.Route)),
		arrivals:    arrivals,
		service:     make(map[string]workload.DurationSampler, len(p.Resources)),
		classes:     p.Classes,
		eventCounts: make(map[EventKind]int64),
	}

	for _, rs := range p.Resources {
		s.Resources[rs.Name] = NewResource(rs.Name, rs.Capacity, Discipline(rs.Discipline))
		sampler, err := workload.NewDurationSampler(rs.ServiceTime)
		if err != nil {
			return nil, &ValidationError{Field: "resources." + rs.Name + ".service_time", Msg: err.Error()}
		}
		s.service[rs.Name] = sampler
	}

	s.route = make([]*Resource, len(p.Route))
	for i, name := range p.Route {
		s.route[i] = s.Resources[name]
		if _, seen := s.routeIdx[name]; !seen {
			s.routeIdx[name] = i
		}
	}

	for _, c := range p.Classes {
		s.totalWeight += c.Weight
	}

	return s, nil
}

// State returns the engine's current lifecycle state.
func (s *Simulator) State() RunState {
	return s.state
}

// Run executes the simulation: warm start, then the stepping loop until the
// queue drains, the horizon is reached, or the event cap is hit. Mid-run
// errors abort the run; statistics collected so far are preserved in the
// result.
func (s *Simulator) Run() *RunResult {
	result := &RunResult{
		Scenario: s.params.Name,
		Warmup:   s.params.Warmup,
	}
	if s.state != StateIdle {
		result.Status = StateAborted
		result.Err = fmt.Errorf("simulator already ran (state %s)", s.state)
		return result
	}
	s.state = StateRunning
	logrus.Infof("Starting run %q: horizon=%.2f seed=%d resources=%d", s.params.Name, s.Horizon, s.RNG.Seed(), len(s.Resources))

	horizonReached := false
	if err := s.applyWarmStart(); err != nil {
		s.state = StateAborted
		result.Err = err
	} else {
		// First arrival enters at t=0; each arrival schedules its successor.
		s.arrivalsGenerated++
		if _, err := s.Events.Schedule(0, KindArrival, nil, nil); err != nil {
			s.state = StateAborted
			result.Err = err
		}
	}

	for s.state == StateRunning {
		if s.params.MaxEvents > 0 && s.processed >= s.params.MaxEvents {
			logrus.Infof("[t %012.4f] Event cap %d reached", s.Clock, s.params.MaxEvents)
			break
		}
		ev := s.Events.PopNext()
		if ev == nil {
			logrus.Infof("[t %012.4f] Event queue drained", s.Clock)
			break
		}
		if ev.Timestamp() > s.Horizon {
			horizonReached = true
			logrus.Infof("[t %012.4f] Horizon %.2f reached", s.Clock, s.Horizon)
			break
		}
		// advance the clock
		s.Clock = ev.Timestamp()
		s.processed++
		s.eventCounts[ev.Kind]++
		logrus.Debugf("[t %012.4f] Executing %s", s.Clock, ev.Kind)

		if err := s.dispatch(ev); err != nil {
			s.state = StateAborted
			result.Err = err
			logrus.Errorf("[t %012.4f] Run aborted: %v", s.Clock, err)
		}
	}

	if s.state != StateAborted {
		s.state = StateCompleted
	}

	result.Status = s.state
	result.Clock = s.Clock
	result.EndTime = s.Clock
	if horizonReached {
		result.EndTime = s.Horizon
	}
	result.EventsProcessed = s.processed
	result.EventCounts = s.eventCounts
	result.Requests = s.requests
	result.ImmediateAdmissions = s.immediateAdmissions
	result.QueuedAdmissions = s.queuedAdmissions
	result.Reneged = s.reneged
	result.Completed = s.completed
	result.Samples = s.Collector.Snapshot()
	logrus.Infof("[t %012.4f] Run %s: %d events, %d completed entities", s.Clock, result.Status, s.processed, s.completed)
	return result
}

// dispatch routes an event to its kind-specific handler. Unknown kinds are an
// extension defect and abort the run.
func (s *Simulator) dispatch(ev *Event) error {
	switch ev.Kind {
	case KindArrival:
		return s.handleArrival(ev)
	case KindServiceStart:
		return s.handleServiceStart(ev)
	case KindServiceEnd:
		return s.handleServiceEnd(ev)
	case KindDeparture:
		return s.handleDeparture(ev)
	case KindRenege:
		return s.handleRenege(ev)
	default:
		return &UnhandledEventError{Kind: ev.Kind}
	}
}

// drawClass selects an entity class by weight from the class stream.
func (s *Simulator) drawClass() ClassSpec {
	if len(s.classes) == 1 {
		return s.classes[0]
	}
	u := s.RNG.ForSubsystem(SubsystemClasses).Float64() * s.totalWeight
	for _, c := range s.classes {
		u -= c.Weight
		if u < 0 {
			return c
		}
	}
	return s.classes[len(s.classes)-1]
}

func (s *Simulator) newEntityID() EntityID {
	s.nextEntityID++
	return s.nextEntityID
}

// handleArrival creates the arriving entity, sends it to its first stage, and
// schedules the next arrival from the arrival stream.
func (s *Simulator) handleArrival(ev *Event) error {
	now := ev.Timestamp()
	class := s.drawClass()
	e := newEntity(s.newEntityID(), class.Name, class.Priority, now)
	logrus.Debugf("<< Arrival: entity %d (%s) at t=%.4f", e.ID, e.Class, now)

	if err := s.requestStage(e, now); err != nil {
		return err
	}

	if s.params.MaxArrivals == 0 || s.arrivalsGenerated < s.params.MaxArrivals {
		iat := s.arrivals.SampleIAT(s.RNG.ForSubsystem(SubsystemArrivals))
		next := now + iat
		if next <= s.Horizon {
			s.arrivalsGenerated++
			if _, err := s.Events.Schedule(next, KindArrival, nil, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// requestStage sends the entity to the resource at its current route stage,
// or to departure when the route is exhausted.
func (s *Simulator) requestStage(e *Entity, now float64) error {
	if e.StageIdx >= len(s.route) {
		_, err := s.Events.Schedule(now, KindDeparture, e, nil)
		return err
	}
	res := s.route[e.StageIdx]
	e.WaitStarted = now
	s.requests++

	adm, err := res.Request(e)
	if err != nil {
		return err
	}
	if adm == Granted {
		s.immediateAdmissions++
		s.recordOccupancy(res, now)
		_, err := s.Events.Schedule(now, KindServiceStart, e, res)
		return err
	}

	e.State = EntityWaiting
	s.recordQueueLen(res, now)
	if patience := s.classPatience(e.Class); patience > 0 {
		handle, err := s.Events.Schedule(now+patience, KindRenege, e, res)
		if err != nil {
			return err
		}
		e.renegeHandle = handle
	}
	return nil
}

func (s *Simulator) classPatience(class string) float64 {
	for _, c := range s.classes {
		if c.Name == class {
			return c.RenegeAfter
		}
	}
	return 0
}

// handleServiceStart records the wait the entity accumulated and schedules
// its service completion from the resource's service-time stream.
func (s *Simulator) handleServiceStart(ev *Event) error {
	e, res := ev.Entity, ev.Resource
	now := ev.Timestamp()

	wait := now - e.WaitStarted
	e.Waits[res.Name] += wait
	e.State = EntityInService
	s.Collector.Record(stats.Sample{
		Kind: stats.KindWait, Time: now, EntityID: int64(e.ID),
		Class: e.Class, Resource: res.Name, Value: wait,
	})

	d := s.service[res.Name].Sample(s.RNG.ForSubsystem(SubsystemService(res.Name)))
	s.Collector.Record(stats.Sample{
		Kind: stats.KindService, Time: now, EntityID: int64(e.ID),
		Class: e.Class, Resource: res.Name, Value: d,
	})
	_, err := s.Events.Schedule(now+d, KindServiceEnd, e, res)
	return err
}

// handleServiceEnd releases the slot, admits the next waiting entity if any,
// and advances the finished entity along its route.
func (s *Simulator) handleServiceEnd(ev *Event) error {
	e, res := ev.Entity, ev.Resource
	now := ev.Timestamp()

	next, err := res.Release()
	if err != nil {
		return err
	}
	s.recordOccupancy(res, now)
	if next != nil {
		s.queuedAdmissions++
		// Admission settles the renege race: cancelling here guarantees a
		// same-timestamp renege event pops as a no-op.
		if next.renegeHandle != nil {
			s.Events.Cancel(next.renegeHandle)
			next.renegeHandle = nil
		}
		s.recordQueueLen(res, now)
		if _, err := s.Events.Schedule(now, KindServiceStart, next, res); err != nil {
			return err
		}
	}

	e.StageIdx++
	return s.requestStage(e, now)
}

// handleDeparture archives the entity to statistics.
func (s *Simulator) handleDeparture(ev *Event) error {
	e := ev.Entity
	now := ev.Timestamp()
	e.State = EntityDeparted
	e.DepartTime = now
	s.completed++
	s.Collector.Record(stats.Sample{
		Kind: stats.KindSojourn, Time: now, EntityID: int64(e.ID),
		Class: e.Class, Value: e.TimeInSystem(),
	})
	logrus.Debugf(">> Departure: entity %d (%s) at t=%.4f after %.4f", e.ID, e.Class, now, e.TimeInSystem())
	return nil
}

// handleRenege removes a queued entity that ran out of patience. Admission
// cancels the renege handle, so reaching here with an entity that is not
// queued is a bookkeeping defect.
func (s *Simulator) handleRenege(ev *Event) error {
	e, res := ev.Entity, ev.Resource
	now := ev.Timestamp()

	if !res.Remove(e) {
		return &ResourceInvariantError{Resource: res.Name, Msg: fmt.Sprintf("renege for entity %d not in queue", e.ID)}
	}
	e.renegeHandle = nil
	wait := now - e.WaitStarted
	e.Waits[res.Name] += wait
	e.State = EntityReneged
	e.DepartTime = now
	s.reneged++
	s.recordQueueLen(res, now)
	s.Collector.Record(stats.Sample{
		Kind: stats.KindRenege, Time: now, EntityID: int64(e.ID),
		Class: e.Class, Resource: res.Name, Value: wait,
	})
	logrus.Debugf("xx Renege: entity %d left %s queue at t=%.4f after %.4f", e.ID, res.Name, now, wait)
	return nil
}

func (s *Simulator) recordOccupancy(res *Resource, now float64) {
	s.Collector.Record(stats.Sample{
		Kind: stats.KindOccupancy, Time: now, Resource: res.Name,
		Value: float64(res.Occupancy()), Limit: res.Capacity,
	})
}

func (s *Simulator) recordQueueLen(res *Resource, now float64) {
	s.Collector.Record(stats.Sample{
		Kind: stats.KindQueueLength, Time: now, Resource: res.Name,
		Value: float64(res.QueueLen()),
	})
}

// UnboundedHorizon is a convenience for event-cap-only runs.
const UnboundedHorizon = math.MaxFloat64
