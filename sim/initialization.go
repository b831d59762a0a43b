package sim

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// applyWarmStart seeds the system with non-empty state at t=0 so a run can
// begin mid-steady-state instead of empty. In-service entities occupy slots
// and get residual service times drawn from the warm-start stream; queued
// entities join the wait queue behind them (or are admitted directly when
// slots remain free, in which case they get a full service draw).
//
// Resources are processed in sorted name order so entity IDs and RNG draws
// are deterministic regardless of map iteration.
func (s *Simulator) applyWarmStart() error {
	ws := s.params.WarmStart
	if ws == nil {
		return nil
	}

	seed := func(counts map[string]int, inService bool) error {
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			res := s.Resources[name]
			stage, onRoute := s.routeIdx[name]
			if !onRoute {
				// Validate guarantees warm-start resources are on the route.
				return &ResourceInvariantError{Resource: name, Msg: "warm start for resource not on the route"}
			}
			for i := 0; i < counts[name]; i++ {
				class := s.drawClass()
				e := newEntity(s.newEntityID(), class.Name, class.Priority, 0)
				e.StageIdx = stage

				// Seeded placements go through the same admission ledger as
				// arrivals, so warm-started runs still balance.
				s.requests++
				adm, err := res.Request(e)
				if err != nil {
					return err
				}
				switch {
				case adm == Granted && inService:
					s.immediateAdmissions++
					e.State = EntityInService
					residual := s.service[name].Sample(s.RNG.ForSubsystem(SubsystemWarmStart))
					s.recordOccupancy(res, 0)
					if _, err := s.Events.Schedule(residual, KindServiceEnd, e, res); err != nil {
						return err
					}
				case adm == Granted:
					// A queued warm entity found a free slot; start it normally.
					s.immediateAdmissions++
					s.recordOccupancy(res, 0)
					if _, err := s.Events.Schedule(0, KindServiceStart, e, res); err != nil {
						return err
					}
				default:
					e.State = EntityWaiting
					s.recordQueueLen(res, 0)
					if patience := class.RenegeAfter; patience > 0 {
						handle, err := s.Events.Schedule(patience, KindRenege, e, res)
						if err != nil {
							return err
						}
						e.renegeHandle = handle
					}
				}
			}
			if counts[name] > 0 {
				logrus.Debugf("Warm start: seeded %d entities at %s (in_service=%t)", counts[name], name, inService)
			}
		}
		return nil
	}

	if err := seed(ws.InService, true); err != nil {
		return err
	}
	return seed(ws.Queued, false)
}
