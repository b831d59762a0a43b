package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desflow/desflow/sim/stats"
	"github.com/desflow/desflow/sim/workload"
)

func warmParams() Parameters {
	return Parameters{
		Name:        "warm",
		Seed:        9,
		Horizon:     1000,
		MaxArrivals: 1,
		Arrival:     workload.ArrivalSpec{Process: "constant", Rate: 1.0},
		Resources: []ResourceSpec{{
			Name:        "server",
			Capacity:    2,
			ServiceTime: workload.DistSpec{Type: "constant", Params: map[string]float64{"value": 3}},
		}},
		Route: []string{"server"},
		WarmStart: &WarmStartSpec{
			InService: map[string]int{"server": 2},
			Queued:    map[string]int{"server": 1},
		},
	}
}

func TestWarmStart_SeedsOccupancyAtTimeZero(t *testing.T) {
	// GIVEN 2 in service and 1 queued at t=0, plus one real arrival at t=0
	s, err := NewSimulator(warmParams())
	require.NoError(t, err)
	result := s.Run()
	require.Equal(t, StateCompleted, result.Status)

	// THEN occupancy reaches capacity before any arrival is processed
	var first *stats.Sample
	for i, sm := range result.Samples {
		if sm.Kind == stats.KindOccupancy {
			first = &result.Samples[i]
			break
		}
	}
	require.NotNil(t, first)
	assert.Equal(t, 0.0, first.Time)

	var peak float64
	for _, sm := range result.Samples {
		if sm.Kind == stats.KindOccupancy && sm.Value > peak {
			peak = sm.Value
		}
	}
	assert.Equal(t, 2.0, peak)

	// Both warm in-service entities, the warm queued entity, and the arrival
	// all flow to departure.
	assert.Equal(t, int64(4), result.Completed)
}

func TestWarmStart_QueuedEntitiesWaitBehindSeededService(t *testing.T) {
	// Residual services end at t=3 (constant dist), freeing both slots for
	// the warm-queued entity and the t=0 arrival.
	s, err := NewSimulator(warmParams())
	require.NoError(t, err)
	result := s.Run()

	var waits []stats.Sample
	for _, sm := range result.Samples {
		if sm.Kind == stats.KindWait {
			waits = append(waits, sm)
		}
	}
	// Two waiters admitted at t=3, each having waited 3.
	require.Len(t, waits, 2)
	for _, w := range waits {
		assert.Equal(t, 3.0, w.Time)
		assert.Equal(t, 3.0, w.Value)
	}
}

func TestWarmStart_AdmissionAccountingBalances(t *testing.T) {
	// GIVEN a capacity-1 server seeded with one entity in service and one
	// queued, plus a single real arrival
	p := warmParams()
	p.Resources[0].Capacity = 1
	p.WarmStart = &WarmStartSpec{
		InService: map[string]int{"server": 1},
		Queued:    map[string]int{"server": 1},
	}
	s, err := NewSimulator(p)
	require.NoError(t, err)

	// WHEN the run drains
	result := s.Run()
	require.Equal(t, StateCompleted, result.Status)
	assert.Equal(t, int64(3), result.Completed)

	// THEN seeded placements count as requests, so the ledger balances:
	// 3 requests = 1 immediate (warm in-service) + 2 queued-then-admitted.
	assert.Equal(t, int64(3), result.Requests)
	assert.Equal(t, int64(1), result.ImmediateAdmissions)
	assert.Equal(t, int64(2), result.QueuedAdmissions)
	assert.Equal(t, result.Requests, result.ImmediateAdmissions+result.QueuedAdmissions+result.Reneged)
}

func TestWarmStart_RenegingSeededWaiterBalances(t *testing.T) {
	// A seeded waiter that runs out of patience resolves its request by
	// reneging; the identity must still hold.
	p := warmParams()
	p.Resources[0].Capacity = 1
	p.Resources[0].ServiceTime.Params["value"] = 10
	p.Classes = []ClassSpec{{Name: "default", Weight: 1, RenegeAfter: 2}}
	p.WarmStart = &WarmStartSpec{
		InService: map[string]int{"server": 1},
		Queued:    map[string]int{"server": 1},
	}
	s, err := NewSimulator(p)
	require.NoError(t, err)

	result := s.Run()
	require.Equal(t, StateCompleted, result.Status)
	// Warm waiter and the t=0 arrival both renege at t=2.
	assert.Equal(t, int64(2), result.Reneged)
	assert.Equal(t, result.Requests, result.ImmediateAdmissions+result.QueuedAdmissions+result.Reneged)
}

func TestWarmStart_SameSeed_IsDeterministic(t *testing.T) {
	a, err := NewSimulator(warmParams())
	require.NoError(t, err)
	b, err := NewSimulator(warmParams())
	require.NoError(t, err)

	ra, rb := a.Run(), b.Run()
	assert.Equal(t, ra.Samples, rb.Samples)
	assert.Equal(t, ra.EventCounts, rb.EventCounts)
}

func TestWarmStart_FillsFreeSlotsBeforeQueueing(t *testing.T) {
	// One in service out of capacity 2: the "queued" warm entity finds a free
	// slot and starts service immediately instead of waiting.
	p := warmParams()
	p.WarmStart = &WarmStartSpec{
		InService: map[string]int{"server": 1},
		Queued:    map[string]int{"server": 1},
	}
	s, err := NewSimulator(p)
	require.NoError(t, err)
	result := s.Run()
	require.Equal(t, StateCompleted, result.Status)

	// The warm "queued" entity starts at t=0 with zero wait; the t=0 arrival
	// then finds both slots taken and waits for the residual service at t=3.
	var waits []stats.Sample
	for _, sm := range result.Samples {
		if sm.Kind == stats.KindWait {
			waits = append(waits, sm)
		}
	}
	require.Len(t, waits, 2)
	assert.Equal(t, 0.0, waits[0].Value)
	assert.Equal(t, 3.0, waits[1].Value)
	assert.Equal(t, int64(3), result.Completed)
}
