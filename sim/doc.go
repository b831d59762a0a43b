// Package sim implements a discrete-event simulation engine for
// capacity-constrained flow systems: entities arrive according to a stochastic
// process, visit a route of capacity-limited resources, wait in FIFO or
// priority queues, and depart. Every state transition emits immutable samples
// to a stats.Collector; post-run aggregation lives in sim/stats.
//
// The engine is single-threaded and non-preemptive: one event is processed at
// a time and handlers run to completion. Independent runs (batch mode) never
// share mutable state, so callers may run scenarios concurrently, one
// Simulator per goroutine.
package sim
