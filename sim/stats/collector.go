package stats

// Collector accumulates samples as the engine runs. Record is append-only:
// prior samples are never mutated, so a mid-run Snapshot is safe for live
// dashboards. Memory grows monotonically with run length; the caller bounds
// the run (horizon or event cap) to bound memory.
//
// Thread-unsafe by design: one collector per run, same ownership as the
// event queue.
type Collector struct {
	samples []Sample
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{samples: make([]Sample, 0, 1024)}
}

// Record appends a sample to the log.
func (c *Collector) Record(s Sample) {
	c.samples = append(c.samples, s)
}

// Snapshot returns an immutable copy of all samples recorded so far.
func (c *Collector) Snapshot() []Sample {
	out := make([]Sample, len(c.samples))
	copy(out, c.samples)
	return out
}

// Len returns the number of recorded samples.
func (c *Collector) Len() int {
	return len(c.samples)
}
