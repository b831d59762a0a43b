package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution captures the statistical summary of a metric.
type Distribution struct {
	Mean  float64
	P50   float64
	P90   float64
	P95   float64
	P99   float64
	Min   float64
	Max   float64
	Count int
}

// NewDistribution computes a Distribution from raw values.
// Returns a zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		P90:   stat.Quantile(0.90, stat.LinInterp, sorted, nil),
		P95:   stat.Quantile(0.95, stat.LinInterp, sorted, nil),
		P99:   stat.Quantile(0.99, stat.LinInterp, sorted, nil),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// ClassSummary aggregates per-entity-class results.
type ClassSummary struct {
	Completed int
	Reneged   int
	Wait      Distribution
	Sojourn   Distribution
}

// ResourceSummary aggregates per-resource results.
type ResourceSummary struct {
	Served          int
	Utilization     float64 // time-weighted occupancy / capacity over the window
	MeanQueueLength float64 // time-weighted
	PeakQueueLength int
	PeakOccupancy   int
	Wait            Distribution
	Service         Distribution
}

// Summary is the stable output contract consumed by plotting and export
// collaborators.
type Summary struct {
	WindowStart float64
	WindowEnd   float64
	PerClass    map[string]ClassSummary
	PerResource map[string]ResourceSummary
	// TotalSamples counts samples inside the window.
	TotalSamples int
}

// Options bounds the aggregation window. Samples before Warmup are excluded;
// time-weighted integrals run from Warmup to EndTime.
type Options struct {
	Warmup  float64
	EndTime float64
}

// stepPoint is one step of a piecewise-constant series.
type stepPoint struct {
	time  float64
	value float64
	limit int
}

// Summarize aggregates a snapshot into per-class and per-resource summaries.
// Pure function of its inputs: summarizing the same snapshot twice yields
// identical results. Safe for nil or empty snapshots.
func Summarize(samples []Sample, opts Options) *Summary {
	s := &Summary{
		WindowStart: opts.Warmup,
		WindowEnd:   opts.EndTime,
		PerClass:    make(map[string]ClassSummary),
		PerResource: make(map[string]ResourceSummary),
	}

	classWaits := make(map[string][]float64)
	classSojourns := make(map[string][]float64)
	classCompleted := make(map[string]int)
	classReneged := make(map[string]int)

	resWaits := make(map[string][]float64)
	resServices := make(map[string][]float64)
	resServed := make(map[string]int)
	occSeries := make(map[string][]stepPoint)
	qlenSeries := make(map[string][]stepPoint)

	for _, sm := range samples {
		// Occupancy and queue-length series keep pre-warmup points: the
		// step function needs the value in effect when the window opens.
		switch sm.Kind {
		case KindOccupancy:
			occSeries[sm.Resource] = append(occSeries[sm.Resource], stepPoint{sm.Time, sm.Value, sm.Limit})
			continue
		case KindQueueLength:
			qlenSeries[sm.Resource] = append(qlenSeries[sm.Resource], stepPoint{sm.Time, sm.Value, 0})
			continue
		}

		if sm.Time < opts.Warmup {
			continue
		}
		s.TotalSamples++

		switch sm.Kind {
		case KindWait:
			classWaits[sm.Class] = append(classWaits[sm.Class], sm.Value)
			resWaits[sm.Resource] = append(resWaits[sm.Resource], sm.Value)
		case KindService:
			resServices[sm.Resource] = append(resServices[sm.Resource], sm.Value)
			resServed[sm.Resource]++
		case KindSojourn:
			classSojourns[sm.Class] = append(classSojourns[sm.Class], sm.Value)
			classCompleted[sm.Class]++
		case KindRenege:
			classReneged[sm.Class]++
		}
	}

	classNames := make(map[string]struct{})
	for k := range classWaits {
		classNames[k] = struct{}{}
	}
	for k := range classSojourns {
		classNames[k] = struct{}{}
	}
	for k := range classCompleted {
		classNames[k] = struct{}{}
	}
	for k := range classReneged {
		classNames[k] = struct{}{}
	}
	for class := range classNames {
		s.PerClass[class] = ClassSummary{
			Completed: classCompleted[class],
			Reneged:   classReneged[class],
			Wait:      NewDistribution(classWaits[class]),
			Sojourn:   NewDistribution(classSojourns[class]),
		}
	}

	resNames := make(map[string]struct{})
	for k := range resWaits {
		resNames[k] = struct{}{}
	}
	for k := range resServices {
		resNames[k] = struct{}{}
	}
	for k := range occSeries {
		resNames[k] = struct{}{}
	}
	for k := range qlenSeries {
		resNames[k] = struct{}{}
	}
	for res := range resNames {
		rs := ResourceSummary{
			Served:  resServed[res],
			Wait:    NewDistribution(resWaits[res]),
			Service: NewDistribution(resServices[res]),
		}

		occ := occSeries[res]
		if len(occ) > 0 {
			capacity := occ[len(occ)-1].limit
			mean, peak := integrateStep(occ, opts.Warmup, opts.EndTime)
			rs.PeakOccupancy = peak
			if capacity > 0 {
				rs.Utilization = mean / float64(capacity)
			}
		}
		if qs := qlenSeries[res]; len(qs) > 0 {
			mean, peak := integrateStep(qs, opts.Warmup, opts.EndTime)
			rs.MeanQueueLength = mean
			rs.PeakQueueLength = peak
		}

		s.PerResource[res] = rs
	}

	return s
}

// integrateStep computes the time-weighted mean and peak of a
// piecewise-constant series over [start, end]. Points must be in
// non-decreasing time order, which the collector's append-only log guarantees.
func integrateStep(points []stepPoint, start, end float64) (mean float64, peak int) {
	if end <= start || len(points) == 0 {
		return 0, 0
	}
	integral := 0.0
	last := 0.0 // value in effect before the first recorded point
	lastTime := start
	for _, p := range points {
		if p.time <= start {
			// Pre-window points only establish the value in effect when
			// the window opens.
			last = p.value
			continue
		}
		if p.time > end {
			break
		}
		if int(last) > peak {
			peak = int(last)
		}
		integral += last * (p.time - lastTime)
		lastTime = p.time
		last = p.value
	}
	if int(last) > peak {
		peak = int(last)
	}
	integral += last * (end - lastTime)
	return integral / (end - start), peak
}

// Print displays the summary at the end of a run. Keys are printed in sorted
// order so output is stable across runs.
func (s *Summary) Print() {
	fmt.Println("=== Simulation Summary ===")
	fmt.Printf("Window               : [%.2f, %.2f]\n", s.WindowStart, s.WindowEnd)

	classes := make([]string, 0, len(s.PerClass))
	for name := range s.PerClass {
		classes = append(classes, name)
	}
	sort.Strings(classes)
	for _, name := range classes {
		cs := s.PerClass[name]
		fmt.Printf("Class %-14s : completed=%d reneged=%d\n", name, cs.Completed, cs.Reneged)
		fmt.Printf("  Wait               : mean=%.3f p50=%.3f p95=%.3f max=%.3f\n", cs.Wait.Mean, cs.Wait.P50, cs.Wait.P95, cs.Wait.Max)
		fmt.Printf("  Sojourn            : mean=%.3f p50=%.3f p95=%.3f max=%.3f\n", cs.Sojourn.Mean, cs.Sojourn.P50, cs.Sojourn.P95, cs.Sojourn.Max)
	}

	resources := make([]string, 0, len(s.PerResource))
	for name := range s.PerResource {
		resources = append(resources, name)
	}
	sort.Strings(resources)
	for _, name := range resources {
		rs := s.PerResource[name]
		fmt.Printf("Resource %-11s : served=%d util=%.1f%% mean-queue=%.2f peak-queue=%d\n",
			name, rs.Served, rs.Utilization*100, rs.MeanQueueLength, rs.PeakQueueLength)
	}
}
