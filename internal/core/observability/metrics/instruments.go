package metrics

import "github.com/zeusync/proximity/internal/core/proximity"

// Instruments writes tick statistics to a fixed set of instruments. Nil
// instruments are skipped.
type Instruments struct {
	Tick       Histogram
	Scans      Counter
	Skips      Counter
	Candidates Gauge
	Distance   Gauge
}

var _ proximity.TickObserver = Instruments{}

func (in Instruments) ObserveTick(stats proximity.TickStats) {
	if in.Tick != nil {
		in.Tick.Observe(stats.Duration.Seconds())
	}
	if stats.Scanned && in.Scans != nil {
		in.Scans.Inc()
	}
	if stats.Skipped && in.Skips != nil {
		in.Skips.Inc()
	}
	if in.Candidates != nil {
		in.Candidates.Set(float64(stats.Candidates))
	}
	if in.Distance != nil && stats.Closest != proximity.NoHandle {
		in.Distance.Set(stats.ClosestDistance)
	}
}
