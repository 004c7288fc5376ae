package metrics

import (
	"math"
	"slices"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/zeusync/proximity/internal/core/proximity"
)

// Samples records every tick for offline comparison of strategies.
type Samples struct {
	mu         sync.Mutex
	seconds    []float64
	candidates []float64
	scans      int
	skips      int
}

var _ proximity.TickObserver = (*Samples)(nil)

func NewSamples(capacity int) *Samples {
	return &Samples{
		seconds:    make([]float64, 0, capacity),
		candidates: make([]float64, 0, capacity),
	}
}

func (s *Samples) ObserveTick(stats proximity.TickStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seconds = append(s.seconds, stats.Duration.Seconds())
	s.candidates = append(s.candidates, float64(stats.Candidates))
	if stats.Scanned {
		s.scans++
	}
	if stats.Skipped {
		s.skips++
	}
}

// Durations returns a copy of the recorded tick durations in seconds.
func (s *Samples) Durations() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.seconds)
}

type Summary struct {
	Ticks          int
	Scans          int
	Skips          int
	Mean           time.Duration
	StdDev         time.Duration
	P50            time.Duration
	P99            time.Duration
	Max            time.Duration
	MeanCandidates float64
}

// ScanRatio is the fraction of ticks that ran a scan.
func (s Summary) ScanRatio() float64 {
	if s.Ticks == 0 {
		return 0
	}
	return float64(s.Scans) / float64(s.Ticks)
}

func (s *Samples) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{Ticks: len(s.seconds), Scans: s.scans, Skips: s.skips}
	if sum.Ticks == 0 {
		return sum
	}

	sorted := slices.Clone(s.seconds)
	slices.Sort(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if sum.Ticks == 1 {
		std = 0
	}
	sum.Mean = seconds(mean)
	sum.StdDev = seconds(std)
	sum.P50 = seconds(stat.Quantile(0.5, stat.Empirical, sorted, nil))
	sum.P99 = seconds(stat.Quantile(0.99, stat.Empirical, sorted, nil))
	sum.Max = seconds(sorted[len(sorted)-1])
	sum.MeanCandidates = stat.Mean(s.candidates, nil)
	return sum
}

func seconds(f float64) time.Duration {
	return time.Duration(math.Round(f * float64(time.Second)))
}
