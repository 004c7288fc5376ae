package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/proximity/internal/core/proximity"
)

func tick(d time.Duration, scanned bool, candidates int) proximity.TickStats {
	return proximity.TickStats{
		Strategy:   proximity.StrategyRadiusSafeZone,
		Duration:   d,
		Scanned:    scanned,
		Skipped:    !scanned,
		Candidates: candidates,
		Closest:    1,
	}
}

func TestAverage(t *testing.T) {
	var a Average
	assert.Zero(t, a.Mean())

	a.ObserveTick(tick(2*time.Millisecond, true, 4))
	a.ObserveTick(tick(4*time.Millisecond, false, 0))

	assert.Equal(t, 3*time.Millisecond, a.Mean())
	assert.Equal(t, 4*time.Millisecond, a.Last())
	assert.Equal(t, 4*time.Millisecond, a.Max())
	assert.Equal(t, int64(2), a.Count())

	a.Reset()
	assert.Zero(t, a.Count())
}

func TestSamplesSummary(t *testing.T) {
	s := NewSamples(100)
	assert.Zero(t, s.Summary().Ticks)

	for i := 1; i <= 100; i++ {
		s.ObserveTick(tick(time.Duration(i)*time.Microsecond, i%4 == 0, i%4))
	}

	sum := s.Summary()
	assert.Equal(t, 100, sum.Ticks)
	assert.Equal(t, 25, sum.Scans)
	assert.Equal(t, 75, sum.Skips)
	assert.InDelta(t, 0.25, sum.ScanRatio(), 1e-12)
	assert.InDelta(t, float64(50500*time.Nanosecond), float64(sum.Mean), 10)
	assert.InDelta(t, float64(50*time.Microsecond), float64(sum.P50), 10)
	assert.InDelta(t, float64(99*time.Microsecond), float64(sum.P99), 10)
	assert.Equal(t, 100*time.Microsecond, sum.Max)
	assert.InDelta(t, 1.5, sum.MeanCandidates, 1e-12)
	assert.Greater(t, sum.StdDev, time.Duration(0))
	assert.Len(t, s.Durations(), 100)
}

func TestSamplesSingleTick(t *testing.T) {
	s := NewSamples(1)
	s.ObserveTick(tick(time.Millisecond, true, 3))

	sum := s.Summary()
	assert.Equal(t, time.Millisecond, sum.Mean)
	assert.Zero(t, sum.StdDev)
	assert.Equal(t, time.Millisecond, sum.P99)
}

type countingGauge struct{ value float64 }

func (g *countingGauge) Set(v float64) { g.value = v }
func (g *countingGauge) Inc()          { g.value++ }
func (g *countingGauge) Dec()          { g.value-- }
func (g *countingGauge) Add(v float64) { g.value += v }
func (g *countingGauge) Sub(v float64) { g.value -= v }

func TestInstrumentsSkipNil(t *testing.T) {
	g := &countingGauge{}
	in := Instruments{Candidates: g}

	in.ObserveTick(tick(time.Millisecond, true, 12))

	assert.Equal(t, 12.0, g.value)
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.ObserveTick(tick(time.Millisecond, true, 7))
	p.ObserveTick(tick(time.Microsecond, false, 0))
	p.ObserveTick(tick(time.Microsecond, false, 0))

	label := proximity.StrategyRadiusSafeZone.String()
	assert.Equal(t, 1.0, testutil.ToFloat64(p.scans.WithLabelValues(label)))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.skips.WithLabelValues(label)))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.candidates.WithLabelValues(label)))

	expected := `
# HELP proximity_scans_total Ticks that scanned candidates
# TYPE proximity_scans_total counter
proximity_scans_total{strategy="radius-safezone"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "proximity_scans_total"))
	count, err := testutil.GatherAndCount(reg, "proximity_tick_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
