package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zeusync/proximity/internal/core/proximity"
)

// Prometheus exports tick statistics labelled by strategy.
type Prometheus struct {
	tickSeconds *prometheus.HistogramVec
	scans       *prometheus.CounterVec
	skips       *prometheus.CounterVec
	candidates  *prometheus.GaugeVec
	distance    *prometheus.GaugeVec

	mu         sync.Mutex
	byStrategy map[proximity.Strategy]Instruments
}

var _ proximity.TickObserver = (*Prometheus)(nil)

// NewPrometheus registers the tracker collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		byStrategy: make(map[proximity.Strategy]Instruments),
		tickSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proximity_tick_seconds",
			Help:    "Duration of one proximity tracker update",
			Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
		}, []string{"strategy"}),
		scans: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proximity_scans_total",
			Help: "Ticks that scanned candidates",
		}, []string{"strategy"}),
		skips: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proximity_skips_total",
			Help: "Ticks skipped inside the safe zone",
		}, []string{"strategy"}),
		candidates: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "proximity_candidates",
			Help: "Candidates examined by the last tick",
		}, []string{"strategy"}),
		distance: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "proximity_closest_distance",
			Help: "Distance to the closest object after the last tick",
		}, []string{"strategy"}),
	}
}

func (p *Prometheus) ObserveTick(stats proximity.TickStats) {
	p.instruments(stats.Strategy).ObserveTick(stats)
}

func (p *Prometheus) instruments(s proximity.Strategy) Instruments {
	p.mu.Lock()
	defer p.mu.Unlock()

	if in, ok := p.byStrategy[s]; ok {
		return in
	}
	label := s.String()
	in := Instruments{
		Tick:       p.tickSeconds.WithLabelValues(label),
		Scans:      p.scans.WithLabelValues(label),
		Skips:      p.skips.WithLabelValues(label),
		Candidates: p.candidates.WithLabelValues(label),
		Distance:   p.distance.WithLabelValues(label),
	}
	p.byStrategy[s] = in
	return in
}
