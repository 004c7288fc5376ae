package metrics

// Counter, Gauge and Histogram are the instrument shapes the tick observers
// write to. Prometheus collectors satisfy them directly.

type Counter interface {
	Inc()
	Add(float64)
}

type Gauge interface {
	Set(float64)
	Inc()
	Dec()
	Add(float64)
	Sub(float64)
}

type Histogram interface {
	Observe(float64)
}
