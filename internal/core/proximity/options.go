package proximity

import (
	"time"

	"github.com/zeusync/proximity/internal/core/observability/log"
)

// TickStats describes one UpdateTick.
type TickStats struct {
	Strategy        Strategy
	Duration        time.Duration
	Scanned         bool
	Skipped         bool
	Candidates      int
	Closest         Handle
	ClosestDistance float64
}

// TickObserver is notified once per UpdateTick.
type TickObserver interface {
	ObserveTick(stats TickStats)
}

// TickObserverFunc adapts a function to TickObserver.
type TickObserverFunc func(stats TickStats)

func (f TickObserverFunc) ObserveTick(stats TickStats) { f(stats) }

// Options configures a Tracker.
type Options struct {
	Strategy  Strategy
	Logger    log.Log
	Observers []TickObserver
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Strategy: DefaultStrategy,
		Logger:   log.NewNop(),
	}
}

func WithStrategy(s Strategy) Option {
	return func(o *Options) {
		if s.valid() {
			o.Strategy = s
		}
	}
}

func WithLogger(l log.Log) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithTickObserver may be passed several times; observers run in order.
func WithTickObserver(obs TickObserver) Option {
	return func(o *Options) {
		if obs != nil {
			o.Observers = append(o.Observers, obs)
		}
	}
}
