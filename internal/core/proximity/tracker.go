package proximity

import (
	"time"

	"github.com/zeusync/proximity/internal/core/observability/log"
	"github.com/zeusync/proximity/internal/core/systems/physics"
)

var (
	timeNow   = time.Now
	timeSince = time.Since
)

// Tracker maintains the closest (and optionally second-closest) object to
// the observer.
type Tracker struct {
	registry    Registry
	highlighter Highlighter
	second      SecondHighlighter

	strategy  Strategy
	source    CandidateSource
	full      FullScan
	zone      SafeZone
	observers []TickObserver
	logger    log.Log

	state    State
	observer physics.Vec3
	observed bool
}

// New creates a tracker over registry. A nil highlighter discards
// notifications.
func New(registry Registry, highlighter Highlighter, opts ...Option) *Tracker {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if highlighter == nil {
		highlighter = nopHighlighter{}
	}

	t := &Tracker{
		registry:    registry,
		highlighter: highlighter,
		strategy:    o.Strategy,
		source:      o.Strategy.Source(registry),
		full:        FullScan{Registry: registry},
		observers:   o.Observers,
		logger:      o.Logger.With(log.String("component", "proximity"), log.String("strategy", o.Strategy.String())),
		state:       emptyState(),
	}
	if o.Strategy.TwoRank() {
		t.second, _ = highlighter.(SecondHighlighter)
	}
	return t
}

func (t *Tracker) Strategy() Strategy { return t.strategy }

// State returns a copy of the current ranking.
func (t *Tracker) State() State { return t.state }

// Observer returns the last observer position passed to UpdateTick.
func (t *Tracker) Observer() (physics.Vec3, bool) { return t.observer, t.observed }

// UpdateTick advances the tracker to the observer's new position.
func (t *Tracker) UpdateTick(observer physics.Vec3) TickStats {
	start := timeNow()
	stats := TickStats{Strategy: t.strategy}

	if !physics.IsFinite(observer) {
		t.logger.Warn("ignoring non-finite observer position",
			log.Float64("x", observer.X), log.Float64("y", observer.Y), log.Float64("z", observer.Z))
		return t.finish(start, stats)
	}

	t.observer, t.observed = observer, true
	t.rederive(observer)

	switch {
	case !t.state.HasClosest():
		stats.Candidates = t.scan(observer, t.full)
		stats.Scanned = true
	case t.strategy.TwoRank() && t.trySkip(observer):
		stats.Skipped = true
	default:
		stats.Candidates = t.scan(observer, t.source)
		stats.Scanned = true
	}

	return t.finish(start, stats)
}

func (t *Tracker) finish(start time.Time, stats TickStats) TickStats {
	stats.Closest = t.state.Closest
	stats.ClosestDistance = t.state.ClosestDistance
	stats.Duration = timeSince(start)
	for _, obs := range t.observers {
		obs.ObserveTick(stats)
	}
	return stats
}

// rederive refreshes ranked distances for the current observer position.
// Ranked objects that vanished are dropped without notification.
func (t *Tracker) rederive(observer physics.Vec3) {
	if !t.state.HasClosest() {
		return
	}

	pos, ok := t.registry.Position(t.state.Closest)
	if !ok {
		t.logger.Debug("closest object vanished", log.Uint64("handle", uint64(t.state.Closest)))
		if t.state.HasSecond() {
			_, alive := t.registry.Position(t.state.Second)
			t.dropSecond(alive)
		}
		t.state = emptyState()
		return
	}
	t.state.ClosestDistance = physics.Distance(observer, pos)

	if !t.state.HasSecond() {
		return
	}
	pos, ok = t.registry.Position(t.state.Second)
	if !ok {
		t.dropSecond(false)
		return
	}
	t.state.SecondDistance = physics.Distance(observer, pos)
}

func (t *Tracker) trySkip(observer physics.Vec3) bool {
	if !t.state.HasSecond() {
		return false
	}
	if !t.zone.Check(observer, t.state.Fix).Safe {
		return false
	}
	if fix, ok := t.zone.Refresh(observer, t.state.Fix, t.state.ClosestDistance); ok {
		t.state.Fix = fix
	}
	return true
}

// scan runs one pass over the source's candidates and commits the result.
// Two-rank strategies query out to the second distance so the second rank
// can be certified again; with no second known that is a full scan.
func (t *Tracker) scan(observer physics.Vec3, source CandidateSource) int {
	radius := t.state.ClosestDistance
	if t.strategy.TwoRank() {
		radius = t.state.SecondDistance
	}
	candidates, bound := source.Candidates(observer, radius)

	if !t.strategy.TwoRank() {
		best, scanned := scanNearest(observer, candidates, t.state.closest())
		t.commit(best, noRank, Fix{})
		return scanned
	}

	best, second, scanned := scanTwoNearest(observer, candidates, t.state.closest(), t.state.second())
	if second.distance > bound {
		second = noRank
	}
	var fix Fix
	if best.handle != NoHandle && second.handle != NoHandle {
		fix = Fix{Position: observer, Closest: best.distance, Second: second.distance, Valid: true}
	}
	t.commit(best, second, fix)
	return scanned
}

// commit installs the scan result, notifying only ranks whose identity
// changed.
func (t *Tracker) commit(best, second rank, fix Fix) {
	prev := t.state

	if best.handle != prev.Closest {
		if prev.HasClosest() {
			t.highlighter.SetHighlighted(prev.Closest, false)
		}
		if best.handle != NoHandle {
			t.highlighter.SetHighlighted(best.handle, true)
		}
		t.logger.Debug("closest changed",
			log.Uint64("from", uint64(prev.Closest)),
			log.Uint64("to", uint64(best.handle)),
			log.Float64("distance", best.distance))
	}
	if t.second != nil && second.handle != prev.Second {
		if prev.HasSecond() {
			t.second.SetSecondHighlighted(prev.Second, false)
		}
		if second.handle != NoHandle {
			t.second.SetSecondHighlighted(second.handle, true)
		}
	}

	t.state = State{
		Closest:         best.handle,
		ClosestDistance: best.distance,
		Second:          second.handle,
		SecondDistance:  second.distance,
		Fix:             fix,
	}
}

// dropSecond degrades the second rank to unknown and invalidates the fix.
// notify is false when the object itself is gone.
func (t *Tracker) dropSecond(notify bool) {
	if notify && t.second != nil && t.state.HasSecond() {
		t.second.SetSecondHighlighted(t.state.Second, false)
	}
	t.state.Second = NoHandle
	t.state.SecondDistance = noRank.distance
	t.state.Fix = Fix{}
}

// NotifyObjectAdded checks a single new object against the current ranking
// without scanning. Without a closest object the next tick scans everything,
// so there is nothing to check against.
func (t *Tracker) NotifyObjectAdded(h Handle, pos physics.Vec3) {
	if h == NoHandle || h == t.state.Closest || !t.state.HasClosest() || !physics.IsFinite(pos) {
		return
	}

	d := physics.Distance(t.observer, pos)
	if d < t.state.ClosestDistance {
		t.highlighter.SetHighlighted(t.state.Closest, false)
		t.highlighter.SetHighlighted(h, true)
		if t.strategy.TwoRank() {
			t.dropSecond(true)
		}
		t.state.Closest, t.state.ClosestDistance = h, d
		t.state.Fix = Fix{}
		return
	}

	if !t.strategy.TwoRank() {
		return
	}
	if h == t.state.Second || d < t.state.SecondDistance || t.insideFix(pos) {
		t.dropSecond(true)
	}
}

func (t *Tracker) insideFix(pos physics.Vec3) bool {
	fix := t.state.Fix
	return fix.Valid && physics.Distance(fix.Position, pos) < fix.Second
}

// NotifyObjectMoved handles an object whose position changed outside the
// tick. A moved ranked object invalidates the fix; the next tick rescans
// from its new distance.
func (t *Tracker) NotifyObjectMoved(h Handle, pos physics.Vec3) {
	switch {
	case h == NoHandle || !t.state.HasClosest():
		return
	case h == t.state.Closest:
		if t.strategy.TwoRank() {
			t.dropSecond(true)
		}
		t.state.Fix = Fix{}
	case h == t.state.Second:
		t.dropSecond(true)
	default:
		t.NotifyObjectAdded(h, pos)
	}
}

// NotifyObjectRemoved forgets h if it holds a rank. Losing the closest object
// forces a full recompute on the next tick.
func (t *Tracker) NotifyObjectRemoved(h Handle) {
	switch {
	case h == NoHandle:
		return
	case h == t.state.Closest:
		t.dropSecond(true)
		t.state = emptyState()
	case h == t.state.Second:
		t.dropSecond(false)
	}
}

// Reset returns the tracker to its initial state without notifications.
// Call it after the population was replaced in bulk.
func (t *Tracker) Reset() {
	t.state = emptyState()
}
