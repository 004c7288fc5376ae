package metrics

import (
	"sync"
	"time"

	"github.com/zeusync/proximity/internal/core/proximity"
)

// Average keeps the running mean tick duration.
type Average struct {
	mu    sync.Mutex
	count int64
	total time.Duration
	last  time.Duration
	max   time.Duration
}

var _ proximity.TickObserver = (*Average)(nil)

func (a *Average) ObserveTick(stats proximity.TickStats) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.count++
	a.total += stats.Duration
	a.last = stats.Duration
	a.max = max(a.max, stats.Duration)
}

// Mean returns the average tick duration, or 0 before the first tick.
func (a *Average) Mean() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count == 0 {
		return 0
	}
	return a.total / time.Duration(a.count)
}

func (a *Average) Last() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

func (a *Average) Max() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.max
}

func (a *Average) Count() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

func (a *Average) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.count, a.total, a.last, a.max = 0, 0, 0, 0
}
