package proximity

import "math"

// State is the ranking owned by a Tracker.
type State struct {
	Closest         Handle
	ClosestDistance float64

	Second         Handle
	SecondDistance float64

	// Fix is the reference point of the safe zone. It is only valid in
	// two-rank strategies after a scan that certified a second rank.
	Fix Fix
}

// HasClosest reports whether a closest object is known.
func (s State) HasClosest() bool { return s.Closest != NoHandle }

// HasSecond reports whether a second-closest object is known.
func (s State) HasSecond() bool { return s.Second != NoHandle }

func emptyState() State {
	return State{
		ClosestDistance: math.Inf(1),
		SecondDistance:  math.Inf(1),
	}
}

// rank is a scan temporary: a handle and its distance to the observer.
type rank struct {
	handle   Handle
	distance float64
}

var noRank = rank{handle: NoHandle, distance: math.Inf(1)}

func (s State) closest() rank { return rank{handle: s.Closest, distance: s.ClosestDistance} }

func (s State) second() rank { return rank{handle: s.Second, distance: s.SecondDistance} }
