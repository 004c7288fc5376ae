package proximity

import (
	"math"

	"github.com/zeusync/proximity/internal/core/systems/physics"
)

// Fix records the observer position and ranked distances of the last
// certified ranking. Second is a lower bound on the distance from Position of
// every tracked object other than the closest one.
type Fix struct {
	Position physics.Vec3
	Closest  float64
	Second   float64
	Valid    bool
}

// Gap is the distance margin between the two ranks at the fix.
func (f Fix) Gap() float64 { return f.Second - f.Closest }

// Radius is the safe-zone radius around Position, or 0 for an unusable fix.
//
// With the closest object at d1 and everything else at >= d2, moving the
// observer by r changes the closest distance by at most +r and every other
// distance by at most -r, so no rank change is possible while r < (d2-d1)/2.
func (f Fix) Radius() float64 {
	if !f.usable() {
		return 0
	}
	return f.Gap() / 2
}

func (f Fix) usable() bool {
	return f.Valid &&
		isFinite(f.Closest) && isFinite(f.Second) &&
		f.Second >= f.Closest &&
		physics.IsFinite(f.Position)
}

// Verdict is the outcome of a safe-zone check.
type Verdict struct {
	Safe         bool
	Displacement float64
	Radius       float64
}

// SafeZone decides in O(1) whether a scan can be skipped.
type SafeZone struct{}

// Check reports Safe only when the fix carries a finite second rank and the
// observer is strictly inside the fix's radius.
func (SafeZone) Check(observer physics.Vec3, fix Fix) Verdict {
	if !fix.usable() || !physics.IsFinite(observer) {
		return Verdict{}
	}
	displacement := physics.Distance(observer, fix.Position)
	radius := fix.Radius()
	return Verdict{
		Safe:         displacement < radius,
		Displacement: displacement,
		Radius:       radius,
	}
}

// Refresh moves the fix to the observer when that widens the gap.
//
// Inside the zone every non-closest object is still at least
// fix.Second - displacement away, which is the certified bound carried by the
// refreshed fix. closest is the re-derived distance to the closest object.
func (z SafeZone) Refresh(observer physics.Vec3, fix Fix, closest float64) (Fix, bool) {
	verdict := z.Check(observer, fix)
	if !verdict.Safe || !isFinite(closest) {
		return fix, false
	}
	bound := fix.Second - verdict.Displacement
	if bound-closest <= fix.Gap() {
		return fix, false
	}
	return Fix{Position: observer, Closest: closest, Second: bound, Valid: true}, true
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
