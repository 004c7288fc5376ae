package proximity

import (
	"iter"
	"math"
	"math/rand/v2"

	"github.com/zeusync/proximity/internal/core/systems/physics"
)

type testRegistry struct {
	order []Handle
	pos   map[Handle]physics.Vec3
	next  Handle
}

func newTestRegistry(points ...physics.Vec3) *testRegistry {
	r := &testRegistry{pos: make(map[Handle]physics.Vec3)}
	for _, p := range points {
		r.add(p)
	}
	return r
}

func (r *testRegistry) add(p physics.Vec3) Handle {
	r.next++
	r.order = append(r.order, r.next)
	r.pos[r.next] = p
	return r.next
}

func (r *testRegistry) remove(h Handle) {
	delete(r.pos, h)
	for i, o := range r.order {
		if o == h {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func (r *testRegistry) Enumerate() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, h := range r.order {
			if !yield(Candidate{Handle: h, Position: r.pos[h]}) {
				return
			}
		}
	}
}

func (r *testRegistry) RadiusQuery(center physics.Vec3, radius float64) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, h := range r.order {
			p := r.pos[h]
			if physics.Distance(center, p) > radius {
				continue
			}
			if !yield(Candidate{Handle: h, Position: p}) {
				return
			}
		}
	}
}

func (r *testRegistry) Position(h Handle) (physics.Vec3, bool) {
	p, ok := r.pos[h]
	return p, ok
}

// nearest is the brute-force reference: last-wins ties in enumeration order.
func (r *testRegistry) nearest(observer physics.Vec3) (Handle, float64) {
	best, bestD := NoHandle, math.Inf(1)
	for _, h := range r.order {
		if d := physics.Distance(observer, r.pos[h]); d <= bestD {
			best, bestD = h, d
		}
	}
	return best, bestD
}

// nearestExcept returns the smallest distance of any object other than h.
func (r *testRegistry) nearestExcept(observer physics.Vec3, h Handle) float64 {
	bestD := math.Inf(1)
	for _, o := range r.order {
		if o == h {
			continue
		}
		bestD = math.Min(bestD, physics.Distance(observer, r.pos[o]))
	}
	return bestD
}

type highlight struct {
	Handle Handle
	On     bool
}

type recorder struct {
	events []highlight
}

func (r *recorder) SetHighlighted(h Handle, on bool) {
	r.events = append(r.events, highlight{Handle: h, On: on})
}

type rankRecorder struct {
	recorder
	second []highlight
}

func (r *rankRecorder) SetSecondHighlighted(h Handle, on bool) {
	r.second = append(r.second, highlight{Handle: h, On: on})
}

func randomPoints(rng *rand.Rand, n int, extent float64) []physics.Vec3 {
	points := make([]physics.Vec3, n)
	for i := range points {
		points[i] = randomPoint(rng, extent)
	}
	return points
}

func randomPoint(rng *rand.Rand, extent float64) physics.Vec3 {
	return physics.Vec3{
		X: (rng.Float64()*2 - 1) * extent,
		Y: (rng.Float64()*2 - 1) * extent,
		Z: (rng.Float64()*2 - 1) * extent,
	}
}

func randomDirection(rng *rand.Rand) physics.Vec3 {
	return physics.Unit(physics.Vec3{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()})
}
