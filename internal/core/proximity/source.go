package proximity

import (
	"iter"
	"math"

	"github.com/zeusync/proximity/internal/core/systems/physics"
)

// CandidateSource produces the objects a scan considers.
//
// bound certifies the enumeration: every tracked object that is not yielded
// lies farther than bound from center. A scan can only trust a second rank
// whose distance does not exceed bound.
type CandidateSource interface {
	Name() string
	Candidates(center physics.Vec3, radius float64) (candidates iter.Seq[Candidate], bound float64)
}

// FullScan enumerates the whole population.
type FullScan struct {
	Registry Registry
}

func (FullScan) Name() string { return "full" }

func (s FullScan) Candidates(physics.Vec3, float64) (iter.Seq[Candidate], float64) {
	return s.Registry.Enumerate(), math.Inf(1)
}

// RadiusQuery only enumerates objects within radius of the observer. The
// tracker passes the re-derived closest distance, so the closest object is
// always among the candidates. A radius that is negative or not finite falls
// back to a full scan.
type RadiusQuery struct {
	Registry Registry
}

func (RadiusQuery) Name() string { return "radius" }

func (s RadiusQuery) Candidates(center physics.Vec3, radius float64) (iter.Seq[Candidate], float64) {
	if !isFinite(radius) || radius < 0 {
		return FullScan(s).Candidates(center, radius)
	}
	return s.Registry.RadiusQuery(center, radius), radius
}
