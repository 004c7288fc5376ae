package proximity

import (
	"iter"

	"github.com/zeusync/proximity/internal/core/systems/physics"
)

func usable(c Candidate) bool {
	return c.Handle != NoHandle && physics.IsFinite(c.Position)
}

// scanNearest is a single pass seeded with the stored closest rank. Ties go
// to the candidate encountered later.
func scanNearest(observer physics.Vec3, candidates iter.Seq[Candidate], best rank) (rank, int) {
	scanned := 0
	for c := range candidates {
		if !usable(c) {
			continue
		}
		scanned++
		if d := physics.Distance(observer, c.Position); d <= best.distance {
			best = rank{handle: c.Handle, distance: d}
		}
	}
	return best, scanned
}

// scanTwoNearest keeps the two nearest distinct handles. The running best is
// demoted to second whenever a different candidate ties or beats it.
func scanTwoNearest(observer physics.Vec3, candidates iter.Seq[Candidate], best, second rank) (rank, rank, int) {
	if second.distance < best.distance {
		best, second = second, best
	}

	scanned := 0
	for c := range candidates {
		if !usable(c) {
			continue
		}
		scanned++
		d := physics.Distance(observer, c.Position)
		switch {
		case c.Handle == best.handle:
			best.distance = d
		case d <= best.distance:
			if best.handle != NoHandle {
				second = best
			}
			best = rank{handle: c.Handle, distance: d}
		case d <= second.distance:
			second = rank{handle: c.Handle, distance: d}
		}
	}
	if second.handle == best.handle {
		second = noRank
	}
	return best, second, scanned
}
