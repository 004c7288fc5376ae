package proximity

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/proximity/internal/core/systems/physics"
)

func TestRadiusQueryFallsBackToFullScan(t *testing.T) {
	reg := newTestRegistry(physics.Vec3{X: 1}, physics.Vec3{X: 5})
	src := RadiusQuery{Registry: reg}

	seq, bound := src.Candidates(physics.Origin, 2)
	assert.Equal(t, 2.0, bound)
	assert.Len(t, slices.Collect(seq), 1)

	for _, radius := range []float64{math.Inf(1), math.NaN(), -1} {
		seq, bound = src.Candidates(physics.Origin, radius)
		assert.True(t, math.IsInf(bound, 1))
		assert.Len(t, slices.Collect(seq), 2)
	}
}

func TestScanNearestLastTieWins(t *testing.T) {
	reg := newTestRegistry(physics.Vec3{X: 1}, physics.Vec3{X: -1}, physics.Vec3{Y: 3})

	best, scanned := scanNearest(physics.Origin, reg.Enumerate(), noRank)

	assert.Equal(t, 3, scanned)
	assert.Equal(t, Handle(2), best.handle)
}

func TestScanTwoNearestDemotesBest(t *testing.T) {
	reg := newTestRegistry(physics.Vec3{X: 3}, physics.Vec3{X: 1}, physics.Vec3{X: 2}, physics.Vec3{X: 9})

	best, second, _ := scanTwoNearest(physics.Origin, reg.Enumerate(), noRank, noRank)

	assert.Equal(t, rank{handle: 2, distance: 1}, best)
	assert.Equal(t, rank{handle: 3, distance: 2}, second)
}

func TestScanTwoNearestReordersSeeds(t *testing.T) {
	reg := newTestRegistry(physics.Vec3{X: 4})

	// the stored second overtook the stored closest and neither is yielded
	best, second, _ := scanTwoNearest(physics.Origin, reg.Enumerate(),
		rank{handle: 10, distance: 3}, rank{handle: 11, distance: 2})

	assert.Equal(t, Handle(11), best.handle)
	assert.Equal(t, Handle(10), second.handle)
}

func TestScanTwoNearestSeededWithSameObject(t *testing.T) {
	reg := newTestRegistry(physics.Vec3{X: 1}, physics.Vec3{X: 2})

	best, second, _ := scanTwoNearest(physics.Origin, reg.Enumerate(),
		rank{handle: 1, distance: 1}, rank{handle: 2, distance: 2})

	assert.Equal(t, Handle(1), best.handle)
	assert.Equal(t, Handle(2), second.handle)
}
