package world

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/proximity/internal/core/proximity"
	"github.com/zeusync/proximity/internal/core/systems/physics"
)

func handles(seq func(func(proximity.Candidate) bool)) []proximity.Handle {
	var out []proximity.Handle
	for c := range seq {
		out = append(out, c.Handle)
	}
	return out
}

func TestSpawnDestroyKeepsStableOrder(t *testing.T) {
	w := New()
	a := w.Spawn(Item, physics.Vec3{X: 1})
	b := w.Spawn(Bot, physics.Vec3{X: 2})
	c := w.Spawn(Item, physics.Vec3{X: 3})
	d := w.Spawn(Item, physics.Vec3{X: 4})

	assert.Equal(t, []proximity.Handle{a.Handle, b.Handle, c.Handle, d.Handle}, handles(w.Enumerate()))

	require.True(t, w.Destroy(b.Handle))
	assert.False(t, w.Destroy(b.Handle))
	assert.Equal(t, []proximity.Handle{a.Handle, d.Handle, c.Handle}, handles(w.Enumerate()))

	_, ok := w.Position(b.Handle)
	assert.False(t, ok)
	pos, ok := w.Position(d.Handle)
	require.True(t, ok)
	assert.Equal(t, physics.Vec3{X: 4}, pos)

	assert.Equal(t, 3, w.Len())
	assert.Equal(t, 3, w.Count(Item))
	assert.Zero(t, w.Count(Bot))
}

func TestListeners(t *testing.T) {
	w := New()
	var spawned []Object
	var moved []Object
	var destroyed []proximity.Handle
	replaced := 0
	w.OnSpawned(func(o Object) { spawned = append(spawned, o) })
	w.OnMoved(func(o Object) { moved = append(moved, o) })
	w.OnDestroyed(func(h proximity.Handle) { destroyed = append(destroyed, h) })
	w.OnReplaced(func() { replaced++ })

	o := w.Spawn(Item, physics.Vec3{X: 1})
	require.True(t, w.Move(o.Handle, physics.Vec3{Y: 9}))
	assert.False(t, w.Move(999, physics.Vec3{}))
	w.Destroy(o.Handle)

	created := w.Replace([]Spec{{Type: Bot, Position: physics.Vec3{X: 5}}, {Type: Item}})

	assert.Len(t, spawned, 1)
	require.Len(t, moved, 1)
	assert.Equal(t, physics.Vec3{Y: 9}, moved[0].Position)
	assert.Equal(t, []proximity.Handle{o.Handle}, destroyed)
	assert.Equal(t, 1, replaced)
	assert.Len(t, created, 2)
	assert.Equal(t, 2, w.Len())

	w.Clear()
	assert.Zero(t, w.Len())
	assert.Equal(t, 2, replaced)
}

func TestHandlesAreNeverReused(t *testing.T) {
	w := New()
	a := w.Spawn(Item, physics.Origin)
	w.Replace(nil)
	b := w.Spawn(Item, physics.Origin)
	assert.NotEqual(t, a.Handle, b.Handle)
	assert.NotEqual(t, proximity.NoHandle, b.Handle)
}

func TestRadiusQueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 4))
	for _, cellSize := range []float64{0.5, 2, 4, 50} {
		w := New(WithCellSize(cellSize))
		for range 500 {
			w.Spawn(Item, physics.Vec3{
				X: rng.Float64()*60 - 30,
				Y: rng.Float64()*60 - 30,
				Z: rng.Float64()*60 - 30,
			})
		}

		for range 50 {
			center := physics.Vec3{X: rng.Float64()*40 - 20, Y: rng.Float64()*40 - 20, Z: rng.Float64()*40 - 20}
			radius := rng.Float64() * 15

			var want []proximity.Handle
			for _, o := range w.Objects() {
				if physics.Distance(center, o.Position) <= radius {
					want = append(want, o.Handle)
				}
			}
			got := handles(w.RadiusQuery(center, radius))
			slices.Sort(got)
			slices.Sort(want)
			require.Equal(t, want, got, "cell size %v", cellSize)
		}
	}
}

func TestRadiusQueryBoundaryIsInclusive(t *testing.T) {
	w := New(WithCellSize(1))
	on := w.Spawn(Item, physics.Vec3{X: 3})
	w.Spawn(Item, physics.Vec3{X: 3.0000001})

	assert.Equal(t, []proximity.Handle{on.Handle}, handles(w.RadiusQuery(physics.Origin, 3)))
}

func TestRadiusQueryFollowsMoves(t *testing.T) {
	w := New(WithCellSize(1))
	o := w.Spawn(Item, physics.Vec3{X: 10})
	assert.Empty(t, handles(w.RadiusQuery(physics.Origin, 2)))

	w.Move(o.Handle, physics.Vec3{X: 1})
	assert.Equal(t, []proximity.Handle{o.Handle}, handles(w.RadiusQuery(physics.Origin, 2)))

	w.Destroy(o.Handle)
	assert.Empty(t, handles(w.RadiusQuery(physics.Origin, 2)))
}

func TestRadiusQuerySkipsNonFinitePositions(t *testing.T) {
	w := New()
	w.Spawn(Item, physics.Vec3{X: math.NaN()})
	ok := w.Spawn(Item, physics.Vec3{X: 1})

	assert.Equal(t, []proximity.Handle{ok.Handle}, handles(w.RadiusQuery(physics.Origin, math.MaxFloat64)))
	assert.Len(t, handles(w.Enumerate()), 2)
}

func TestTrackerOverWorld(t *testing.T) {
	w := New(WithCellSize(2))
	near := w.Spawn(Item, physics.Vec3{X: 1})
	w.Spawn(Bot, physics.Vec3{X: 6})

	var events []proximity.Handle
	tr := proximity.New(w, proximity.HighlighterFunc(func(h proximity.Handle, on bool) {
		if on {
			events = append(events, h)
		}
	}))
	w.OnSpawned(func(o Object) { tr.NotifyObjectAdded(o.Handle, o.Position) })
	w.OnDestroyed(tr.NotifyObjectRemoved)

	tr.UpdateTick(physics.Origin)
	closer := w.Spawn(Item, physics.Vec3{Y: 0.5})
	w.Destroy(closer.Handle)
	stats := tr.UpdateTick(physics.Origin)

	assert.Equal(t, near.Handle, stats.Closest)
	assert.Equal(t, []proximity.Handle{near.Handle, closer.Handle, near.Handle}, events)
}
