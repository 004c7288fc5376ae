package world

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zeusync/proximity/internal/core/systems/physics"
)

// DefaultSpawnRadius matches the spawn sphere used for random levels.
const DefaultSpawnRadius = 20.0

// Spawner places objects at random inside a sphere: a uniform direction
// scaled by a uniform distance in [0, radius).
type Spawner struct {
	world    *World
	origin   physics.Vec3
	distance distuv.Uniform
	axis     distuv.Normal
}

func NewSpawner(w *World, origin physics.Vec3, radius float64, seed uint64) *Spawner {
	if !(radius > 0) {
		radius = DefaultSpawnRadius
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Spawner{
		world:    w,
		origin:   origin,
		distance: distuv.Uniform{Min: 0, Max: radius, Src: src},
		axis:     distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// Point draws the next spawn position.
func (s *Spawner) Point() physics.Vec3 {
	dir := physics.Unit(physics.Vec3{X: s.axis.Rand(), Y: s.axis.Rand(), Z: s.axis.Rand()})
	return physics.Add(s.origin, physics.Scale(s.distance.Rand(), dir))
}

func (s *Spawner) Spawn(typ ObjectType) Object {
	return s.world.Spawn(typ, s.Point())
}

// Specs draws n specs without touching the world, for bulk loads.
func (s *Spawner) Specs(typ ObjectType, n int) []Spec {
	specs := make([]Spec, n)
	for i := range specs {
		specs[i] = Spec{Type: typ, Position: s.Point()}
	}
	return specs
}

func (s *Spawner) SpawnItems(n int) []Object { return s.spawnN(Item, n) }

func (s *Spawner) SpawnBots(n int) []Object { return s.spawnN(Bot, n) }

func (s *Spawner) spawnN(typ ObjectType, n int) []Object {
	out := make([]Object, 0, n)
	for range n {
		out = append(out, s.Spawn(typ))
	}
	return out
}
