package sim

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zeusync/proximity/internal/core/systems/physics"
	"github.com/zeusync/proximity/internal/core/world"
)

// BotWander moves every bot a random step per tick and keeps it inside the
// spawn sphere. Each move reaches the tracker through the world's moved
// listener.
type BotWander struct {
	world  *world.World
	speed  float64
	center physics.Vec3
	radius float64
	noise  distuv.Normal
}

func NewBotWander(w *world.World, speed float64, center physics.Vec3, radius float64, seed uint64) *BotWander {
	return &BotWander{
		world:  w,
		speed:  speed,
		center: center,
		radius: radius,
		noise:  distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, seed^0xda942042e4dd58b5)},
	}
}

func (*BotWander) Name() string       { return "bots" }
func (*BotWander) Priority() Priority { return PriorityHigh }

func (b *BotWander) FixedUpdate(dt float64) error {
	if b.speed == 0 || !(dt > 0) {
		return nil
	}
	for _, o := range b.world.Objects() {
		if o.Type != world.Bot {
			continue
		}
		dir := physics.Unit(physics.Vec3{X: b.noise.Rand(), Y: b.noise.Rand(), Z: b.noise.Rand()})
		step := physics.Scale(b.speed*dt, dir)
		next := physics.Add(o.Position, step)
		if physics.Distance(next, b.center) > b.radius {
			next = physics.Add(o.Position, physics.Scale(-1, step))
		}
		if physics.Distance(next, b.center) > b.radius {
			continue
		}
		b.world.Move(o.Handle, next)
	}
	return nil
}
