package sim

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zeusync/proximity/internal/config"
	"github.com/zeusync/proximity/internal/core/systems/physics"
)

// Mover produces the observer's next position.
type Mover interface {
	Next(pos physics.Vec3, dt float64) physics.Vec3
}

// NewMover builds the mover named by cfg.Motion.
func NewMover(cfg config.ObserverConfig) (Mover, error) {
	switch cfg.Motion {
	case config.MotionStatic:
		return Static{}, nil
	case config.MotionRandomWalk:
		return NewRandomWalk(cfg.Speed, cfg.Bounds, cfg.Seed), nil
	case config.MotionOrbit:
		return NewOrbit(cfg.Start, cfg.Bounds/2, cfg.Speed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMotion, cfg.Motion)
	}
}

type Static struct{}

func (Static) Next(pos physics.Vec3, _ float64) physics.Vec3 { return pos }

// turnRate scales the heading noise per second of travel.
const turnRate = 1.5

// RandomWalk moves at constant speed along a heading that drifts with
// gaussian noise. It bounces off the faces of the cube [-Bounds, Bounds]^3.
type RandomWalk struct {
	Speed  float64
	Bounds float64

	heading physics.Vec3
	noise   distuv.Normal
}

func NewRandomWalk(speed, bounds float64, seed uint64) *RandomWalk {
	w := &RandomWalk{
		Speed:  speed,
		Bounds: bounds,
		noise:  distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, seed^0x2545f4914f6cdd1d)},
	}
	w.heading = w.draw()
	return w
}

func (w *RandomWalk) draw() physics.Vec3 {
	return physics.Unit(physics.Vec3{X: w.noise.Rand(), Y: w.noise.Rand(), Z: w.noise.Rand()})
}

func (w *RandomWalk) Next(pos physics.Vec3, dt float64) physics.Vec3 {
	if !(dt > 0) || w.Speed == 0 {
		return pos
	}

	jitter := physics.Scale(turnRate*math.Sqrt(dt), w.draw())
	w.heading = physics.Unit(physics.Add(w.heading, jitter))

	next := physics.Add(pos, physics.Scale(w.Speed*dt, w.heading))
	next.X, w.heading.X = bounce(next.X, w.heading.X, w.Bounds)
	next.Y, w.heading.Y = bounce(next.Y, w.heading.Y, w.Bounds)
	next.Z, w.heading.Z = bounce(next.Z, w.heading.Z, w.Bounds)

	b := physics.Vec3{X: w.Bounds, Y: w.Bounds, Z: w.Bounds}
	return physics.Clamp(next, physics.Scale(-1, b), b)
}

func bounce(x, heading, bound float64) (float64, float64) {
	switch {
	case x > bound:
		return 2*bound - x, -math.Abs(heading)
	case x < -bound:
		return -2*bound - x, math.Abs(heading)
	}
	return x, heading
}

// Orbit circles Center in the horizontal plane at constant speed.
type Orbit struct {
	Center physics.Vec3
	Radius float64
	Speed  float64

	angle float64
}

func NewOrbit(center physics.Vec3, radius, speed float64) *Orbit {
	return &Orbit{Center: center, Radius: radius, Speed: speed}
}

func (o *Orbit) Next(_ physics.Vec3, dt float64) physics.Vec3 {
	if o.Radius > 0 && dt > 0 {
		o.angle = math.Mod(o.angle+o.Speed/o.Radius*dt, 2*math.Pi)
	}
	return physics.Add(o.Center, physics.Vec3{
		X: o.Radius * math.Cos(o.angle),
		Z: o.Radius * math.Sin(o.angle),
	})
}
