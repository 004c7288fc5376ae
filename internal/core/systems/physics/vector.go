package physics

// Lightweight 3D helpers shared by the registry, the tracker and the simulation.
// Every distance in the module is computed by Distance so that broad-phase
// filtering and nearest-object scoring agree bit for bit.

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a point or displacement in world space.
type Vec3 = r3.Vec

// Origin is the world origin.
var Origin = Vec3{}

// Distance computes Euclidean distance between two points.
func Distance(a, b Vec3) float64 { return r3.Norm(r3.Sub(a, b)) }

// DistanceSquared computes squared Euclidean distance between two points.
func DistanceSquared(a, b Vec3) float64 { return r3.Norm2(r3.Sub(a, b)) }

// Add returns a+b.
func Add(a, b Vec3) Vec3 { return r3.Add(a, b) }

// Scale returns v scaled by f.
func Scale(f float64, v Vec3) Vec3 { return r3.Scale(f, v) }

// Unit returns v normalised to length 1. The zero vector maps to the X axis.
func Unit(v Vec3) Vec3 {
	if r3.Norm2(v) == 0 {
		return Vec3{X: 1}
	}
	return r3.Unit(v)
}

// IsFinite reports whether all components are finite numbers.
func IsFinite(v Vec3) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Clamp limits each component of v to [min, max] of the matching component.
func Clamp(v, min, max Vec3) Vec3 {
	return Vec3{
		X: math.Max(min.X, math.Min(max.X, v.X)),
		Y: math.Max(min.Y, math.Min(max.Y, v.Y)),
		Z: math.Max(min.Z, math.Min(max.Z, v.Z)),
	}
}
