package proximity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/proximity/internal/core/systems/physics"
)

func TestFixRadius(t *testing.T) {
	assert.Equal(t, 1.0, Fix{Closest: 10, Second: 12, Valid: true}.Radius())
	assert.Zero(t, Fix{Closest: 10, Second: 12}.Radius())
	assert.Zero(t, Fix{Closest: 10, Second: math.Inf(1), Valid: true}.Radius())
	assert.Zero(t, Fix{Closest: 12, Second: 10, Valid: true}.Radius())
	assert.Zero(t, Fix{Closest: math.NaN(), Second: 10, Valid: true}.Radius())
}

func TestSafeZoneCheck(t *testing.T) {
	var zone SafeZone
	fix := Fix{Closest: 10, Second: 12, Valid: true}

	cases := []struct {
		name     string
		observer physics.Vec3
		fix      Fix
		safe     bool
	}{
		{"inside", physics.Vec3{X: 0.5}, fix, true},
		{"on the boundary", physics.Vec3{Y: 1}, fix, false},
		{"outside", physics.Vec3{Z: 3}, fix, false},
		{"invalid fix", physics.Origin, Fix{Closest: 10, Second: 12}, false},
		{"unknown second", physics.Origin, Fix{Closest: 10, Second: math.Inf(1), Valid: true}, false},
		{"nan observer", physics.Vec3{X: math.NaN()}, fix, false},
		{"zero gap", physics.Origin, Fix{Closest: 5, Second: 5, Valid: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.safe, zone.Check(tc.observer, tc.fix).Safe)
		})
	}

	v := zone.Check(physics.Vec3{X: 0.5}, fix)
	assert.Equal(t, 0.5, v.Displacement)
	assert.Equal(t, 1.0, v.Radius)
}

func TestSafeZoneRefresh(t *testing.T) {
	var zone SafeZone
	fix := Fix{Closest: 10, Second: 12, Valid: true}

	// moved 0.5 toward the closest object: gap at the observer is 11.5-9.5 = 2
	_, ok := zone.Refresh(physics.Vec3{X: 0.5}, fix, 9.5)
	assert.False(t, ok)

	// the closest object is now 9 away, the bound is 11.5: gap 2.5 beats 2
	refreshed, ok := zone.Refresh(physics.Vec3{X: 0.5}, fix, 9)
	assert.True(t, ok)
	assert.Equal(t, Fix{Position: physics.Vec3{X: 0.5}, Closest: 9, Second: 11.5, Valid: true}, refreshed)
	assert.Equal(t, 1.25, refreshed.Radius())

	_, ok = zone.Refresh(physics.Vec3{X: 2}, fix, 1)
	assert.False(t, ok, "outside the zone")

	_, ok = zone.Refresh(physics.Vec3{X: 0.5}, fix, math.Inf(1))
	assert.False(t, ok)
}
