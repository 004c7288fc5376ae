// Package level saves and restores the tracked population.
//
// The document layout is a JSON object with an "objects" array. Each record
// carries a numeric objectType and an {x,y,z} position; the first Player
// record is the observer.
package level

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/zeusync/proximity/internal/core/systems/physics"
	"github.com/zeusync/proximity/internal/core/world"
)

var (
	ErrNoObjects   = errors.New("could not save level: object list is nil")
	ErrNotFound    = errors.New("level does not exist")
	ErrInvalidName = errors.New("invalid level name")
	ErrBadRecord   = errors.New("invalid level record")
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p Position) Vec() physics.Vec3 { return physics.Vec3{X: p.X, Y: p.Y, Z: p.Z} }

func FromVec(v physics.Vec3) Position { return Position{X: v.X, Y: v.Y, Z: v.Z} }

type Record struct {
	Type     world.ObjectType `json:"objectType"`
	Position Position         `json:"position"`
}

type Level struct {
	Objects []Record `json:"objects"`
}

// Capture records the observer followed by every object in w.
func Capture(w *world.World, observer physics.Vec3) Level {
	objects := w.Objects()
	l := Level{Objects: make([]Record, 0, len(objects)+1)}
	l.Objects = append(l.Objects, Record{Type: world.Player, Position: FromVec(observer)})
	for _, o := range objects {
		l.Objects = append(l.Objects, Record{Type: o.Type, Position: FromVec(o.Position)})
	}
	return l
}

// Resetter is told when the population was replaced.
type Resetter interface {
	Reset()
}

// Restore replaces the population of w with the level's objects and returns
// the observer position. The first Player record is the observer; without
// one the observer starts at the origin. r may be nil.
func Restore(l Level, w *world.World, r Resetter) (physics.Vec3, error) {
	if err := l.Validate(); err != nil {
		return physics.Origin, err
	}

	observer, found := physics.Origin, false
	specs := make([]world.Spec, 0, len(l.Objects))
	for _, rec := range l.Objects {
		if rec.Type == world.Player && !found {
			observer, found = rec.Position.Vec(), true
			continue
		}
		specs = append(specs, world.Spec{Type: rec.Type, Position: rec.Position.Vec()})
	}

	w.Replace(specs)
	if r != nil {
		r.Reset()
	}
	return observer, nil
}

func (l Level) Validate() error {
	if l.Objects == nil {
		return ErrNoObjects
	}
	for i, rec := range l.Objects {
		if !rec.Type.Valid() {
			return fmt.Errorf("%w: object %d: %w", ErrBadRecord, i, world.ErrUnknownObjectType)
		}
		if !physics.IsFinite(rec.Position.Vec()) {
			return fmt.Errorf("%w: object %d: non-finite position", ErrBadRecord, i)
		}
	}
	return nil
}

// Encode writes l as indented JSON.
func Encode(w io.Writer, l Level) error {
	if l.Objects == nil {
		return ErrNoObjects
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

func Decode(r io.Reader) (Level, error) {
	var l Level
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return Level{}, fmt.Errorf("decode level: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Level{}, err
	}
	return l, nil
}
