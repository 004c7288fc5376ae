package world

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeusync/proximity/internal/core/proximity"
	"github.com/zeusync/proximity/internal/core/systems/physics"
)

// ObjectType classifies level objects. The numeric values are part of the
// level save format.
type ObjectType uint8

const (
	Player ObjectType = iota
	Bot
	Item
)

var ErrUnknownObjectType = errors.New("unknown object type")

var objectTypeNames = [...]string{
	Player: "player",
	Bot:    "bot",
	Item:   "item",
}

func (t ObjectType) String() string {
	if int(t) < len(objectTypeNames) {
		return objectTypeNames[t]
	}
	return fmt.Sprintf("object(%d)", uint8(t))
}

// Valid reports whether t is one of the declared types.
func (t ObjectType) Valid() bool { return int(t) < len(objectTypeNames) }

func ParseObjectType(s string) (ObjectType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range objectTypeNames {
		if name == s {
			return ObjectType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownObjectType, s)
}

// Object is a tracked level object.
type Object struct {
	Handle   proximity.Handle
	Type     ObjectType
	Position physics.Vec3
}

// Spec describes an object to create.
type Spec struct {
	Type     ObjectType
	Position physics.Vec3
}
