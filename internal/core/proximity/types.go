package proximity

import (
	"iter"

	"github.com/zeusync/proximity/internal/core/systems/physics"
)

// Handle identifies a tracked object. Handles are opaque to the tracker.
type Handle uint64

// NoHandle marks an unset rank.
const NoHandle Handle = 0

// Candidate is one object produced by a candidate enumeration.
type Candidate struct {
	Handle   Handle
	Position physics.Vec3
}

// Registry is the read-only view of the tracked population.
//
// RadiusQuery must yield every object within radius of center (distance <=
// radius). Extra objects are tolerated, missing ones are not.
// Position reports false for handles that no longer exist.
type Registry interface {
	Enumerate() iter.Seq[Candidate]
	RadiusQuery(center physics.Vec3, radius float64) iter.Seq[Candidate]
	Position(h Handle) (physics.Vec3, bool)
}

// Highlighter receives closest-rank changes.
type Highlighter interface {
	SetHighlighted(h Handle, highlighted bool)
}

// SecondHighlighter is implemented by highlighters that also present the
// second-closest rank. It is only used by two-rank strategies.
type SecondHighlighter interface {
	SetSecondHighlighted(h Handle, highlighted bool)
}

// HighlighterFunc adapts a plain function to Highlighter.
type HighlighterFunc func(h Handle, highlighted bool)

func (f HighlighterFunc) SetHighlighted(h Handle, highlighted bool) { f(h, highlighted) }

type nopHighlighter struct{}

func (nopHighlighter) SetHighlighted(Handle, bool) {}
