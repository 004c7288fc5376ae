package world

import (
	"iter"

	"github.com/zeusync/proximity/internal/core/observability/log"
	"github.com/zeusync/proximity/internal/core/proximity"
	"github.com/zeusync/proximity/internal/core/systems/physics"
)

// World owns the tracked population and implements proximity.Registry.
// It is not safe for concurrent use; the simulation goroutine owns it.
type World struct {
	objects []Object
	index   map[proximity.Handle]int
	next    proximity.Handle
	grid    *Grid
	logger  log.Log

	onSpawned   []func(Object)
	onMoved     []func(Object)
	onDestroyed []func(proximity.Handle)
	onReplaced  []func()
}

var _ proximity.Registry = (*World)(nil)

type Option func(*World)

func WithCellSize(size float64) Option {
	return func(w *World) { w.grid = NewGrid(size) }
}

func WithLogger(l log.Log) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

func New(opts ...Option) *World {
	w := &World{
		index:  make(map[proximity.Handle]int),
		grid:   NewGrid(DefaultCellSize),
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(log.String("component", "world"))
	return w
}

// OnSpawned registers a callback fired after every Spawn.
func (w *World) OnSpawned(fn func(Object)) { w.onSpawned = append(w.onSpawned, fn) }

// OnMoved registers a callback fired after every successful Move.
func (w *World) OnMoved(fn func(Object)) { w.onMoved = append(w.onMoved, fn) }

// OnDestroyed registers a callback fired after every successful Destroy.
func (w *World) OnDestroyed(fn func(proximity.Handle)) {
	w.onDestroyed = append(w.onDestroyed, fn)
}

// OnReplaced registers a callback fired once after Replace or Clear.
func (w *World) OnReplaced(fn func()) { w.onReplaced = append(w.onReplaced, fn) }

func (w *World) insert(typ ObjectType, pos physics.Vec3) Object {
	w.next++
	obj := Object{Handle: w.next, Type: typ, Position: pos}
	w.index[obj.Handle] = len(w.objects)
	w.objects = append(w.objects, obj)
	w.grid.Insert(obj.Handle, pos)
	return obj
}

func (w *World) Spawn(typ ObjectType, pos physics.Vec3) Object {
	obj := w.insert(typ, pos)
	w.logger.Debug("object spawned",
		log.Uint64("handle", uint64(obj.Handle)),
		log.String("type", typ.String()))
	for _, fn := range w.onSpawned {
		fn(obj)
	}
	return obj
}

// Destroy removes h. The last object takes its slot in enumeration order.
func (w *World) Destroy(h proximity.Handle) bool {
	i, ok := w.index[h]
	if !ok {
		return false
	}
	last := len(w.objects) - 1
	if i != last {
		w.objects[i] = w.objects[last]
		w.index[w.objects[i].Handle] = i
	}
	w.objects = w.objects[:last]
	delete(w.index, h)
	w.grid.Remove(h)

	for _, fn := range w.onDestroyed {
		fn(h)
	}
	return true
}

func (w *World) Move(h proximity.Handle, pos physics.Vec3) bool {
	i, ok := w.index[h]
	if !ok {
		return false
	}
	w.objects[i].Position = pos
	w.grid.Update(h, pos)
	for _, fn := range w.onMoved {
		fn(w.objects[i])
	}
	return true
}

// Replace swaps the whole population for specs. Spawn callbacks do not fire;
// replaced callbacks fire once.
func (w *World) Replace(specs []Spec) []Object {
	w.reset()
	created := make([]Object, 0, len(specs))
	for _, s := range specs {
		created = append(created, w.insert(s.Type, s.Position))
	}
	w.logger.Info("population replaced", log.Int("objects", len(created)))
	for _, fn := range w.onReplaced {
		fn()
	}
	return created
}

func (w *World) Clear() { w.Replace(nil) }

func (w *World) reset() {
	w.objects = w.objects[:0]
	clear(w.index)
	w.grid.Clear()
}

func (w *World) Len() int { return len(w.objects) }

// Count returns the number of objects of type typ.
func (w *World) Count(typ ObjectType) int {
	n := 0
	for _, o := range w.objects {
		if o.Type == typ {
			n++
		}
	}
	return n
}

func (w *World) Get(h proximity.Handle) (Object, bool) {
	i, ok := w.index[h]
	if !ok {
		return Object{}, false
	}
	return w.objects[i], true
}

// Objects returns a copy of the population in enumeration order.
func (w *World) Objects() []Object {
	out := make([]Object, len(w.objects))
	copy(out, w.objects)
	return out
}

func (w *World) Position(h proximity.Handle) (physics.Vec3, bool) {
	obj, ok := w.Get(h)
	return obj.Position, ok
}

func (w *World) Enumerate() iter.Seq[proximity.Candidate] {
	return func(yield func(proximity.Candidate) bool) {
		for _, o := range w.objects {
			if !yield(proximity.Candidate{Handle: o.Handle, Position: o.Position}) {
				return
			}
		}
	}
}

// RadiusQuery yields objects within radius of center, using the grid as a
// broad phase.
func (w *World) RadiusQuery(center physics.Vec3, radius float64) iter.Seq[proximity.Candidate] {
	return func(yield func(proximity.Candidate) bool) {
		for h := range w.grid.Query(center, radius) {
			pos := w.objects[w.index[h]].Position
			if physics.Distance(center, pos) > radius {
				continue
			}
			if !yield(proximity.Candidate{Handle: h, Position: pos}) {
				return
			}
		}
	}
}

func (w *World) GridStatistics() GridStatistics { return w.grid.Statistics() }
