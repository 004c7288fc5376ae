// Package sim runs the proximity tracker against a live world at a fixed
// timestep and serializes outside changes onto the tick goroutine.
package sim

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/proximity/internal/core/level"
	"github.com/zeusync/proximity/internal/core/observability/log"
	"github.com/zeusync/proximity/internal/core/proximity"
	"github.com/zeusync/proximity/internal/core/systems/physics"
	"github.com/zeusync/proximity/internal/core/world"
)

var (
	ErrAlreadyRunning = errors.New("simulation is already running")
	ErrUnknownObject  = errors.New("unknown object")
	ErrUnknownMotion  = errors.New("unknown observer motion")
	ErrNotSpawnable   = errors.New("object type cannot be spawned")
	ErrInvalidPos     = errors.New("position must be finite")
	ErrNoStore        = errors.New("no level store configured")
)

const DefaultInterval = 20 * time.Millisecond

// Params are the collaborators of a Simulation. World and Tracker are
// required; the tracker must track World.
type Params struct {
	World   *world.World
	Tracker *proximity.Tracker
	Spawner *world.Spawner
	Mover   Mover
	Store   level.Store
	// Level is the level name used when a command passes an empty one.
	Level    string
	Interval time.Duration
	Start    physics.Vec3
	Logger   log.Log
}

// Snapshot is a consistent view of the simulation between ticks.
type Snapshot struct {
	Tick     uint64
	Observer physics.Vec3
	State    proximity.State
	Objects  int
	Items    int
	Bots     int
}

type command struct {
	run   func() error
	reply chan error
}

type Simulation struct {
	world    *world.World
	tracker  *proximity.Tracker
	spawner  *world.Spawner
	mover    Mover
	store    level.Store
	level    string
	interval time.Duration
	logger   log.Log

	systems  []*registeredSystem
	commands chan command
	started  atomic.Bool
	done     chan struct{}
	// mu serializes commands run after Run returned.
	mu sync.Mutex

	observer physics.Vec3
	last     proximity.TickStats
	ticks    uint64
}

// New wires the world's change listeners into the tracker and registers the
// observer and tracking systems.
func New(p Params) *Simulation {
	if p.Mover == nil {
		p.Mover = Static{}
	}
	if p.Interval <= 0 {
		p.Interval = DefaultInterval
	}
	if p.Logger == nil {
		p.Logger = log.NewNop()
	}

	s := &Simulation{
		world:    p.World,
		tracker:  p.Tracker,
		spawner:  p.Spawner,
		mover:    p.Mover,
		store:    p.Store,
		level:    p.Level,
		interval: p.Interval,
		logger:   p.Logger.With(log.String("component", "sim")),
		commands: make(chan command),
		done:     make(chan struct{}),
		observer: p.Start,
	}

	t := p.Tracker
	p.World.OnSpawned(func(o world.Object) { t.NotifyObjectAdded(o.Handle, o.Position) })
	p.World.OnMoved(func(o world.Object) { t.NotifyObjectMoved(o.Handle, o.Position) })
	p.World.OnDestroyed(t.NotifyObjectRemoved)
	p.World.OnReplaced(t.Reset)

	s.AddSystem(observerSystem{s})
	s.AddSystem(trackingSystem{s})
	return s
}

// AddSystem registers sys. Systems run in descending priority, ties in
// registration order. Not safe while Run is active.
func (s *Simulation) AddSystem(sys System) {
	s.systems = append(s.systems, &registeredSystem{System: sys})
	slices.SortStableFunc(s.systems, func(a, b *registeredSystem) int {
		return cmp.Compare(b.Priority(), a.Priority())
	})
}

// SystemMetrics returns the execution metrics of the named system.
func (s *Simulation) SystemMetrics(name string) (Metrics, bool) {
	for _, sys := range s.systems {
		if sys.Name() == name {
			return sys.metrics, true
		}
	}
	return Metrics{}, false
}

// The accessors below are not safe while Run is active; use Snapshot.

func (s *Simulation) World() *world.World           { return s.world }
func (s *Simulation) Tracker() *proximity.Tracker   { return s.tracker }
func (s *Simulation) Observer() physics.Vec3        { return s.observer }
func (s *Simulation) LastTick() proximity.TickStats { return s.last }

// Populate spawns the initial random population. Call it before Run.
func (s *Simulation) Populate(items, bots int) {
	if s.spawner == nil {
		return
	}
	s.spawner.SpawnItems(items)
	s.spawner.SpawnBots(bots)
	s.logger.Info("population spawned", log.Int("items", items), log.Int("bots", bots))
}

// Step runs every system once with a timestep of dt seconds and returns the
// tracker's stats for the tick. A failing system does not stop the others.
func (s *Simulation) Step(dt float64) (proximity.TickStats, error) {
	var errs error
	for _, sys := range s.systems {
		start := time.Now()
		err := sys.FixedUpdate(dt)
		sys.metrics.record(time.Since(start), err)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", sys.Name(), err))
		}
	}
	s.ticks++
	return s.last, errs
}

// Run ticks at the configured interval until ctx is cancelled, executing
// queued commands between ticks. It can be called once.
func (s *Simulation) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	dt := s.interval.Seconds()

	s.logger.Info("simulation started",
		log.String("strategy", s.tracker.Strategy().String()),
		log.Duration("interval", s.interval),
		log.Int("objects", s.world.Len()))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("simulation stopped", log.Uint64("ticks", s.ticks))
			return nil
		case cmd := <-s.commands:
			cmd.reply <- cmd.run()
		case <-ticker.C:
			if _, err := s.Step(dt); err != nil {
				s.logger.Warn("tick failed", log.Uint64("tick", s.ticks), log.Error(err))
			}
		}
	}
}

// do executes fn on the tick goroutine. Before Run starts, commands wait
// for it; after Run returns they execute on the caller's goroutine.
func (s *Simulation) do(ctx context.Context, fn func() error) error {
	cmd := command{run: fn, reply: make(chan error, 1)}
	select {
	case s.commands <- cmd:
	case <-s.done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Simulation) Spawn(ctx context.Context, typ world.ObjectType, pos physics.Vec3) (world.Object, error) {
	if typ != world.Item && typ != world.Bot {
		return world.Object{}, fmt.Errorf("%w: %s", ErrNotSpawnable, typ)
	}
	if !physics.IsFinite(pos) {
		return world.Object{}, ErrInvalidPos
	}
	var obj world.Object
	err := s.do(ctx, func() error {
		obj = s.world.Spawn(typ, pos)
		return nil
	})
	if err != nil {
		return world.Object{}, err
	}
	return obj, nil
}

// SpawnRandom spawns typ at a random point of the spawn sphere.
func (s *Simulation) SpawnRandom(ctx context.Context, typ world.ObjectType) (world.Object, error) {
	if typ != world.Item && typ != world.Bot {
		return world.Object{}, fmt.Errorf("%w: %s", ErrNotSpawnable, typ)
	}
	if s.spawner == nil {
		return world.Object{}, fmt.Errorf("%w: no spawner", ErrNotSpawnable)
	}
	var obj world.Object
	err := s.do(ctx, func() error {
		obj = s.spawner.Spawn(typ)
		return nil
	})
	if err != nil {
		return world.Object{}, err
	}
	return obj, nil
}

func (s *Simulation) Destroy(ctx context.Context, h proximity.Handle) error {
	return s.do(ctx, func() error {
		if !s.world.Destroy(h) {
			return fmt.Errorf("%w: %d", ErrUnknownObject, h)
		}
		return nil
	})
}

func (s *Simulation) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.do(ctx, func() error {
		snap = Snapshot{
			Tick:     s.ticks,
			Observer: s.observer,
			State:    s.tracker.State(),
			Objects:  s.world.Len(),
			Items:    s.world.Count(world.Item),
			Bots:     s.world.Count(world.Bot),
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Simulation) levelName(name string) string {
	if name == "" {
		return s.level
	}
	return name
}

// SaveLevel captures the observer and population and writes them to the
// level store.
func (s *Simulation) SaveLevel(ctx context.Context, name string) error {
	if s.store == nil {
		return ErrNoStore
	}
	name = s.levelName(name)

	var l level.Level
	if err := s.do(ctx, func() error {
		l = level.Capture(s.world, s.observer)
		return nil
	}); err != nil {
		return err
	}

	if err := s.store.Save(ctx, name, l); err != nil {
		return fmt.Errorf("save level %q: %w", name, err)
	}
	s.logger.Info("level saved", log.String("level", name), log.Int("records", len(l.Objects)))
	return nil
}

// LoadLevel replaces the population with a stored level and moves the
// observer to the level's player position.
func (s *Simulation) LoadLevel(ctx context.Context, name string) error {
	if s.store == nil {
		return ErrNoStore
	}
	name = s.levelName(name)

	l, err := s.store.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("load level %q: %w", name, err)
	}

	return s.do(ctx, func() error {
		// The world's replaced listener resets the tracker.
		observer, err := level.Restore(l, s.world, nil)
		if err != nil {
			return fmt.Errorf("restore level %q: %w", name, err)
		}
		s.observer = observer
		s.logger.Info("level loaded", log.String("level", name), log.Int("objects", s.world.Len()))
		return nil
	})
}

type observerSystem struct{ s *Simulation }

func (observerSystem) Name() string       { return "observer" }
func (observerSystem) Priority() Priority { return PriorityHighest }

func (o observerSystem) FixedUpdate(dt float64) error {
	o.s.observer = o.s.mover.Next(o.s.observer, dt)
	return nil
}

type trackingSystem struct{ s *Simulation }

func (trackingSystem) Name() string       { return "tracking" }
func (trackingSystem) Priority() Priority { return PriorityNormal }

func (t trackingSystem) FixedUpdate(float64) error {
	t.s.last = t.s.tracker.UpdateTick(t.s.observer)
	return nil
}
