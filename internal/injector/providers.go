package injector

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zeusync/proximity/internal/config"
	"github.com/zeusync/proximity/internal/core/events/bus"
	"github.com/zeusync/proximity/internal/core/level"
	"github.com/zeusync/proximity/internal/core/observability/log"
	"github.com/zeusync/proximity/internal/core/observability/metrics"
	"github.com/zeusync/proximity/internal/core/proximity"
	"github.com/zeusync/proximity/internal/core/world"
	"github.com/zeusync/proximity/internal/server"
	"github.com/zeusync/proximity/internal/sim"
)

// App is everything cmd/proxsim needs to run.
type App struct {
	Config     *config.Config
	Logger     *log.Logger
	Bus        bus.EventBus
	Registry   *prometheus.Registry
	World      *world.World
	Tracker    *proximity.Tracker
	Timing     *metrics.Average
	Store      level.Store
	Simulation *sim.Simulation
	Server     *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideLog,
	ProvideRegistry,
	ProvideBus,
	ProvideWorld,
	ProvideSpawner,
	ProvideStore,
	ProvidePresenter,
	ProvidePrometheus,
	ProvideTiming,
	ProvideTracker,
	ProvideMover,
	ProvideSimulation,
	ProvideCommander,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg *config.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(level)
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideLog(l *log.Logger) log.Log { return l }

func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func ProvideBus(logger log.Log) bus.EventBus {
	b := bus.New()
	b.AddObserver(bus.LogObserver{Logger: logger.With(log.String("component", "bus"))})
	return b
}

func ProvideWorld(cfg *config.Config, logger log.Log) *world.World {
	return world.New(world.WithCellSize(cfg.World.CellSize), world.WithLogger(logger))
}

func ProvideSpawner(cfg *config.Config, w *world.World) *world.Spawner {
	return world.NewSpawner(w, cfg.Spawn.Origin, cfg.Spawn.Radius, cfg.Spawn.Seed)
}

func ProvideStore(cfg *config.Config) (level.Store, error) {
	if cfg.Level.Store == config.StoreMinIO {
		store, err := level.NewMinIOStore(cfg.Level.MinIO)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return level.NewFileStore(cfg.Level.Dir), nil
}

func ProvidePresenter(b bus.EventBus, logger log.Log) *sim.BusPresenter {
	return sim.NewBusPresenter(b, logger)
}

func ProvidePrometheus(reg *prometheus.Registry) *metrics.Prometheus {
	return metrics.NewPrometheus(reg)
}

func ProvideTiming() *metrics.Average { return &metrics.Average{} }

func ProvideTracker(
	cfg *config.Config,
	w *world.World,
	presenter *sim.BusPresenter,
	prom *metrics.Prometheus,
	timing *metrics.Average,
	logger log.Log,
) *proximity.Tracker {
	return proximity.New(w, presenter,
		proximity.WithStrategy(cfg.Strategy),
		proximity.WithLogger(logger),
		proximity.WithTickObserver(prom),
		proximity.WithTickObserver(timing),
	)
}

func ProvideMover(cfg *config.Config) (sim.Mover, error) {
	return sim.NewMover(cfg.Observer)
}

func ProvideSimulation(
	cfg *config.Config,
	w *world.World,
	tracker *proximity.Tracker,
	spawner *world.Spawner,
	mover sim.Mover,
	store level.Store,
	logger log.Log,
) *sim.Simulation {
	s := sim.New(sim.Params{
		World:    w,
		Tracker:  tracker,
		Spawner:  spawner,
		Mover:    mover,
		Store:    store,
		Level:    cfg.Level.Name,
		Interval: cfg.TickInterval,
		Start:    cfg.Observer.Start,
		Logger:   logger,
	})
	if cfg.Spawn.BotSpeed > 0 {
		s.AddSystem(sim.NewBotWander(w, cfg.Spawn.BotSpeed, cfg.Spawn.Origin, cfg.Spawn.Radius, cfg.Spawn.Seed+1))
	}
	return s
}

func ProvideCommander(s *sim.Simulation) server.Commander { return s }

func ProvideServer(
	cfg *config.Config,
	b bus.EventBus,
	commander server.Commander,
	reg *prometheus.Registry,
	logger log.Log,
) (*server.Server, error) {
	return server.New(cfg.Server, b, commander, reg, logger)
}
