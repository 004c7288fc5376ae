// Package config loads the simulator configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/proximity/internal/core/level"
	"github.com/zeusync/proximity/internal/core/observability/log"
	"github.com/zeusync/proximity/internal/core/proximity"
	"github.com/zeusync/proximity/internal/core/systems/physics"
)

var (
	ErrInvalidTickInterval = errors.New("tick interval must be positive")
	ErrInvalidCellSize     = errors.New("cell size must be positive and finite")
	ErrInvalidSpawn        = errors.New("invalid spawn settings")
	ErrInvalidObserver     = errors.New("invalid observer settings")
	ErrInvalidLevelStore   = errors.New("invalid level store")
	ErrMissingListenAddr   = errors.New("server listen address is required")
)

// Observer motion kinds.
const (
	MotionStatic     = "static"
	MotionRandomWalk = "random-walk"
	MotionOrbit      = "orbit"
)

// Level store kinds.
const (
	StoreFile  = "file"
	StoreMinIO = "minio"
)

type Config struct {
	Strategy     proximity.Strategy `yaml:"strategy"`
	TickInterval time.Duration      `yaml:"tick_interval"`
	LogLevel     string             `yaml:"log_level"`

	World    WorldConfig    `yaml:"world"`
	Spawn    SpawnConfig    `yaml:"spawn"`
	Observer ObserverConfig `yaml:"observer"`
	Level    LevelConfig    `yaml:"level"`
	Server   ServerConfig   `yaml:"server"`
}

type WorldConfig struct {
	CellSize float64 `yaml:"cell_size"`
}

type SpawnConfig struct {
	Origin physics.Vec3 `yaml:"origin"`
	Radius float64      `yaml:"radius"`
	Items  int          `yaml:"items"`
	Bots   int          `yaml:"bots"`
	Seed   uint64       `yaml:"seed"`
	// BotSpeed is how fast bots wander, in world units per second. Zero
	// keeps them still.
	BotSpeed float64 `yaml:"bot_speed"`
}

type ObserverConfig struct {
	Start  physics.Vec3 `yaml:"start"`
	Motion string       `yaml:"motion"`
	// Speed is in world units per second.
	Speed float64 `yaml:"speed"`
	// Bounds is the half extent of the cube the observer stays in.
	Bounds float64 `yaml:"bounds"`
	Seed   uint64  `yaml:"seed"`
}

type LevelConfig struct {
	Store string            `yaml:"store"`
	Dir   string            `yaml:"dir"`
	Name  string            `yaml:"name"`
	MinIO level.MinIOConfig `yaml:"minio"`
}

type ServerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	ListenAddr      string        `yaml:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	SendBuffer      int           `yaml:"send_buffer"`
	// Token, when set, must be passed as ?token= to open the feed.
	Token string `yaml:"token"`
}

func Default() Config {
	return Config{
		Strategy:     proximity.DefaultStrategy,
		TickInterval: 20 * time.Millisecond,
		LogLevel:     "info",
		World: WorldConfig{
			CellSize: 4,
		},
		Spawn: SpawnConfig{
			Radius:   20,
			Items:    100,
			Bots:     10,
			Seed:     1,
			BotSpeed: 1,
		},
		Observer: ObserverConfig{
			Motion: MotionRandomWalk,
			Speed:  5,
			Bounds: 25,
			Seed:   2,
		},
		Level: LevelConfig{
			Store: StoreFile,
			Dir:   "levels",
			Name:  "level",
		},
		Server: ServerConfig{
			Enabled:         true,
			ListenAddr:      ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			SendBuffer:      256,
		},
	}
}

// Load reads path on top of Default.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadYAML decodes r on top of Default and validates the result. Unknown keys
// are rejected. An empty document yields the defaults.
func LoadYAML(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return ErrInvalidTickInterval
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if !(c.World.CellSize > 0) || math.IsInf(c.World.CellSize, 0) {
		return ErrInvalidCellSize
	}
	if err := c.Spawn.Validate(); err != nil {
		return err
	}
	if err := c.Observer.Validate(); err != nil {
		return err
	}
	if err := c.Level.Validate(); err != nil {
		return err
	}
	if c.Server.Enabled && c.Server.ListenAddr == "" {
		return ErrMissingListenAddr
	}
	if c.Server.SendBuffer < 0 {
		return fmt.Errorf("server send buffer must not be negative: %d", c.Server.SendBuffer)
	}
	return nil
}

func (s SpawnConfig) Validate() error {
	if !(s.Radius > 0) || math.IsInf(s.Radius, 0) {
		return fmt.Errorf("%w: radius %v", ErrInvalidSpawn, s.Radius)
	}
	if s.Items < 0 || s.Bots < 0 {
		return fmt.Errorf("%w: negative object count", ErrInvalidSpawn)
	}
	if s.BotSpeed < 0 || math.IsNaN(s.BotSpeed) || math.IsInf(s.BotSpeed, 0) {
		return fmt.Errorf("%w: bot speed %v", ErrInvalidSpawn, s.BotSpeed)
	}
	if !physics.IsFinite(s.Origin) {
		return fmt.Errorf("%w: origin", ErrInvalidSpawn)
	}
	return nil
}

func (o ObserverConfig) Validate() error {
	switch o.Motion {
	case MotionStatic, MotionRandomWalk, MotionOrbit:
	default:
		return fmt.Errorf("%w: unknown motion %q", ErrInvalidObserver, o.Motion)
	}
	if o.Speed < 0 || math.IsNaN(o.Speed) || math.IsInf(o.Speed, 0) {
		return fmt.Errorf("%w: speed %v", ErrInvalidObserver, o.Speed)
	}
	if !(o.Bounds > 0) || math.IsInf(o.Bounds, 0) {
		return fmt.Errorf("%w: bounds %v", ErrInvalidObserver, o.Bounds)
	}
	if !physics.IsFinite(o.Start) {
		return fmt.Errorf("%w: start", ErrInvalidObserver)
	}
	return nil
}

func (l LevelConfig) Validate() error {
	switch l.Store {
	case StoreFile:
		if l.Dir == "" {
			return fmt.Errorf("%w: file store needs a dir", ErrInvalidLevelStore)
		}
	case StoreMinIO:
		if l.MinIO.Endpoint == "" || l.MinIO.Bucket == "" {
			return fmt.Errorf("%w: minio store needs endpoint and bucket", ErrInvalidLevelStore)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLevelStore, l.Store)
	}
	return nil
}
