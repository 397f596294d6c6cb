package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/laneracer/internal/core/observability/log"
	"github.com/zeusync/laneracer/internal/core/race"
	"github.com/zeusync/laneracer/internal/core/track"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full runtime configuration of a race session.
type Config struct {
	Race   RaceConfig       `yaml:"race"`
	Track  track.Dimensions `yaml:"track"`
	Levels []race.Level     `yaml:"levels"`
	Sim    SimConfig        `yaml:"sim"`
	Server ServerConfig     `yaml:"server"`
	Log    LogConfig        `yaml:"log"`
	Audio  AudioConfig      `yaml:"audio"`
}

type RaceConfig struct {
	Seed           uint64        `yaml:"seed"`
	TwoPlayer      bool          `yaml:"two_player"`
	StartDelay     time.Duration `yaml:"start_delay"`
	EndLevelDelay  time.Duration `yaml:"end_level_delay"`
	GameOverDelay  time.Duration `yaml:"game_over_delay"`
	CarDensity     float64       `yaml:"car_density"`
	SpawnAttempts  int           `yaml:"spawn_attempts"`
	SpawnMargin    int           `yaml:"spawn_margin"`
	DroneMinSpeed  float64       `yaml:"drone_min_speed"`
	DroneMaxSpeed  float64       `yaml:"drone_max_speed"`
	PlayerMaxSpeed float64       `yaml:"player_max_speed"`
}

type SimConfig struct {
	TickRate  int    `yaml:"tick_rate"`
	MaxTicks  uint64 `yaml:"max_ticks"`
	Autopilot bool   `yaml:"autopilot"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type AudioConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	s := race.DefaultSettings()
	return Config{
		Race: RaceConfig{
			Seed:           s.Seed,
			TwoPlayer:      s.TwoPlayer,
			StartDelay:     s.StartDelay,
			EndLevelDelay:  s.EndLevelDelay,
			GameOverDelay:  s.GameOverDelay,
			CarDensity:     s.CarDensity,
			SpawnAttempts:  s.SpawnAttempts,
			SpawnMargin:    s.SpawnMargin,
			DroneMinSpeed:  s.DroneMinSpeed,
			DroneMaxSpeed:  s.DroneMaxSpeed,
			PlayerMaxSpeed: s.PlayerMaxSpeed,
		},
		Track:  s.Dimensions,
		Levels: race.DefaultLevels(),
		Sim: SimConfig{
			TickRate:  60,
			Autopilot: true,
		},
		Server: ServerConfig{
			Enabled: true,
			Listen:  "127.0.0.1:8787",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads and validates the YAML file at path. Keys missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode reads YAML from r on top of Default. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Encode writes c as YAML.
func (c Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.RaceSettings().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := race.ValidateLevels(c.Levels, c.Track); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("%w: sim.tick_rate must be positive", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.encoding %q", ErrInvalidConfig, c.Log.Encoding)
	}
	if c.Server.Enabled && c.Server.Listen == "" {
		return fmt.Errorf("%w: server.listen is required", ErrInvalidConfig)
	}
	return nil
}

// RaceSettings converts the race and track sections into world settings.
func (c Config) RaceSettings() race.Settings {
	return race.Settings{
		Seed:           c.Race.Seed,
		StartDelay:     c.Race.StartDelay,
		EndLevelDelay:  c.Race.EndLevelDelay,
		GameOverDelay:  c.Race.GameOverDelay,
		CarDensity:     c.Race.CarDensity,
		SpawnAttempts:  c.Race.SpawnAttempts,
		SpawnMargin:    c.Race.SpawnMargin,
		DroneMinSpeed:  c.Race.DroneMinSpeed,
		DroneMaxSpeed:  c.Race.DroneMaxSpeed,
		PlayerMaxSpeed: c.Race.PlayerMaxSpeed,
		TwoPlayer:      c.Race.TwoPlayer,
		Dimensions:     c.Track,
	}
}

// LogOptions converts the log section into logger options.
func (c Config) LogOptions() log.Options {
	level, _ := log.ParseLevel(c.Log.Level)
	return log.Options{Level: level, Encoding: c.Log.Encoding}
}
