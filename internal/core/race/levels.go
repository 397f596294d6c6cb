package race

import (
	"fmt"
	"time"

	"github.com/zeusync/laneracer/internal/core/track"
)

// Level is one entry of the level table.
type Level struct {
	Name  string `yaml:"name" json:"name"`
	Track string `yaml:"track" json:"track"`
	Laps  int    `yaml:"laps" json:"laps"`
}

// DefaultLevels returns the built-in level table.
func DefaultLevels() []Level {
	return []Level{
		{Name: "Ludum Racetrack", Track: "sssssLLsLLsssssLLsLL", Laps: 5},
		{Name: "Game Loop", Track: "ssLLsLLssllll+llllssLLsLL-ss", Laps: 5},
		{Name: "Twisted Track", Track: "srrllllrrsssllllssssssssllll", Laps: 5},
		{Name: "Infinite Loop", Track: "ssllLLssss+rrrrRRss-ll", Laps: 8},
		{Name: "Kernel Speedway", Track: "ssssLLsLLssllsll+llsllssssLLsLL-ss", Laps: 5},
		{Name: "The Magic Garden", Track: "sssllllsssllrrsrrsssrrssssss+rrrrssssllsll-s", Laps: 5},
	}
}

// ValidateLevels checks that every level has a name, a positive lap count
// and a track program that builds.
func ValidateLevels(levels []Level, dims track.Dimensions) error {
	if len(levels) == 0 {
		return ErrNoLevels
	}
	for i, l := range levels {
		if l.Name == "" {
			return fmt.Errorf("%w: level %d has no name", ErrInvalidLevel, i+1)
		}
		if l.Laps < 1 {
			return fmt.Errorf("%w: level %q needs at least one lap", ErrInvalidLevel, l.Name)
		}
		if err := dims.Validate(l.Track); err != nil {
			return fmt.Errorf("%w: level %q: %w", ErrInvalidLevel, l.Name, err)
		}
	}
	return nil
}

// Settings tune level setup and the state machine timers.
type Settings struct {
	// Seed feeds the per-level random source together with the track
	// fingerprint, so a given seed always spawns the same field.
	Seed uint64

	StartDelay    time.Duration
	EndLevelDelay time.Duration
	GameOverDelay time.Duration

	// CarDensity is the number of drones spawned per track piece.
	CarDensity    float64
	SpawnAttempts int
	// SpawnMargin keeps drones this many pieces clear of the start line.
	SpawnMargin int

	DroneMinSpeed  float64
	DroneMaxSpeed  float64
	PlayerMaxSpeed float64

	TwoPlayer  bool
	Dimensions track.Dimensions
}

// DefaultSettings returns the stock tuning.
func DefaultSettings() Settings {
	return Settings{
		StartDelay:     2 * time.Second,
		EndLevelDelay:  5 * time.Second,
		GameOverDelay:  2 * time.Second,
		CarDensity:     0.8,
		SpawnAttempts:  20,
		SpawnMargin:    1,
		DroneMinSpeed:  300,
		DroneMaxSpeed:  400,
		PlayerMaxSpeed: 500,
		Dimensions:     track.DefaultDimensions(),
	}
}

// Validate reports the first unusable value.
func (s Settings) Validate() error {
	switch {
	case s.StartDelay < 0 || s.EndLevelDelay < 0 || s.GameOverDelay < 0:
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidSettings)
	case s.CarDensity < 0:
		return fmt.Errorf("%w: car density must not be negative", ErrInvalidSettings)
	case s.SpawnAttempts < 1:
		return fmt.Errorf("%w: spawn attempts must be positive", ErrInvalidSettings)
	case s.SpawnMargin < 0:
		return fmt.Errorf("%w: spawn margin must not be negative", ErrInvalidSettings)
	case s.DroneMinSpeed <= 0 || s.DroneMaxSpeed < s.DroneMinSpeed:
		return fmt.Errorf("%w: drone speed range [%g, %g]", ErrInvalidSettings, s.DroneMinSpeed, s.DroneMaxSpeed)
	case s.PlayerMaxSpeed <= 0:
		return fmt.Errorf("%w: player speed must be positive", ErrInvalidSettings)
	}
	return nil
}
