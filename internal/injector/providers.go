package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/laneracer/internal/audio"
	"github.com/zeusync/laneracer/internal/config"
	"github.com/zeusync/laneracer/internal/core/events/bus"
	"github.com/zeusync/laneracer/internal/core/observability/log"
	"github.com/zeusync/laneracer/internal/core/race"
	"github.com/zeusync/laneracer/internal/core/systems"
	"github.com/zeusync/laneracer/internal/server"
)

const (
	feedBuffer  = 16
	// snapshotHz is how often the feed receives a snapshot.
	snapshotHz  = 10
	audioVolume = 0.6
)

// Session is a fully wired race: the world, the runner that drives it and
// the optional telemetry server. Server is nil when disabled.
type Session struct {
	Config config.Config
	Log    log.Log
	Bus    bus.EventBus
	World  *race.World
	Feed   *server.Feed
	Runner *systems.Runner
	Server *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideCues,
	ProvideWorld,
	ProvideFeed,
	ProvideRunner,
	ProvideServer,
	wire.Struct(new(Session), "*"),
)

func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	logger, err := log.New(cfg.LogOptions())
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideCues logs every cue and, when audio is enabled and a device can be
// opened, plays it too.
func ProvideCues(cfg config.Config, logger log.Log) (race.CueSink, func()) {
	sink := race.LogCues{Logger: logger.Named("cues")}
	if !cfg.Audio.Enabled {
		return sink, func() {}
	}
	player, err := audio.NewPlayer(audioVolume, logger)
	if err != nil {
		logger.Warn("audio unavailable, cues are logged only", log.Error(err))
		return sink, func() {}
	}
	return race.MultiCues{sink, player}, player.Wait
}

func ProvideWorld(cfg config.Config, eventBus bus.EventBus, cues race.CueSink, logger log.Log) (*race.World, error) {
	return race.NewWorld(cfg.Levels, cfg.RaceSettings(), eventBus, cues, logger)
}

func ProvideFeed(logger log.Log) *server.Feed {
	return server.NewFeed(feedBuffer, logger)
}

// ProvideRunner registers the world, the feed publisher and, if enabled, one
// autopilot driving every player. The runner stops once a finished session
// has been shown for its game-over delay.
func ProvideRunner(cfg config.Config, world *race.World, feed *server.Feed, logger log.Log) (*systems.Runner, error) {
	runner, err := systems.NewRunner(cfg.Sim.TickRate, cfg.Sim.MaxTicks, logger)
	if err != nil {
		return nil, err
	}
	toRegister := []systems.System{
		world,
		server.NewPublisher(world, feed, max(cfg.Sim.TickRate/snapshotHz, 1)),
		systems.NewFunc("session-end", systems.PriorityLowest, func(float64) error {
			if world.CanTransitionAway() {
				return systems.ErrStopped
			}
			return nil
		}),
	}
	if cfg.Sim.Autopilot {
		toRegister = append(toRegister, race.NewAutopilot(world))
	}
	for _, s := range toRegister {
		if err := runner.Register(s); err != nil {
			return nil, err
		}
	}
	return runner, nil
}

func ProvideServer(cfg config.Config, feed *server.Feed, logger log.Log) *server.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	sc := server.DefaultConfig()
	sc.ListenAddr = cfg.Server.Listen
	return server.NewServer(sc, feed, logger)
}
