package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/laneracer/internal/config"
	"github.com/zeusync/laneracer/internal/core/observability/log"
	"github.com/zeusync/laneracer/internal/injector"
)

type runOptions struct {
	seed      uint64
	twoPlayer bool
	tickRate  int
	maxTicks  uint64
	listen    string
	noServer  bool
	autopilot bool
	audio     bool
	logLevel  string
	logFormat string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "runs a race session until it ends or is interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			cfg, err = opts.apply(cmd, cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSession(ctx, cfg, root.source(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for drone placement")
	cmd.Flags().BoolVar(&opts.twoPlayer, "two-player", false, "race with two player cars")
	cmd.Flags().IntVar(&opts.tickRate, "tick-rate", 60, "simulation ticks per second")
	cmd.Flags().Uint64Var(&opts.maxTicks, "max-ticks", 0, "stop after this many ticks (0 runs until the session ends)")
	cmd.Flags().StringVarP(&opts.listen, "listen", "l", "127.0.0.1:8787", "telemetry feed listen address")
	cmd.Flags().BoolVar(&opts.noServer, "no-server", false, "disable the telemetry feed")
	cmd.Flags().BoolVar(&opts.autopilot, "autopilot", true, "let the autopilot change lanes for the players")
	cmd.Flags().BoolVar(&opts.audio, "audio", false, "play race cues on the default audio device")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "controls the log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "console", "controls the log output format (console, json)")
	return cmd
}

// apply copies the flags that were set explicitly, or through the
// environment, over cfg.
func (o *runOptions) apply(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Race.Seed = o.seed
	}
	if flags.Changed("two-player") {
		cfg.Race.TwoPlayer = o.twoPlayer
	}
	if flags.Changed("tick-rate") {
		cfg.Sim.TickRate = o.tickRate
	}
	if flags.Changed("max-ticks") {
		cfg.Sim.MaxTicks = o.maxTicks
	}
	if flags.Changed("listen") {
		cfg.Server.Listen = o.listen
	}
	if flags.Changed("no-server") {
		cfg.Server.Enabled = !o.noServer
	}
	if flags.Changed("autopilot") {
		cfg.Sim.Autopilot = o.autopilot
	}
	if flags.Changed("audio") {
		cfg.Audio.Enabled = o.audio
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Encoding = o.logFormat
	}
	return cfg, cfg.Validate()
}

// runSession drives the simulation and the telemetry server together; the
// server is shut down as soon as the simulation returns.
func runSession(ctx context.Context, cfg config.Config, source string, out io.Writer) error {
	session, cleanup, err := injector.InitializeSession(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	session.Log.Info("starting session",
		log.String("session", session.World.Session()),
		log.String("config", source),
		log.Int("levels", len(cfg.Levels)),
		log.Bool("two_player", cfg.Race.TwoPlayer),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return session.Runner.Run(gctx)
	})
	if session.Server != nil {
		g.Go(func() error {
			return session.Server.Run(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := session.World
	session.Log.Info("session finished",
		log.String("session", w.Session()),
		log.String("state", w.State().String()),
		log.Int("level", w.Level()),
		log.Uint64("ticks", session.Runner.Ticks()),
	)
	_, _ = fmt.Fprintf(out, "session %s: %s at level %d (%s)\n", w.Session(), w.State(), w.Level()+1, w.LevelName())
	for _, p := range w.Players() {
		_, _ = fmt.Fprintf(out, "  player %d: lap %d health %.2f score %d\n",
			p.PlayerNumber(), p.Lap(), p.Health(), w.Score(p.PlayerNumber()))
	}
	return nil
}
