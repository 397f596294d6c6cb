package systems

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/zeusync/laneracer/internal/core/observability/log"
)

var (
	ErrDuplicateSystem = errors.New("system already registered")
	ErrInvalidTickRate = errors.New("tick rate must be positive")
	// ErrStopped is returned by Run when a system asked the runner to stop.
	ErrStopped = errors.New("runner stopped")
)

// Runner steps registered systems at a fixed rate. Systems run in priority
// order, ties broken by registration order.
type Runner struct {
	mu       sync.Mutex
	systems  []System
	metrics  map[string]*Metrics
	tickRate int
	maxTicks uint64
	ticks    uint64
	logger   log.Log
}

// NewRunner creates a runner stepping tickRate times per second. A zero
// maxTicks runs until the context is cancelled.
func NewRunner(tickRate int, maxTicks uint64, logger log.Log) (*Runner, error) {
	if tickRate <= 0 {
		return nil, ErrInvalidTickRate
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{
		metrics:  make(map[string]*Metrics),
		tickRate: tickRate,
		maxTicks: maxTicks,
		logger:   logger.Named("runner"),
	}, nil
}

// Register adds a system.
func (r *Runner) Register(s System) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.metrics[s.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, s.Name())
	}
	r.systems = append(r.systems, s)
	slices.SortStableFunc(r.systems, func(a, b System) int {
		return int(b.Priority()) - int(a.Priority())
	})
	r.metrics[s.Name()] = &Metrics{}
	return nil
}

// ExecutionOrder lists system names in the order Step runs them.
func (r *Runner) ExecutionOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.systems))
	for i, s := range r.systems {
		names[i] = s.Name()
	}
	return names
}

// Step runs every system once with deltaTime. The first failing system
// aborts the step.
func (r *Runner) Step(deltaTime float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
	for _, s := range r.systems {
		started := time.Now()
		err := s.Update(deltaTime)
		r.metrics[s.Name()].record(started, err)
		if err != nil {
			return fmt.Errorf("system %s: %w", s.Name(), err)
		}
	}
	return nil
}

// Ticks reports how many steps have been run.
func (r *Runner) Ticks() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Metrics returns a copy of the metrics recorded for the named system.
func (r *Runner) Metrics(name string) (Metrics, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.metrics[name]
	if !ok {
		return Metrics{}, false
	}
	return *m, true
}

// Run steps the systems on a ticker until ctx is done, maxTicks is reached,
// or a step fails. A step failing with ErrStopped ends Run without error.
func (r *Runner) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(r.tickRate)
	deltaTime := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("runner started",
		log.Int("tick_rate", r.tickRate),
		log.Uint64("max_ticks", r.maxTicks),
	)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner cancelled", log.Uint64("ticks", r.Ticks()))
			return nil
		case <-ticker.C:
			started := time.Now()
			err := r.Step(deltaTime)
			if took := time.Since(started); took > interval {
				r.logger.Warn("tick overran its interval",
					log.Uint64("tick", r.Ticks()),
					log.Duration("took", took),
					log.Duration("interval", interval),
				)
			}
			if err != nil {
				if errors.Is(err, ErrStopped) {
					r.logger.Info("runner stopped", log.Uint64("ticks", r.Ticks()))
					return nil
				}
				r.logger.Error("step failed", log.Error(err))
				return err
			}
			if r.maxTicks > 0 && r.Ticks() >= r.maxTicks {
				r.logger.Info("tick limit reached", log.Uint64("ticks", r.Ticks()))
				return nil
			}
		}
	}
}
