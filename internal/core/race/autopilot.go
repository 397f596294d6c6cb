package race

import (
	"github.com/zeusync/laneracer/internal/core/systems"
)

const (
	DefaultLookahead = 60.0
	DefaultCooldown  = 0.5
)

var _ systems.System = (*Autopilot)(nil)

// Autopilot drives the players of a world in headless runs: a player
// changes lane when a slower car sits in its lane within Lookahead units.
type Autopilot struct {
	world     *World
	Lookahead float64
	// Cooldown is the minimum time in seconds between two lane changes of
	// the same player.
	Cooldown float64
	timers   map[int]float64
}

func NewAutopilot(w *World) *Autopilot {
	return &Autopilot{
		world:     w,
		Lookahead: DefaultLookahead,
		Cooldown:  DefaultCooldown,
		timers:    make(map[int]float64),
	}
}

func (a *Autopilot) Name() string               { return "autopilot" }
func (a *Autopilot) Priority() systems.Priority { return systems.PriorityHigh }

// Update queues lane changes for the next world update.
func (a *Autopilot) Update(dt float64) error {
	w := a.world
	if w.State() != StatePlayLevel || w.Starting() {
		clear(a.timers)
		return nil
	}
	for _, p := range w.players {
		n := p.PlayerNumber()
		if a.timers[n] > 0 {
			a.timers[n] -= dt
			continue
		}
		if !p.Alive() || p.RaceOver() {
			continue
		}
		if a.blocked(p) {
			if err := w.RequestLaneChange(n); err != nil {
				return err
			}
			a.timers[n] = a.Cooldown
		}
	}
	return nil
}

// blocked reports whether a slower car is close ahead in p's slot.
func (a *Autopilot) blocked(p *Car) bool {
	t := a.world.track
	for _, c := range a.world.cars {
		if c == p || c.slot != p.slot || c.speed >= p.speed {
			continue
		}
		var gap float64
		switch c.pieceIndex {
		case p.pieceIndex:
			gap = c.distance - p.distance
		case t.Next(p.pieceIndex):
			gap = t.Piece(p.pieceIndex).Length(p.lane) - p.distance + c.distance
		default:
			continue
		}
		if gap > 0 && gap < a.Lookahead {
			return true
		}
	}
	return false
}
