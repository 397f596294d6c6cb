package server

import (
	"github.com/zeusync/laneracer/internal/core/race"
	"github.com/zeusync/laneracer/internal/core/systems"
)

var _ systems.System = (*Publisher)(nil)

// Publisher pushes the world state into a feed from the simulation loop.
// A snapshot goes out every Every ticks; the track view goes out whenever
// a new level starts.
type Publisher struct {
	world *race.World
	feed  *Feed
	every uint64
	ticks uint64
	level int
}

func NewPublisher(world *race.World, feed *Feed, every int) *Publisher {
	if every < 1 {
		every = 1
	}
	return &Publisher{world: world, feed: feed, every: uint64(every), level: -1}
}

func (p *Publisher) Name() string               { return "feed" }
func (p *Publisher) Priority() systems.Priority { return systems.PriorityLow }

func (p *Publisher) Update(float64) error {
	if lvl := p.world.Level(); lvl != p.level {
		if view, ok := p.world.TrackView(); ok {
			if err := p.feed.PublishTrack(view); err != nil {
				return err
			}
			p.level = lvl
		}
	}
	p.ticks++
	if p.ticks%p.every != 0 {
		return nil
	}
	return p.feed.PublishSnapshot(p.world.Snapshot())
}
