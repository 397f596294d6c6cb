package race

import (
	"fmt"

	"github.com/zeusync/laneracer/internal/core/events/bus"
)

const (
	EventRaceWon  = "race.won"
	EventRaceLost = "race.lost"

	eventSource = "race"
)

// Outcome is the payload handed to race-end listeners.
type Outcome struct {
	Won    bool
	Winner int
}

// Events scopes race notifications to one level. Every subscription lives in
// the level's topic, so Close drops whatever is still registered.
type Events struct {
	bus   bus.EventBus
	topic string
}

// NewEvents opens the topic for level on b.
func NewEvents(b bus.EventBus, level int) (*Events, error) {
	e := &Events{bus: b, topic: fmt.Sprintf("level-%d", level)}
	if err := b.CreateTopic(e.topic); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Events) Topic() string { return e.topic }

// OnRaceEnd registers fn to run once when the level is either won or lost.
func (e *Events) OnRaceEnd(fn func(Outcome)) error {
	var subs []bus.Subscription
	handler := func(ev bus.Event) error {
		for _, s := range subs {
			_ = s.Cancel()
		}
		out, _ := ev.Data().(Outcome)
		fn(out)
		return nil
	}
	for _, typ := range []string{EventRaceWon, EventRaceLost} {
		s, err := e.bus.SubscribeOnce(e.topic, typ, handler)
		if err != nil {
			for _, s := range subs {
				_ = s.Cancel()
			}
			return err
		}
		subs = append(subs, s)
	}
	return nil
}

// PublishWon announces that player won the level.
func (e *Events) PublishWon(player int) error {
	return e.bus.PublishToTopic(e.topic, bus.NewEvent(EventRaceWon, eventSource, Outcome{Won: true, Winner: player}))
}

// PublishLost announces that every player is out.
func (e *Events) PublishLost() error {
	return e.bus.PublishToTopic(e.topic, bus.NewEvent(EventRaceLost, eventSource, Outcome{}))
}

// Close removes the topic and any subscriptions left in it.
func (e *Events) Close() error {
	return e.bus.DeleteTopic(e.topic)
}
