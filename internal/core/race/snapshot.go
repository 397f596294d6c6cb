package race

import (
	"github.com/samber/lo"

	"github.com/zeusync/laneracer/internal/core/systems/physics"
	"github.com/zeusync/laneracer/internal/core/track"
)

// Snapshot is a value copy of everything a renderer reads after a tick.
type Snapshot struct {
	Session           string       `json:"session"`
	Tick              uint64       `json:"tick"`
	Clock             float64      `json:"clock"`
	State             string       `json:"state"`
	Level             int          `json:"level"`
	LevelName         string       `json:"level_name"`
	Laps              int          `json:"laps"`
	Starting          bool         `json:"starting"`
	CanTransitionAway bool         `json:"can_transition_away"`
	Cars              []CarView    `json:"cars"`
	Players           []PlayerView `json:"players"`
}

// CarView is the renderer-facing state of one car.
type CarView struct {
	ID             int            `json:"id"`
	Kind           string         `json:"kind"`
	Position       physics.Vec2   `json:"position"`
	Angle          float64        `json:"angle"`
	Layer          int            `json:"layer"`
	AdjoiningLayer int            `json:"adjoining_layer"`
	Piece          int            `json:"piece"`
	Distance       float64        `json:"distance"`
	Slot           int            `json:"slot"`
	Speed          float64        `json:"speed"`
	Polygon        []physics.Vec2 `json:"polygon"`
	Player         int            `json:"player,omitempty"`
}

// PlayerView carries the per-player HUD values.
type PlayerView struct {
	Number    int     `json:"number"`
	Lap       int     `json:"lap"`
	Health    float64 `json:"health"`
	Direction int     `json:"direction"`
	Score     int64   `json:"score"`
	Alive     bool    `json:"alive"`
}

// PieceView describes one track piece for drawing.
type PieceView struct {
	Kind       string        `json:"kind"`
	Layer      int           `json:"layer"`
	Start      physics.Vec2  `json:"start"`
	End        physics.Vec2  `json:"end"`
	StartAngle float64       `json:"start_angle"`
	EndAngle   float64       `json:"end_angle"`
	Length     float64       `json:"length"`
	Centre     *physics.Vec2 `json:"centre,omitempty"`
	Radius     float64       `json:"radius,omitempty"`
	Clockwise  bool          `json:"clockwise,omitempty"`
}

// TrackView is the static geometry of the running level.
type TrackView struct {
	Level  int         `json:"level"`
	Name   string      `json:"name"`
	Width  float64     `json:"width"`
	Pieces []PieceView `json:"pieces"`
}

// Snapshot copies the current state.
func (w *World) Snapshot() Snapshot {
	return Snapshot{
		Session:           w.session,
		Tick:              w.ticks,
		Clock:             w.clock,
		State:             w.state.String(),
		Level:             w.level + 1,
		LevelName:         w.LevelName(),
		Laps:              w.Laps(),
		Starting:          w.Starting(),
		CanTransitionAway: w.CanTransitionAway(),
		Cars:              lo.Map(w.cars, func(c *Car, _ int) CarView { return viewCar(c) }),
		Players: lo.Map(w.players, func(p *Car, _ int) PlayerView {
			return PlayerView{
				Number:    p.PlayerNumber(),
				Lap:       p.Lap(),
				Health:    p.Health(),
				Direction: p.Direction(),
				Score:     w.Score(p.PlayerNumber()),
				Alive:     p.Alive(),
			}
		}),
	}
}

// TrackView describes the running level's pieces. ok is false before the
// first level starts.
func (w *World) TrackView() (view TrackView, ok bool) {
	if w.track == nil {
		return TrackView{}, false
	}
	return TrackView{
		Level:  w.level + 1,
		Name:   w.LevelName(),
		Width:  track.TrackWidth,
		Pieces: lo.Map(w.track.Pieces(), func(p track.Piece, _ int) PieceView { return viewPiece(p) }),
	}, true
}

func viewCar(c *Car) CarView {
	return CarView{
		ID:             c.id,
		Kind:           c.kind().String(),
		Position:       c.position,
		Angle:          c.angle,
		Layer:          c.layer,
		AdjoiningLayer: c.adjoiningLayer,
		Piece:          c.pieceIndex,
		Distance:       c.distance,
		Slot:           c.slot,
		Speed:          c.speed,
		Polygon:        append([]physics.Vec2(nil), c.poly...),
		Player:         c.PlayerNumber(),
	}
}

func viewPiece(p track.Piece) PieceView {
	v := PieceView{
		Kind:       p.Kind().String(),
		Layer:      p.Layer(),
		Start:      p.PositionAtStart(),
		End:        p.PositionAtEnd(),
		StartAngle: p.AngleAtStart(),
		EndAngle:   p.AngleAtEnd(),
		Length:     p.Length(0),
	}
	if turn, ok := p.(*track.Turn); ok {
		centre := turn.Centre()
		v.Centre = &centre
		v.Radius = turn.Radius()
		v.Clockwise = turn.IsClockwise()
	}
	return v
}
