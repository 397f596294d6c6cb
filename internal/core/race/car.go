package race

import (
	"math"

	"github.com/zeusync/laneracer/internal/core/systems/physics"
	"github.com/zeusync/laneracer/internal/core/track"
)

const (
	// MaxSlot bounds the lane slot on either side of the reference line.
	MaxSlot = 2
	// LaneWidth is the lateral distance between neighbouring slots.
	LaneWidth = 16.0

	// HalfLength and HalfWidth size the collision rectangle.
	HalfLength = 12.0
	HalfWidth  = 6.0

	Acceleration  = 100.0
	CooldownSpeed = 200.0

	// AdjoiningMargin is how close to a piece boundary the neighbour's layer
	// is exposed.
	AdjoiningMargin = HalfLength

	RanIntoDamage    = 0.1
	WasRunIntoDamage = 0.05

	lengthEpsilon = 1e-6
)

// Kind tells drones from player-driven cars.
type Kind uint8

const (
	KindDrone Kind = iota
	KindPlayer
)

func (k Kind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "drone"
}

// player holds the state only player cars carry.
type player struct {
	number      int
	lap         int
	health      float64
	laneChanges int
}

// Car is a vehicle bound to a track. Its position along the loop is
// (pieceIndex, distance, lane); the world pose is derived from it after
// every update.
type Car struct {
	id    int
	track *track.Track
	cues  CueSink

	pieceIndex int
	distance   float64
	lane       float64
	slot       int
	direction  int

	speed    float64
	maxSpeed float64
	accel    float64
	raceOver bool

	position       physics.Vec2
	angle          float64
	layer          int
	adjoiningLayer int
	poly           physics.Polygon

	player *player
}

// NewCar places a drone at the start of pieceIndex in the given slot.
func NewCar(t *track.Track, pieceIndex, slot int, maxSpeed float64) *Car {
	c := &Car{
		track:      t,
		cues:       NopCues{},
		pieceIndex: pieceIndex,
		slot:       slot,
		lane:       float64(slot) * LaneWidth,
		direction:  1,
		maxSpeed:   maxSpeed,
		accel:      Acceleration,
	}
	c.resolve()
	return c
}

// NewPlayerCar places player number at the start of pieceIndex. Players
// start on lap 1 with full health.
func NewPlayerCar(number int, t *track.Track, pieceIndex, slot int, maxSpeed float64) *Car {
	c := NewCar(t, pieceIndex, slot, maxSpeed)
	c.player = &player{number: number, lap: 1, health: 1}
	return c
}

func (c *Car) ID() int                  { return c.id }
func (c *Car) Kind() Kind               { return c.kind() }
func (c *Car) IsPlayer() bool           { return c.player != nil }
func (c *Car) PieceIndex() int          { return c.pieceIndex }
func (c *Car) Piece() track.Piece       { return c.track.Piece(c.pieceIndex) }
func (c *Car) Distance() float64        { return c.distance }
func (c *Car) Lane() float64            { return c.lane }
func (c *Car) Slot() int                { return c.slot }
func (c *Car) Direction() int           { return c.direction }
func (c *Car) Speed() float64           { return c.speed }
func (c *Car) MaxSpeed() float64        { return c.maxSpeed }
func (c *Car) RaceOver() bool           { return c.raceOver }
func (c *Car) Position() physics.Vec2   { return c.position }
func (c *Car) Angle() float64           { return c.angle }
func (c *Car) Layer() int               { return c.layer }
func (c *Car) AdjoiningLayer() int      { return c.adjoiningLayer }
func (c *Car) Polygon() physics.Polygon { return c.poly }

func (c *Car) kind() Kind {
	if c.player != nil {
		return KindPlayer
	}
	return KindDrone
}

// PlayerNumber is 0 for drones.
func (c *Car) PlayerNumber() int {
	if c.player == nil {
		return 0
	}
	return c.player.number
}

// Lap is 0 for drones.
func (c *Car) Lap() int {
	if c.player == nil {
		return 0
	}
	return c.player.lap
}

// Health is 0 for drones.
func (c *Car) Health() float64 {
	if c.player == nil {
		return 0
	}
	return c.player.health
}

// Alive reports whether a player still has health left. Drones are always alive.
func (c *Car) Alive() bool {
	return c.player == nil || c.player.health >= 0
}

// SetSpeed overrides the current speed.
func (c *Car) SetSpeed(speed float64) {
	c.speed = speed
}

// RequestLaneChange queues a lane change for a player car; it is applied on
// the next update while the race is still on. Drones ignore requests.
func (c *Car) RequestLaneChange() {
	if c.player != nil && !c.raceOver {
		c.player.laneChanges++
	}
}

// EndRace switches the car to cooldown: from now on its speed decays toward
// CooldownSpeed. Further calls are no-ops.
func (c *Car) EndRace() {
	if c.raceOver {
		return
	}
	c.raceOver = true
	c.maxSpeed = CooldownSpeed
	if c.player != nil {
		c.player.laneChanges = 0
	}
}

// Update advances the car by dt seconds and returns how many times it
// crossed from the last piece back to piece 0.
func (c *Car) Update(dt float64) int {
	if c.player != nil {
		for ; c.player.laneChanges > 0; c.player.laneChanges-- {
			if !c.raceOver {
				c.changeLane()
			}
		}
	}

	if !c.raceOver {
		c.speed = math.Min(c.maxSpeed, c.speed+dt*c.accel)
	} else {
		c.speed += (c.maxSpeed - c.speed) * math.Min(dt, 1)
	}
	c.distance += dt * c.speed

	wraps := c.advance()
	c.resolve()

	if c.player != nil && wraps > 0 {
		c.player.lap += wraps
		for range wraps {
			c.cues.Play(CueLapComplete)
		}
	}
	return wraps
}

// advance moves pieceIndex forward until distance fits inside the current
// piece. Pieces too short to hold the car in its lane are skipped.
func (c *Car) advance() int {
	n := c.track.Len()
	wraps := 0
	skipped := 0
	for {
		length := c.track.Piece(c.pieceIndex).Length(c.lane)
		if length < lengthEpsilon {
			if skipped++; skipped > n {
				c.distance = 0
				return wraps
			}
		} else {
			if c.distance < length {
				return wraps
			}
			skipped = 0
			c.distance -= length
		}
		c.pieceIndex++
		if c.pieceIndex == n {
			c.pieceIndex = 0
			wraps++
		}
	}
}

// resolve derives the world pose from the track position.
func (c *Car) resolve() {
	piece := c.track.Piece(c.pieceIndex)
	c.position = piece.PositionAt(c.distance, c.lane)
	c.angle = piece.AngleAt(c.distance, c.lane)
	c.layer = piece.Layer()

	switch {
	case c.distance < AdjoiningMargin:
		c.adjoiningLayer = c.track.Piece(c.track.Prev(c.pieceIndex)).Layer()
	case c.distance > piece.Length(c.lane)-AdjoiningMargin:
		c.adjoiningLayer = c.track.Piece(c.track.Next(c.pieceIndex)).Layer()
	default:
		c.adjoiningLayer = c.layer
	}
	c.poly = physics.OrientedRect(c.position, HalfLength, HalfWidth, c.angle)
}

// changeLane steps one slot in the current direction, bouncing off the
// outermost slots, and rescales distance so the car keeps its fractional
// progress through the piece.
func (c *Car) changeLane() {
	if (c.slot >= MaxSlot && c.direction > 0) || (c.slot <= -MaxSlot && c.direction < 0) {
		c.direction = -c.direction
	}
	c.slot += c.direction
	if c.slot == MaxSlot || c.slot == -MaxSlot {
		c.direction = -c.direction
	}

	newLane := float64(c.slot) * LaneWidth
	piece := c.track.Piece(c.pieceIndex)
	oldLength := piece.Length(c.lane)
	newLength := piece.Length(newLane)
	c.lane = newLane

	if oldLength < lengthEpsilon || newLength < lengthEpsilon {
		c.distance = 0
	} else {
		c.distance = math.Min(c.distance*newLength/oldLength, math.Nextafter(newLength, 0))
	}
	c.resolve()
}
