package race

import "github.com/zeusync/laneracer/internal/core/systems/physics"

// Hit classifies a collision from the point of view of the receiver.
type Hit int8

const (
	HitBehind Hit = iota - 1
	HitNone
	HitAhead
)

func (h Hit) String() string {
	switch h {
	case HitAhead:
		return "ahead"
	case HitBehind:
		return "behind"
	default:
		return "none"
	}
}

// Hit reports whether c and other overlap and, if so, which of them is in
// front. Only cars on the same or neighbouring pieces (including across the
// seam of the loop) are tested.
func (c *Car) Hit(other *Car) Hit {
	if c == other || !c.track.Adjacent(c.pieceIndex, other.pieceIndex) {
		return HitNone
	}
	if !physics.Overlaps(c.poly, other.poly) {
		return HitNone
	}

	switch {
	case c.pieceIndex == other.pieceIndex:
		if c.distance >= other.distance {
			return HitAhead
		}
		return HitBehind
	case c.pieceIndex == c.track.Next(other.pieceIndex):
		return HitAhead
	default:
		return HitBehind
	}
}

// onRanInto is called on the trailing car of a collision.
func (c *Car) onRanInto(ahead *Car) {
	c.speed *= 0.5
	if !c.raceOver && ahead.maxSpeed < c.maxSpeed {
		c.changeLane()
	}
	if c.player != nil {
		c.cues.Play(CueCrash)
		if !c.raceOver {
			c.player.health -= RanIntoDamage
		}
	}
}

// onWasRunInto is called on the leading car of a collision.
func (c *Car) onWasRunInto(*Car) {
	c.speed *= 0.5
	if c.player != nil {
		c.cues.Play(CueCrash)
		if !c.raceOver {
			c.player.health -= WasRunIntoDamage
		}
	}
}

// Collide resolves one collision between a and b and returns how a was
// classified. Exactly one of the two is treated as the trailing car.
func Collide(a, b *Car) Hit {
	hit := a.Hit(b)
	switch hit {
	case HitAhead:
		b.onRanInto(a)
		a.onWasRunInto(b)
	case HitBehind:
		a.onRanInto(b)
		b.onWasRunInto(a)
	}
	return hit
}

// resolveCollisions runs Collide over every unordered pair in cars.
func resolveCollisions(cars []*Car) int {
	hits := 0
	for i, car := range cars {
		for _, other := range cars[i+1:] {
			if Collide(car, other) != HitNone {
				hits++
			}
		}
	}
	return hits
}
