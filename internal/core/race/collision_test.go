package race

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollisionSamePieceFasterPursuerChangesLane(t *testing.T) {
	tr := mustTrack(t, "ssll")
	behind := NewCar(tr, 0, 0, 400)
	ahead := NewCar(tr, 0, 0, 300)
	place(behind, 0, 40)
	place(ahead, 0, 45)
	behind.SetSpeed(100)
	ahead.SetSpeed(80)

	require.Equal(t, HitBehind, behind.Hit(ahead))
	require.Equal(t, HitAhead, ahead.Hit(behind))

	assert.Equal(t, HitBehind, Collide(behind, ahead))
	assert.InDelta(t, 50, behind.Speed(), 1e-9)
	assert.InDelta(t, 40, ahead.Speed(), 1e-9)
	assert.Equal(t, 1, behind.Slot())
	assert.Equal(t, 0, ahead.Slot())
}

func TestCollisionSlowerPursuerKeepsLane(t *testing.T) {
	tr := mustTrack(t, "ssll")
	behind := NewCar(tr, 0, 0, 300)
	ahead := NewCar(tr, 0, 0, 400)
	place(behind, 0, 40)
	place(ahead, 0, 45)

	// Argument order does not change who is shunted.
	assert.Equal(t, HitAhead, Collide(ahead, behind))
	assert.Equal(t, 0, behind.Slot())
	assert.Equal(t, 0, ahead.Slot())
}

func TestCollisionAcrossPieces(t *testing.T) {
	tr := mustTrack(t, "ssll")
	a := NewCar(tr, 0, 0, 300)
	b := NewCar(tr, 1, 0, 300)
	place(a, 0, 118)
	place(b, 1, 2)

	assert.Equal(t, HitBehind, a.Hit(b))
	assert.Equal(t, HitAhead, b.Hit(a))
}

func TestCollisionAcrossLoopSeam(t *testing.T) {
	tr := mustTrack(t, "sssssLLsLLsssssLLsLL")
	last := tr.Len() - 1
	a := NewCar(tr, last, 0, 300)
	b := NewCar(tr, 0, 0, 300)
	place(a, last, tr.Piece(last).Length(0)-2)
	place(b, 0, 2)

	assert.Equal(t, HitBehind, a.Hit(b))
	assert.Equal(t, HitAhead, b.Hit(a))
}

func TestNoCollision(t *testing.T) {
	tr := mustTrack(t, "ssll")
	a := NewCar(tr, 0, 0, 300)
	b := NewCar(tr, 0, 0, 300)
	place(a, 0, 10)
	place(b, 0, 80)
	assert.Equal(t, HitNone, a.Hit(b))

	// Neighbouring lanes do not touch.
	c := NewCar(tr, 0, 1, 300)
	place(c, 0, 10)
	assert.Equal(t, HitNone, a.Hit(c))

	assert.Equal(t, HitNone, a.Hit(a))
	assert.Equal(t, HitNone, Collide(a, b))
}

func TestCollisionPlayerDamage(t *testing.T) {
	tr := mustTrack(t, "ssll")
	cues := &cueRecorder{}
	p := NewPlayerCar(1, tr, 0, 0, 500)
	p.cues = cues
	d := NewCar(tr, 0, 0, 300)

	place(p, 0, 40)
	place(d, 0, 45)
	Collide(p, d)
	assert.InDelta(t, 1-RanIntoDamage, p.Health(), 1e-9)
	assert.Equal(t, 1, cues.count(CueCrash))

	p.slot, p.lane = 0, 0
	place(p, 0, 50)
	place(d, 0, 45)
	Collide(d, p)
	assert.InDelta(t, 1-RanIntoDamage-WasRunIntoDamage, p.Health(), 1e-9)
	assert.Equal(t, 2, cues.count(CueCrash))

	p.EndRace()
	Collide(d, p)
	assert.InDelta(t, 1-RanIntoDamage-WasRunIntoDamage, p.Health(), 1e-9)
	assert.Equal(t, 3, cues.count(CueCrash))
}

func TestResolveCollisionsVisitsPairsOnce(t *testing.T) {
	tr := mustTrack(t, "ssll")
	a := NewCar(tr, 0, 0, 300)
	b := NewCar(tr, 0, 0, 300)
	c := NewCar(tr, 2, 0, 300)
	place(a, 0, 40)
	place(b, 0, 45)
	a.SetSpeed(100)
	b.SetSpeed(100)

	assert.Equal(t, 1, resolveCollisions([]*Car{a, b, c}))
	assert.InDelta(t, 50, a.Speed(), 1e-9)
	assert.InDelta(t, 50, b.Speed(), 1e-9)
}

func TestHitString(t *testing.T) {
	assert.Equal(t, "ahead", HitAhead.String())
	assert.Equal(t, "behind", HitBehind.String())
	assert.Equal(t, "none", HitNone.String())
}
