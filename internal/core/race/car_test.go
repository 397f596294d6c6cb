package race

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarCrossesPieceInOneTick(t *testing.T) {
	tr := mustTrack(t, "ssll")
	c := NewCar(tr, 0, 0, 1000)
	c.SetSpeed(200)

	wraps := c.Update(0.7)

	assert.Zero(t, wraps)
	assert.Equal(t, 1, c.PieceIndex())
	assert.InDelta(t, c.Speed()*0.7-120, c.Distance(), 1e-9)
}

func TestCarAccelerationIsClamped(t *testing.T) {
	c := NewCar(mustTrack(t, "ssll"), 0, 0, 300)
	c.Update(1)
	assert.InDelta(t, Acceleration, c.Speed(), 1e-9)
	c.Update(10)
	assert.InDelta(t, 300, c.Speed(), 1e-9)
}

func TestCarDistanceStaysInsidePiece(t *testing.T) {
	tr := mustTrack(t, "ssLLsrRsSl")
	for slot := -MaxSlot; slot <= MaxSlot; slot++ {
		c := NewCar(tr, 0, slot, 5000)
		for i, speed := range []float64{10, 130, 260, 470, 900, 2400, 4000} {
			c.SetSpeed(speed)
			c.Update(0.1 + float64(i)*0.05)
			length := c.Piece().Length(c.Lane())
			require.GreaterOrEqual(t, c.Distance(), 0.0)
			require.Less(t, c.Distance(), length, "slot %d step %d", slot, i)
		}
	}
}

func TestPlayerLapIncrementsOnWrap(t *testing.T) {
	tr := mustTrack(t, "ssll")
	cues := &cueRecorder{}
	p := NewPlayerCar(1, tr, 3, 0, 1000)
	p.cues = cues
	require.Equal(t, 1, p.Lap())
	require.InDelta(t, 1.0, p.Health(), 1e-9)

	p.SetSpeed(1000)
	assert.Equal(t, 1, p.Update(0.1))
	assert.Equal(t, 0, p.PieceIndex())
	assert.Equal(t, 2, p.Lap())
	assert.Equal(t, 1, cues.count(CueLapComplete))

	// Staying on the loop never takes a lap away.
	p.Update(0.05)
	assert.Equal(t, 2, p.Lap())
}

func TestPlayerLapCountsEveryWrap(t *testing.T) {
	tr := mustTrack(t, "ssll")
	p := NewPlayerCar(1, tr, 0, 0, 900)
	p.SetSpeed(900)

	assert.Equal(t, 2, p.Update(1))
	assert.Equal(t, 3, p.Lap())
	assert.InDelta(t, 900-2*tr.Length(0), p.Distance(), 1e-6)
}

func TestDroneHasNoPlayerState(t *testing.T) {
	c := NewCar(mustTrack(t, "ssll"), 0, 0, 300)
	assert.Equal(t, KindDrone, c.Kind())
	assert.Zero(t, c.Lap())
	assert.Zero(t, c.PlayerNumber())
	assert.True(t, c.Alive())

	c.RequestLaneChange()
	c.Update(0)
	assert.Equal(t, 0, c.Slot())
}

func TestLaneChangeBouncesBetweenOuterSlots(t *testing.T) {
	p := NewPlayerCar(1, mustTrack(t, "ssll"), 0, 0, 500)
	var slots, directions []int
	for range 7 {
		p.RequestLaneChange()
		p.Update(0)
		slots = append(slots, p.Slot())
		directions = append(directions, p.Direction())
	}
	assert.Equal(t, []int{1, 2, 1, 0, -1, -2, -1}, slots)
	assert.Equal(t, []int{1, -1, -1, -1, -1, 1, 1}, directions)
	assert.InDelta(t, -LaneWidth, p.Lane(), 1e-9)
}

func TestLaneChangeFlipsBeforeLeavingRange(t *testing.T) {
	c := NewCar(mustTrack(t, "ssll"), 0, MaxSlot, 500)
	require.Equal(t, 1, c.Direction())
	c.changeLane()
	assert.Equal(t, MaxSlot-1, c.Slot())
	assert.Equal(t, -1, c.Direction())
}

func TestLaneChangeKeepsFractionalProgress(t *testing.T) {
	tr := mustTrack(t, "ssll")
	c := NewCar(tr, 2, 0, 500)
	place(c, 2, 47.1)
	before := c.Distance() / c.Piece().Length(c.Lane())

	c.changeLane()

	require.Equal(t, 1, c.Slot())
	after := c.Distance() / c.Piece().Length(c.Lane())
	assert.InDelta(t, before, after, 1e-9)
	assert.NotEqual(t, 47.1, c.Distance())
}

func TestLaneChangeOnStraightKeepsDistance(t *testing.T) {
	c := NewCar(mustTrack(t, "ssll"), 0, 0, 500)
	place(c, 0, 60)
	c.changeLane()
	assert.InDelta(t, 60, c.Distance(), 1e-9)
	assert.InDelta(t, LaneWidth, c.Lane(), 1e-9)
}

func TestQueuedLaneChangesDroppedAfterRaceEnd(t *testing.T) {
	p := NewPlayerCar(1, mustTrack(t, "ssll"), 0, 0, 500)
	p.RequestLaneChange()
	p.EndRace()
	p.RequestLaneChange()
	p.Update(0)
	assert.Equal(t, 0, p.Slot())
}

func TestAdjoiningLayer(t *testing.T) {
	tr := mustTrack(t, "ss+ss++s---s")
	c := NewCar(tr, 2, 0, 300)

	place(c, 2, 0)
	assert.Equal(t, 1, c.Layer())
	assert.Equal(t, 0, c.AdjoiningLayer())

	place(c, 2, 60)
	assert.Equal(t, 1, c.AdjoiningLayer())

	place(c, 3, 115)
	assert.Equal(t, 1, c.Layer())
	assert.Equal(t, 3, c.AdjoiningLayer())

	// Piece 0 looks back across the seam to the last piece.
	seam := NewCar(mustTrack(t, "+ss-ss"), 0, 0, 300)
	assert.Equal(t, 1, seam.Layer())
	assert.Equal(t, 0, seam.AdjoiningLayer())
}

func TestPoseFollowsPiece(t *testing.T) {
	tr := mustTrack(t, "ssll")
	c := NewCar(tr, 2, -1, 300)
	place(c, 2, 30)
	piece := tr.Piece(2)
	assert.True(t, piece.PositionAt(30, -LaneWidth).ApproxEqual(c.Position(), 1e-9))
	assert.InDelta(t, piece.AngleAt(30, -LaneWidth), c.Angle(), 1e-9)
	require.Len(t, c.Polygon(), 4)
	centre := c.Polygon()[0].Add(c.Polygon()[2]).Scale(0.5)
	assert.True(t, centre.ApproxEqual(c.Position(), 1e-9))
}

func TestEndRaceEasesTowardCooldown(t *testing.T) {
	c := NewCar(mustTrack(t, "ssll"), 0, 0, 400)
	c.SetSpeed(400)
	c.EndRace()
	c.EndRace()
	require.True(t, c.RaceOver())
	assert.InDelta(t, CooldownSpeed, c.MaxSpeed(), 1e-9)

	c.Update(0.5)
	assert.InDelta(t, 300, c.Speed(), 1e-9)

	for range 200 {
		c.Update(0.1)
	}
	assert.InDelta(t, CooldownSpeed, c.Speed(), 1e-3)
	assert.False(t, math.IsNaN(c.Distance()))
}
