package race

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/laneracer/internal/core/events/bus"
	"github.com/zeusync/laneracer/internal/core/track"
)

const tick = 1.0 / 60

func quickSettings() Settings {
	s := DefaultSettings()
	s.StartDelay = 0
	s.EndLevelDelay = time.Second
	s.GameOverDelay = time.Second
	s.CarDensity = 0
	return s
}

func ovalLevels(n int) []Level {
	levels := make([]Level, n)
	for i := range levels {
		levels[i] = Level{Name: "Oval", Track: "sssssLLsLLsssssLLsLL", Laps: 1}
	}
	return levels
}

func newTestWorld(t *testing.T, levels []Level, s Settings) (*World, *cueRecorder) {
	t.Helper()
	cues := &cueRecorder{}
	w, err := NewWorld(levels, s, nil, cues, nil)
	require.NoError(t, err)
	return w, cues
}

func runUntil(t *testing.T, w *World, dt float64, done func() bool) {
	t.Helper()
	for range 20000 {
		if done() {
			return
		}
		require.NoError(t, w.Update(dt))
	}
	t.Fatalf("condition not reached, state %s", w.State())
}

func TestNewWorldValidates(t *testing.T) {
	_, err := NewWorld(nil, DefaultSettings(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoLevels)

	_, err = NewWorld([]Level{{Name: "Bad", Track: "ssxll", Laps: 1}}, DefaultSettings(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	var symErr *track.SymbolError
	require.True(t, errors.As(err, &symErr))
	assert.Equal(t, 2, symErr.Offset)

	_, err = NewWorld([]Level{{Name: "Short", Track: "ss", Laps: 1}}, DefaultSettings(), nil, nil, nil)
	assert.ErrorIs(t, err, track.ErrTooFewPieces)

	_, err = NewWorld([]Level{{Name: "Zero", Track: "ssll", Laps: 0}}, DefaultSettings(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidLevel)

	s := DefaultSettings()
	s.DroneMaxSpeed = 100
	_, err = NewWorld(DefaultLevels(), s, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestStartLevelSpawnsField(t *testing.T) {
	w, _ := newTestWorld(t, DefaultLevels(), DefaultSettings())
	assert.Equal(t, StateStartLevel, w.State())
	assert.Nil(t, w.Track())
	assert.Empty(t, w.LevelName())

	require.NoError(t, w.Update(tick))

	assert.Equal(t, StatePlayLevel, w.State())
	assert.Equal(t, 0, w.Level())
	assert.Equal(t, "Ludum Racetrack", w.LevelName())
	assert.Equal(t, 5, w.Laps())
	assert.True(t, w.Starting())
	require.NotNil(t, w.Track())

	cars := w.Cars()
	require.Len(t, cars, 17)
	players := w.Players()
	require.Len(t, players, 1)
	assert.Same(t, cars[len(cars)-1], players[0])

	for _, c := range cars[:16] {
		assert.Equal(t, KindDrone, c.Kind())
		assert.GreaterOrEqual(t, c.PieceIndex(), 2)
		assert.Less(t, c.PieceIndex(), w.Track().Len())
		assert.LessOrEqual(t, c.Slot(), MaxSlot)
		assert.GreaterOrEqual(t, c.Slot(), -MaxSlot)
		assert.GreaterOrEqual(t, c.MaxSpeed(), 300.0)
		assert.LessOrEqual(t, c.MaxSpeed(), 400.0)
	}
	p := players[0]
	assert.Equal(t, 1, p.PlayerNumber())
	assert.Equal(t, 0, p.PieceIndex())
	assert.Equal(t, 1, abs(p.Slot()))
	assert.InDelta(t, 500, p.MaxSpeed(), 1e-9)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

type spawnSpot struct {
	Kind     Kind
	Piece    int
	Slot     int
	MaxSpeed float64
}

func TestSpawnIsDeterministicPerSeed(t *testing.T) {
	layout := func(seed uint64) []spawnSpot {
		s := DefaultSettings()
		s.Seed = seed
		w, _ := newTestWorld(t, DefaultLevels(), s)
		require.NoError(t, w.Update(tick))
		var out []spawnSpot
		for _, c := range w.Cars() {
			out = append(out, spawnSpot{Kind: c.Kind(), Piece: c.PieceIndex(), Slot: c.Slot(), MaxSpeed: c.MaxSpeed()})
		}
		return out
	}
	if diff := cmp.Diff(layout(7), layout(7)); diff != "" {
		t.Fatalf("same seed produced different fields (-first +second):\n%s", diff)
	}
}

func TestTwoPlayerTakesEffectAtLevelStart(t *testing.T) {
	w, _ := newTestWorld(t, DefaultLevels(), DefaultSettings())
	w.SetTwoPlayer(true)
	assert.False(t, w.TwoPlayer())

	require.NoError(t, w.Update(tick))
	assert.True(t, w.TwoPlayer())
	players := w.Players()
	require.Len(t, players, 2)
	assert.Equal(t, 2, players[1].PlayerNumber())
	assert.Equal(t, -players[0].Slot(), players[1].Slot())
}

func TestCountdownFreezesCars(t *testing.T) {
	s := DefaultSettings()
	s.StartDelay = 500 * time.Millisecond
	w, cues := newTestWorld(t, DefaultLevels(), s)
	require.NoError(t, w.Update(tick))

	p, ok := w.Player(1)
	require.True(t, ok)
	for range 20 {
		require.NoError(t, w.Update(tick))
	}
	assert.True(t, w.Starting())
	assert.Zero(t, p.Distance())
	assert.Equal(t, 1, cues.count(CueRaceStart))

	runUntil(t, w, tick, func() bool { return !w.Starting() })
	require.NoError(t, w.Update(tick))
	assert.Greater(t, p.Distance(), 0.0)
	assert.Equal(t, 1, cues.count(CueRaceStart))
}

func TestRequestLaneChange(t *testing.T) {
	w, _ := newTestWorld(t, ovalLevels(1), quickSettings())
	assert.ErrorIs(t, w.RequestLaneChange(1), ErrNoTrack)

	require.NoError(t, w.Update(tick))
	assert.ErrorIs(t, w.RequestLaneChange(2), ErrUnknownPlayer)

	p, _ := w.Player(1)
	slot := p.Slot()
	require.NoError(t, w.RequestLaneChange(1))
	require.NoError(t, w.Update(tick))
	assert.Equal(t, slot+1, p.Slot())
}

func TestWinningEveryLevelWinsTheGame(t *testing.T) {
	b := bus.New()
	cues := &cueRecorder{}
	w, err := NewWorld(ovalLevels(2), quickSettings(), b, cues, nil)
	require.NoError(t, err)
	require.NoError(t, w.Update(tick))

	runUntil(t, w, 0.05, func() bool { return w.State() == StateEndLevel })
	p, _ := w.Player(1)
	assert.Equal(t, 2, p.Lap())
	assert.True(t, p.RaceOver())
	assert.Equal(t, 1, cues.count(CueRaceWon))
	assert.Positive(t, w.Score(1))

	runUntil(t, w, 0.05, func() bool { return w.State() == StateStartLevel })
	for _, topic := range b.Topics() {
		assert.NotEqual(t, "level-0", topic.Name)
	}

	require.NoError(t, w.Update(0.05))
	assert.Equal(t, StatePlayLevel, w.State())
	assert.Equal(t, 1, w.Level())
	p2, _ := w.Player(1)
	assert.NotSame(t, p, p2)
	assert.False(t, p2.RaceOver())

	runUntil(t, w, 0.05, func() bool { return w.State().Terminal() })
	assert.Equal(t, StateWonGame, w.State())
	assert.False(t, w.CanTransitionAway())

	runUntil(t, w, 0.05, w.CanTransitionAway)
	assert.Equal(t, StateWonGame, w.State())
}

func TestAllPlayersDeadLosesTheGame(t *testing.T) {
	cues := &cueRecorder{}
	s := quickSettings()
	s.TwoPlayer = true
	w, err := NewWorld(ovalLevels(1), s, nil, cues, nil)
	require.NoError(t, err)
	require.NoError(t, w.Update(tick))

	p1, _ := w.Player(1)
	p2, _ := w.Player(2)

	p1.player.health = -0.01
	require.NoError(t, w.Update(tick))
	assert.Equal(t, StatePlayLevel, w.State())
	assert.NotContains(t, w.Cars(), p1)
	assert.Contains(t, w.Cars(), p2)

	p2.player.health = -0.01
	require.NoError(t, w.Update(tick))
	assert.Equal(t, StateLostGame, w.State())
	assert.Empty(t, w.Cars())
	assert.Equal(t, 1, cues.count(CueRaceLost))
	assert.True(t, p2.RaceOver())

	assert.False(t, w.CanTransitionAway())
	runUntil(t, w, 0.1, w.CanTransitionAway)
	assert.Equal(t, StateLostGame, w.State())
}

func TestOvertakeCueIsEdgeTriggered(t *testing.T) {
	s := quickSettings()
	s.TwoPlayer = true
	w, cues := newTestWorld(t, ovalLevels(1), s)
	require.NoError(t, w.Update(tick))

	for range 30 {
		require.NoError(t, w.Update(tick))
	}
	assert.Equal(t, 1, cues.count(CueOvertake))
}

func TestScoreIsIntegralOfSpeed(t *testing.T) {
	w, _ := newTestWorld(t, ovalLevels(1), quickSettings())
	require.NoError(t, w.Update(tick))

	// After the k-th step the speed is 10k, so the score sums to 210.
	for range 20 {
		require.NoError(t, w.Update(0.1))
	}
	assert.InDelta(t, 210, float64(w.Score(1)), 1)
	assert.Zero(t, w.Score(2))
	assert.Zero(t, w.Score(7))
}
