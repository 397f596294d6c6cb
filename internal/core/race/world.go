package race

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/zeusync/laneracer/internal/core/events/bus"
	"github.com/zeusync/laneracer/internal/core/observability/log"
	"github.com/zeusync/laneracer/internal/core/systems"
	"github.com/zeusync/laneracer/internal/core/track"
)

// State is the phase of the race session.
type State uint8

const (
	StateStartLevel State = iota
	StatePlayLevel
	StateEndLevel
	StateWonGame
	StateLostGame
)

func (s State) String() string {
	switch s {
	case StateStartLevel:
		return "start_level"
	case StatePlayLevel:
		return "play_level"
	case StateEndLevel:
		return "end_level"
	case StateWonGame:
		return "won_game"
	case StateLostGame:
		return "lost_game"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Terminal reports whether the session can no longer progress.
func (s State) Terminal() bool {
	return s == StateWonGame || s == StateLostGame
}

const (
	// OvertakeRange is how close two players on one piece must be to raise
	// the overtake cue.
	OvertakeRange = 5.0

	maxPlayers = 2
)

var _ systems.System = (*World)(nil)

// World owns the track and the car roster of the running level and steps
// them through the level/race state machine. It is not safe for concurrent
// use; every call is expected from the simulation loop.
type World struct {
	session  string
	levels   []Level
	settings Settings
	bus      bus.EventBus
	events   *Events
	cues     CueSink
	logger   log.Log
	rng      *rand.Rand

	state     State
	clock     float64
	stateTime float64
	ticks     uint64

	level   int
	track   *track.Track
	cars    []*Car
	players []*Car
	nextID  int

	scores           [maxPlayers]float64
	twoPlayer        bool
	pendingTwoPlayer *bool
	startCuePlayed   bool
	overtaking       bool
}

// NewWorld validates the level table and settings. A nil bus, cue sink or
// logger is replaced by a private bus, NopCues and a no-op logger.
func NewWorld(levels []Level, settings Settings, eventBus bus.EventBus, cues CueSink, logger log.Log) (*World, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateLevels(levels, settings.Dimensions); err != nil {
		return nil, err
	}
	if eventBus == nil {
		eventBus = bus.New()
	}
	if cues == nil {
		cues = NopCues{}
	}
	if logger == nil {
		logger = log.NewNop()
	}
	session := uuid.NewString()
	w := &World{
		session:   session,
		levels:    append([]Level(nil), levels...),
		settings:  settings,
		bus:       eventBus,
		cues:      cues,
		logger:    logger.Named("world").With(log.String("session", session)),
		level:     -1,
		twoPlayer: settings.TwoPlayer,
	}
	eventBus.AddObserver(&busLogger{logger: w.logger})
	return w, nil
}

func (w *World) Name() string                { return "world" }
func (w *World) Priority() systems.Priority  { return systems.PriorityNormal }
func (w *World) Session() string             { return w.session }
func (w *World) State() State                { return w.state }
func (w *World) Level() int                  { return w.level }
func (w *World) Levels() []Level             { return append([]Level(nil), w.levels...) }
func (w *World) Track() *track.Track         { return w.track }
func (w *World) Cars() []*Car                { return append([]*Car(nil), w.cars...) }
func (w *World) Players() []*Car             { return append([]*Car(nil), w.players...) }
func (w *World) Clock() float64              { return w.clock }
func (w *World) Ticks() uint64               { return w.ticks }
func (w *World) TwoPlayer() bool             { return w.twoPlayer }
func (w *World) StateElapsed() float64       { return w.clock - w.stateTime }
func (w *World) SetCueSink(cues CueSink)     { w.cues = cues }
func (w *World) currentLevel() (Level, bool) { return w.levelAt(w.level) }

func (w *World) levelAt(i int) (Level, bool) {
	if i < 0 || i >= len(w.levels) {
		return Level{}, false
	}
	return w.levels[i], true
}

// LevelName is empty before the first level starts.
func (w *World) LevelName() string {
	l, _ := w.currentLevel()
	return l.Name
}

// Laps is the lap count the current level is raced over.
func (w *World) Laps() int {
	l, _ := w.currentLevel()
	return l.Laps
}

// Player returns player number n (1 or 2).
func (w *World) Player(n int) (*Car, bool) {
	return lo.Find(w.players, func(c *Car) bool { return c.PlayerNumber() == n })
}

// Score is the distance player n has driven while racing, truncated.
func (w *World) Score(n int) int64 {
	if n < 1 || n > maxPlayers {
		return 0
	}
	return int64(w.scores[n-1])
}

// Starting reports whether the countdown of the current level is running.
func (w *World) Starting() bool {
	return w.state == StatePlayLevel && w.StateElapsed() < w.settings.StartDelay.Seconds()
}

// CanTransitionAway reports whether a finished session has been on screen
// long enough to be left.
func (w *World) CanTransitionAway() bool {
	return w.state.Terminal() && w.StateElapsed() >= w.settings.GameOverDelay.Seconds()
}

// SetTwoPlayer requests one or two players. It takes effect when the next
// level starts.
func (w *World) SetTwoPlayer(enabled bool) {
	w.pendingTwoPlayer = &enabled
}

// RequestLaneChange queues a lane change for player n.
func (w *World) RequestLaneChange(n int) error {
	if w.track == nil {
		return ErrNoTrack
	}
	p, ok := w.Player(n)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPlayer, n)
	}
	p.RequestLaneChange()
	return nil
}

// Update advances the session by dt seconds of simulation time.
func (w *World) Update(dt float64) error {
	w.ticks++
	w.clock += dt

	switch w.state {
	case StateStartLevel:
		return w.startLevel()
	case StatePlayLevel:
		return w.play(dt)
	case StateEndLevel:
		w.updateCars(dt)
		if w.StateElapsed() >= w.settings.EndLevelDelay.Seconds() {
			w.teardown()
			w.transition(StateStartLevel)
		}
	case StateWonGame, StateLostGame:
		w.updateCars(dt)
	}
	return nil
}

func (w *World) play(dt float64) error {
	if w.Starting() {
		if !w.startCuePlayed {
			w.startCuePlayed = true
			w.cues.Play(CueRaceStart)
		}
		return nil
	}

	w.updateCars(dt)
	resolveCollisions(w.cars)
	w.checkOvertaking()
	w.updateScores(dt)
	w.cars = lo.Filter(w.cars, func(c *Car, _ int) bool { return c.Alive() })

	if winner, ok := w.winner(); ok {
		w.logger.Info("level won",
			log.Int("level", w.level+1),
			log.Int("player", winner.PlayerNumber()),
			log.Int64("score", w.Score(winner.PlayerNumber())),
		)
		w.transition(StateEndLevel)
		w.cues.Play(CueRaceWon)
		return w.events.PublishWon(winner.PlayerNumber())
	}

	if lo.NoneBy(w.players, (*Car).Alive) {
		w.logger.Info("game lost", log.Int("level", w.level+1))
		w.transition(StateLostGame)
		w.cues.Play(CueRaceLost)
		return w.events.PublishLost()
	}
	return nil
}

// startLevel builds the next level or, when none is left, ends the session.
func (w *World) startLevel() error {
	next := w.level + 1
	lvl, ok := w.levelAt(next)
	if !ok {
		w.logger.Info("all levels complete", log.Int("levels", len(w.levels)))
		w.transition(StateWonGame)
		w.cues.Play(CueRaceWon)
		return nil
	}

	t, err := w.settings.Dimensions.Generate(lvl.Track)
	if err != nil {
		return fmt.Errorf("%w: level %q: %w", ErrInvalidLevel, lvl.Name, err)
	}
	events, err := NewEvents(w.bus, next)
	if err != nil {
		return err
	}

	if w.pendingTwoPlayer != nil {
		w.twoPlayer = *w.pendingTwoPlayer
		w.pendingTwoPlayer = nil
	}
	w.level = next
	w.track = t
	w.events = events
	w.cars = nil
	w.players = nil
	w.nextID = 0
	w.startCuePlayed = false
	w.overtaking = false
	w.rng = rand.New(rand.NewPCG(w.settings.Seed, track.Fingerprint(lvl.Track)))

	if err := w.spawn(lvl); err != nil {
		return err
	}
	w.logger.Info("level started",
		log.Int("level", w.level+1),
		log.String("name", lvl.Name),
		log.Int("pieces", t.Len()),
		log.Float64("length", t.Length(0)),
		log.Int("drones", len(w.cars)-len(w.players)),
		log.Int("laps", lvl.Laps),
		log.Bool("two_player", w.twoPlayer),
	)
	w.transition(StatePlayLevel)
	return nil
}

// spawn places the drones away from the start line and the players on
// piece 0 in mirrored slots.
func (w *World) spawn(lvl Level) error {
	n := w.track.Len()
	drones := int(float64(track.PieceCount(lvl.Track)) * w.settings.CarDensity)
	first := w.settings.SpawnMargin + 1
	if first >= n {
		first = n - 1
	}

	occupied := make(map[[2]int]bool)
	for range drones {
		var piece, slot int
		placed := false
		for range w.settings.SpawnAttempts {
			piece = first + w.rng.IntN(n-first)
			slot = w.rng.IntN(2*MaxSlot+1) - MaxSlot
			if !occupied[[2]int{piece, slot}] {
				placed = true
				break
			}
		}
		if !placed {
			w.logger.Warn("no free spawn slot", log.Int("attempts", w.settings.SpawnAttempts))
			continue
		}
		occupied[[2]int{piece, slot}] = true
		speed := w.settings.DroneMinSpeed + w.rng.Float64()*(w.settings.DroneMaxSpeed-w.settings.DroneMinSpeed)
		if err := w.add(NewCar(w.track, piece, slot, speed)); err != nil {
			return err
		}
	}

	mult := 1
	if w.rng.IntN(2) == 0 {
		mult = -1
	}
	count := 1
	if w.twoPlayer {
		count = 2
	}
	for i := range count {
		slot := -mult
		if i == 1 {
			slot = mult
		}
		p := NewPlayerCar(i+1, w.track, 0, slot, w.settings.PlayerMaxSpeed)
		if err := w.add(p); err != nil {
			return err
		}
		w.players = append(w.players, p)
	}
	return nil
}

// add gives c an id, wires it to the cue sink and the race-end notification
// and puts it on the roster.
func (w *World) add(c *Car) error {
	c.id = w.nextID
	w.nextID++
	if c.IsPlayer() {
		c.cues = w.cues
	}
	if err := w.events.OnRaceEnd(func(Outcome) { c.EndRace() }); err != nil {
		return err
	}
	w.cars = append(w.cars, c)
	return nil
}

func (w *World) updateCars(dt float64) {
	for i := len(w.cars) - 1; i >= 0; i-- {
		w.cars[i].Update(dt)
	}
}

// checkOvertaking raises the overtake cue when two players draw level.
func (w *World) checkOvertaking() {
	if len(w.players) < 2 {
		return
	}
	a, b := w.players[0], w.players[1]
	level := a.Alive() && b.Alive() &&
		a.pieceIndex == b.pieceIndex &&
		math.Abs(a.distance-b.distance) < OvertakeRange
	if level && !w.overtaking {
		w.cues.Play(CueOvertake)
	}
	w.overtaking = level
}

func (w *World) updateScores(dt float64) {
	for _, p := range w.players {
		if p.Alive() {
			w.scores[p.PlayerNumber()-1] += p.speed * dt
		}
	}
}

// winner returns the first living player past the lap count.
func (w *World) winner() (*Car, bool) {
	laps := w.Laps()
	return lo.Find(w.players, func(p *Car) bool { return p.Alive() && p.Lap() > laps })
}

func (w *World) teardown() {
	if w.events == nil {
		return
	}
	if err := w.events.Close(); err != nil {
		w.logger.Warn("closing level events", log.Error(err))
	}
	w.events = nil
}

func (w *World) transition(to State) {
	w.logger.Debug("state transition",
		log.String("from", w.state.String()),
		log.String("to", to.String()),
		log.Float64("clock", w.clock),
	)
	w.state = to
	w.stateTime = w.clock
}

// busLogger traces race notifications.
type busLogger struct {
	logger log.Log
}

func (b *busLogger) OnPublish(topic, eventType string, _ bus.Event) {
	b.logger.Debug("race event", log.String("topic", topic), log.String("type", eventType))
}

func (b *busLogger) OnDelivered(topic, eventType string, handlers int, err error, _ time.Duration) {
	if err != nil {
		b.logger.Warn("race event delivery failed",
			log.String("topic", topic),
			log.String("type", eventType),
			log.Int("handlers", handlers),
			log.Error(err),
		)
	}
}
