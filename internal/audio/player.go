package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"github.com/zeusync/laneracer/internal/core/observability/log"
	"github.com/zeusync/laneracer/internal/core/race"
)

var _ race.CueSink = (*Player)(nil)

// MaxVoices caps how many cues sound at once.
const MaxVoices = 4

// Player turns race cues into sound. Cues are rendered once and cached;
// playback happens on background goroutines so Play never blocks the
// simulation.
type Player struct {
	ctx    *oto.Context
	ready  chan struct{}
	volume float64
	logger log.Log

	mu      sync.Mutex
	bank    map[race.Cue][]byte
	voices  atomic.Int32
	dropped atomic.Uint64
	wg      sync.WaitGroup
}

// NewPlayer opens the audio device. volume is clamped to [0,1].
func NewPlayer(volume float64, logger log.Log) (*Player, error) {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, oto.FormatFloat32LE)
	if err != nil {
		return nil, err
	}
	return newPlayer(ctx, ready, volume, logger), nil
}

func newPlayer(ctx *oto.Context, ready chan struct{}, volume float64, logger log.Log) *Player {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Player{
		ctx:    ctx,
		ready:  ready,
		volume: min(max(volume, 0), 1),
		logger: logger.Named("audio"),
		bank:   make(map[race.Cue][]byte),
	}
}

// Play starts cue in the background. Cues arriving before the device is
// ready, or while MaxVoices are already sounding, are dropped.
func (p *Player) Play(cue race.Cue) {
	select {
	case <-p.ready:
	default:
		p.dropped.Add(1)
		return
	}
	if p.voices.Add(1) > MaxVoices {
		p.voices.Add(-1)
		p.dropped.Add(1)
		return
	}
	samples := p.samples(cue)
	if len(samples) == 0 {
		p.voices.Add(-1)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.voices.Add(-1)
		player := p.ctx.NewPlayer(&soundReader{data: samples})
		player.SetVolume(p.volume)
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		if err := player.Close(); err != nil {
			p.logger.Debug("closing voice", log.String("cue", cue.String()), log.Error(err))
		}
	}()
}

// Dropped reports how many cues were not played.
func (p *Player) Dropped() uint64 { return p.dropped.Load() }

// Wait blocks until every started cue has finished.
func (p *Player) Wait() { p.wg.Wait() }

func (p *Player) samples(cue race.Cue) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.bank[cue]; ok {
		return s
	}
	s := Synthesize(cue)
	p.bank[cue] = s
	return s
}
