package audio

import (
	"io"
	"math"

	"github.com/zeusync/laneracer/internal/core/race"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	// frameSize is one stereo float32 frame in bytes.
	frameSize = 8
)

// Synthesize renders cue as interleaved stereo float32 little-endian PCM.
// Unknown cues render to nil.
func Synthesize(cue race.Cue) []byte {
	switch cue {
	case race.CueCrash:
		return genCrash()
	case race.CueLapComplete:
		return genLapComplete()
	case race.CueOvertake:
		return genOvertake()
	case race.CueRaceStart:
		return genRaceStart()
	case race.CueRaceWon:
		return genRaceWon()
	case race.CueRaceLost:
		return genRaceLost()
	}
	return nil
}

// genCrash: filtered noise burst over a low thump.
func genCrash() []byte {
	n := int(0.28 * SampleRate)
	buf := makeBuf(n)
	seed := uint64(28041)
	lp := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		p := float64(i) / float64(n)
		env := math.Exp(-p * 9)
		lp = lp*0.7 + lcg(&seed)*0.3
		thump := math.Sin(2*math.Pi*(90-40*p)*t) * math.Exp(-p*18)
		putStereoF32(buf, i, softSat((lp*0.7+thump*0.6)*env))
	}
	return buf
}

// genLapComplete: two quick rising blips.
func genLapComplete() []byte {
	return concat(
		tone(660, 660, 0.08, 0.45),
		silence(0.03),
		tone(880, 990, 0.12, 0.45),
	)
}

// genOvertake: a short upward whoosh.
func genOvertake() []byte {
	n := int(0.3 * SampleRate)
	buf := makeBuf(n)
	seed := uint64(5150)
	lp := 0.0
	phase := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		env := adsr(p, 0.2, 0.2, 0.6, 0.3)
		phase += 2 * math.Pi * (300 + 600*p) / SampleRate
		lp = lp*0.85 + lcg(&seed)*0.15
		putStereoF32(buf, i, softSat((math.Sin(phase)*0.3+lp*0.4)*env))
	}
	return buf
}

// genRaceStart: three low beeps and a high go.
func genRaceStart() []byte {
	return concat(
		tone(440, 440, 0.15, 0.5), silence(0.15),
		tone(440, 440, 0.15, 0.5), silence(0.15),
		tone(440, 440, 0.15, 0.5), silence(0.15),
		tone(880, 880, 0.4, 0.55),
	)
}

// genRaceWon: major arpeggio.
func genRaceWon() []byte {
	return concat(
		tone(523.25, 523.25, 0.12, 0.45),
		tone(659.25, 659.25, 0.12, 0.45),
		tone(783.99, 783.99, 0.12, 0.45),
		tone(1046.5, 1046.5, 0.3, 0.5),
	)
}

// genRaceLost: long falling slide.
func genRaceLost() []byte {
	return tone(440, 110, 0.8, 0.5)
}

// tone renders a sine sweeping linearly from f0 to f1 Hz.
func tone(f0, f1, seconds, gain float64) []byte {
	n := int(seconds * SampleRate)
	buf := makeBuf(n)
	phase := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		phase += 2 * math.Pi * (f0 + (f1-f0)*p) / SampleRate
		env := adsr(p, 0.04, 0.1, 0.8, 0.2)
		s := math.Sin(phase) + math.Sin(2*phase)*0.15
		putStereoF32(buf, i, softSat(s*env*gain))
	}
	return buf
}

func silence(seconds float64) []byte { return makeBuf(int(seconds * SampleRate)) }

func concat(parts ...[]byte) []byte {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	out := make([]byte, 0, size)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func makeBuf(n int) []byte { return make([]byte, n*frameSize) }

// adsr is a linear envelope over progress p in [0,1]; release is the final
// fraction of the sound.
func adsr(p, attack, decay, sustain, release float64) float64 {
	switch {
	case p < attack:
		return p / attack
	case p < attack+decay:
		return 1 - (1-sustain)*(p-attack)/decay
	case p < 1-release:
		return sustain
	default:
		return sustain * math.Max(0, (1-p)/release)
	}
}

// lcg returns deterministic noise in [-1,1).
func lcg(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>11))/float64(1<<52) - 1
}

// softSat keeps samples inside [-1,1] without hard clipping.
func softSat(x float64) float64 {
	return math.Tanh(x)
}

// putStereoF32 writes a [-1,1] sample as float32 LE to both channels of frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	for ch := 0; ch < ChannelCount; ch++ {
		o := i*frameSize + ch*4
		buf[o] = byte(v)
		buf[o+1] = byte(v >> 8)
		buf[o+2] = byte(v >> 16)
		buf[o+3] = byte(v >> 24)
	}
}

type soundReader struct {
	data []byte
	pos  int
}

func (r *soundReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
