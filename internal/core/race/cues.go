package race

import (
	"fmt"

	"github.com/zeusync/laneracer/internal/core/observability/log"
)

// Cue is a short audio notification raised by the simulation.
type Cue uint8

const (
	CueCrash Cue = iota
	CueLapComplete
	CueOvertake
	CueRaceStart
	CueRaceWon
	CueRaceLost
)

var cueNames = [...]string{
	CueCrash:       "crash",
	CueLapComplete: "lap-complete",
	CueOvertake:    "overtake",
	CueRaceStart:   "race-start",
	CueRaceWon:     "race-won",
	CueRaceLost:    "race-lost",
}

func (c Cue) String() string {
	if int(c) < len(cueNames) {
		return cueNames[c]
	}
	return fmt.Sprintf("cue(%d)", uint8(c))
}

// Cues lists every cue in declaration order.
func Cues() []Cue {
	return []Cue{CueCrash, CueLapComplete, CueOvertake, CueRaceStart, CueRaceWon, CueRaceLost}
}

// CueSink receives cues. Play is called from inside a simulation tick and
// must not block.
type CueSink interface {
	Play(cue Cue)
}

// NopCues drops every cue.
type NopCues struct{}

func (NopCues) Play(Cue) {}

// CueFunc adapts a function to CueSink.
type CueFunc func(Cue)

func (f CueFunc) Play(cue Cue) { f(cue) }

// LogCues writes cues to a logger at debug level.
type LogCues struct {
	Logger log.Log
}

func (l LogCues) Play(cue Cue) {
	l.Logger.Debug("cue", log.String("cue", cue.String()))
}

// MultiCues fans a cue out to several sinks.
type MultiCues []CueSink

func (m MultiCues) Play(cue Cue) {
	for _, s := range m {
		s.Play(cue)
	}
}
