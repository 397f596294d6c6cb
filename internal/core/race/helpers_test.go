package race

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/laneracer/internal/core/track"
)

func mustTrack(t *testing.T, program string) *track.Track {
	t.Helper()
	tr, err := track.Generate(program)
	require.NoError(t, err)
	return tr
}

// place puts c at distance along piece and refreshes its pose.
func place(c *Car, piece int, distance float64) {
	c.pieceIndex = piece
	c.distance = distance
	c.resolve()
}

type cueRecorder struct {
	played []Cue
}

func (r *cueRecorder) Play(c Cue) { r.played = append(r.played, c) }

func (r *cueRecorder) count(c Cue) int {
	n := 0
	for _, p := range r.played {
		if p == c {
			n++
		}
	}
	return n
}
