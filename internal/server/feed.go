package server

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/laneracer/internal/core/observability/log"
	"github.com/zeusync/laneracer/internal/core/race"
	"github.com/zeusync/laneracer/pkg/generic"
)

// Message is the envelope of every websocket frame.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	MessageSnapshot = "snapshot"
	MessageTrack    = "track"
)

// Feed keeps the latest race state, encoded once per publish, and fans it
// out to subscribed clients. Publishing never blocks on a slow client: a
// full client buffer drops the frame.
type Feed struct {
	mu       sync.RWMutex
	snapshot []byte
	track    []byte
	clients  map[string]*feedClient
	buffer   int
	closed   bool
	dropped  uint64
	logger   log.Log
}

type feedClient struct {
	id   string
	send chan []byte
}

// NewFeed creates a feed whose clients buffer up to buffer frames.
func NewFeed(buffer int, logger log.Log) *Feed {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Feed{
		clients: make(map[string]*feedClient),
		buffer:  buffer,
		logger:  logger.Named("feed"),
	}
}

// PublishSnapshot stores snap as the latest state and broadcasts it.
func (f *Feed) PublishSnapshot(snap race.Snapshot) error {
	frame, raw, err := encode(MessageSnapshot, snap)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = raw
	f.broadcastLocked(frame)
	return nil
}

// PublishTrack stores view as the current track and broadcasts it.
func (f *Feed) PublishTrack(view race.TrackView) error {
	frame, raw, err := encode(MessageTrack, view)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.track = raw
	f.broadcastLocked(frame)
	return nil
}

// Snapshot returns the latest encoded snapshot, if any.
func (f *Feed) Snapshot() ([]byte, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshot, f.snapshot != nil
}

// Track returns the latest encoded track view, if any.
func (f *Feed) Track() ([]byte, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.track, f.track != nil
}

// Clients reports how many clients are subscribed.
func (f *Feed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Dropped reports how many frames were discarded for slow clients.
func (f *Feed) Dropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

// subscribe registers a client. The returned channel is primed with the
// current track and snapshot.
func (f *Feed) subscribe() (*feedClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrFeedClosed
	}
	c := &feedClient{id: uuid.NewString(), send: make(chan []byte, f.buffer+2)}
	if f.track != nil {
		c.send <- frame(MessageTrack, f.track)
	}
	if f.snapshot != nil {
		c.send <- frame(MessageSnapshot, f.snapshot)
	}
	f.clients[c.id] = c
	f.logger.Debug("client subscribed", log.String("client", c.id), log.Int("clients", len(f.clients)))
	return c, nil
}

func (f *Feed) unsubscribe(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c.id]; !ok {
		return
	}
	delete(f.clients, c.id)
	close(c.send)
	f.logger.Debug("client unsubscribed", log.String("client", c.id), log.Int("clients", len(f.clients)))
}

// Close disconnects every client and refuses new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for id, c := range f.clients {
		delete(f.clients, id)
		close(c.send)
	}
}

func (f *Feed) broadcastLocked(frame []byte) {
	for _, c := range f.clients {
		select {
		case c.send <- frame:
		default:
			f.dropped++
		}
	}
}

var buffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

func encode(typ string, v any) (framed, raw []byte, err error) {
	buf := buffers.Get()
	defer buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return nil, nil, err
	}
	raw = bytes.Clone(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return frame(typ, raw), raw, nil
}

func frame(typ string, raw []byte) []byte {
	// Marshalling a Message with a valid RawMessage cannot fail.
	out, _ := json.Marshal(Message{Type: typ, Data: raw})
	return out
}
