package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/laneracer/internal/core/race"
)

func startedWorld(t *testing.T) *race.World {
	t.Helper()
	w, err := race.NewWorld(race.DefaultLevels(), race.DefaultSettings(), nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, w.Update(1.0/60))
	return w
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHTTPEndpoints(t *testing.T) {
	feed := NewFeed(4, nil)
	ts := httptest.NewServer(NewServer(DefaultConfig(), feed, nil).Handler())
	defer ts.Close()

	code, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", string(body))

	code, _ = get(t, ts.URL+"/snapshot")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	code, _ = get(t, ts.URL+"/track")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	w := startedWorld(t)
	require.NoError(t, feed.PublishSnapshot(w.Snapshot()))
	view, ok := w.TrackView()
	require.True(t, ok)
	require.NoError(t, feed.PublishTrack(view))

	code, body = get(t, ts.URL+"/snapshot")
	require.Equal(t, http.StatusOK, code)
	var snap race.Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, "Ludum Racetrack", snap.LevelName)
	assert.Len(t, snap.Cars, len(w.Cars()))

	code, body = get(t, ts.URL+"/track")
	require.Equal(t, http.StatusOK, code)
	var tv race.TrackView
	require.NoError(t, json.Unmarshal(body, &tv))
	assert.Len(t, tv.Pieces, w.Track().Len())

	code, _ = get(t, ts.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, code)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketStream(t *testing.T) {
	feed := NewFeed(4, nil)
	ts := httptest.NewServer(NewServer(DefaultConfig(), feed, nil).Handler())
	defer ts.Close()

	w := startedWorld(t)
	view, _ := w.TrackView()
	require.NoError(t, feed.PublishTrack(view))
	require.NoError(t, feed.PublishSnapshot(w.Snapshot()))

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	assert.Equal(t, MessageTrack, readMessage(t, conn).Type)
	assert.Equal(t, MessageSnapshot, readMessage(t, conn).Type)

	require.NoError(t, w.Update(1.0/60))
	require.NoError(t, feed.PublishSnapshot(w.Snapshot()))
	msg := readMessage(t, conn)
	require.Equal(t, MessageSnapshot, msg.Type)
	var snap race.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	assert.Equal(t, w.Ticks(), snap.Tick)
	assert.Equal(t, 1, feed.Clients())

	feed.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestFeedDropsFramesForSlowClients(t *testing.T) {
	feed := NewFeed(1, nil)
	client, err := feed.subscribe()
	require.NoError(t, err)

	w := startedWorld(t)
	for range 5 {
		require.NoError(t, feed.PublishSnapshot(w.Snapshot()))
	}
	assert.Len(t, client.send, 3)
	assert.EqualValues(t, 2, feed.Dropped())

	feed.unsubscribe(client)
	feed.unsubscribe(client)
	assert.Zero(t, feed.Clients())

	feed.Close()
	_, err = feed.subscribe()
	assert.ErrorIs(t, err, ErrFeedClosed)
}

func TestServerStartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	s := NewServer(cfg, NewFeed(4, nil), nil)

	assert.ErrorIs(t, s.Stop(context.Background()), ErrServerNotRunning)
	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrServerAlreadyRunning)

	addr := s.Addr()
	require.NotEmpty(t, addr)
	code, _ := get(t, "http://"+addr+"/healthz")
	assert.Equal(t, http.StatusOK, code)

	require.NoError(t, s.Stop(context.Background()))
	assert.Empty(t, s.Addr())
	assert.ErrorIs(t, s.Stop(context.Background()), ErrServerNotRunning)
}

func TestServerRunStopsOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	s := NewServer(cfg, NewFeed(4, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != "" }, 5*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStartRejectsEmptyAddress(t *testing.T) {
	s := NewServer(Config{}, NewFeed(1, nil), nil)
	assert.ErrorIs(t, s.Start(context.Background()), ErrInvalidConfig)
}

func TestPublisher(t *testing.T) {
	w, err := race.NewWorld(race.DefaultLevels(), race.DefaultSettings(), nil, nil, nil)
	require.NoError(t, err)
	feed := NewFeed(4, nil)
	p := NewPublisher(w, feed, 2)
	assert.Equal(t, "feed", p.Name())

	require.NoError(t, p.Update(0))
	_, ok := feed.Snapshot()
	assert.False(t, ok)
	require.NoError(t, p.Update(0))
	_, ok = feed.Snapshot()
	assert.True(t, ok)
	_, ok = feed.Track()
	assert.False(t, ok)

	require.NoError(t, w.Update(1.0/60))
	require.NoError(t, p.Update(0))
	raw, ok := feed.Track()
	require.True(t, ok)
	var tv race.TrackView
	require.NoError(t, json.Unmarshal(raw, &tv))
	assert.Equal(t, 1, tv.Level)
}
