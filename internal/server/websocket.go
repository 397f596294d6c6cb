package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/laneracer/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

const (
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	client, err := s.feed.subscribe()
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, err.Error()))
		_ = conn.Close()
		return
	}
	s.logger.Info("Client connected",
		log.String("client_id", client.id),
		log.String("remote_addr", conn.RemoteAddr().String()),
	)

	done := make(chan struct{})
	go s.readLoop(conn, done)
	s.writeLoop(conn, client, done)

	s.feed.unsubscribe(client)
	_ = conn.Close()
	s.logger.Info("Client disconnected", log.String("client_id", client.id))
}

// readLoop discards incoming frames; it exists to process control frames
// and notice when the peer goes away.
func (s *Server) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(conn *websocket.Conn, client *feedClient, done <-chan struct{}) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-done:
			return
		case msg, ok := <-client.send:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
				return
			}
			if err := s.write(conn, websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := s.write(conn, websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, typ int, data []byte) error {
	if s.config.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}
	return conn.WriteMessage(typ, data)
}
