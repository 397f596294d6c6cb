package server

import (
	"net/http"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	raw, ok := s.feed.Snapshot()
	writeJSON(w, raw, ok)
}

func (s *Server) handleTrack(w http.ResponseWriter, _ *http.Request) {
	raw, ok := s.feed.Track()
	writeJSON(w, raw, ok)
}

func writeJSON(w http.ResponseWriter, raw []byte, ok bool) {
	if !ok {
		http.Error(w, "no race running yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}
