package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"impostor/internal/broadcast"
)

// handleEvents streams the room's public view as server-sent events. It
// carries nothing private, so any observer (a TV screen, say) may follow it.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := s.Rooms.Get(ps.ByName("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	msgChan := room.Broadcaster.Subscribe()
	defer room.Broadcaster.Unsubscribe(msgChan)

	st, err := room.State(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if err := writeEvent(w, broadcast.Public(st)); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-room.Stopped():
			return
		case v, ok := <-msgChan:
			if !ok {
				return
			}
			if err := writeEvent(w, v); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, v broadcast.PublicView) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", v.Type, data)
	return err
}
