package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"impostor/internal/broadcast"
	"impostor/internal/game"
	"impostor/internal/players"
	"impostor/internal/rooms"
	"impostor/internal/wshub"
)

const (
	maxBodyBytes = 4096
	qrSize       = 320
)

type joinRequest struct {
	Username string `json:"username"`
}

// actionRequest is the REST body of a room action. VoterID is accepted as an
// alias of PlayerID for votes.
type actionRequest struct {
	PlayerID      string `json:"playerId"`
	VoterID       string `json:"voterId"`
	Value         string `json:"value"`
	VotedPlayerID string `json:"votedPlayerId"`
	Word          string `json:"word"`
	Hint          string `json:"hint"`
	EntryID       string `json:"entryId"`
	Mode          string `json:"mode"`
}

type createResponse struct {
	broadcast.PublicView
	PlayerID string `json:"playerId"`
}

type joinResponse struct {
	broadcast.PlayerView
	RoomCode string `json:"roomCode"`
}

type stateResponse struct {
	Room    broadcast.PublicView   `json:"room"`
	Private *broadcast.PrivateView `json:"private,omitempty"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", game.ErrInvalidInput)
	}
	return nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req joinRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	room, host, err := s.Rooms.Create(r.Context(), req.Username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := room.State(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{PublicView: broadcast.Public(st), PlayerID: host.ID})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req joinRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	room, p, err := s.Rooms.Join(r.Context(), ps.ByName("code"), req.Username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse{PlayerView: playerView(p), RoomCode: room.Code})
}

func playerView(p players.Player) broadcast.PlayerView {
	v := broadcast.PlayerView{
		ID:        p.ID,
		Username:  p.Username,
		IsAlive:   p.Alive,
		Connected: p.Connected,
	}
	// roles stay hidden until the public view reveals them
	if p.Role == players.RoleSpectator {
		v.Role = p.Role
	}
	return v
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := s.Rooms.Get(ps.ByName("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := room.State(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := stateResponse{Room: broadcast.Public(st)}
	if id := r.URL.Query().Get("playerId"); id != "" {
		priv, ok := broadcast.Private(st, id)
		if !ok {
			s.writeError(w, fmt.Errorf("%w: %s", game.ErrPlayerNotFound, id))
			return
		}
		resp.Private = &priv
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAction is the REST twin of the websocket messages. It answers with
// the caller's private view.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := s.Rooms.Get(ps.ByName("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req actionRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	playerID := req.PlayerID
	if playerID == "" {
		playerID = req.VoterID
	}
	if playerID == "" {
		s.writeError(w, fmt.Errorf("%w: playerId is required", game.ErrInvalidInput))
		return
	}

	msg := wshub.ClientMessage{
		Type:          ps.ByName("action"),
		Value:         req.Value,
		VotedPlayerID: req.VotedPlayerID,
		Word:          req.Word,
		Hint:          req.Hint,
		EntryID:       req.EntryID,
		Mode:          req.Mode,
	}
	st, err := s.apply(r.Context(), room, playerID, msg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	priv, ok := broadcast.Private(st, playerID)
	if !ok {
		// the caller left the lobby
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, priv)
}

func (s *Server) apply(ctx context.Context, room *rooms.Room, playerID string, msg wshub.ClientMessage) (game.Snapshot, error) {
	fn, err := command(playerID, msg)
	if err != nil {
		s.Metrics.Action("unknown", game.Code(err))
		return game.Snapshot{}, err
	}
	st, err := room.Do(ctx, msg.Type, fn)
	s.Log.WithFields(logrus.Fields{
		"room":   room.Code,
		"player": playerID,
		"action": msg.Type,
		"phase":  st.Phase,
	}).WithError(err).Debug("action handled")
	return st, err
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := s.Rooms.Get(ps.ByName("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	png, err := qrcode.Encode(s.joinURL(r, room.Code), qrcode.Medium, qrSize)
	if err != nil {
		s.writeError(w, fmt.Errorf("qr generation failed: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// joinURL is the address a phone should open to join code.
func (s *Server) joinURL(r *http.Request, code string) string {
	base := strings.TrimSuffix(s.Cfg.PublicURL, "/")
	if base == "" {
		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/?code=" + url.QueryEscape(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resp := map[string]any{"status": "ok", "rooms": s.Rooms.Len()}
	if s.DB != nil {
		if err := s.DB.Ping(r.Context()); err != nil {
			resp["status"] = "db_error"
			resp["error"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
