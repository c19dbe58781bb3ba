package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"impostor/internal/game"
	"impostor/internal/rooms"
	"impostor/internal/wshub"
)

// handleWS attaches a player's websocket session to their room. A second
// session for the same player replaces the first.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := s.Rooms.Get(ps.ByName("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	playerID := r.URL.Query().Get("playerId")
	st, err := room.State(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, ok := st.Player(playerID); !ok {
		s.writeError(w, fmt.Errorf("%w: %q", game.ErrPlayerNotFound, playerID))
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.Cfg.AllowedOrigins,
	})
	if err != nil {
		s.Log.WithError(err).Warn("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	log := s.Log.WithFields(logrus.Fields{"room": room.Code, "player": playerID})
	client := wshub.NewClient(playerID, conn)
	if room.Hub.Register(client) {
		log.Info("session replaced")
	}
	room.Broadcaster.Forget(playerID)
	s.Metrics.SessionOpened()
	defer s.Metrics.SessionClosed()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go client.WritePump(ctx)

	if _, err := room.Do(ctx, "connect", func(g *game.Game) error { return g.Connect(playerID) }); err != nil {
		_, msg := errorMessage(log, err)
		room.Hub.Reply(client, msg)
		room.Hub.Unregister(client)
		return
	}
	log.Info("player connected")

	left := false
	err = client.ReadPump(ctx, func(msg wshub.ClientMessage) {
		_, err := s.apply(ctx, room, playerID, msg)
		if err != nil {
			_, out := errorMessage(log, err)
			room.Hub.Reply(client, out)
			return
		}
		if msg.Type == wshub.MsgLeave {
			left = true
			cancel()
		}
	})
	if err != nil {
		log.WithError(err).Debug("websocket read ended")
	}

	if !room.Hub.Unregister(client) || left {
		return
	}
	s.disconnect(room, playerID, log)
}

func (s *Server) disconnect(room *rooms.Room, playerID string, log logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := room.Do(ctx, "disconnect", func(g *game.Game) error { return g.Disconnect(playerID) })
	switch {
	case err == nil:
		log.Info("player disconnected")
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrPlayerNotFound):
	default:
		log.WithError(err).Warn("disconnect failed")
	}
}
