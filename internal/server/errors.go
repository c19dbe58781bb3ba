package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"impostor/internal/game"
	"impostor/internal/wshub"
)

// statusFor maps a game error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrInvalidPhase),
		errors.Is(err, game.ErrAlreadySubmitted),
		errors.Is(err, game.ErrNotEnoughPlayers):
		return http.StatusConflict
	case errors.Is(err, game.ErrNotHost), errors.Is(err, game.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, game.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidTarget), errors.Is(err, game.ErrNotAlive):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// errorMessage builds the payload sent to the caller. Internal errors are
// logged and replaced by a generic text.
func errorMessage(log logrus.FieldLogger, err error) (int, wshub.ErrorMessage) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("unhandled internal error")
		return status, wshub.NewError(game.Code(game.ErrInternal), "An unexpected error occurred")
	}
	return status, wshub.NewError(game.Code(err), err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, msg := errorMessage(s.Log, err)
	writeJSON(w, status, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
