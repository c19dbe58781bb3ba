package game

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrInvalidPhase     = errors.New("action not allowed in the current phase")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrAlreadySubmitted = errors.New("already submitted")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidTarget    = errors.New("invalid vote target")
	ErrNotAlive         = errors.New("only alive players can do that")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrRoomNotFound, "ROOM_NOT_FOUND"},
	{ErrRoomFull, "ROOM_FULL"},
	{ErrInvalidPhase, "INVALID_PHASE"},
	{ErrNotHost, "NOT_HOST"},
	{ErrNotEnoughPlayers, "NOT_ENOUGH_PLAYERS"},
	{ErrAlreadySubmitted, "ALREADY_SUBMITTED"},
	{ErrForbidden, "FORBIDDEN"},
	{ErrInvalidTarget, "INVALID_TARGET"},
	{ErrNotAlive, "NOT_ALIVE"},
	{ErrPlayerNotFound, "PLAYER_NOT_FOUND"},
	{ErrInvalidInput, "INVALID_INPUT"},
	{ErrInternal, "INTERNAL"},
}

// Code returns the stable wire code for err. Errors outside the game's
// vocabulary map to INTERNAL.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL"
}
