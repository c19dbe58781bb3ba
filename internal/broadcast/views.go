package broadcast

import (
	"fmt"

	"impostor/internal/game"
	"impostor/internal/players"
)

const (
	TypeRoom    = "room"
	TypePrivate = "private"
)

type PlayerView struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	Role      players.Role `json:"role,omitempty"`
	IsAlive   bool         `json:"isAlive"`
	Connected bool         `json:"connected"`
	IsHost    bool         `json:"isHost"`
}

type TallyView struct {
	Round          int            `json:"round"`
	EliminatedID   string         `json:"eliminatedId,omitempty"`
	EliminatedRole players.Role   `json:"eliminatedRole,omitempty"`
	Tie            bool           `json:"tie"`
	Counts         map[string]int `json:"counts"`
}

// PublicView is sent to every member of a room.
type PublicView struct {
	Type          string        `json:"type"`
	RoomCode      string        `json:"roomCode"`
	GameState     game.Phase    `json:"gameState"`
	Players       []PlayerView  `json:"players"`
	Round         int           `json:"round"`
	Category      string        `json:"category,omitempty"`
	Message       string        `json:"message"`
	Winner        game.Winner   `json:"winner,omitempty"`
	WordMode      game.WordMode `json:"wordMode"`
	WordPoolSize  int           `json:"wordPoolSize"`
	VotesCast     int           `json:"votesCast"`
	VotersPending []string      `json:"votersPending"`
	LastTally     *TallyView    `json:"lastTally,omitempty"`
	MinPlayers    int           `json:"minPlayers"`
	MaxPlayers    int           `json:"maxPlayers"`
}

type WordView struct {
	ID      string `json:"id"`
	Word    string `json:"word"`
	Hint    string `json:"hint"`
	AddedBy string `json:"addedBy"`
}

// PrivateView is sent only to the player it describes.
type PrivateView struct {
	Type       string       `json:"type"`
	PlayerID   string       `json:"playerId"`
	Role       players.Role `json:"role,omitempty"`
	Category   string       `json:"category,omitempty"`
	SecretWord string       `json:"secretWord,omitempty"`
	Message    string       `json:"message"`
	IsHost     bool         `json:"isHost"`
	IsAlive    bool         `json:"isAlive"`
	VotedFor   string       `json:"votedFor,omitempty"`
	MyWords    []WordView   `json:"myWords"`
}

// Public projects s for the whole room. A role is shown for spectators, for
// eliminated players and, once the game is over, for everyone.
func Public(s game.Snapshot) PublicView {
	v := PublicView{
		Type:          TypeRoom,
		RoomCode:      s.Code,
		GameState:     s.Phase,
		Players:       make([]PlayerView, 0, len(s.Players)),
		Round:         s.Round,
		Category:      s.Category,
		Message:       s.Message,
		Winner:        s.Winner,
		WordMode:      s.WordMode,
		WordPoolSize:  len(s.WordPool),
		VotesCast:     len(s.Votes),
		VotersPending: append([]string{}, s.VotersPending...),
		MinPlayers:    s.MinPlayers,
		MaxPlayers:    s.MaxPlayers,
	}
	for _, p := range s.Players {
		pv := PlayerView{
			ID:        p.ID,
			Username:  p.Username,
			IsAlive:   p.Alive,
			Connected: p.Connected,
			IsHost:    p.ID == s.HostID,
		}
		if revealed(s, p) {
			pv.Role = p.Role
		}
		v.Players = append(v.Players, pv)
	}
	if r := s.LastTally; r != nil {
		t := &TallyView{
			Round:          r.Round,
			EliminatedID:   r.EliminatedID,
			EliminatedRole: r.EliminatedRole,
			Tie:            r.Tie,
			Counts:         make(map[string]int, len(r.Counts)),
		}
		for k, n := range r.Counts {
			t.Counts[k] = n
		}
		v.LastTally = t
	}
	return v
}

func revealed(s game.Snapshot, p players.Player) bool {
	switch {
	case p.Role == players.RoleUnset:
		return false
	case p.Role == players.RoleSpectator:
		return true
	case s.Phase == game.PhaseFinished:
		return true
	}
	return !p.Alive
}

// Private projects s for one player. Only a PLAYER ever receives the secret
// word. It reports false when the player is not in the room.
func Private(s game.Snapshot, playerID string) (PrivateView, bool) {
	p, ok := s.Player(playerID)
	if !ok {
		return PrivateView{}, false
	}
	v := PrivateView{
		Type:     TypePrivate,
		PlayerID: p.ID,
		Role:     p.Role,
		IsHost:   p.ID == s.HostID,
		IsAlive:  p.Alive,
		VotedFor: s.Votes[p.ID],
		MyWords:  []WordView{},
	}
	if p.Role != players.RoleUnset {
		v.Category = s.Category
	}
	if p.Role == players.RolePlayer {
		v.SecretWord = s.SecretWord
	}
	if s.Phase == game.PhaseLobby {
		for _, e := range s.WordPool {
			if e.AddedBy == p.ID {
				v.MyWords = append(v.MyWords, WordView{ID: e.ID, Word: e.Word, Hint: e.Hint, AddedBy: e.AddedBy})
			}
		}
	}
	v.Message = privateMessage(s, p)
	return v, true
}

func privateMessage(s game.Snapshot, p players.Player) string {
	switch p.Role {
	case players.RoleImpostor:
		if s.Category == "" {
			return "You are the impostor. Blend in and wait for the category."
		}
		return fmt.Sprintf("You are the impostor. The category is %q; you do not know the word.", s.Category)
	case players.RolePlayer:
		switch {
		case !p.Alive:
			return "You have been eliminated."
		case s.SecretWord != "":
			return fmt.Sprintf("The secret word is %q.", s.SecretWord)
		case s.Phase == game.PhaseWordInput:
			return "Choose the secret word."
		}
		return "Choose a category."
	case players.RoleSpectator:
		return "You are watching this game."
	}
	if p.ID == s.HostID {
		return "You are the host. Start the game when everyone is here."
	}
	return "Waiting for the host to start the game."
}
