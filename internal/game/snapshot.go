package game

import (
	"fmt"

	"impostor/internal/players"
)

// Snapshot is a deep copy of a game's state at one instant. It holds secrets
// (the word and the impostor) and must go through broadcast projection
// before leaving the server.
type Snapshot struct {
	Code          string
	Phase         Phase
	HostID        string
	Players       []players.Player
	Round         int
	Category      string
	SecretWord    string
	ImpostorID    string
	Winner        Winner
	WordMode      WordMode
	WordPool      []WordEntry
	Votes         map[string]string
	VotersPending []string
	LastTally     *TallyResult
	MinPlayers    int
	MaxPlayers    int
	Message       string
}

func (g *Game) Snapshot() Snapshot {
	list := g.roster.GetList()
	ps := make([]players.Player, len(list))
	for i, p := range list {
		ps[i] = *p
	}

	pool := make([]WordEntry, len(g.pool))
	copy(pool, g.pool)

	var last *TallyResult
	if g.lastTally != nil {
		cp := *g.lastTally
		cp.Counts = make(map[string]int, len(g.lastTally.Counts))
		for k, v := range g.lastTally.Counts {
			cp.Counts[k] = v
		}
		last = &cp
	}

	var pending []string
	if g.phase.IsRound() {
		pending = g.tally.Pending(g.roster.Voters(true))
	}

	return Snapshot{
		Code:          g.code,
		Phase:         g.phase,
		HostID:        g.hostID,
		Players:       ps,
		Round:         g.round,
		Category:      g.category,
		SecretWord:    g.secretWord,
		ImpostorID:    g.impostorID,
		Winner:        g.winner,
		WordMode:      g.wordMode,
		WordPool:      pool,
		Votes:         g.tally.Votes(),
		VotersPending: pending,
		LastTally:     last,
		MinPlayers:    g.opts.MinPlayers,
		MaxPlayers:    g.opts.MaxPlayers,
		Message:       g.statusMessage(),
	}
}

func (s Snapshot) Player(id string) (players.Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return players.Player{}, false
}

func (s Snapshot) Username(id string) string {
	if p, ok := s.Player(id); ok {
		return p.Username
	}
	return ""
}

// statusMessage is the public, human-readable line for the current phase.
// It never mentions the secret word, nor the impostor before the game ends.
func (g *Game) statusMessage() string {
	switch g.phase {
	case PhaseLobby:
		return fmt.Sprintf("Waiting for players (%d/%d). The host can start with at least %d.",
			g.roster.Count(), g.opts.MaxPlayers, g.opts.MinPlayers)
	case PhaseAssignRoles:
		return "Assigning roles..."
	case PhaseCategoryInput:
		return "Roles are assigned. Waiting for someone to choose a category."
	case PhaseWordInput:
		return fmt.Sprintf("The category is %q. Waiting for someone to choose the secret word.", g.category)
	case PhaseRound1, PhaseRound2, PhaseRound3:
		msg := fmt.Sprintf("Round %d of %d: give your clues, then vote.", g.round, MaxRounds)
		if r := g.lastTally; r != nil {
			msg = g.tallyMessage(r) + " " + msg
		}
		return msg
	case PhaseFinished:
		impostor := ""
		if p := g.roster.Get(g.impostorID); p != nil {
			impostor = p.Username
		}
		prefix := ""
		if r := g.lastTally; r != nil {
			prefix = g.tallyMessage(r) + " "
		}
		if g.winner == WinnerPlayers {
			return prefix + fmt.Sprintf("The players win! %s was the impostor.", impostor)
		}
		return prefix + fmt.Sprintf("The impostor wins! %s survived all %d rounds.", impostor, MaxRounds)
	}
	return ""
}

func (g *Game) tallyMessage(r *TallyResult) string {
	if r.EliminatedID == "" {
		return "The vote was tied, nobody was eliminated."
	}
	name := r.EliminatedID
	if p := g.roster.Get(r.EliminatedID); p != nil {
		name = p.Username
	}
	if r.EliminatedRole == players.RoleImpostor {
		return fmt.Sprintf("%s was eliminated and was the impostor.", name)
	}
	return fmt.Sprintf("%s was eliminated and was not the impostor.", name)
}
