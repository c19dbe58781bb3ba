package game

import "fmt"

// Phase is the room's stage in the game. The zero value is not a valid phase.
type Phase string

const (
	PhaseLobby         = Phase("LOBBY")
	PhaseAssignRoles   = Phase("ASSIGN_ROLES")
	PhaseCategoryInput = Phase("CATEGORY_INPUT")
	PhaseWordInput     = Phase("WORD_INPUT")
	PhaseRound1        = Phase("ROUND_1")
	PhaseRound2        = Phase("ROUND_2")
	PhaseRound3        = Phase("ROUND_3")
	PhaseFinished      = Phase("FINISHED")
)

// MaxRounds is the number of clue/vote rounds before the impostor wins.
const MaxRounds = 3

var transitions = map[Phase][]Phase{
	PhaseLobby:         {PhaseAssignRoles},
	PhaseAssignRoles:   {PhaseCategoryInput, PhaseRound1, PhaseLobby},
	PhaseCategoryInput: {PhaseWordInput},
	PhaseWordInput:     {PhaseRound1},
	PhaseRound1:        {PhaseRound2, PhaseFinished},
	PhaseRound2:        {PhaseRound3, PhaseFinished},
	PhaseRound3:        {PhaseFinished},
	PhaseFinished:      {PhaseLobby},
}

func (p Phase) String() string {
	return string(p)
}

func (p Phase) Valid() bool {
	_, ok := transitions[p]
	return ok
}

// CanTransitionTo reports whether next directly follows p.
func (p Phase) CanTransitionTo(next Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Round returns 1..3 for round phases and 0 otherwise.
func (p Phase) Round() int {
	switch p {
	case PhaseRound1:
		return 1
	case PhaseRound2:
		return 2
	case PhaseRound3:
		return 3
	}
	return 0
}

func (p Phase) IsRound() bool {
	return p.Round() > 0
}

// InProgress is true between role assignment and the end of the game.
func (p Phase) InProgress() bool {
	return p != PhaseLobby && p != PhaseFinished
}

func RoundPhase(n int) (Phase, error) {
	switch n {
	case 1:
		return PhaseRound1, nil
	case 2:
		return PhaseRound2, nil
	case 3:
		return PhaseRound3, nil
	}
	return "", fmt.Errorf("no round %d", n)
}
