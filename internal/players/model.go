package players

import "time"

type Role string

const (
	RoleUnset     = Role("")
	RolePlayer    = Role("PLAYER")
	RoleImpostor  = Role("IMPOSTOR")
	RoleSpectator = Role("SPECTATOR")
)

type Player struct {
	ID        string
	Username  string
	Role      Role
	Alive     bool
	Connected bool
	JoinedAt  time.Time
}

// Participant reports whether the player takes part in the current game,
// dead or alive. Spectators never do.
func (p *Player) Participant() bool {
	return p.Role != RoleSpectator
}

// CanAct reports whether the player may vote or submit.
func (p *Player) CanAct() bool {
	return p.Alive && p.Participant()
}
