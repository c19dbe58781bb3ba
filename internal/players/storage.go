package players

import "time"

// Roster keeps players in join order. It is owned by a single room and is
// not safe for concurrent use.
type Roster struct {
	order   []string
	players map[string]*Player
}

func NewRoster() *Roster {
	return &Roster{
		players: make(map[string]*Player),
	}
}

// Add seats a player. A seated player counts as present until a session
// attached to them drops.
func (r *Roster) Add(id, username string, role Role) *Player {
	if p, ok := r.players[id]; ok {
		return p
	}
	p := &Player{
		ID:        id,
		Username:  username,
		Role:      role,
		Alive:     true,
		Connected: true,
		JoinedAt:  time.Now(),
	}
	r.players[id] = p
	r.order = append(r.order, id)
	return p
}

func (r *Roster) Get(id string) *Player {
	return r.players[id]
}

// GetList returns the players in join order.
func (r *Roster) GetList() []*Player {
	list := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.players[id])
	}
	return list
}

func (r *Roster) Remove(id string) bool {
	if _, ok := r.players[id]; !ok {
		return false
	}
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Roster) Count() int {
	return len(r.order)
}

// First returns the earliest joined player still in the roster, or nil.
func (r *Roster) First() *Player {
	if len(r.order) == 0 {
		return nil
	}
	return r.players[r.order[0]]
}

func (r *Roster) SetConnected(id string, connected bool) *Player {
	if p, ok := r.players[id]; ok {
		p.Connected = connected
		return p
	}
	return nil
}

func (r *Roster) ConnectedCount() int {
	n := 0
	for _, p := range r.players {
		if p.Connected {
			n++
		}
	}
	return n
}

// Participants returns the ids of every non-spectator player in join order.
func (r *Roster) Participants() []string {
	ids := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if r.players[id].Participant() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Voters returns the ids of alive, non-spectator players. When connectedOnly
// is set, disconnected players are left out.
func (r *Roster) Voters(connectedOnly bool) []string {
	ids := make([]string, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		if !p.CanAct() {
			continue
		}
		if connectedOnly && !p.Connected {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// ResetAll clears roles and revives everyone, keeping the roster itself.
func (r *Roster) ResetAll() {
	for _, p := range r.players {
		p.Role = RoleUnset
		p.Alive = true
	}
}
