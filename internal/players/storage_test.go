package players

import "testing"

func TestNewRoster(t *testing.T) {
	r := NewRoster()
	if r == nil {
		t.Fatal("NewRoster() returned nil")
	}
	if len(r.GetList()) != 0 {
		t.Errorf("new roster should be empty, got %d players", len(r.GetList()))
	}
}

func TestRoster_Add(t *testing.T) {
	r := NewRoster()
	p := r.Add("id1", "Alice", RoleUnset)

	if p.ID != "id1" {
		t.Errorf("player ID = %q, want %q", p.ID, "id1")
	}
	if p.Username != "Alice" {
		t.Errorf("player Username = %q, want %q", p.Username, "Alice")
	}
	if !p.Alive {
		t.Error("new player should be alive")
	}
	if !p.Connected {
		t.Error("new player should count as present")
	}
	if p.JoinedAt.IsZero() {
		t.Error("JoinedAt should be set")
	}
}

func TestRoster_AddExistingKeepsPlayer(t *testing.T) {
	r := NewRoster()
	first := r.Add("id1", "Alice", RoleUnset)
	second := r.Add("id1", "Mallory", RoleSpectator)

	if first != second {
		t.Error("adding an existing id should return the existing player")
	}
	if second.Username != "Alice" {
		t.Errorf("Username = %q, want %q", second.Username, "Alice")
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}
}

func TestRoster_Get(t *testing.T) {
	r := NewRoster()
	r.Add("id1", "Alice", RoleUnset)

	p := r.Get("id1")
	if p == nil {
		t.Fatal("Get returned nil for existing player")
	}
	if p.Username != "Alice" {
		t.Errorf("Username = %q, want %q", p.Username, "Alice")
	}

	if r.Get("nonexistent") != nil {
		t.Error("Get should return nil for nonexistent player")
	}
}

func TestRoster_GetListKeepsJoinOrder(t *testing.T) {
	r := NewRoster()
	names := []string{"Alice", "Bob", "Carol", "Dave"}
	for i, n := range names {
		r.Add(string(rune('a'+i)), n, RoleUnset)
	}

	list := r.GetList()
	if len(list) != len(names) {
		t.Fatalf("GetList() returned %d players, want %d", len(list), len(names))
	}
	for i, p := range list {
		if p.Username != names[i] {
			t.Errorf("list[%d] = %q, want %q", i, p.Username, names[i])
		}
	}
}

func TestRoster_Remove(t *testing.T) {
	r := NewRoster()
	r.Add("id1", "Alice", RoleUnset)
	r.Add("id2", "Bob", RoleUnset)

	if !r.Remove("id1") {
		t.Error("Remove should return true for existing player")
	}
	if r.Get("id1") != nil {
		t.Error("player should be nil after removal")
	}
	if r.First().ID != "id2" {
		t.Errorf("First() = %q, want %q", r.First().ID, "id2")
	}
	if r.Remove("nonexistent") {
		t.Error("Remove should return false for nonexistent player")
	}
}

func TestRoster_First(t *testing.T) {
	r := NewRoster()
	if r.First() != nil {
		t.Error("First() should be nil for empty roster")
	}
	r.Add("id1", "Alice", RoleUnset)
	r.Add("id2", "Bob", RoleUnset)
	if r.First().ID != "id1" {
		t.Errorf("First() = %q, want %q", r.First().ID, "id1")
	}
}

func TestRoster_SetConnected(t *testing.T) {
	r := NewRoster()
	r.Add("id1", "Alice", RoleUnset)
	r.Add("id2", "Bob", RoleUnset)

	if p := r.SetConnected("id1", true); p == nil || !p.Connected {
		t.Error("player should be connected")
	}
	if r.ConnectedCount() != 1 {
		t.Errorf("ConnectedCount = %d, want 1", r.ConnectedCount())
	}
	if p := r.SetConnected("id1", false); p.Connected {
		t.Error("player should be disconnected")
	}
	if r.SetConnected("nonexistent", true) != nil {
		t.Error("SetConnected should return nil for nonexistent player")
	}
}

func TestRoster_VotersAndParticipants(t *testing.T) {
	r := NewRoster()
	r.Add("a", "Alice", RolePlayer).Connected = true
	r.Add("b", "Bob", RoleImpostor).Connected = true
	dead := r.Add("c", "Carol", RolePlayer)
	dead.Alive = false
	dead.Connected = true
	r.Add("d", "Dave", RolePlayer) // disconnected
	r.Add("e", "Eve", RoleSpectator).Connected = true

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"participants", r.Participants(), []string{"a", "b", "c", "d"}},
		{"all voters", r.Voters(false), []string{"a", "b", "d"}},
		{"connected voters", r.Voters(true), []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.got) != len(tt.want) {
				t.Fatalf("got %v, want %v", tt.got, tt.want)
			}
			for i := range tt.want {
				if tt.got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", tt.got, tt.want)
				}
			}
		})
	}
}

func TestRoster_ResetAll(t *testing.T) {
	r := NewRoster()
	r.Add("id1", "Alice", RoleImpostor).Alive = false
	r.Add("id2", "Bob", RoleSpectator)

	r.ResetAll()

	for _, p := range r.GetList() {
		if p.Role != RoleUnset {
			t.Errorf("%s role = %q, want unset", p.Username, p.Role)
		}
		if !p.Alive {
			t.Errorf("%s should be alive after reset", p.Username)
		}
	}
	if r.Count() != 2 {
		t.Error("players should still exist after reset")
	}
}

func TestPlayer_CanAct(t *testing.T) {
	tests := []struct {
		role  Role
		alive bool
		want  bool
	}{
		{RolePlayer, true, true},
		{RoleImpostor, true, true},
		{RolePlayer, false, false},
		{RoleSpectator, true, false},
	}
	for _, tt := range tests {
		p := &Player{Role: tt.role, Alive: tt.alive}
		if got := p.CanAct(); got != tt.want {
			t.Errorf("CanAct(role=%s, alive=%v) = %v, want %v", tt.role, tt.alive, got, tt.want)
		}
	}
}
