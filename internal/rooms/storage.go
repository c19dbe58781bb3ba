// Package rooms holds the live rooms of the server. Each Room runs its game on
// its own goroutine; the Registry is the only state shared between rooms.
package rooms

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"impostor/internal/game"
	"impostor/internal/metrics"
	"impostor/internal/players"
)

type Config struct {
	CodeLength     int
	Game           game.Options
	ReconnectGrace time.Duration
	IdleTTL        time.Duration
	SweepInterval  time.Duration
}

func DefaultConfig() Config {
	return Config{
		CodeLength:     MinCodeLength,
		Game:           game.DefaultOptions(),
		ReconnectGrace: 2 * time.Minute,
		IdleTTL:        time.Hour,
		SweepInterval:  time.Minute,
	}
}

type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	cfg     Config
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	newID   func() string
	now     func() time.Time
}

func NewRegistry(cfg Config, log logrus.FieldLogger, m *metrics.Metrics) *Registry {
	if cfg.CodeLength == 0 {
		cfg.CodeLength = MinCodeLength
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		rooms:   make(map[string]*Room),
		cfg:     cfg,
		log:     log,
		metrics: m,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// Create opens a room and seats username in it as host.
func (s *Registry) Create(ctx context.Context, username string) (*Room, players.Player, error) {
	room, err := s.open()
	if err != nil {
		return nil, players.Player{}, err
	}
	p, err := s.seat(ctx, room, username)
	if err != nil {
		s.remove(room)
		return nil, players.Player{}, err
	}
	s.log.WithFields(logrus.Fields{"room": room.Code, "player": p.ID}).Info("room created")
	return room, p, nil
}

// Join seats username in the room with the given code. Late joiners become
// spectators.
func (s *Registry) Join(ctx context.Context, code, username string) (*Room, players.Player, error) {
	room, err := s.Get(code)
	if err != nil {
		return nil, players.Player{}, err
	}
	p, err := s.seat(ctx, room, username)
	if err != nil {
		return nil, players.Player{}, err
	}
	s.log.WithFields(logrus.Fields{"room": room.Code, "player": p.ID, "role": p.Role}).Info("player joined")
	return room, p, nil
}

func (s *Registry) seat(ctx context.Context, room *Room, username string) (players.Player, error) {
	id := s.newID()
	var p players.Player
	_, err := room.Do(ctx, "join", func(g *game.Game) error {
		var err error
		p, err = g.Join(id, username)
		return err
	})
	return p, err
}

func (s *Registry) open() (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Try up to 10 times to generate a unique code
	for range 10 {
		code, err := GenerateCode(s.cfg.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := s.rooms[code]; exists {
			continue
		}
		room := newRoom(code, s.cfg.Game, s.log, s.metrics, s.now, s.remove)
		s.rooms[code] = room
		s.metrics.RoomOpened()
		return room, nil
	}
	return nil, fmt.Errorf("%w: failed to generate unique room code after 10 attempts", game.ErrInternal)
}

func (s *Registry) Get(code string) (*Room, error) {
	code = NormalizeCode(code)
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", game.ErrRoomNotFound, code)
	}
	return room, nil
}

func (s *Registry) Delete(code string) {
	s.mu.RLock()
	room := s.rooms[NormalizeCode(code)]
	s.mu.RUnlock()
	if room != nil {
		s.remove(room)
	}
}

// remove drops room if it is still registered and stops it.
func (s *Registry) remove(room *Room) {
	s.mu.Lock()
	cur, ok := s.rooms[room.Code]
	if ok && cur == room {
		delete(s.rooms, room.Code)
	}
	s.mu.Unlock()

	if ok && cur == room {
		s.metrics.RoomClosed()
		s.log.WithField("room", room.Code).Info("room closed")
	}
	room.Close()
}

// List returns the active rooms ordered by code.
func (s *Registry) List() []*Room {
	s.mu.RLock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

func (s *Registry) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Sweep closes rooms that are empty or fully disconnected for longer than the
// reconnect grace, or idle for longer than the idle TTL. It returns the
// number of rooms closed.
func (s *Registry) Sweep(now time.Time) int {
	n := 0
	for _, room := range s.List() {
		st := room.Stats()
		reason := ""
		switch {
		case st.Players == 0 && now.Sub(st.CreatedAt) > s.cfg.ReconnectGrace:
			reason = "empty"
		case st.Connected == 0 && !st.OfflineSince.IsZero() && now.Sub(st.OfflineSince) > s.cfg.ReconnectGrace:
			reason = "disconnected"
		case s.cfg.IdleTTL > 0 && now.Sub(st.LastActive) > s.cfg.IdleTTL:
			reason = "idle"
		default:
			continue
		}
		s.log.WithFields(logrus.Fields{"room": room.Code, "reason": reason}).Info("sweeping room")
		s.remove(room)
		n++
	}
	return n
}

// Run sweeps stale rooms every SweepInterval until ctx is done, then closes
// every room.
func (s *Registry) Run(ctx context.Context) {
	interval := s.cfg.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

func (s *Registry) CloseAll() {
	for _, room := range s.List() {
		s.remove(room)
	}
}
