package rooms

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"impostor/internal/broadcast"
	"impostor/internal/events"
	"impostor/internal/game"
	"impostor/internal/metrics"
	"impostor/internal/wshub"
)

const inboxSize = 32

// Stats is what the sweeper knows about a room without entering its actor.
type Stats struct {
	CreatedAt    time.Time
	LastActive   time.Time
	Players      int
	Connected    int
	OfflineSince time.Time // zero while someone is connected
}

type command struct {
	action string
	fn     func(g *game.Game) error
	read   bool
	reply  chan result
}

type result struct {
	snap game.Snapshot
	err  error
}

// Room owns one game. Every command runs on the room's own goroutine, one at
// a time and in arrival order.
type Room struct {
	Code        string
	CreatedAt   time.Time
	Hub         *wshub.Hub
	Broadcaster *broadcast.Broadcaster

	game    *game.Game
	bus     *events.Bus
	inbox   chan command
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
	onEmpty func(*Room)
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	now     func() time.Time

	lastActive   atomic.Int64
	players      atomic.Int32
	connected    atomic.Int32
	offlineSince atomic.Int64
}

func newRoom(code string, opts game.Options, log logrus.FieldLogger, m *metrics.Metrics, clock func() time.Time, onEmpty func(*Room)) *Room {
	if clock == nil {
		clock = time.Now
	}
	log = log.WithField("room", code)
	bus := events.NewBus()
	hub := wshub.NewHub(log)
	now := clock()
	r := &Room{
		Code:        code,
		CreatedAt:   now,
		Hub:         hub,
		Broadcaster: broadcast.NewBroadcaster(bus, hub, log),
		game:        game.New(code, opts),
		bus:         bus,
		inbox:       make(chan command, inboxSize),
		quit:        make(chan struct{}),
		stopped:     make(chan struct{}),
		onEmpty:     onEmpty,
		log:         log,
		metrics:     m,
		now:         clock,
	}
	r.lastActive.Store(now.UnixNano())
	r.offlineSince.Store(now.UnixNano())
	go r.run()
	return r
}

// Do runs fn against the game on the room's goroutine. When fn succeeds the
// new state is broadcast and returned; when it fails (or panics) nothing is
// sent. Game methods validate before they mutate, so a rejected action
// normally leaves the state untouched, but Do itself restores nothing.
func (r *Room) Do(ctx context.Context, action string, fn func(g *game.Game) error) (game.Snapshot, error) {
	return r.submit(ctx, command{action: action, fn: fn})
}

// State returns the current snapshot without broadcasting.
func (r *Room) State(ctx context.Context) (game.Snapshot, error) {
	return r.submit(ctx, command{action: "state", read: true})
}

func (r *Room) submit(ctx context.Context, cmd command) (game.Snapshot, error) {
	cmd.reply = make(chan result, 1)
	select {
	case r.inbox <- cmd:
	case <-r.stopped:
		return game.Snapshot{}, fmt.Errorf("%w: %s", game.ErrRoomNotFound, r.Code)
	case <-ctx.Done():
		return game.Snapshot{}, ctx.Err()
	}
	select {
	case res := <-cmd.reply:
		return res.snap, res.err
	case <-r.stopped:
		return game.Snapshot{}, fmt.Errorf("%w: %s", game.ErrRoomNotFound, r.Code)
	case <-ctx.Done():
		return game.Snapshot{}, ctx.Err()
	}
}

// Close stops the room. It does not wait; use Stopped for that.
func (r *Room) Close() {
	r.once.Do(func() { close(r.quit) })
}

func (r *Room) Stopped() <-chan struct{} {
	return r.stopped
}

func (r *Room) Stats() Stats {
	s := Stats{
		CreatedAt:  r.CreatedAt,
		LastActive: time.Unix(0, r.lastActive.Load()),
		Players:    int(r.players.Load()),
		Connected:  int(r.connected.Load()),
	}
	if ns := r.offlineSince.Load(); ns != 0 {
		s.OfflineSince = time.Unix(0, ns)
	}
	return s
}

func (r *Room) run() {
	defer func() {
		r.bus.Close()
		r.Hub.CloseAll()
		close(r.stopped)
	}()
	for {
		select {
		case <-r.quit:
			return
		default:
		}
		select {
		case <-r.quit:
			return
		case cmd := <-r.inbox:
			res := r.exec(cmd)
			cmd.reply <- res
			if res.err == nil && !cmd.read && r.game.Empty() {
				r.log.Info("room is empty")
				if r.onEmpty != nil {
					r.onEmpty(r)
				}
				return
			}
		}
	}
}

func (r *Room) exec(cmd command) (res result) {
	defer func() {
		if p := recover(); p != nil {
			r.log.WithFields(logrus.Fields{
				"action": cmd.action,
				"panic":  p,
				"stack":  string(debug.Stack()),
			}).Error("room action panicked")
			r.metrics.Action(cmd.action, game.Code(game.ErrInternal))
			res = result{err: fmt.Errorf("%w: %s failed", game.ErrInternal, cmd.action)}
		}
	}()

	if cmd.read {
		return result{snap: r.game.Snapshot()}
	}

	before := r.game.Phase()
	if err := cmd.fn(r.game); err != nil {
		r.metrics.Action(cmd.action, game.Code(err))
		r.log.WithFields(logrus.Fields{"action": cmd.action, "phase": before}).WithError(err).Debug("action rejected")
		return result{err: err}
	}
	r.metrics.Action(cmd.action, "OK")

	snap := r.game.Snapshot()
	r.touch(snap)
	if snap.Phase != before {
		r.log.WithFields(logrus.Fields{"action": cmd.action, "from": before, "phase": snap.Phase}).Info("phase changed")
	}
	if snap.Phase == game.PhaseFinished && before != game.PhaseFinished {
		r.metrics.GameFinished(string(snap.Winner))
		r.log.WithField("winner", snap.Winner).Info("game finished")
	}
	if !r.bus.Publish(events.StateChange{Action: cmd.action, Snapshot: snap}) {
		r.log.WithField("action", cmd.action).Warn("broadcaster is behind, state change dropped")
	}
	return result{snap: snap}
}

func (r *Room) touch(s game.Snapshot) {
	now := r.now().UnixNano()
	r.lastActive.Store(now)

	connected := 0
	for _, p := range s.Players {
		if p.Connected {
			connected++
		}
	}
	r.players.Store(int32(len(s.Players)))
	r.connected.Store(int32(connected))
	// the reconnect window runs from the last action taken while nobody
	// was connected
	if connected > 0 {
		r.offlineSince.Store(0)
	} else {
		r.offlineSince.Store(now)
	}
}
