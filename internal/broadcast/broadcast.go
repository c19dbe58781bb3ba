// Package broadcast turns room snapshots into public and private views and
// delivers them without blocking the room.
package broadcast

import (
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"impostor/internal/events"
	"impostor/internal/game"
)

// Sink delivers encoded views to connected sessions. Implementations must not
// block.
type Sink interface {
	SendAll(v any) int
	SendTo(playerID string, v any) bool
}

type Broadcaster struct {
	mu      sync.Mutex
	clients map[chan PublicView]bool
	last    map[string]PrivateView
	sink    Sink
	log     logrus.FieldLogger
	done    chan struct{}
}

// NewBroadcaster starts forwarding every state change on bus until the bus is
// closed. sink may be nil.
func NewBroadcaster(bus *events.Bus, sink Sink, log logrus.FieldLogger) *Broadcaster {
	if log == nil {
		log = logrus.StandardLogger()
	}
	b := &Broadcaster{
		clients: make(map[chan PublicView]bool),
		last:    make(map[string]PrivateView),
		sink:    sink,
		log:     log,
		done:    make(chan struct{}),
	}
	go func() {
		defer close(b.done)
		for ev := range bus.StateChanges {
			b.Publish(ev.Snapshot)
		}
		b.closeClients()
	}()
	return b
}

// Done is closed once the bus is drained.
func (b *Broadcaster) Done() <-chan struct{} {
	return b.done
}

func (b *Broadcaster) Subscribe() chan PublicView {
	ch := make(chan PublicView, 10)
	b.mu.Lock()
	b.clients[ch] = true
	b.mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan PublicView) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clients[ch] {
		delete(b.clients, ch)
		close(ch)
	}
}

// Forget drops the remembered private view of playerID so the next state
// change resends it, for example to a fresh session.
func (b *Broadcaster) Forget(playerID string) {
	b.mu.Lock()
	delete(b.last, playerID)
	b.mu.Unlock()
}

// Publish sends the public view to the whole room and each private view to
// its own player when it differs from the last one sent.
func (b *Broadcaster) Publish(s game.Snapshot) {
	pub := Public(s)

	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.clients {
		select {
		case ch <- pub:
		default:
			// skip observers with full channels
		}
	}
	if b.sink == nil {
		return
	}
	b.sink.SendAll(pub)

	seen := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		seen[p.ID] = true
		priv, _ := Private(s, p.ID)
		if prev, ok := b.last[p.ID]; ok && reflect.DeepEqual(prev, priv) {
			continue
		}
		if b.sink.SendTo(p.ID, priv) {
			b.last[p.ID] = priv
		} else {
			delete(b.last, p.ID)
			if p.Connected {
				b.log.WithFields(logrus.Fields{"room": s.Code, "player": p.ID}).Debug("private view dropped")
			}
		}
	}
	for id := range b.last {
		if !seen[id] {
			delete(b.last, id)
		}
	}
}

func (b *Broadcaster) closeClients() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		delete(b.clients, ch)
		close(ch)
	}
}
