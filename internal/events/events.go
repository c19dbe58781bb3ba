package events

import "impostor/internal/game"

// StateChange carries the room state after an accepted action. The snapshot
// still holds secrets; consumers must project it before sending it anywhere.
type StateChange struct {
	Action   string
	Snapshot game.Snapshot
}

type Bus struct {
	StateChanges chan StateChange
}

func NewBus() *Bus {
	return &Bus{
		StateChanges: make(chan StateChange, 16),
	}
}

// Publish hands ev to the consumer without waiting. It reports false when
// the buffer is full and ev was dropped.
func (b *Bus) Publish(ev StateChange) bool {
	select {
	case b.StateChanges <- ev:
		return true
	default:
		return false
	}
}

// Close ends the stream. Publish must not be called afterwards.
func (b *Bus) Close() {
	close(b.StateChanges)
}
