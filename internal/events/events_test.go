package events

import (
	"testing"
	"time"

	"impostor/internal/game"
)

func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("NewBus() returned nil")
	}
	if bus.StateChanges == nil {
		t.Fatal("StateChanges channel is nil")
	}
}

func TestBus_PublishReceive(t *testing.T) {
	bus := NewBus()
	ev := StateChange{Action: "start", Snapshot: game.Snapshot{Code: "ABCD", Phase: game.PhaseCategoryInput}}

	go bus.Publish(ev)

	select {
	case received := <-bus.StateChanges:
		if received.Snapshot.Code != "ABCD" || received.Action != "start" {
			t.Errorf("received %+v, want code ABCD action start", received)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_BufferedAndOrdered(t *testing.T) {
	bus := NewBus()

	for i := 0; i < cap(bus.StateChanges); i++ {
		bus.Publish(StateChange{Snapshot: game.Snapshot{Round: i}})
	}
	bus.Close()

	want := 0
	for ev := range bus.StateChanges {
		if ev.Snapshot.Round != want {
			t.Errorf("event %d out of order: round %d", want, ev.Snapshot.Round)
		}
		want++
	}
	if want != 16 {
		t.Errorf("drained %d events, want 16", want)
	}
}

func TestBus_PublishDropsWhenFull(t *testing.T) {
	bus := NewBus()
	for i := 0; i < cap(bus.StateChanges); i++ {
		if !bus.Publish(StateChange{Snapshot: game.Snapshot{Round: i}}) {
			t.Fatalf("publish %d rejected with room in the buffer", i)
		}
	}

	done := make(chan bool)
	go func() { done <- bus.Publish(StateChange{Action: "vote"}) }()
	select {
	case ok := <-done:
		if ok {
			t.Error("Publish on a full bus should report a drop")
		}
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full bus")
	}
}
