package events

import (
	"testing"
	"time"
)

func TestHubPublishSubscribe(t *testing.T) {
	h := NewEventHub()
	defer h.Close()

	ch := h.Subscribe()
	h.Publish(TimerExpired, TimerExpiredEvent{Purpose: "active-for", Message: "done"})

	select {
	case ev := <-ch:
		if ev.Name != TimerExpired {
			t.Fatalf("event name = %q, want %q", ev.Name, TimerExpired)
		}
		payload, err := DecodeAs[TimerExpiredEvent](ev)
		if err != nil {
			t.Fatalf("DecodeAs: %v", err)
		}
		if payload.Purpose != "active-for" {
			t.Fatalf("purpose = %q", payload.Purpose)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestHubUnsubscribeCloses(t *testing.T) {
	h := NewEventHub()
	defer h.Close()

	ch := h.Subscribe()
	h.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after Unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	h.Publish(StateChanged, StateChangedEvent{State: "active"})
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewEventHub()
	defer h.Close()

	h.Subscribe() // never read

	done := make(chan struct{})
	go func() {
		for i := 0; i < subBuffer*2; i++ {
			h.Publish(TimerTick, TimerTickEvent{RemainingSeconds: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
