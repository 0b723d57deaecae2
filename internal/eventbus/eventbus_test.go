package eventbus

import "testing"

type note struct {
	ID   string
	Code int
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := New[note]()
	ch := bus.Subscribe()
	bus.Publish(note{ID: "req-1", Code: 7})
	v := <-ch
	if v.ID != "req-1" || v.Code != 7 {
		t.Fatalf("unexpected event %+v", v)
	}
	bus.Unsubscribe(ch)
}

func TestBusFullSubscriberDoesNotBlock(t *testing.T) {
	bus := New[int]()
	ch := bus.Subscribe()
	for i := 0; i < 100; i++ {
		bus.Publish(i)
	}
	// Buffer is 16; later publishes are dropped, not blocked on.
	if got := <-ch; got != 0 {
		t.Fatalf("expected first event 0 got %d", got)
	}
	bus.Unsubscribe(ch)
}

func TestBusClose(t *testing.T) {
	bus := New[string]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
	// Publish and Unsubscribe after Close must not panic.
	bus.Publish("late")
	bus.Unsubscribe(ch1)
}
