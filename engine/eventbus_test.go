package engine

import (
	"context"
	"testing"
	"time"

	"quizboard/core"
)

func TestEventBusSync(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	count := 0
	bus.Subscribe(core.EventScoreSubmitted, func(ctx context.Context, e core.Event) { count++ })
	bus.Publish(context.Background(), core.NewScoreSubmitted(core.Entry{ID: 1, Name: "a", Score: 70}, false))
	if count != 1 {
		t.Fatalf("want 1 got %d", count)
	}
}

func TestEventBusAsync(t *testing.T) {
	bus := NewEventBus(DispatchAsync)
	defer bus.Close()
	ch := make(chan struct{})
	bus.Subscribe(core.EventEntriesEvicted, func(ctx context.Context, e core.Event) { close(ch) })
	bus.Publish(context.Background(), core.NewEntriesEvicted(2))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus(DispatchSync)
	count := 0
	off := bus.Subscribe(core.EventScoreSubmitted, func(ctx context.Context, e core.Event) { count++ })
	off()
	bus.Publish(context.Background(), core.NewScoreSubmitted(core.Entry{}, false))
	if count != 0 {
		t.Fatalf("handler ran after unsubscribe: %d", count)
	}
}
