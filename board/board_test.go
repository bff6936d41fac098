package board

import (
	"context"
	"testing"

	mem "quizboard/adapters/memory"
	"quizboard/core"
	"quizboard/engine"
	"quizboard/realtime"
)

func TestNewDefaultsAndOptions(t *testing.T) {
	hub := realtime.NewHub()
	svc := New(
		WithRealtime(hub),
		WithStore(mem.New()),
		WithDispatchMode(engine.DispatchSync),
	)

	_, ch := hub.Subscribe(1)

	entry, degraded, err := svc.Submit(context.Background(), "alice", 95)
	if err != nil || degraded {
		t.Fatalf("submit: degraded=%v err=%v", degraded, err)
	}
	if entry.Level != core.LevelGold {
		t.Fatalf("unexpected level: %q", entry.Level)
	}

	// realtime bridge should receive the submission
	ev := <-ch
	if ev.Type != core.EventScoreSubmitted || ev.Entry.Name != "alice" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestNewWithoutOptions(t *testing.T) {
	svc := New(WithDispatchMode(engine.DispatchSync))
	if _, _, err := svc.Submit(context.Background(), "bob", 61); err != nil {
		t.Fatalf("default in-memory submit: %v", err)
	}
	top := svc.Top(context.Background(), 1)
	if len(top) != 1 || top[0].Level != core.LevelIron {
		t.Fatalf("unexpected top: %#v", top)
	}
}
