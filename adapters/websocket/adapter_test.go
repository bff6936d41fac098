package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"quizboard/core"
	"quizboard/realtime"
)

func TestHandlerStreamsSubmissions(t *testing.T) {
	hub := realtime.NewHub()
	server := httptest.NewServer(Handler(hub))
	defer server.Close()

	wsURL := "ws" + server.URL[len("http"):] // convert http->ws
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	// ensure subscriber goroutine is ready
	time.Sleep(10 * time.Millisecond)

	ev := core.NewScoreSubmitted(core.Entry{ID: 1, Name: "alice", Score: 95, Level: core.LevelGold}, false)
	hub.Broadcast(context.Background(), ev)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}

	var received core.Event
	if err := json.Unmarshal(msg, &received); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if received.Entry.Name != "alice" || received.Type != core.EventScoreSubmitted {
		t.Fatalf("unexpected event: %+v", received)
	}
}

func TestHandlerReleasesSlotOnClientClose(t *testing.T) {
	hub := realtime.NewHub()
	server := httptest.NewServer(Handler(hub))
	defer server.Close()

	wsURL := "ws" + server.URL[len("http"):]
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("expected one subscriber, got %d", hub.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}

	// No events are broadcast here, so only the read pump can
	// observe the disconnect and free the hub slot.
	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber slot not released after close, %d remaining", hub.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
