package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"quizboard/core"
)

func TestSink_OnEventPostsToEndpoints(t *testing.T) {
	var hits int32
	var lastBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		b, _ := io.ReadAll(r.Body)
		lastBody.Store(b)
		_ = r.Body.Close()
	}))
	defer srv.Close()

	sink := New([]string{srv.URL})
	sink.OnEvent(context.Background(), core.NewScoreSubmitted(core.Entry{ID: 1, Name: "Ana", Score: 95, Level: core.LevelGold}, false))

	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", hits)
	}
	var ev core.Event
	if err := json.Unmarshal(lastBody.Load().([]byte), &ev); err != nil {
		t.Fatalf("decode delivered event: %v", err)
	}
	if ev.Entry.Name != "Ana" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestSink_NoEndpoints(t *testing.T) {
	sink := New(nil)
	// must be a no-op, not a panic
	sink.OnEvent(context.Background(), core.NewEntriesEvicted(1))
}
