package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"quizboard/board"
)

func TestProvideWebhooksDeliversSubmissions(t *testing.T) {
	var hits atomic.Int64
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer endpoint.Close()

	t.Setenv("QUIZBOARD_WEBHOOK_ENDPOINTS", endpoint.URL+" , ")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := board.New(board.WithLogger(logger))
	defer svc.Close()
	provideWebhooks(svc, logger)

	if _, _, err := svc.Submit(context.Background(), "Ana", 95); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hits.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("webhook endpoint was never called")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestProvideWebhooksNoEndpoints(t *testing.T) {
	t.Setenv("QUIZBOARD_WEBHOOK_ENDPOINTS", "")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := board.New(board.WithLogger(logger))
	defer svc.Close()

	// must be a no-op, not a subscription to nothing
	provideWebhooks(svc, logger)

	if _, _, err := svc.Submit(context.Background(), "Bo", 70); err != nil {
		t.Fatalf("submit: %v", err)
	}
}
