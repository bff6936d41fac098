package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	mem "quizboard/adapters/memory"
	ws "quizboard/adapters/websocket"
	"quizboard/core"
	"quizboard/engine"
	"quizboard/realtime"
)

// A minimal quiz leaderboard server: in-memory only, top 10, static assets
// from ./public. Handy for local play without Redis.
func main() {
	// Use readable text logging for development/demo
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(textHandler))

	bus := engine.NewEventBus(engine.DispatchAsync)
	svc := engine.NewService(mem.New(), mem.New(), bus, engine.DefaultLimits(), slog.Default())
	hub := realtime.NewHub()

	// Forward submissions to WebSocket clients
	bus.Subscribe(core.EventScoreSubmitted, func(ctx context.Context, e core.Event) { hub.Broadcast(ctx, e) })

	http.Handle("/ws", ws.Handler(hub))
	http.HandleFunc("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, svc.Top(r.Context(), 10))
		case http.MethodPost:
			var body struct {
				Name  string   `json:"name"`
				Score *float64 `json:"score"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Score == nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid input"})
				return
			}
			entry, _, err := svc.Submit(r.Context(), body.Name, *body.Score)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid input"})
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{
				"message": "Score submitted successfully",
				"entry":   entry,
			})
		default:
			http.NotFound(w, r)
		}
	})
	http.Handle("/", http.FileServer(http.Dir("./public")))

	slog.Info("starting demo server on :8080")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
