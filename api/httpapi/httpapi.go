package httpapi

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	wsadapter "quizboard/adapters/websocket"
	"quizboard/core"
	"quizboard/engine"
	"quizboard/realtime"
)

// Options configures the HTTP surface.
type Options struct {
	// PathPrefix, if set, is prepended to API routes (e.g., "/api").
	PathPrefix string
	// AllowCORSOrigin, if non-empty, enables basic CORS with the given origin (use "*" for any).
	AllowCORSOrigin string
	// StaticDir, if non-empty, serves static assets from that directory at "/".
	StaticDir string
	// TopN bounds GET responses; defaults to 10.
	TopN int
	// RateLimitEnabled toggles rate limiting.
	RateLimitEnabled bool
	// RateLimitRPM is the allowed requests per minute per client key.
	RateLimitRPM int
	// RateLimitBurst defines burst capacity.
	RateLimitBurst int
}

// NewMux builds an http.Handler exposing the leaderboard API, a WebSocket
// stream of submissions, and optionally the quiz's static assets.
// Routes:
//   - GET  {prefix}/leaderboard
//   - POST {prefix}/leaderboard  body {"name": string, "score": number}
//   - GET  {prefix}/healthz
//   - WS   {prefix}/ws
//   - GET  /*  (static files, when StaticDir is set)
//
// Store faults never surface as a 5xx on the leaderboard routes; the service
// degrades to its local fallback instead. Only input validation produces a
// non-2xx response.
func NewMux(svc *engine.Service, hub *realtime.Hub, opts Options) http.Handler {
	topN := opts.TopN
	if topN <= 0 {
		topN = 10
	}

	mux := http.NewServeMux()

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/healthz"), func(w http.ResponseWriter, r *http.Request) {
		healthCheck(w, r, svc)
	})

	if hub != nil {
		mux.Handle(withPrefix(opts.PathPrefix, "/ws"), wsadapter.Handler(hub))
	}

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/leaderboard"), func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, svc.Top(r.Context(), topN))
		case http.MethodPost:
			handleSubmit(w, r, svc)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})

	if opts.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(opts.StaticDir)))
	}

	var handler http.Handler = mux
	if opts.AllowCORSOrigin != "" {
		handler = withCORS(handler, opts.AllowCORSOrigin)
	}
	if opts.RateLimitEnabled && opts.RateLimitRPM > 0 && opts.RateLimitBurst > 0 {
		handler = withRateLimit(handler, opts.RateLimitRPM, opts.RateLimitBurst)
	}
	return handler
}

type submitRequest struct {
	Name  string   `json:"name"`
	Score *float64 `json:"score"`
}

type submitResponse struct {
	Message string     `json:"message"`
	Entry   core.Entry `json:"entry"`
}

func handleSubmit(w http.ResponseWriter, r *http.Request, svc *engine.Service) {
	var body submitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	var score float64
	if body.Score != nil {
		score = *body.Score
	}
	entry, degraded, err := svc.Submit(r.Context(), body.Name, score)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	msg := "Score submitted successfully"
	if degraded {
		msg = "Score submitted locally (persistence failed)"
	}
	writeJSON(w, http.StatusCreated, submitResponse{Message: msg, Entry: entry})
}

// Helpers

// healthCheck reports whether the durable store is reachable. A degraded but
// serving instance answers 503 here so orchestration can see the outage even
// though leaderboard routes keep succeeding.
func healthCheck(w http.ResponseWriter, r *http.Request, svc *engine.Service) {
	status := map[string]any{
		"status": "healthy",
		"checks": map[string]any{
			"storage": "ok",
		},
	}
	if !svc.Healthy(r.Context()) {
		w.WriteHeader(http.StatusServiceUnavailable)
		status["status"] = "degraded"
		status["checks"].(map[string]any)["storage"] = "unreachable"
		_ = json.NewEncoder(w).Encode(status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func withPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix[:len(prefix)-1] + path
	}
	return prefix + path
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Error: msg})
}

// withCORS wraps a handler with a minimal CORS policy.
func withCORS(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies a simple token-bucket limiter per client key.
func withRateLimit(next http.Handler, rpm int, burst int) http.Handler {
	limiter := newRateLimiter(rpm, burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.allow(clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies a caller by remote IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type rateLimiter struct {
	rpm   float64
	burst float64
	mu    sync.Mutex
	b     map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

func newRateLimiter(rpm, burst int) *rateLimiter {
	return &rateLimiter{
		rpm:   float64(rpm),
		burst: float64(burst),
		b:     make(map[string]*bucket),
	}
}

func (l *rateLimiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.b[key]
	if !ok {
		l.b[key] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}

	elapsed := now.Sub(b.last).Minutes()
	b.tokens += elapsed * l.rpm
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	if b.tokens < 1 {
		b.last = now
		return false
	}
	b.tokens--
	b.last = now
	return true
}
