package board

import (
	"context"
	"log/slog"

	"quizboard/adapters/memory"
	"quizboard/core"
	"quizboard/engine"
	"quizboard/realtime"
)

// Option configures the leaderboard service builder.
type Option func(*config)

type config struct {
	store    engine.ScoreStore
	fallback engine.ScoreStore
	mode     engine.DispatchMode
	limits   engine.Limits
	hub      *realtime.Hub
	logger   *slog.Logger
}

// WithStore sets the primary (durable) score store.
func WithStore(s engine.ScoreStore) Option { return func(c *config) { c.store = s } }

// WithFallback sets the process-local store used while the primary is
// unreachable.
func WithFallback(s engine.ScoreStore) Option { return func(c *config) { c.fallback = s } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithLimits sets the retention bound and per-call store timeout.
func WithLimits(l engine.Limits) Option { return func(c *config) { c.limits = l } }

// WithRealtime wires a realtime hub to receive all leaderboard events.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

// New builds a configured leaderboard Service. Defaults:
//   - store: in-memory (fallback-only deployment)
//   - fallback: a fresh in-memory store
//   - limits: MaxRetained 100, StoreTimeout 3s
//   - dispatch: async
func New(opts ...Option) *engine.Service {
	cfg := &config{mode: engine.DispatchAsync, limits: engine.DefaultLimits()}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.store == nil {
		cfg.store = memory.New()
	}
	if cfg.fallback == nil {
		cfg.fallback = memory.New()
	}
	bus := engine.NewEventBus(cfg.mode)
	svc := engine.NewService(cfg.store, cfg.fallback, bus, cfg.limits, cfg.logger)
	if cfg.hub != nil {
		// Bridge all leaderboard events to realtime
		bus.Subscribe(core.EventScoreSubmitted, func(ctx context.Context, e core.Event) { cfg.hub.Broadcast(ctx, e) })
		bus.Subscribe(core.EventEntriesEvicted, func(ctx context.Context, e core.Event) { cfg.hub.Broadcast(ctx, e) })
	}
	return svc
}
