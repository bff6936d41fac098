package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	jsonfileAdapter "quizboard/adapters/jsonfile"
	mem "quizboard/adapters/memory"
	redisAdapter "quizboard/adapters/redis"
	sqlxAdapter "quizboard/adapters/sqlx"
	"quizboard/analytics"
	"quizboard/api/httpapi"
	"quizboard/board"
	"quizboard/config"
	"quizboard/core"
	"quizboard/engine"
	"quizboard/integrations/webhook"
	"quizboard/realtime"
)

// App aggregates the assembled server components.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Hub       *realtime.Hub
	Service   *engine.Service
	Analytics *analytics.Service
	Handler   http.Handler
	Server    *http.Server
}

// BuildApp assembles the server from configuration. Providers are wired by
// hand; the dependency graph is small enough to not need a generator.
func BuildApp(ctx context.Context) (*App, error) {
	cfg, err := provideConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger := provideLogger(cfg)
	hub := provideHub()
	storage, err := provideStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc := provideService(cfg, hub, storage, logger)
	stats := provideAnalytics(svc, logger)
	provideWebhooks(svc, logger)
	handler := provideHandler(svc, hub, cfg)
	server := provideServer(cfg, handler)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Hub:       hub,
		Service:   svc,
		Analytics: stats,
		Handler:   handler,
		Server:    server,
	}, nil
}

func provideConfig(ctx context.Context) (*config.Config, error) {
	if path := os.Getenv("QUIZBOARD_CONFIG_FILE"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideStorage(ctx context.Context, cfg *config.Config) (engine.ScoreStore, error) {
	return setupStorage(ctx, cfg)
}

func provideService(cfg *config.Config, hub *realtime.Hub, storage engine.ScoreStore, logger *slog.Logger) *engine.Service {
	return board.New(
		board.WithRealtime(hub),
		board.WithStore(storage),
		board.WithDispatchMode(engine.DispatchAsync),
		board.WithLimits(engine.Limits{
			MaxRetained:  cfg.Leaderboard.MaxRetained,
			StoreTimeout: cfg.Leaderboard.StoreTimeout,
		}),
		board.WithLogger(logger),
	)
}

func provideAnalytics(svc *engine.Service, logger *slog.Logger) *analytics.Service {
	exporters := []analytics.Exporter{analytics.NewConsoleExporter(logger)}
	if endpoint := os.Getenv("QUIZBOARD_ANALYTICS_ENDPOINT"); endpoint != "" {
		exporters = append(exporters, analytics.NewHTTPExporter(endpoint, os.Getenv("QUIZBOARD_ANALYTICS_API_KEY"), 10))
	}
	stats := analytics.NewService(exporters...)
	stats.Bind(svc)
	return stats
}

// provideWebhooks subscribes a webhook sink for each endpoint in
// QUIZBOARD_WEBHOOK_ENDPOINTS (comma-separated). The service dispatches
// events asynchronously, so a slow endpoint never delays a submission.
func provideWebhooks(svc *engine.Service, logger *slog.Logger) {
	raw := os.Getenv("QUIZBOARD_WEBHOOK_ENDPOINTS")
	if raw == "" {
		return
	}
	var endpoints []string
	for _, ep := range strings.Split(raw, ",") {
		if ep = strings.TrimSpace(ep); ep != "" {
			endpoints = append(endpoints, ep)
		}
	}
	if len(endpoints) == 0 {
		return
	}
	sink := webhook.New(endpoints)
	svc.Subscribe(core.EventScoreSubmitted, sink.OnEvent)
	logger.Info("webhook sink enabled", "endpoints", len(endpoints))
}

func provideHandler(svc *engine.Service, hub *realtime.Hub, cfg *config.Config) http.Handler {
	return httpapi.NewMux(svc, hub, httpapi.Options{
		PathPrefix:       cfg.Server.PathPrefix,
		AllowCORSOrigin:  cfg.Server.CORSOrigin,
		StaticDir:        cfg.Server.StaticDir,
		TopN:             cfg.Leaderboard.TopN,
		RateLimitEnabled: cfg.Security.EnableRateLimit,
		RateLimitRPM:     cfg.Security.RateLimit.RequestsPerMinute,
		RateLimitBurst:   cfg.Security.RateLimit.BurstSize,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	out := os.Stdout
	if cfg.Logging.Output == "stderr" {
		out = os.Stderr
	}

	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// convertAttributes converts map[string]string to []slog.Attr.
func convertAttributes(attrs map[string]string) []slog.Attr {
	var result []slog.Attr
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupStorage creates the durable store the service will prefer. The auto
// adapter picks Redis when an address is configured and stays fallback-only
// (memory) otherwise, mirroring a deployment without a reachable Redis.
func setupStorage(ctx context.Context, cfg *config.Config) (engine.ScoreStore, error) {
	switch cfg.Storage.Adapter {
	case "auto":
		if cfg.Storage.Redis.Addr != "" {
			return redisAdapter.New(cfg.Storage.Redis), nil
		}
		return mem.New(), nil
	case "memory":
		return mem.New(), nil
	case "redis":
		rc := cfg.Storage.Redis
		if rc.Addr == "" {
			rc.Addr = "localhost:6379"
		}
		return redisAdapter.New(rc), nil
	case "sql":
		store, err := sqlxAdapter.New(cfg.Storage.SQL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Warn("schema setup failed, continuing degraded", "error", err)
		}
		return store, nil
	case "file":
		return jsonfileAdapter.New(cfg.Storage.File.Path)
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Storage.Adapter)
	}
}
