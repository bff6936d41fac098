package analytics

import (
	"context"
	"time"

	"quizboard/core"
)

// EventSource is anything events can be subscribed from. Both the engine's
// bus and the service satisfy it.
type EventSource interface {
	Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func()
}

// Service bundles metrics collection, aggregation and export for a
// leaderboard deployment.
type Service struct {
	metrics    *Metrics
	aggregator *AggregationEngine
	exporter   *ExportManager

	unsubscribe []func()
}

// NewService creates an analytics service with hourly aggregation. Extra
// exporters (HTTP) can be passed alongside the default console exporter.
func NewService(exporters ...Exporter) *Service {
	metrics := NewMetrics()

	if len(exporters) == 0 {
		exporters = []Exporter{NewConsoleExporter(nil)}
	}

	return &Service{
		metrics:    metrics,
		aggregator: NewAggregationEngine(metrics, 1*time.Hour),
		exporter:   NewExportManager(exporters...),
	}
}

// Metrics exposes the live counters.
func (s *Service) Metrics() *Metrics { return s.metrics }

// Hook returns the hook to register with an event source.
func (s *Service) Hook() Hook { return s.metrics }

// Bind subscribes the service to the leaderboard event source. Call Close to
// detach.
func (s *Service) Bind(bus EventSource) {
	hook := s.Hook()
	relay := func(ctx context.Context, e core.Event) { hook.OnEvent(e) }
	s.unsubscribe = append(s.unsubscribe,
		bus.Subscribe(core.EventScoreSubmitted, relay),
		bus.Subscribe(core.EventEntriesEvicted, relay),
	)
}

// Start runs the aggregation loop until ctx is cancelled, exporting the
// daily snapshot after every pass.
func (s *Service) Start(ctx context.Context) {
	ticker := time.NewTicker(s.aggregator.aggregationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.aggregator.AggregateAll(now)
			day := now.UTC().Format("2006-01-02")
			if data, ok := s.aggregator.GetAggregatedData(PeriodDaily, day); ok {
				_ = s.exporter.Export(ctx, data)
			}
		}
	}
}

// Snapshot aggregates immediately and returns the snapshot for the period
// containing now.
func (s *Service) Snapshot(period AggregationPeriod, now time.Time) (*AggregatedData, bool) {
	s.aggregator.AggregateAll(now)
	var key string
	switch period {
	case PeriodDaily:
		key = now.UTC().Format("2006-01-02")
	case PeriodWeekly:
		key = getWeekKey(now)
	case PeriodMonthly:
		key = getMonthKey(now)
	default:
		return nil, false
	}
	return s.aggregator.GetAggregatedData(period, key)
}

// Close detaches from the event bus and flushes exporters.
func (s *Service) Close() error {
	for _, u := range s.unsubscribe {
		u()
	}
	s.unsubscribe = nil
	return s.exporter.Close()
}
