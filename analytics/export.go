package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Exporter defines the interface for exporting aggregated data
type Exporter interface {
	Export(ctx context.Context, data *AggregatedData) error
	Flush(ctx context.Context) error
	Close() error
}

// HTTPExporter posts batches of aggregated snapshots to an external endpoint
type HTTPExporter struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	buffer     []*AggregatedData
	batchSize  int
}

func NewHTTPExporter(endpoint, apiKey string, batchSize int) *HTTPExporter {
	return &HTTPExporter{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		buffer:    make([]*AggregatedData, 0, batchSize),
		batchSize: batchSize,
	}
}

func (e *HTTPExporter) Export(ctx context.Context, data *AggregatedData) error {
	e.buffer = append(e.buffer, data)

	if len(e.buffer) >= e.batchSize {
		return e.Flush(ctx)
	}

	return nil
}

func (e *HTTPExporter) Flush(ctx context.Context) error {
	if len(e.buffer) == 0 {
		return nil
	}

	payload, err := json.Marshal(e.buffer)
	if err != nil {
		return fmt.Errorf("failed to marshal analytics data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send analytics data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("analytics export failed with status %d: %s", resp.StatusCode, string(body))
	}

	// Clear buffer on successful export
	e.buffer = e.buffer[:0]
	return nil
}

func (e *HTTPExporter) Close() error {
	// Flush any remaining data
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return e.Flush(ctx)
}

// ConsoleExporter logs snapshots through slog; useful for development
type ConsoleExporter struct {
	log *slog.Logger
}

func NewConsoleExporter(log *slog.Logger) *ConsoleExporter {
	if log == nil {
		log = slog.Default()
	}
	return &ConsoleExporter{log: log}
}

func (e *ConsoleExporter) Export(ctx context.Context, data *AggregatedData) error {
	e.log.Info("leaderboard analytics",
		"period", data.Period,
		"key", data.Key,
		"players", data.ActivePlayers,
		"submissions", data.Submissions,
		"degraded", data.DegradedSubmissions,
		"best_score", data.BestScore,
		"evictions", data.Evictions)
	return nil
}

func (e *ConsoleExporter) Flush(ctx context.Context) error { return nil }
func (e *ConsoleExporter) Close() error                    { return nil }

// ExportManager fans snapshots out to all configured exporters
type ExportManager struct {
	mu        sync.Mutex
	exporters []Exporter
}

func NewExportManager(exporters ...Exporter) *ExportManager {
	return &ExportManager{exporters: exporters}
}

func (em *ExportManager) Export(ctx context.Context, data *AggregatedData) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	var firstErr error
	for _, e := range em.exporters {
		if err := e.Export(ctx, data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (em *ExportManager) Flush(ctx context.Context) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	var firstErr error
	for _, e := range em.exporters {
		if err := e.Flush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (em *ExportManager) Close() error {
	em.mu.Lock()
	defer em.mu.Unlock()

	var firstErr error
	for _, e := range em.exporters {
		if err := e.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
