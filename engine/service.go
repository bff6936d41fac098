package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quizboard/core"
)

// Limits bounds the leaderboard and its store calls.
type Limits struct {
	// MaxRetained is the retention bound; 0 disables eviction.
	MaxRetained int64
	// StoreTimeout caps every store call so a slow store degrades the same
	// way an unreachable one does.
	StoreTimeout time.Duration
}

func DefaultLimits() Limits {
	return Limits{MaxRetained: 100, StoreTimeout: 3 * time.Second}
}

// Service validates submissions, derives fan levels, enforces retention and
// serves bounded top-N queries. Store faults are absorbed here: writes land
// in the process-local fallback and reads are answered from it, so nothing
// the service does is fatal to a caller.
type Service struct {
	store    ScoreStore
	fallback ScoreStore
	bus      *EventBus
	ids      core.IDGenerator
	limits   Limits
	log      *slog.Logger
}

func NewService(store, fallback ScoreStore, bus *EventBus, limits Limits, log *slog.Logger) *Service {
	if store == nil || fallback == nil || bus == nil {
		panic("NewService requires non-nil store, fallback, and bus")
	}
	if log == nil {
		log = slog.Default()
	}
	if limits.StoreTimeout <= 0 {
		limits.StoreTimeout = DefaultLimits().StoreTimeout
	}
	return &Service{store: store, fallback: fallback, bus: bus, limits: limits, log: log}
}

// Subscribe convenience method.
func (s *Service) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return s.bus.Subscribe(typ, handler)
}

func (s *Service) Publish(ctx context.Context, ev core.Event) {
	s.bus.Publish(ctx, ev)
}

// Submit records a score. The returned bool reports degraded mode: the entry
// went to the process-local fallback because the durable store was
// unreachable. Submissions only fail on invalid input; there is no
// idempotency key, so a retried call creates a second entry.
func (s *Service) Submit(ctx context.Context, name string, score float64) (core.Entry, bool, error) {
	if err := core.ValidateSubmission(name, score); err != nil {
		return core.Entry{}, false, fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}
	e := core.Entry{
		ID:    s.ids.Next(),
		Name:  name,
		Score: int64(score),
		Level: core.LevelForScore(int64(score)),
		Date:  time.Now().UTC(),
	}

	opCtx, cancel := context.WithTimeout(ctx, s.limits.StoreTimeout)
	err := s.store.Insert(opCtx, e)
	cancel()
	if err != nil {
		s.log.Warn("score store unavailable, keeping entry locally", "error", err, "id", e.ID)
		if ferr := s.fallback.Insert(ctx, e); ferr != nil {
			// The fallback is in-process and should never fail; even if it
			// does, the submission still succeeds from the caller's side.
			s.log.Error("fallback insert failed, entry lost", "error", ferr, "id", e.ID)
		}
		s.bus.Publish(ctx, core.NewScoreSubmitted(e, true))
		return e, true, nil
	}

	s.enforceRetention(ctx)
	s.reconcile(ctx)
	s.bus.Publish(ctx, core.NewScoreSubmitted(e, false))
	return e, false, nil
}

// Top returns at most n entries in ranking order. It never fails outward: on
// store unavailability it answers from the fallback, and an empty slice is
// the worst case.
func (s *Service) Top(ctx context.Context, n int) []core.Entry {
	if n <= 0 {
		return []core.Entry{}
	}
	opCtx, cancel := context.WithTimeout(ctx, s.limits.StoreTimeout)
	entries, err := s.store.RangeDescending(opCtx, 0, int64(n)-1)
	cancel()
	if err == nil {
		if entries == nil {
			entries = []core.Entry{}
		}
		return entries
	}
	s.log.Warn("score store unavailable, serving local ranking", "error", err)
	entries, err = s.fallback.RangeDescending(ctx, 0, int64(n)-1)
	if err != nil || entries == nil {
		return []core.Entry{}
	}
	return entries
}

// enforceRetention trims the store back to the bound after an insert. The
// cardinality check and the eviction are not atomic with the insert: two
// concurrent submissions can both observe an over-bound count, and a reader
// can see a momentarily over-bound store. That inconsistency is benign and
// self-correcting on the next submission, so it is not locked away.
func (s *Service) enforceRetention(ctx context.Context) {
	if s.limits.MaxRetained <= 0 {
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, s.limits.StoreTimeout)
	defer cancel()
	n, err := s.store.Cardinality(opCtx)
	if err != nil {
		s.log.Warn("retention check skipped", "error", err)
		return
	}
	over := n - s.limits.MaxRetained
	if over <= 0 {
		return
	}
	removed, err := s.store.EvictLowest(opCtx, over)
	if err != nil {
		s.log.Warn("retention eviction failed", "error", err)
		return
	}
	if removed > 0 {
		s.bus.Publish(ctx, core.NewEntriesEvicted(removed))
	}
}

// reconcile sweeps entries written during an outage back into the durable
// store. It runs after a successful insert, when the store is known
// reachable, and puts entries back on the fallback if the store drops out
// mid-sweep. Degraded writes are therefore eventually durable instead of
// silently lost.
func (s *Service) reconcile(ctx context.Context) {
	drainer, ok := s.fallback.(Drainer)
	if !ok {
		return
	}
	if n, err := s.fallback.Cardinality(ctx); err != nil || n == 0 {
		return
	}
	entries, err := drainer.Drain(ctx)
	if err != nil || len(entries) == 0 {
		return
	}
	moved := 0
	for i, e := range entries {
		opCtx, cancel := context.WithTimeout(ctx, s.limits.StoreTimeout)
		err := s.store.Insert(opCtx, e)
		cancel()
		if err != nil {
			s.log.Warn("reconciliation interrupted, keeping remainder locally",
				"error", err, "moved", moved, "remaining", len(entries)-i)
			for _, rest := range entries[i:] {
				_ = s.fallback.Insert(ctx, rest)
			}
			return
		}
		moved++
	}
	s.log.Info("reconciled fallback entries into store", "count", moved)
	s.enforceRetention(ctx)
}

// Healthy reports whether the durable store is currently reachable.
func (s *Service) Healthy(ctx context.Context) bool {
	opCtx, cancel := context.WithTimeout(ctx, s.limits.StoreTimeout)
	defer cancel()
	_, err := s.store.Cardinality(opCtx)
	return err == nil
}

func (s *Service) Close() { s.bus.Close() }
