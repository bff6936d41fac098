package engine

import (
	"context"

	"quizboard/core"
)

// ScoreStore abstracts a ranked set of score entries. Stores are append and
// evict only: the domain never corrects a historical score, it only bounds
// storage size.
//
// Every method may fail; implementations wrap all backend faults in
// core.ErrStoreUnavailable so callers can detect degraded mode with
// errors.Is and never crash on a store error.
type ScoreStore interface {
	// Insert adds an entry ranked by its score.
	Insert(ctx context.Context, e core.Entry) error
	// RangeDescending returns entries from rank start through stop
	// inclusive, highest score first, equal scores earlier ID first.
	RangeDescending(ctx context.Context, start, stop int64) ([]core.Entry, error)
	// Cardinality reports the number of retained entries.
	Cardinality(ctx context.Context) (int64, error)
	// EvictLowest removes up to n lowest-scoring entries and reports how
	// many were removed.
	EvictLowest(ctx context.Context, n int64) (int64, error)
}

// Drainer is implemented by fallback stores that can hand their entries back
// for reconciliation once the durable store recovers.
type Drainer interface {
	Drain(ctx context.Context) ([]core.Entry, error)
}
