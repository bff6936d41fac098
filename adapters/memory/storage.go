package memory

import (
	"context"
	"sync"

	"quizboard/core"
	"quizboard/ranking"
)

// Store is the process-local ScoreStore. It backs fallback-only deployments
// and the degraded path when the durable store is unreachable. It is private
// to the process and never becomes the system of record: entries kept here
// are handed back through Drain once the durable store recovers.
type Store struct {
	mu          sync.Mutex
	list        *ranking.SkipList
	maxRetained int
}

// New returns an unbounded in-memory store.
func New() *Store {
	return &Store{list: ranking.NewSkipList()}
}

// NewBounded returns a store that trims itself to max entries after each
// insert, lowest scores first.
func NewBounded(max int) *Store {
	return &Store{list: ranking.NewSkipList(), maxRetained: max}
}

func (s *Store) Insert(_ context.Context, e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.Insert(e)
	if s.maxRetained > 0 {
		if over := s.list.Len() - s.maxRetained; over > 0 {
			s.list.RemoveLowest(over)
		}
	}
	return nil
}

func (s *Store) RangeDescending(_ context.Context, start, stop int64) ([]core.Entry, error) {
	if start < 0 || stop < start {
		return []core.Entry{}, nil
	}
	s.mu.Lock()
	entries := s.list.TopN(int(stop) + 1)
	s.mu.Unlock()
	if int(start) >= len(entries) {
		return []core.Entry{}, nil
	}
	return entries[start:], nil
}

func (s *Store) Cardinality(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(s.list.Len()), nil
}

func (s *Store) EvictLowest(_ context.Context, n int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.list.RemoveLowest(int(n))
	return int64(len(removed)), nil
}

// Drain empties the store and returns everything it held, in ranking order,
// so the service can move degraded-mode writes into a recovered store.
func (s *Store) Drain(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.list.TopN(s.list.Len())
	s.list = ranking.NewSkipList()
	return entries, nil
}

var _ interface {
	Insert(context.Context, core.Entry) error
	RangeDescending(context.Context, int64, int64) ([]core.Entry, error)
	Cardinality(context.Context) (int64, error)
	EvictLowest(context.Context, int64) (int64, error)
	Drain(context.Context) ([]core.Entry, error)
} = (*Store)(nil)
