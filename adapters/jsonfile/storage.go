package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"quizboard/core"
)

// Store persists the whole entry set to a single JSON file.
// Suitable for demos and small deployments without a Redis or SQL server.
type Store struct {
	path string
	mu   sync.Mutex
	// in-memory copy for speed; the file is rewritten on every mutation
	entries []core.Entry
}

func New(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var entries []core.Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		// a corrupt file must not block the leaderboard; start empty and
		// overwrite on the next insert
		return nil
	}
	s.entries = entries
	return nil
}

func (s *Store) persist() error {
	b, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// unavailable maps filesystem faults to the sentinel the service degrades on.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, core.ErrStoreUnavailable)
}

func (s *Store) Insert(_ context.Context, e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	if err := s.persist(); err != nil {
		s.entries = s.entries[:len(s.entries)-1]
		return unavailable("persist", err)
	}
	return nil
}

func (s *Store) RangeDescending(_ context.Context, start, stop int64) ([]core.Entry, error) {
	if start < 0 || stop < start {
		return []core.Entry{}, nil
	}
	s.mu.Lock()
	ordered := make([]core.Entry, len(s.entries))
	copy(ordered, s.entries)
	s.mu.Unlock()
	core.OrderDescending(ordered)
	if int(start) >= len(ordered) {
		return []core.Entry{}, nil
	}
	if int(stop) < len(ordered)-1 {
		ordered = ordered[:stop+1]
	}
	return ordered[start:], nil
}

func (s *Store) Cardinality(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.entries)), nil
}

func (s *Store) EvictLowest(_ context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > int64(len(s.entries)) {
		n = int64(len(s.entries))
	}
	ordered := make([]core.Entry, len(s.entries))
	copy(ordered, s.entries)
	core.OrderDescending(ordered)
	keep := ordered[:int64(len(ordered))-n]
	prev := s.entries
	s.entries = keep
	if err := s.persist(); err != nil {
		s.entries = prev
		return 0, unavailable("persist", err)
	}
	return n, nil
}

var _ interface {
	Insert(context.Context, core.Entry) error
	RangeDescending(context.Context, int64, int64) ([]core.Entry, error)
	Cardinality(context.Context) (int64, error)
	EvictLowest(context.Context, int64) (int64, error)
} = (*Store)(nil)
