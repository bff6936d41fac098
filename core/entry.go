package core

import (
	"errors"
	"math"
	"sort"
	"time"
)

// Entry is one submitted quiz result. Entries are immutable after creation;
// the leaderboard only ever inserts them or evicts the lowest-scoring ones.
// ID doubles as the tie-breaker for equal scores: the earlier ID ranks first.
type Entry struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Score int64     `json:"score"`
	Level string    `json:"level"`
	Date  time.Time `json:"date"`
}

// Placeholder stands in for a stored record that can no longer be decoded.
// A single corrupt record must not block the rest of the ranking.
func Placeholder() Entry {
	return Entry{Name: "Unknown", Score: 0, Level: LevelUnknown}
}

// RankedBefore reports whether a ranks ahead of b: higher score first, equal
// scores earlier ID first.
func RankedBefore(a, b Entry) bool {
	if a.Score == b.Score {
		return a.ID < b.ID
	}
	return a.Score > b.Score
}

// OrderDescending sorts entries into ranking order in place.
func OrderDescending(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return RankedBefore(entries[i], entries[j])
	})
}

// ErrInvalidInput marks a malformed submission. Nothing is written for it and
// it is never retried.
var ErrInvalidInput = errors.New("invalid input")

// ErrStoreUnavailable marks a store-layer fault: connectivity, timeout, or
// serialization. Adapters wrap every backend failure in it so the service can
// take the degraded path with errors.Is.
var ErrStoreUnavailable = errors.New("score store unavailable")

// ValidateSubmission checks the raw fields of a score submission. The name is
// stored exactly as sent; the only requirement is that it is present. A zero
// score is rejected the same way a missing one is, and the score must be
// finite.
func ValidateSubmission(name string, score float64) error {
	if name == "" {
		return errors.New("name must be non-empty")
	}
	if score == 0 || math.IsNaN(score) || math.IsInf(score, 0) {
		return errors.New("score must be a non-zero finite number")
	}
	return nil
}
