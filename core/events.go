package core

import "time"

// EventType enumerates leaderboard domain events.
type EventType string

const (
	EventScoreSubmitted EventType = "score_submitted"
	EventEntriesEvicted EventType = "entries_evicted"
)

// Event is an immutable notification about a change to the leaderboard.
type Event struct {
	Type     EventType `json:"type"`
	Time     time.Time `json:"time"`
	Entry    Entry     `json:"entry"`
	Degraded bool      `json:"degraded,omitempty"`
	Evicted  int64     `json:"evicted,omitempty"`
}

// NewScoreSubmitted reports a stored submission. Degraded is set when the
// entry went to the process-local fallback instead of the durable store.
func NewScoreSubmitted(e Entry, degraded bool) Event {
	return Event{Type: EventScoreSubmitted, Time: time.Now().UTC(), Entry: e, Degraded: degraded}
}

// NewEntriesEvicted reports a retention pass that removed n entries.
func NewEntriesEvicted(n int64) Event {
	return Event{Type: EventEntriesEvicted, Time: time.Now().UTC(), Evicted: n}
}
