package analytics

import (
	"fmt"
	"sync"
	"time"

	"quizboard/core"
)

// Hook receives domain events for KPI aggregation.
type Hook interface {
	OnEvent(e core.Event)
}

// DailyPlayers tracks distinct player names per day.
type DailyPlayers struct {
	mu   sync.Mutex
	days map[string]map[string]struct{}
}

func NewDailyPlayers() *DailyPlayers { return &DailyPlayers{days: map[string]map[string]struct{}{}} }

func (d *DailyPlayers) OnEvent(e core.Event) {
	if e.Type != core.EventScoreSubmitted {
		return
	}
	day := e.Time.UTC().Format("2006-01-02")
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.days[day]
	if m == nil {
		m = map[string]struct{}{}
		d.days[day] = m
	}
	m[e.Entry.Name] = struct{}{}
}

func (d *DailyPlayers) Count(day string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.days[day])
}

// Metrics tracks submission activity across days, weeks and months.
type Metrics struct {
	mu sync.RWMutex

	// Player engagement
	dailyPlayers   map[string]map[string]struct{}
	weeklyPlayers  map[string]map[string]struct{}
	monthlyPlayers map[string]map[string]struct{}

	// Submissions
	submissionsByDay    map[string]int64
	submissionsByLevel  map[string]int64
	degradedByDay       map[string]int64
	scoreSumByDay       map[string]int64
	bestScoreByDay      map[string]int64
	bestScoreEverByName map[string]int64

	// Retention
	evictionsByDay map[string]int64

	// Real-time counters (last 24 hours)
	realtimeCounters struct {
		submissions int64
		degraded    int64
		evictions   int64
		lastReset   time.Time
	}
}

func NewMetrics() *Metrics {
	return &Metrics{
		dailyPlayers:        make(map[string]map[string]struct{}),
		weeklyPlayers:       make(map[string]map[string]struct{}),
		monthlyPlayers:      make(map[string]map[string]struct{}),
		submissionsByDay:    make(map[string]int64),
		submissionsByLevel:  make(map[string]int64),
		degradedByDay:       make(map[string]int64),
		scoreSumByDay:       make(map[string]int64),
		bestScoreByDay:      make(map[string]int64),
		bestScoreEverByName: make(map[string]int64),
		evictionsByDay:      make(map[string]int64),
		realtimeCounters: struct {
			submissions int64
			degraded    int64
			evictions   int64
			lastReset   time.Time
		}{lastReset: time.Now()},
	}
}

func (m *Metrics) OnEvent(e core.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	day := e.Time.UTC().Format("2006-01-02")
	week := getWeekKey(e.Time)
	month := getMonthKey(e.Time)

	switch e.Type {
	case core.EventScoreSubmitted:
		m.trackPlayer(e.Entry.Name, day, week, month)

		m.submissionsByDay[day]++
		m.submissionsByLevel[e.Entry.Level]++
		m.scoreSumByDay[day] += e.Entry.Score
		if e.Entry.Score > m.bestScoreByDay[day] {
			m.bestScoreByDay[day] = e.Entry.Score
		}
		if e.Entry.Score > m.bestScoreEverByName[e.Entry.Name] {
			m.bestScoreEverByName[e.Entry.Name] = e.Entry.Score
		}
		if e.Degraded {
			m.degradedByDay[day]++
			m.realtimeCounters.degraded++
		}
		m.realtimeCounters.submissions++
	case core.EventEntriesEvicted:
		m.evictionsByDay[day] += e.Evicted
		m.realtimeCounters.evictions += e.Evicted
	}

	// Reset realtime counters if needed (every 24 hours)
	if time.Since(m.realtimeCounters.lastReset) > 24*time.Hour {
		m.realtimeCounters.submissions = 0
		m.realtimeCounters.degraded = 0
		m.realtimeCounters.evictions = 0
		m.realtimeCounters.lastReset = time.Now()
	}
}

func (m *Metrics) trackPlayer(name, day, week, month string) {
	if m.dailyPlayers[day] == nil {
		m.dailyPlayers[day] = make(map[string]struct{})
	}
	m.dailyPlayers[day][name] = struct{}{}

	if m.weeklyPlayers[week] == nil {
		m.weeklyPlayers[week] = make(map[string]struct{})
	}
	m.weeklyPlayers[week][name] = struct{}{}

	if m.monthlyPlayers[month] == nil {
		m.monthlyPlayers[month] = make(map[string]struct{})
	}
	m.monthlyPlayers[month][name] = struct{}{}
}

// GetDailyPlayers returns the count of distinct players for a specific day
func (m *Metrics) GetDailyPlayers(day string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.dailyPlayers[day])
}

// GetWeeklyPlayers returns the count of distinct players for a specific week
func (m *Metrics) GetWeeklyPlayers(week string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.weeklyPlayers[week])
}

// GetMonthlyPlayers returns the count of distinct players for a specific month
func (m *Metrics) GetMonthlyPlayers(month string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.monthlyPlayers[month])
}

// GetSubmissionsByDay returns the submission count for a specific day
func (m *Metrics) GetSubmissionsByDay(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.submissionsByDay[day]
}

// GetSubmissionsByLevel returns how many submissions landed on a fan level
func (m *Metrics) GetSubmissionsByLevel(level string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.submissionsByLevel[level]
}

// GetDegradedByDay returns how many submissions fell back to local storage
func (m *Metrics) GetDegradedByDay(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.degradedByDay[day]
}

// GetBestScoreByDay returns the highest score submitted on a specific day
func (m *Metrics) GetBestScoreByDay(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bestScoreByDay[day]
}

// GetBestScore returns a player's best score seen so far
func (m *Metrics) GetBestScore(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bestScoreEverByName[name]
}

// GetRealtimeStats returns counters for the last 24 hours
func (m *Metrics) GetRealtimeStats() (submissions, degraded, evictions int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.realtimeCounters.submissions,
		m.realtimeCounters.degraded,
		m.realtimeCounters.evictions
}

// GetLevelDistribution returns a copy of submissions per fan level
func (m *Metrics) GetLevelDistribution() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64, len(m.submissionsByLevel))
	for level, n := range m.submissionsByLevel {
		out[level] = n
	}
	return out
}

// Helper functions
func getWeekKey(t time.Time) string {
	tt := t.UTC()
	year, week := tt.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func getMonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
