package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// AggregationPeriod represents different time periods for aggregation
type AggregationPeriod string

const (
	PeriodDaily   AggregationPeriod = "daily"
	PeriodWeekly  AggregationPeriod = "weekly"
	PeriodMonthly AggregationPeriod = "monthly"
)

// AggregatedData represents rolled-up submission activity for one period
type AggregatedData struct {
	Period AggregationPeriod `json:"period"`
	Key    string            `json:"key"` // e.g., "2024-01-01" for daily, "2024-W01" for weekly

	// Player engagement
	ActivePlayers int `json:"active_players"`

	// Submissions
	Submissions         int64 `json:"submissions"`
	DegradedSubmissions int64 `json:"degraded_submissions"`
	ScoreSum            int64 `json:"score_sum"`
	BestScore           int64 `json:"best_score"`

	// Retention
	Evictions int64 `json:"evictions"`

	// Metadata
	CreatedAt time.Time `json:"created_at"`
}

// AggregationEngine periodically rolls up Metrics counters into per-period
// snapshots and hands them to the export manager.
type AggregationEngine struct {
	mu sync.RWMutex

	metrics *Metrics

	dailyAggregations   map[string]*AggregatedData
	weeklyAggregations  map[string]*AggregatedData
	monthlyAggregations map[string]*AggregatedData

	aggregationInterval time.Duration
}

func NewAggregationEngine(metrics *Metrics, aggregationInterval time.Duration) *AggregationEngine {
	return &AggregationEngine{
		metrics:             metrics,
		dailyAggregations:   make(map[string]*AggregatedData),
		weeklyAggregations:  make(map[string]*AggregatedData),
		monthlyAggregations: make(map[string]*AggregatedData),
		aggregationInterval: aggregationInterval,
	}
}

// Start runs periodic aggregation until ctx is cancelled.
func (ae *AggregationEngine) Start(ctx context.Context) {
	ticker := time.NewTicker(ae.aggregationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			ae.AggregateAll(now)
		}
	}
}

// AggregateAll refreshes the daily, weekly and monthly snapshots for now.
func (ae *AggregationEngine) AggregateAll(now time.Time) {
	ae.aggregateDaily(now)
	ae.aggregateWeekly(now)
	ae.aggregateMonthly(now)
}

func (ae *AggregationEngine) aggregateDaily(now time.Time) {
	day := now.UTC().Format("2006-01-02")
	data := ae.collectDays(PeriodDaily, day, []string{day})
	data.ActivePlayers = ae.metrics.GetDailyPlayers(day)

	ae.mu.Lock()
	ae.dailyAggregations[day] = data
	ae.mu.Unlock()
}

func (ae *AggregationEngine) aggregateWeekly(now time.Time) {
	week := getWeekKey(now)
	data := ae.collectDays(PeriodWeekly, week, weekDays(now))
	data.ActivePlayers = ae.metrics.GetWeeklyPlayers(week)

	ae.mu.Lock()
	ae.weeklyAggregations[week] = data
	ae.mu.Unlock()
}

func (ae *AggregationEngine) aggregateMonthly(now time.Time) {
	month := getMonthKey(now)
	data := ae.collectDays(PeriodMonthly, month, monthDays(now))
	data.ActivePlayers = ae.metrics.GetMonthlyPlayers(month)

	ae.mu.Lock()
	ae.monthlyAggregations[month] = data
	ae.mu.Unlock()
}

// collectDays sums the per-day counters for the given days.
func (ae *AggregationEngine) collectDays(period AggregationPeriod, key string, days []string) *AggregatedData {
	data := &AggregatedData{
		Period:    period,
		Key:       key,
		CreatedAt: time.Now().UTC(),
	}
	for _, day := range days {
		data.Submissions += ae.metrics.GetSubmissionsByDay(day)
		data.DegradedSubmissions += ae.metrics.GetDegradedByDay(day)
		data.Evictions += ae.metrics.evictionsForDay(day)
		data.ScoreSum += ae.metrics.scoreSumForDay(day)
		if best := ae.metrics.GetBestScoreByDay(day); best > data.BestScore {
			data.BestScore = best
		}
	}
	return data
}

// GetAggregatedData returns the snapshot for a period key, if present.
func (ae *AggregationEngine) GetAggregatedData(period AggregationPeriod, key string) (*AggregatedData, bool) {
	ae.mu.RLock()
	defer ae.mu.RUnlock()

	var data *AggregatedData
	var ok bool
	switch period {
	case PeriodDaily:
		data, ok = ae.dailyAggregations[key]
	case PeriodWeekly:
		data, ok = ae.weeklyAggregations[key]
	case PeriodMonthly:
		data, ok = ae.monthlyAggregations[key]
	}
	if !ok {
		return nil, false
	}
	copied := *data
	return &copied, true
}

func (m *Metrics) evictionsForDay(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.evictionsByDay[day]
}

func (m *Metrics) scoreSumForDay(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scoreSumByDay[day]
}

// weekDays lists the seven day keys of now's ISO week.
func weekDays(now time.Time) []string {
	t := now.UTC()
	// back up to Monday
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	days := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, monday.AddDate(0, 0, i).Format("2006-01-02"))
	}
	return days
}

// monthDays lists every day key of now's month.
func monthDays(now time.Time) []string {
	t := now.UTC()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	var days []string
	for d := first; d.Month() == t.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format("2006-01-02"))
	}
	return days
}

// String renders a compact summary for logs.
func (d *AggregatedData) String() string {
	return fmt.Sprintf("%s %s: players=%d submissions=%d degraded=%d best=%d evicted=%d",
		d.Period, d.Key, d.ActivePlayers, d.Submissions, d.DegradedSubmissions, d.BestScore, d.Evictions)
}
