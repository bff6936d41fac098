package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"quizboard/core"
	"quizboard/engine"
)

func submission(name string, score int64, at time.Time, degraded bool) core.Event {
	return core.Event{
		Type: core.EventScoreSubmitted,
		Time: at,
		Entry: core.Entry{
			Name:  name,
			Score: score,
			Level: core.LevelForScore(score),
			Date:  at,
		},
		Degraded: degraded,
	}
}

func TestMetricsCountsSubmissions(t *testing.T) {
	m := NewMetrics()
	at := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

	m.OnEvent(submission("Ana", 95, at, false))
	m.OnEvent(submission("Bo", 59, at, true))
	m.OnEvent(submission("Ana", 80, at, false))

	day := "2024-01-03"
	if got := m.GetSubmissionsByDay(day); got != 3 {
		t.Fatalf("submissions = %d, want 3", got)
	}
	if got := m.GetDailyPlayers(day); got != 2 {
		t.Fatalf("players = %d, want 2", got)
	}
	if got := m.GetDegradedByDay(day); got != 1 {
		t.Fatalf("degraded = %d, want 1", got)
	}
	if got := m.GetBestScoreByDay(day); got != 95 {
		t.Fatalf("best score = %d, want 95", got)
	}
	if got := m.GetBestScore("Ana"); got != 95 {
		t.Fatalf("best score for Ana = %d, want 95", got)
	}
	if got := m.GetSubmissionsByLevel(core.LevelGold); got != 1 {
		t.Fatalf("gold submissions = %d, want 1", got)
	}

	m.OnEvent(core.Event{Type: core.EventEntriesEvicted, Time: at, Evicted: 2})
	subs, degraded, evicted := m.GetRealtimeStats()
	if subs != 3 || degraded != 1 || evicted != 2 {
		t.Fatalf("realtime stats = %d/%d/%d", subs, degraded, evicted)
	}
}

func TestAggregationEngineWeeklyMonthly(t *testing.T) {
	m := NewMetrics()

	// Seed events across days
	base := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC) // Wednesday
	m.OnEvent(submission("Ana", 95, base, false))
	m.OnEvent(submission("Bo", 70, base.AddDate(0, 0, 1), true)) // Thu
	m.OnEvent(submission("Ana", 60, base.AddDate(0, 0, 2), false)) // Fri

	ae := NewAggregationEngine(m, time.Hour)
	ae.AggregateAll(base)

	year, week := base.ISOWeek()
	weekKey := fmt.Sprintf("%d-W%02d", year, week)
	weekly, ok := ae.GetAggregatedData(PeriodWeekly, weekKey)
	if !ok {
		t.Fatalf("missing weekly data")
	}
	if weekly.Submissions != 3 || weekly.ActivePlayers != 2 || weekly.DegradedSubmissions != 1 {
		t.Fatalf("unexpected weekly agg: %+v", weekly)
	}
	if weekly.BestScore != 95 || weekly.ScoreSum != 225 {
		t.Fatalf("unexpected weekly scores: %+v", weekly)
	}

	monthKey := base.Format("2006-01")
	monthly, ok := ae.GetAggregatedData(PeriodMonthly, monthKey)
	if !ok {
		t.Fatalf("missing monthly data")
	}
	if monthly.Submissions != 3 || monthly.ActivePlayers != 2 {
		t.Fatalf("unexpected monthly agg: %+v", monthly)
	}

	daily, ok := ae.GetAggregatedData(PeriodDaily, "2024-01-03")
	if !ok {
		t.Fatalf("missing daily data")
	}
	if daily.Submissions != 1 || daily.BestScore != 95 {
		t.Fatalf("unexpected daily agg: %+v", daily)
	}
}

func TestServiceBindAndSnapshot(t *testing.T) {
	// a sync bus delivers before Publish returns, keeping the test deterministic
	bus := engine.NewEventBus(engine.DispatchSync)
	defer bus.Close()

	svc := NewService()
	svc.Bind(bus)
	defer svc.Close()

	now := time.Now().UTC()
	bus.Publish(context.Background(), submission("Ana", 95, now, false))
	bus.Publish(context.Background(), submission("Bo", 80, now, true))

	snap, ok := svc.Snapshot(PeriodDaily, now)
	if !ok {
		t.Fatalf("missing daily snapshot")
	}
	if snap.Submissions != 2 || snap.DegradedSubmissions != 1 || snap.ActivePlayers != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestBridgeHookFansOut(t *testing.T) {
	a := NewDailyPlayers()
	b := NewMetrics()
	bridge := NewBridge(a, b)

	at := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	bridge.OnEvent(submission("Ana", 95, at, false))

	if a.Count("2024-02-01") != 1 {
		t.Fatalf("daily players hook missed the event")
	}
	if b.GetSubmissionsByDay("2024-02-01") != 1 {
		t.Fatalf("metrics hook missed the event")
	}
}
