package progress

import (
	"testing"
	"time"

	"github.com/doruk/focusdo/internal/storage"
)

var day1 = time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T) (*Tracker, *storage.Store) {
	t.Helper()
	st, err := storage.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	tr := New(st, nil)
	tr.now = func() time.Time { return day1 }
	tr.today = Day{Date: day1.Format(DateKey)}
	return tr, st
}

// ============================================================
// Recording
// ============================================================

func TestRecordOperations(t *testing.T) {
	tr, _ := newTestTracker(t)

	tr.RecordTaskPlanned()
	tr.RecordTaskPlanned()
	tr.RecordTaskCompleted()
	tr.RecordPomodoroPlanned(3)
	tr.RecordPomodoroCompleted(25)

	d := tr.Today()
	if d.PlannedTasks != 2 || d.CompletedTasks != 1 {
		t.Fatalf("bad task counts: %+v", d)
	}
	if d.PlannedPomodoros != 3 || d.CompletedPomodoros != 1 {
		t.Fatalf("bad pomodoro counts: %+v", d)
	}
	if d.TotalFocusMinutes != 25 {
		t.Fatalf("bad focus minutes: %+v", d)
	}
}

func TestSubscribeNotified(t *testing.T) {
	tr, _ := newTestTracker(t)

	calls := 0
	tr.Subscribe(func() { calls++ })

	tr.RecordTaskPlanned()
	tr.RecordPomodoroCompleted(25)

	if calls != 2 {
		t.Fatalf("expected 2 notifications, got %d", calls)
	}
}

// ============================================================
// Day rollover
// ============================================================

func TestRolloverArchivesStaleDay(t *testing.T) {
	tr, _ := newTestTracker(t)

	tr.RecordTaskPlanned()
	tr.RecordTaskCompleted()

	// Midnight passes; the next record op lands on a fresh aggregate.
	day2 := day1.AddDate(0, 0, 1)
	tr.now = func() time.Time { return day2 }
	tr.RecordTaskPlanned()

	d := tr.Today()
	if d.Date != day2.Format(DateKey) {
		t.Fatalf("aggregate not rolled to %s: %+v", day2.Format(DateKey), d)
	}
	if d.PlannedTasks != 1 || d.CompletedTasks != 0 {
		t.Fatalf("new day inherited counts: %+v", d)
	}

	archived, ok := tr.History(day1.Format(DateKey))
	if !ok {
		t.Fatal("stale day not archived")
	}
	if archived.PlannedTasks != 1 || archived.CompletedTasks != 1 {
		t.Fatalf("archived day mismatch: %+v", archived)
	}
}

func TestNoRolloverSameDay(t *testing.T) {
	tr, _ := newTestTracker(t)

	tr.RecordTaskPlanned()
	tr.RecordTaskPlanned()

	if _, ok := tr.History(day1.Format(DateKey)); ok {
		t.Fatal("current day must not appear in history")
	}
	if tr.Today().PlannedTasks != 2 {
		t.Fatalf("same-day records split: %+v", tr.Today())
	}
}

// ============================================================
// Percentage
// ============================================================

func TestPercentageBothMeasures(t *testing.T) {
	tr, _ := newTestTracker(t)

	tr.RecordTaskPlanned()
	tr.RecordTaskPlanned() // 0/2 tasks
	tr.RecordPomodoroPlanned(2)
	tr.RecordPomodoroCompleted(25)
	tr.RecordPomodoroCompleted(25) // 2/2 pomodoros

	// (0 + 1) / 2 = 50%
	if got := tr.Percentage(); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
}

func TestPercentageSingleMeasure(t *testing.T) {
	tr, _ := newTestTracker(t)

	// Only pomodoros planned: tasks drop out of the weighting
	tr.RecordPomodoroPlanned(4)
	tr.RecordPomodoroCompleted(25)

	if got := tr.Percentage(); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
}

func TestPercentageNothingPlanned(t *testing.T) {
	tr, _ := newTestTracker(t)

	// Completions without plans still yield 0
	tr.RecordTaskCompleted()
	tr.RecordPomodoroCompleted(25)

	if got := tr.Percentage(); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestPercentageCappedAt100(t *testing.T) {
	tr, _ := newTestTracker(t)

	tr.RecordTaskPlanned()
	tr.RecordTaskCompleted()
	tr.RecordTaskCompleted() // 2/1 tasks

	if got := tr.Percentage(); got != 100 {
		t.Fatalf("expected cap at 100, got %d", got)
	}
}

// ============================================================
// History and ranges
// ============================================================

func TestRangeIncludesLiveTodayAndGaps(t *testing.T) {
	tr, _ := newTestTracker(t)

	// Archive day1 by rolling two days forward, leaving a gap between.
	tr.RecordTaskPlanned()
	day3 := day1.AddDate(0, 0, 2)
	tr.now = func() time.Time { return day3 }
	tr.RecordPomodoroCompleted(25)

	entries := tr.Range(day1, day3)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Day == nil || entries[0].Day.PlannedTasks != 1 {
		t.Fatalf("archived day missing: %+v", entries[0])
	}
	if entries[1].Day != nil {
		t.Fatalf("gap day should be nil: %+v", entries[1])
	}
	if entries[2].Day == nil || entries[2].Day.CompletedPomodoros != 1 {
		t.Fatalf("live today missing from range: %+v", entries[2])
	}
}

func TestHistoricalPercentage(t *testing.T) {
	tr, _ := newTestTracker(t)

	tr.RecordTaskPlanned()
	tr.RecordTaskCompleted()
	day2 := day1.AddDate(0, 0, 1)
	tr.now = func() time.Time { return day2 }
	tr.RecordTaskPlanned() // forces the rollover

	got, ok := tr.HistoricalPercentage(day1.Format(DateKey))
	if !ok || got != 100 {
		t.Fatalf("expected 100,true got %d,%v", got, ok)
	}

	if _, ok := tr.HistoricalPercentage("1999-01-01"); ok {
		t.Fatal("expected false for unrecorded date")
	}
}

// ============================================================
// Persistence
// ============================================================

func TestTrackerRehydrates(t *testing.T) {
	tr, st := newTestTracker(t)

	tr.RecordTaskPlanned()
	tr.RecordPomodoroCompleted(25)

	// Same day restart: aggregate continues
	tr2 := New(st, nil)
	tr2.now = tr.now
	d := tr2.Today()
	if d.PlannedTasks != 1 || d.CompletedPomodoros != 1 {
		t.Fatalf("aggregate lost across restart: %+v", d)
	}
}

func TestTrackerRehydratesAfterMidnight(t *testing.T) {
	tr, st := newTestTracker(t)
	tr.RecordTaskPlanned()

	// Restart on the next day: stale aggregate archives on first record
	day2 := day1.AddDate(0, 0, 1)
	tr2 := New(st, nil)
	tr2.now = func() time.Time { return day2 }
	tr2.RecordTaskCompleted()

	if tr2.Today().Date != day2.Format(DateKey) {
		t.Fatalf("aggregate not rolled after restart: %+v", tr2.Today())
	}
	if _, ok := tr2.History(day1.Format(DateKey)); !ok {
		t.Fatal("previous day lost on restart rollover")
	}
}
