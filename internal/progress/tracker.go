// Package progress derives daily productivity statistics from task and
// timer events. It keeps one aggregate for the current calendar day and an
// append-only history of past days.
package progress

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/doruk/focusdo/internal/storage"
)

// DateKey is the calendar-day key format used throughout the history.
const DateKey = "2006-01-02"

// Day is one calendar day's aggregate.
type Day struct {
	Date               string `json:"date"`
	PlannedTasks       int    `json:"planned_tasks"`
	CompletedTasks     int    `json:"completed_tasks"`
	PlannedPomodoros   int    `json:"planned_pomodoros"`
	CompletedPomodoros int    `json:"completed_pomodoros"`
	TotalFocusMinutes  int    `json:"total_focus_minutes"`
}

// RangeEntry is one day of a historical range query. Day is nil for dates
// never archived.
type RangeEntry struct {
	Date string
	Day  *Day
}

// Tracker maintains the current day's aggregate and the history of frozen
// past days. Rollover happens lazily: the first record operation on a new
// calendar day archives the stale aggregate before counting anything.
type Tracker struct {
	st  *storage.Store
	log *zap.Logger
	now func() time.Time

	today   Day
	history map[string]Day
	subs    []func()
}

// New rehydrates the tracker from st, starting a zeroed aggregate for
// today when nothing (or something unreadable) was stored.
func New(st *storage.Store, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{
		st:      st,
		log:     log,
		now:     time.Now,
		history: make(map[string]Day),
	}
	st.LoadJSON(storage.KeyHistory, &t.history)
	if !st.LoadJSON(storage.KeyDailyStats, &t.today) {
		t.today = Day{Date: t.now().Format(DateKey)}
	}
	return t
}

// Subscribe registers fn to be called after every aggregate change.
func (t *Tracker) Subscribe(fn func()) {
	t.subs = append(t.subs, fn)
}

func (t *Tracker) notify() {
	for _, fn := range t.subs {
		fn()
	}
}

func (t *Tracker) persist() {
	if err := t.st.SaveJSON(storage.KeyDailyStats, t.today); err != nil {
		t.log.Warn("persist daily stats", zap.Error(err))
	}
	if err := t.st.SaveJSON(storage.KeyHistory, t.history); err != nil {
		t.log.Warn("persist history", zap.Error(err))
	}
}

// rollover archives the aggregate when its date is no longer today. Called
// before every record operation, never from a background clock.
func (t *Tracker) rollover() {
	today := t.now().Format(DateKey)
	if t.today.Date == today {
		return
	}
	if t.today.Date != "" {
		t.history[t.today.Date] = t.today
	}
	t.today = Day{Date: today}
}

// RecordTaskPlanned counts a task planned for today.
func (t *Tracker) RecordTaskPlanned() {
	t.rollover()
	t.today.PlannedTasks++
	t.persist()
	t.notify()
}

// RecordTaskCompleted counts a task completed today.
func (t *Tracker) RecordTaskCompleted() {
	t.rollover()
	t.today.CompletedTasks++
	t.persist()
	t.notify()
}

// RecordPomodoroPlanned counts n focus sessions planned for today.
func (t *Tracker) RecordPomodoroPlanned(n int) {
	t.rollover()
	t.today.PlannedPomodoros += n
	t.persist()
	t.notify()
}

// RecordPomodoroCompleted counts one finished focus session of the given
// length.
func (t *Tracker) RecordPomodoroCompleted(minutes int) {
	t.rollover()
	t.today.CompletedPomodoros++
	t.today.TotalFocusMinutes += minutes
	t.persist()
	t.notify()
}

// Today returns the current day's aggregate.
func (t *Tracker) Today() Day {
	return t.today
}

// Percentage is the day's progress: a 50/50 weighted average of the task
// and pomodoro completion ratios. A measure with nothing planned drops out
// of the weighting; when neither has anything planned the result is 0.
// Rounded to the nearest integer and capped at 100.
func (t *Tracker) Percentage() int {
	return percentage(t.today)
}

func percentage(d Day) int {
	taskPlanned := d.PlannedTasks > 0
	pomPlanned := d.PlannedPomodoros > 0

	var pct float64
	switch {
	case taskPlanned && pomPlanned:
		taskRatio := float64(d.CompletedTasks) / float64(d.PlannedTasks)
		pomRatio := float64(d.CompletedPomodoros) / float64(d.PlannedPomodoros)
		pct = (taskRatio + pomRatio) / 2 * 100
	case taskPlanned:
		pct = float64(d.CompletedTasks) / float64(d.PlannedTasks) * 100
	case pomPlanned:
		pct = float64(d.CompletedPomodoros) / float64(d.PlannedPomodoros) * 100
	default:
		return 0
	}

	p := int(math.Round(pct))
	if p > 100 {
		p = 100
	}
	return p
}

// History returns the archived aggregate for the given date key, and
// whether that day was ever archived.
func (t *Tracker) History(date string) (Day, bool) {
	d, ok := t.history[date]
	return d, ok
}

// Range returns one entry per day from start to end inclusive. Days absent
// from history carry a nil Day. The current day's live aggregate is
// included when it falls inside the range.
func (t *Tracker) Range(start, end time.Time) []RangeEntry {
	var out []RangeEntry
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(DateKey)
		entry := RangeEntry{Date: key}
		if d, ok := t.history[key]; ok {
			dd := d
			entry.Day = &dd
		} else if t.today.Date == key {
			dd := t.today
			entry.Day = &dd
		}
		out = append(out, entry)
	}
	return out
}

// HistoricalPercentage computes the progress percentage for an archived
// day, reporting false when the date was never recorded.
func (t *Tracker) HistoricalPercentage(date string) (int, bool) {
	d, ok := t.History(date)
	if !ok {
		return 0, false
	}
	return percentage(d), true
}
