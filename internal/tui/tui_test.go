package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/doruk/focusdo/internal/storage"
	"github.com/doruk/focusdo/internal/task"
	"github.com/doruk/focusdo/internal/timer"
)

func newTestApp(t *testing.T) (App, *storage.Store) {
	t.Helper()
	st, err := storage.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	a, err := NewApp(st, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, st
}

func shortTimer(t *testing.T, a App) {
	t.Helper()
	if err := a.s.engine.Configure(timer.Settings{
		FocusSeconds:      2,
		ShortBreakSeconds: 1,
		LongBreakSeconds:  1,
		LongBreakInterval: 4,
	}); err != nil {
		t.Fatal(err)
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// ============================================================
// Session wiring
// ============================================================

func TestFocusCompletionAttributesToTaskAndStats(t *testing.T) {
	a, st := newTestApp(t)
	shortTimer(t, a)

	created, err := a.s.tasks.CreateTask(task.CreateTaskInput{Name: "deep work", TotalPomodoros: 2})
	if err != nil {
		t.Fatal(err)
	}
	a.s.engine.SetCurrentTask(created.ID)

	a.s.engine.Start()
	a.s.engine.Tick()
	a.s.engine.Tick() // completes the 2-second focus interval

	got, _ := a.s.tasks.Task(created.ID)
	if got.Pomodoros.Completed != 1 {
		t.Fatalf("focus completion not attributed: %+v", got.Pomodoros)
	}

	today := a.s.tracker.Today()
	if today.CompletedPomodoros != 1 {
		t.Fatalf("focus completion not recorded in stats: %+v", today)
	}

	// Completion also persists the engine state
	var state timer.State
	if !st.LoadJSON(storage.KeyTimerState, &state) {
		t.Fatal("timer state not persisted on completion")
	}
	if state.Sessions != 1 {
		t.Fatalf("persisted state stale: %+v", state)
	}
}

func TestFocusCompletionWithoutTask(t *testing.T) {
	a, _ := newTestApp(t)
	shortTimer(t, a)

	a.s.engine.Start()
	a.s.engine.Tick()
	a.s.engine.Tick()

	// No task attached: stats still move, no task errors surface
	if a.s.tracker.Today().CompletedPomodoros != 1 {
		t.Fatal("unattached focus session not recorded")
	}
}

func TestNewAppRestoresTimerState(t *testing.T) {
	st, err := storage.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	st.SaveJSON(storage.KeyTimerState, timer.State{
		Mode:             timer.ModeFocus,
		RemainingSeconds: 300,
		Running:          true,
		Sessions:         2,
	})

	a, err := NewApp(st, nil)
	if err != nil {
		t.Fatal(err)
	}

	if a.s.engine.Status() != timer.StatusPaused {
		t.Fatalf("mid-countdown state must restore paused, got %v", a.s.engine.Status())
	}
	if a.s.engine.Remaining() != 300 || a.s.engine.Sessions() != 2 {
		t.Fatalf("restored state mismatch: %d remaining, %d sessions",
			a.s.engine.Remaining(), a.s.engine.Sessions())
	}
}

func TestNewAppFallsBackOnBadTimerSettings(t *testing.T) {
	st, err := storage.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	st.Put(storage.KeyTimerSettings, []byte(`{"focus_seconds":-5}`))

	a, err := NewApp(st, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.s.engine.Settings().FocusSeconds != 25*60 {
		t.Fatalf("expected default settings, got %+v", a.s.engine.Settings())
	}
}

// ============================================================
// Tasks view
// ============================================================

func TestTasksModelFilterCycling(t *testing.T) {
	a, _ := newTestApp(t)

	due := time.Now()
	a.s.tasks.CreateTask(task.CreateTaskInput{Name: "due today", DueDate: &due})
	a.s.tasks.CreateTask(task.CreateTaskInput{Name: "undated"})

	m := newTasksModel(a.s)
	if len(m.tasks) != 2 {
		t.Fatalf("expected 2 tasks in all view, got %d", len(m.tasks))
	}

	m, _ = m.update(keyRune('f')) // -> Today
	if m.filter != filterToday {
		t.Fatalf("expected today filter, got %v", m.filter)
	}
	if len(m.tasks) != 1 || m.tasks[0].Name != "due today" {
		t.Fatalf("today filter wrong: %+v", m.tasks)
	}
}

func TestTasksModelToggleRecordsCompletion(t *testing.T) {
	a, _ := newTestApp(t)
	created, _ := a.s.tasks.CreateTask(task.CreateTaskInput{Name: "toggle me"})

	m := newTasksModel(a.s)
	m, _ = m.update(keyRune('c'))

	got, _ := a.s.tasks.Task(created.ID)
	if !got.Completed {
		t.Fatal("toggle key did not complete the task")
	}
	if a.s.tracker.Today().CompletedTasks != 1 {
		t.Fatal("completion not recorded in stats")
	}

	// Reopening must not subtract
	m, _ = m.update(keyRune('c'))
	if a.s.tracker.Today().CompletedTasks != 1 {
		t.Fatal("reopening changed the completed count")
	}
	_ = m
}

func TestTasksModelMoveDown(t *testing.T) {
	a, _ := newTestApp(t)
	first, _ := a.s.tasks.CreateTask(task.CreateTaskInput{Name: "first"})
	a.s.tasks.CreateTask(task.CreateTaskInput{Name: "second"})

	m := newTasksModel(a.s)
	m.cursor = 0
	m, _ = m.update(keyRune('J'))

	tasks := a.s.tasks.Tasks()
	if tasks[1].ID != first.ID {
		t.Fatalf("task not moved down: %+v", tasks)
	}
	// Cursor follows the moved task
	if m.cursor != 1 {
		t.Fatalf("cursor left behind: %d", m.cursor)
	}
}

func TestTasksModelDelete(t *testing.T) {
	a, _ := newTestApp(t)
	a.s.tasks.CreateTask(task.CreateTaskInput{Name: "doomed"})

	m := newTasksModel(a.s)
	m, _ = m.update(keyRune('d'))

	if len(a.s.tasks.Tasks()) != 0 {
		t.Fatal("delete key did not remove the task")
	}
	if len(m.tasks) != 0 {
		t.Fatal("view not refreshed after delete")
	}
}

func TestTasksModelSaveNewTask(t *testing.T) {
	a, _ := newTestApp(t)

	m := newTasksModel(a.s)
	*m.formName = "from form"
	*m.formPriority = "high"
	*m.formPomodoros = "3"
	*m.formTags = "deep, work"

	if cmd := m.saveTask(); cmd == nil {
		t.Fatal("expected a status command")
	}

	tasks := a.s.tasks.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Priority != task.PriorityHigh || got.Pomodoros.Total != 3 {
		t.Fatalf("form fields not applied: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "deep" || got.Tags[1] != "work" {
		t.Fatalf("tags not parsed: %v", got.Tags)
	}

	// Creation feeds the daily plan
	today := a.s.tracker.Today()
	if today.PlannedTasks != 1 || today.PlannedPomodoros != 3 {
		t.Fatalf("plan not recorded: %+v", today)
	}
}

func TestParsePriority(t *testing.T) {
	cases := map[string]task.Priority{
		"lowest":  task.PriorityLowest,
		"low":     task.PriorityLow,
		"medium":  task.PriorityMedium,
		"high":    task.PriorityHigh,
		"highest": task.PriorityHighest,
		"bogus":   task.PriorityMedium,
	}
	for in, want := range cases {
		if got := parsePriority(in); got != want {
			t.Fatalf("parsePriority(%q) = %v, want %v", in, got, want)
		}
	}
}

// ============================================================
// Timer view
// ============================================================

func TestTimerModelKeysDriveEngine(t *testing.T) {
	a, _ := newTestApp(t)
	shortTimer(t, a)

	m := newTimerModel(a.s)

	m, _ = m.update(keyRune('s'))
	if a.s.engine.Status() != timer.StatusRunning {
		t.Fatalf("start key ignored: %v", a.s.engine.Status())
	}

	m, _ = m.update(keyRune(' '))
	if a.s.engine.Status() != timer.StatusPaused {
		t.Fatalf("pause key ignored: %v", a.s.engine.Status())
	}

	m, _ = m.update(keyRune(' ')) // space resumes too
	if a.s.engine.Status() != timer.StatusRunning {
		t.Fatalf("resume key ignored: %v", a.s.engine.Status())
	}

	m, _ = m.update(keyRune('r'))
	if a.s.engine.Status() != timer.StatusIdle || a.s.engine.Remaining() != 2 {
		t.Fatalf("reset key ignored: %v/%d", a.s.engine.Status(), a.s.engine.Remaining())
	}

	m, _ = m.update(keyRune('x'))
	if a.s.engine.Sessions() != 1 {
		t.Fatalf("skip key ignored: %d sessions", a.s.engine.Sessions())
	}
	_ = m
}

func TestTimerModelTickCompletesFocus(t *testing.T) {
	a, _ := newTestApp(t)
	shortTimer(t, a)

	m := newTimerModel(a.s)
	m, _ = m.update(keyRune('s'))

	m, _ = m.update(tickMsg(time.Now()))
	m, cmd := m.update(tickMsg(time.Now()))
	if a.s.engine.Mode() != timer.ModeShortBreak {
		t.Fatalf("focus did not complete: %v", a.s.engine.Mode())
	}
	if cmd == nil {
		t.Fatal("expected a completion status message")
	}
	_ = m
}

func TestTimerModelIgnoresTicksWhenIdle(t *testing.T) {
	a, _ := newTestApp(t)
	shortTimer(t, a)

	m := newTimerModel(a.s)
	m, _ = m.update(tickMsg(time.Now()))
	if a.s.engine.Remaining() != 2 {
		t.Fatalf("idle engine ticked: %d", a.s.engine.Remaining())
	}
	_ = m
}

// ============================================================
// Settings view
// ============================================================

func TestSettingsSaveAppliesAndPersists(t *testing.T) {
	a, st := newTestApp(t)

	m := newSettingsModel(a.s)
	*m.formFocus = "30"
	*m.formShort = "5"
	*m.formLong = "20"
	*m.formInterval = "3"
	*m.formAutoBreaks = true
	*m.formWeekStart = "1"

	if cmd := m.save(); cmd == nil {
		t.Fatal("expected a status command")
	}

	s := a.s.engine.Settings()
	if s.FocusSeconds != 30*60 || s.LongBreakInterval != 3 || !s.AutoStartBreaks {
		t.Fatalf("settings not applied: %+v", s)
	}
	if a.s.settings.WeekStart != time.Monday {
		t.Fatalf("week start not applied: %v", a.s.settings.WeekStart)
	}

	// Both domains persisted
	var stored timer.Settings
	if !st.LoadJSON(storage.KeyTimerSettings, &stored) || stored.FocusSeconds != 30*60 {
		t.Fatalf("timer settings not persisted: %+v", stored)
	}
}

// ============================================================
// App shell
// ============================================================

func TestAppTabSwitching(t *testing.T) {
	a, _ := newTestApp(t)

	model, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	a = model.(App)

	model, _ = a.Update(keyRune('3'))
	a = model.(App)
	if a.activeView != viewTimer {
		t.Fatalf("expected timer view, got %v", a.activeView)
	}

	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyTab})
	a = model.(App)
	if a.activeView != viewProgress {
		t.Fatalf("tab should advance to progress, got %v", a.activeView)
	}
}

func TestAppQuitPersistsTimerState(t *testing.T) {
	a, st := newTestApp(t)
	shortTimer(t, a)
	a.s.engine.Start()
	a.s.engine.Tick()

	model, cmd := a.Update(keyRune('q'))
	_ = model
	if cmd == nil {
		t.Fatal("expected quit command")
	}

	var state timer.State
	if !st.LoadJSON(storage.KeyTimerState, &state) {
		t.Fatal("timer state not saved on quit")
	}
	if state.RemainingSeconds != 1 || !state.Running {
		t.Fatalf("stale state saved: %+v", state)
	}
}

func TestAppViewRendersWithoutSize(t *testing.T) {
	a, _ := newTestApp(t)
	if a.View() == "" {
		t.Fatal("zero-size view must still render a placeholder")
	}
}
