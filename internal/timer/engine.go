// Package timer implements the focus/break countdown state machine. The
// engine owns no clock: the caller drives it with one Tick per second
// while it reports Running, which keeps completion cascades synchronous
// and the whole machine deterministic under test.
package timer

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Mode is the kind of interval currently counting down.
type Mode int

const (
	ModeFocus Mode = iota
	ModeShortBreak
	ModeLongBreak
)

func (m Mode) String() string {
	switch m {
	case ModeFocus:
		return "focus"
	case ModeShortBreak:
		return "short_break"
	case ModeLongBreak:
		return "long_break"
	default:
		return "unknown"
	}
}

// Status is orthogonal to Mode: a break interval can itself be idle,
// running, or paused.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Settings configure interval lengths and boundary behavior. All durations
// are whole seconds; the engine never subdivides a tick.
type Settings struct {
	FocusSeconds      int  `json:"focus_seconds" validate:"gt=0"`
	ShortBreakSeconds int  `json:"short_break_seconds" validate:"gt=0"`
	LongBreakSeconds  int  `json:"long_break_seconds" validate:"gt=0"`
	LongBreakInterval int  `json:"long_break_interval" validate:"gte=1"`
	AutoStartBreaks   bool `json:"auto_start_breaks"`
	AutoStartFocus    bool `json:"auto_start_focus"`
}

// DefaultSettings is the classic 25/5/15 pomodoro configuration with a
// long break every 4 sessions.
func DefaultSettings() Settings {
	return Settings{
		FocusSeconds:      25 * 60,
		ShortBreakSeconds: 5 * 60,
		LongBreakSeconds:  15 * 60,
		LongBreakInterval: 4,
	}
}

// EventKind tags engine notifications.
type EventKind int

const (
	// EventTick fires once per second while running.
	EventTick EventKind = iota
	// EventStateChanged fires on every status or mode transition.
	EventStateChanged
	// EventFocusCompleted fires when a focus interval reaches zero.
	EventFocusCompleted
	// EventBreakCompleted fires when a break interval reaches zero.
	EventBreakCompleted
)

// Event carries a snapshot of the engine alongside the notification.
// DurationSeconds and Long are set on completion events only.
type Event struct {
	Kind             EventKind
	Mode             Mode
	Status           Status
	RemainingSeconds int
	Sessions         int
	TaskID           string

	DurationSeconds int
	Long            bool
}

// State is the persisted form of the engine between application sessions.
type State struct {
	Mode             Mode   `json:"mode"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Running          bool   `json:"running"`
	Sessions         int    `json:"completed_focus_sessions"`
	CurrentTaskID    string `json:"current_task_id,omitempty"`
}

// Engine is the timer state machine. All operations run to completion
// synchronously; it is not safe for concurrent use.
type Engine struct {
	settings  Settings
	mode      Mode
	status    Status
	remaining int
	sessions  int
	taskID    string

	validate *validator.Validate
	subs     []func(Event)
}

// New creates an idle engine in focus mode. Settings are validated up
// front; non-positive durations are rejected.
func New(settings Settings) (*Engine, error) {
	e := &Engine{validate: validator.New()}
	if err := e.validate.Struct(settings); err != nil {
		return nil, fmt.Errorf("validate timer settings: %w", err)
	}
	e.settings = settings
	e.remaining = settings.FocusSeconds
	return e, nil
}

// Subscribe registers fn for every engine event.
func (e *Engine) Subscribe(fn func(Event)) {
	e.subs = append(e.subs, fn)
}

func (e *Engine) emit(ev Event) {
	ev.Mode = e.mode
	ev.Status = e.status
	ev.RemainingSeconds = e.remaining
	ev.Sessions = e.sessions
	ev.TaskID = e.taskID
	for _, fn := range e.subs {
		fn(ev)
	}
}

// Configure applies new settings. When idle, the remaining time resets to
// the new duration for the current mode; a running or paused countdown is
// never truncated retroactively.
func (e *Engine) Configure(settings Settings) error {
	if err := e.validate.Struct(settings); err != nil {
		return fmt.Errorf("validate timer settings: %w", err)
	}
	e.settings = settings
	if e.status == StatusIdle {
		e.remaining = e.durationFor(e.mode)
		e.emit(Event{Kind: EventStateChanged})
	}
	return nil
}

// Settings returns the active configuration.
func (e *Engine) Settings() Settings { return e.settings }

func (e *Engine) durationFor(m Mode) int {
	switch m {
	case ModeShortBreak:
		return e.settings.ShortBreakSeconds
	case ModeLongBreak:
		return e.settings.LongBreakSeconds
	default:
		return e.settings.FocusSeconds
	}
}

// Start begins or resumes the countdown. No-op when already running.
func (e *Engine) Start() {
	if e.status == StatusRunning {
		return
	}
	if e.remaining <= 0 {
		e.remaining = e.durationFor(e.mode)
	}
	e.status = StatusRunning
	e.emit(Event{Kind: EventStateChanged})
}

// Pause halts the countdown, retaining the remaining time. No-op unless
// running.
func (e *Engine) Pause() {
	if e.status != StatusRunning {
		return
	}
	e.status = StatusPaused
	e.emit(Event{Kind: EventStateChanged})
}

// Reset halts the countdown and restores the full duration for the
// current mode.
func (e *Engine) Reset() {
	e.status = StatusIdle
	e.remaining = e.durationFor(e.mode)
	e.emit(Event{Kind: EventStateChanged})
}

// Skip force-completes the current interval, as if the countdown had
// reached zero.
func (e *Engine) Skip() {
	e.complete()
}

// Tick advances the countdown by one second. The caller invokes it once
// per second while the engine is running; ticks in any other status are
// ignored.
func (e *Engine) Tick() {
	if e.status != StatusRunning {
		return
	}
	e.remaining--
	if e.remaining <= 0 {
		e.complete()
		return
	}
	e.emit(Event{Kind: EventTick})
}

func (e *Engine) complete() {
	finished := e.mode
	duration := e.durationFor(finished)
	e.remaining = 0

	if finished == ModeFocus {
		e.sessions++
		long := e.sessions%e.settings.LongBreakInterval == 0
		if long {
			e.mode = ModeLongBreak
		} else {
			e.mode = ModeShortBreak
		}
		e.remaining = e.durationFor(e.mode)
		e.status = StatusIdle
		e.emit(Event{Kind: EventFocusCompleted, DurationSeconds: duration, Long: long})
		if e.settings.AutoStartBreaks {
			e.Start()
			return
		}
	} else {
		long := finished == ModeLongBreak
		e.mode = ModeFocus
		e.remaining = e.settings.FocusSeconds
		e.status = StatusIdle
		e.emit(Event{Kind: EventBreakCompleted, DurationSeconds: duration, Long: long})
		if e.settings.AutoStartFocus {
			e.Start()
			return
		}
	}
	e.emit(Event{Kind: EventStateChanged})
}

// SetCurrentTask associates a task with upcoming focus sessions. Purely
// advisory: the engine never touches the task itself, it only carries the
// id on completion events.
func (e *Engine) SetCurrentTask(taskID string) {
	e.taskID = taskID
}

// CurrentTask returns the associated task id, if any.
func (e *Engine) CurrentTask() string { return e.taskID }

func (e *Engine) Mode() Mode { return e.mode }

func (e *Engine) Status() Status { return e.status }

// Remaining returns the seconds left in the current interval.
func (e *Engine) Remaining() int { return e.remaining }

// Sessions returns the count of completed focus sessions. It only grows;
// mode switches never reset it.
func (e *Engine) Sessions() int { return e.sessions }

// Snapshot captures the engine for persistence.
func (e *Engine) Snapshot() State {
	return State{
		Mode:             e.mode,
		RemainingSeconds: e.remaining,
		Running:          e.status == StatusRunning,
		Sessions:         e.sessions,
		CurrentTaskID:    e.taskID,
	}
}

// Restore rehydrates a persisted state. A state saved mid-countdown comes
// back paused rather than running, since the ticks it missed cannot be
// replayed.
func (e *Engine) Restore(st State) {
	e.mode = st.Mode
	e.sessions = st.Sessions
	e.taskID = st.CurrentTaskID
	if st.RemainingSeconds > 0 && st.RemainingSeconds < e.durationFor(st.Mode) {
		e.remaining = st.RemainingSeconds
		e.status = StatusPaused
	} else {
		e.remaining = e.durationFor(st.Mode)
		e.status = StatusIdle
	}
	e.emit(Event{Kind: EventStateChanged})
}
