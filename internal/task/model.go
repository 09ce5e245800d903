package task

import "time"

// Priority levels, lowest to highest. New tasks default to PriorityMedium.
type Priority int

const (
	PriorityLowest Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityHighest
)

func (p Priority) String() string {
	switch p {
	case PriorityLowest:
		return "lowest"
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityHighest:
		return "highest"
	default:
		return "unknown"
	}
}

// Pomodoros tracks planned focus sessions for a task and how many have
// been completed. Completed may exceed Total; statistics treat that as
// fully estimated.
type Pomodoros struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Subtask is owned by its parent task and has no independent lifecycle.
type Subtask struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Task is the unit of work. Insertion order of Subtasks is preserved
// across mutation; task order within a project is maintained by Reorder.
type Task struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Completed bool       `json:"completed"`
	Priority  Priority   `json:"priority"`
	ProjectID string     `json:"project_id,omitempty"` // empty = inbox
	DueDate   *time.Time `json:"due_date,omitempty"`
	Pomodoros Pomodoros  `json:"pomodoros"`
	Notes     string     `json:"notes,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	Subtasks  []Subtask  `json:"subtasks,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Project groups tasks. Tasks hold a weak reference: deleting a project
// clears ProjectID on its tasks instead of deleting them.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Palette assigned round-robin when a project is created without a color.
var projectColors = []string{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}

// MinutesPerPomodoro converts planned or completed focus sessions into
// minutes for statistics.
const MinutesPerPomodoro = 25

func (t *Task) clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.Tags = append([]string(nil), t.Tags...)
	c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	return &c
}

// EstimatedMinutes is the planned focus time for the task.
func (t *Task) EstimatedMinutes() int {
	return t.Pomodoros.Total * MinutesPerPomodoro
}

// FocusedMinutes is the focus time already spent on the task.
func (t *Task) FocusedMinutes() int {
	return t.Pomodoros.Completed * MinutesPerPomodoro
}

// DueOn reports whether the task is due on the calendar day containing day.
func (t *Task) DueOn(day time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	y1, m1, d1 := t.DueDate.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// HasTag reports whether the task carries the given tag.
func (t *Task) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}
