package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doruk/focusdo/internal/storage"
)

// ErrNotFound is returned when an id is absent from its collection.
var ErrNotFound = errors.New("task: not found")

// Event identifies which collection changed.
type Event int

const (
	TasksChanged Event = iota
	ProjectsChanged
)

// CreateTaskInput carries the fields for a new task. Zero values get
// defaults: medium priority, inbox project, one planned pomodoro.
type CreateTaskInput struct {
	Name           string `validate:"required"`
	Priority       *Priority
	ProjectID      string
	DueDate        *time.Time
	TotalPomodoros int
	Notes          string
	Tags           []string
}

// TaskPatch updates a subset of task fields. Nil pointers leave the field
// untouched; ClearDueDate removes the due date.
type TaskPatch struct {
	Name               *string
	Priority           *Priority
	ProjectID          *string
	DueDate            *time.Time
	ClearDueDate       bool
	Notes              *string
	Tags               *[]string
	PomodorosTotal     *int
	PomodorosCompleted *int
}

// SubtaskPatch updates a subset of subtask fields.
type SubtaskPatch struct {
	Name      *string
	Completed *bool
}

// Store owns the task and project collections. It is the single source of
// truth for tasks; every mutation persists best-effort and notifies
// subscribers.
type Store struct {
	st       *storage.Store
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time

	tasks     []*Task
	projects  []*Project
	nextColor int
	subs      []func(Event)
}

// NewStore rehydrates the task and project collections from st, falling
// back to empty collections when a domain is absent or corrupt.
func NewStore(st *storage.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		st:       st,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
	st.LoadJSON(storage.KeyTasks, &s.tasks)
	st.LoadJSON(storage.KeyProjects, &s.projects)
	s.nextColor = len(s.projects) % len(projectColors)
	return s
}

// Subscribe registers fn to be called after every collection change.
func (s *Store) Subscribe(fn func(Event)) {
	s.subs = append(s.subs, fn)
}

func (s *Store) notify(ev Event) {
	for _, fn := range s.subs {
		fn(ev)
	}
}

func (s *Store) persistTasks() {
	if err := s.st.SaveJSON(storage.KeyTasks, s.tasks); err != nil {
		s.log.Warn("persist tasks", zap.Error(err))
	}
}

func (s *Store) persistProjects() {
	if err := s.st.SaveJSON(storage.KeyProjects, s.projects); err != nil {
		s.log.Warn("persist projects", zap.Error(err))
	}
}

func (s *Store) findTask(id string) *Task {
	for _, t := range s.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Store) findProject(id string) *Project {
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CreateTask appends a new task to the end of the collection.
func (s *Store) CreateTask(input CreateTaskInput) (*Task, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("validate task: %w", err)
	}
	if input.ProjectID != "" && s.findProject(input.ProjectID) == nil {
		return nil, fmt.Errorf("project %q: %w", input.ProjectID, ErrNotFound)
	}

	now := s.now().UTC()
	t := &Task{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Priority:  PriorityMedium,
		ProjectID: input.ProjectID,
		Pomodoros: Pomodoros{Completed: 0, Total: 1},
		Notes:     input.Notes,
		Tags:      append([]string(nil), input.Tags...),
		Subtasks:  []Subtask{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Priority != nil {
		t.Priority = *input.Priority
	}
	if input.DueDate != nil {
		d := *input.DueDate
		t.DueDate = &d
	}
	if input.TotalPomodoros > 0 {
		t.Pomodoros.Total = input.TotalPomodoros
	}

	s.tasks = append(s.tasks, t)
	s.persistTasks()
	s.notify(TasksChanged)
	return t.clone(), nil
}

// Task returns a copy of the task with the given id.
func (s *Store) Task(id string) (*Task, error) {
	t := s.findTask(id)
	if t == nil {
		return nil, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	return t.clone(), nil
}

// Tasks returns copies of every task in collection order.
func (s *Store) Tasks() []Task {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t.clone())
	}
	return out
}

// UpdateTask merges patch onto the task with the given id.
func (s *Store) UpdateTask(id string, patch TaskPatch) (*Task, error) {
	t := s.findTask(id)
	if t == nil {
		return nil, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, fmt.Errorf("validate task: name must not be empty")
		}
		t.Name = *patch.Name
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.ProjectID != nil {
		if *patch.ProjectID != "" && s.findProject(*patch.ProjectID) == nil {
			return nil, fmt.Errorf("project %q: %w", *patch.ProjectID, ErrNotFound)
		}
		t.ProjectID = *patch.ProjectID
	}
	if patch.ClearDueDate {
		t.DueDate = nil
	} else if patch.DueDate != nil {
		d := *patch.DueDate
		t.DueDate = &d
	}
	if patch.Notes != nil {
		t.Notes = *patch.Notes
	}
	if patch.Tags != nil {
		t.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.PomodorosTotal != nil {
		t.Pomodoros.Total = *patch.PomodorosTotal
	}
	if patch.PomodorosCompleted != nil {
		t.Pomodoros.Completed = *patch.PomodorosCompleted
	}

	t.UpdatedAt = s.now().UTC()
	s.persistTasks()
	s.notify(TasksChanged)
	return t.clone(), nil
}

// DeleteTask removes the task with the given id.
func (s *Store) DeleteTask(id string) error {
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			s.persistTasks()
			s.notify(TasksChanged)
			return nil
		}
	}
	return fmt.Errorf("task %q: %w", id, ErrNotFound)
}

// ToggleCompletion flips the completed flag of the task.
func (s *Store) ToggleCompletion(id string) (*Task, error) {
	t := s.findTask(id)
	if t == nil {
		return nil, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	t.Completed = !t.Completed
	t.UpdatedAt = s.now().UTC()
	s.persistTasks()
	s.notify(TasksChanged)
	return t.clone(), nil
}

// IncrementCompletedPomodoros records one finished focus session against
// the task. Used by the timer integration when a focus interval completes
// with this task selected.
func (s *Store) IncrementCompletedPomodoros(id string) (*Task, error) {
	t := s.findTask(id)
	if t == nil {
		return nil, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	t.Pomodoros.Completed++
	t.UpdatedAt = s.now().UTC()
	s.persistTasks()
	s.notify(TasksChanged)
	return t.clone(), nil
}

// CreateSubtask appends a subtask to the parent task.
func (s *Store) CreateSubtask(taskID, name string) (*Subtask, error) {
	if name == "" {
		return nil, fmt.Errorf("validate subtask: name must not be empty")
	}
	t := s.findTask(taskID)
	if t == nil {
		return nil, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	sub := Subtask{ID: uuid.NewString(), Name: name}
	t.Subtasks = append(t.Subtasks, sub)
	t.UpdatedAt = s.now().UTC()
	s.persistTasks()
	s.notify(TasksChanged)
	return &sub, nil
}

// UpdateSubtask merges patch onto a subtask of the parent task.
func (s *Store) UpdateSubtask(taskID, subtaskID string, patch SubtaskPatch) error {
	t := s.findTask(taskID)
	if t == nil {
		return fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID != subtaskID {
			continue
		}
		if patch.Name != nil {
			if *patch.Name == "" {
				return fmt.Errorf("validate subtask: name must not be empty")
			}
			t.Subtasks[i].Name = *patch.Name
		}
		if patch.Completed != nil {
			t.Subtasks[i].Completed = *patch.Completed
		}
		t.UpdatedAt = s.now().UTC()
		s.persistTasks()
		s.notify(TasksChanged)
		return nil
	}
	return fmt.Errorf("subtask %q: %w", subtaskID, ErrNotFound)
}

// DeleteSubtask removes a subtask from the parent task.
func (s *Store) DeleteSubtask(taskID, subtaskID string) error {
	t := s.findTask(taskID)
	if t == nil {
		return fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
			t.UpdatedAt = s.now().UTC()
			s.persistTasks()
			s.notify(TasksChanged)
			return nil
		}
	}
	return fmt.Errorf("subtask %q: %w", subtaskID, ErrNotFound)
}

// CreateProject creates a project, assigning the next palette color when
// color is empty.
func (s *Store) CreateProject(name, color string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("validate project: name must not be empty")
	}
	if color == "" {
		color = projectColors[s.nextColor%len(projectColors)]
		s.nextColor++
	}
	now := s.now().UTC()
	p := &Project{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.projects = append(s.projects, p)
	s.persistProjects()
	s.notify(ProjectsChanged)
	c := *p
	return &c, nil
}

// Project returns a copy of the project with the given id.
func (s *Store) Project(id string) (*Project, error) {
	p := s.findProject(id)
	if p == nil {
		return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	c := *p
	return &c, nil
}

// Projects returns copies of every project.
func (s *Store) Projects() []Project {
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, *p)
	}
	return out
}

// UpdateProject updates the project's name and/or color. Empty strings
// leave the field untouched.
func (s *Store) UpdateProject(id, name, color string) (*Project, error) {
	p := s.findProject(id)
	if p == nil {
		return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	if name != "" {
		p.Name = name
	}
	if color != "" {
		p.Color = color
	}
	p.UpdatedAt = s.now().UTC()
	s.persistProjects()
	s.notify(ProjectsChanged)
	c := *p
	return &c, nil
}

// DeleteProject removes the project and clears ProjectID on every task
// that referenced it. The tasks themselves are never deleted.
func (s *Store) DeleteProject(id string) error {
	idx := -1
	for i, p := range s.projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	s.projects = append(s.projects[:idx], s.projects[idx+1:]...)

	now := s.now().UTC()
	orphaned := false
	for _, t := range s.tasks {
		if t.ProjectID == id {
			t.ProjectID = ""
			t.UpdatedAt = now
			orphaned = true
		}
	}

	s.persistProjects()
	if orphaned {
		s.persistTasks()
	}
	s.notify(ProjectsChanged)
	s.notify(TasksChanged)
	return nil
}

// Reorder rearranges the tasks belonging to projectID so their iteration
// order matches orderedIDs. Unknown ids are ignored; in-scope tasks
// omitted from orderedIDs are appended after the ordered ones in their
// prior relative order. Tasks outside the scope keep their positions.
func (s *Store) Reorder(orderedIDs []string, projectID string) {
	inScope := func(t *Task) bool { return t.ProjectID == projectID }

	byID := make(map[string]*Task, len(s.tasks))
	var slots []int
	for i, t := range s.tasks {
		if inScope(t) {
			byID[t.ID] = t
			slots = append(slots, i)
		}
	}

	var sequence []*Task
	placed := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		t, ok := byID[id]
		if !ok || placed[id] {
			continue
		}
		placed[id] = true
		sequence = append(sequence, t)
	}
	for _, i := range slots {
		t := s.tasks[i]
		if !placed[t.ID] {
			sequence = append(sequence, t)
		}
	}

	for n, i := range slots {
		s.tasks[i] = sequence[n]
	}

	s.persistTasks()
	s.notify(TasksChanged)
}
