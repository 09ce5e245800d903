package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/doruk/focusdo/internal/task"
)

type taskFilter int

const (
	filterAll taskFilter = iota
	filterToday
	filterTomorrow
	filterWeek
	filterHigh
	filterCompleted
)

var filterNames = []string{"All", "Today", "Tomorrow", "This Week", "High Priority", "Completed"}

type tasksModel struct {
	s      *session
	width  int
	height int

	filter taskFilter
	tasks  []task.Task
	cursor int

	viewingSubtasks bool
	subCursor       int

	formActive bool
	form       *huh.Form
	formKind   string // "task" or "subtask"
	editingID  string // task being edited, empty for create

	// Form field pointers (survive value copies)
	formName      *string
	formProject   *string
	formPriority  *string
	formDue       *string
	formPomodoros *string
	formTags      *string
	formNotes     *string
}

func newTasksModel(s *session) tasksModel {
	name, project, prio, due, poms, tags, notes := "", "", "", "", "", "", ""
	m := tasksModel{
		s:             s,
		formName:      &name,
		formProject:   &project,
		formPriority:  &prio,
		formDue:       &due,
		formPomodoros: &poms,
		formTags:      &tags,
		formNotes:     &notes,
	}
	m.refresh()
	return m
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *tasksModel) refresh() {
	switch m.filter {
	case filterToday:
		m.tasks = m.s.tasks.DueToday()
	case filterTomorrow:
		m.tasks = m.s.tasks.DueTomorrow()
	case filterWeek:
		m.tasks = m.s.tasks.DueThisWeek(m.s.settings.WeekStart)
	case filterHigh:
		m.tasks = m.s.tasks.HighPriority()
	case filterCompleted:
		m.tasks = m.s.tasks.CompletedTasks()
	default:
		m.tasks = m.s.tasks.Tasks()
	}
	if m.cursor >= len(m.tasks) {
		m.cursor = max(0, len(m.tasks)-1)
	}
	if m.viewingSubtasks {
		if cur, ok := m.current(); !ok || m.subCursor >= len(cur.Subtasks) {
			m.subCursor = 0
		}
	}
}

func (m tasksModel) current() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return task.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.viewingSubtasks {
		return m.updateSubtaskView(keyMsg)
	}
	return m.updateTaskList(keyMsg)
}

func (m tasksModel) updateTaskList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Filter):
		m.filter = (m.filter + 1) % taskFilter(len(filterNames))
		m.cursor = 0
		m.refresh()
	case key.Matches(msg, keys.New):
		return m.showTaskForm("")
	case key.Matches(msg, keys.Edit):
		if cur, ok := m.current(); ok {
			return m.showTaskForm(cur.ID)
		}
	case key.Matches(msg, keys.Delete):
		if cur, ok := m.current(); ok {
			if err := m.s.tasks.DeleteTask(cur.ID); err != nil {
				return m, errorStatus(err)
			}
			m.refresh()
			return m, status("Deleted " + cur.Name)
		}
	case key.Matches(msg, keys.Toggle):
		if cur, ok := m.current(); ok {
			t, err := m.s.tasks.ToggleCompletion(cur.ID)
			if err != nil {
				return m, errorStatus(err)
			}
			if t.Completed {
				m.s.tracker.RecordTaskCompleted()
			}
			m.refresh()
		}
	case key.Matches(msg, keys.MoveUp):
		m.move(-1)
	case key.Matches(msg, keys.MoveDown):
		m.move(1)
	case key.Matches(msg, keys.Focus):
		if cur, ok := m.current(); ok {
			m.s.engine.SetCurrentTask(cur.ID)
			return m, status(fmt.Sprintf("Timer focused on %q (press 3)", cur.Name))
		}
	case key.Matches(msg, keys.Enter):
		if _, ok := m.current(); ok {
			m.viewingSubtasks = true
			m.subCursor = 0
		}
	}
	return m, nil
}

// move swaps the selected task with its neighbor inside its project scope
// and applies the new order through the store.
func (m *tasksModel) move(delta int) {
	cur, ok := m.current()
	if !ok {
		return
	}
	scope := m.s.tasks.ByProject(cur.ProjectID)
	idx := -1
	for i, t := range scope {
		if t.ID == cur.ID {
			idx = i
			break
		}
	}
	swap := idx + delta
	if idx < 0 || swap < 0 || swap >= len(scope) {
		return
	}
	scope[idx], scope[swap] = scope[swap], scope[idx]

	ids := make([]string, len(scope))
	for i, t := range scope {
		ids[i] = t.ID
	}
	m.s.tasks.Reorder(ids, cur.ProjectID)
	m.refresh()

	// Keep the cursor on the moved task.
	for i, t := range m.tasks {
		if t.ID == cur.ID {
			m.cursor = i
			break
		}
	}
}

func (m tasksModel) updateSubtaskView(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	cur, ok := m.current()
	if !ok {
		m.viewingSubtasks = false
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Back):
		m.viewingSubtasks = false
	case key.Matches(msg, keys.Up):
		if m.subCursor > 0 {
			m.subCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.subCursor < len(cur.Subtasks)-1 {
			m.subCursor++
		}
	case key.Matches(msg, keys.New):
		return m.showSubtaskForm()
	case key.Matches(msg, keys.Toggle):
		if m.subCursor < len(cur.Subtasks) {
			sub := cur.Subtasks[m.subCursor]
			done := !sub.Completed
			err := m.s.tasks.UpdateSubtask(cur.ID, sub.ID, task.SubtaskPatch{Completed: &done})
			if err != nil {
				return m, errorStatus(err)
			}
			m.refresh()
		}
	case key.Matches(msg, keys.Delete):
		if m.subCursor < len(cur.Subtasks) {
			sub := cur.Subtasks[m.subCursor]
			if err := m.s.tasks.DeleteSubtask(cur.ID, sub.ID); err != nil {
				return m, errorStatus(err)
			}
			m.refresh()
		}
	}
	return m, nil
}

func (m tasksModel) showTaskForm(editID string) (tasksModel, tea.Cmd) {
	*m.formName = ""
	*m.formProject = ""
	*m.formPriority = "medium"
	*m.formDue = ""
	*m.formPomodoros = "1"
	*m.formTags = ""
	*m.formNotes = ""
	m.editingID = editID

	if editID != "" {
		if t, err := m.s.tasks.Task(editID); err == nil {
			*m.formName = t.Name
			*m.formProject = t.ProjectID
			*m.formPriority = t.Priority.String()
			if t.DueDate != nil {
				*m.formDue = t.DueDate.Format("2006-01-02")
			}
			*m.formPomodoros = strconv.Itoa(t.Pomodoros.Total)
			*m.formTags = strings.Join(t.Tags, ",")
			*m.formNotes = t.Notes
		}
	}

	projectOpts := []huh.Option[string]{huh.NewOption("Inbox", "")}
	for _, p := range m.s.tasks.Projects() {
		projectOpts = append(projectOpts, huh.NewOption(p.Name, p.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(m.formName),
			huh.NewSelect[string]().Title("Project").Options(projectOpts...).Value(m.formProject),
			huh.NewSelect[string]().Title("Priority").
				Options(
					huh.NewOption("Lowest", "lowest"),
					huh.NewOption("Low", "low"),
					huh.NewOption("Medium", "medium"),
					huh.NewOption("High", "high"),
					huh.NewOption("Highest", "highest"),
				).Value(m.formPriority),
			huh.NewInput().Title("Due (YYYY-MM-DD, empty for none)").Value(m.formDue),
			huh.NewInput().Title("Planned pomodoros").Value(m.formPomodoros),
			huh.NewInput().Title("Tags (comma separated)").Value(m.formTags),
			huh.NewInput().Title("Notes").Value(m.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	m.formKind = "task"
	return m, m.form.Init()
}

func (m tasksModel) showSubtaskForm() (tasksModel, tea.Cmd) {
	*m.formName = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Subtask name").Value(m.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	m.formKind = "subtask"
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		var saveCmd tea.Cmd
		if m.formKind == "subtask" {
			saveCmd = m.saveSubtask()
		} else {
			saveCmd = m.saveTask()
		}
		m.refresh()
		return m, saveCmd
	}

	return m, cmd
}

func (m *tasksModel) saveTask() tea.Cmd {
	prio := parsePriority(*m.formPriority)
	var due *time.Time
	if *m.formDue != "" {
		d, err := time.Parse("2006-01-02", *m.formDue)
		if err != nil {
			return errorStatus(fmt.Errorf("bad due date %q", *m.formDue))
		}
		due = &d
	}
	poms, _ := strconv.Atoi(*m.formPomodoros)
	var tags []string
	for _, tg := range strings.Split(*m.formTags, ",") {
		if tg = strings.TrimSpace(tg); tg != "" {
			tags = append(tags, tg)
		}
	}

	if m.editingID != "" {
		patch := task.TaskPatch{
			Name:      m.formName,
			Priority:  &prio,
			ProjectID: m.formProject,
			Tags:      &tags,
			Notes:     m.formNotes,
		}
		if due != nil {
			patch.DueDate = due
		} else {
			patch.ClearDueDate = true
		}
		if poms > 0 {
			patch.PomodorosTotal = &poms
		}
		if _, err := m.s.tasks.UpdateTask(m.editingID, patch); err != nil {
			return errorStatus(err)
		}
		return status("Updated " + *m.formName)
	}

	t, err := m.s.tasks.CreateTask(task.CreateTaskInput{
		Name:           *m.formName,
		Priority:       &prio,
		ProjectID:      *m.formProject,
		DueDate:        due,
		TotalPomodoros: poms,
		Notes:          *m.formNotes,
		Tags:           tags,
	})
	if err != nil {
		return errorStatus(err)
	}
	m.s.tracker.RecordTaskPlanned()
	m.s.tracker.RecordPomodoroPlanned(t.Pomodoros.Total)
	return status("Added " + t.Name)
}

func (m *tasksModel) saveSubtask() tea.Cmd {
	cur, ok := m.current()
	if !ok {
		return nil
	}
	if _, err := m.s.tasks.CreateSubtask(cur.ID, *m.formName); err != nil {
		return errorStatus(err)
	}
	return status("Added subtask")
}

func parsePriority(s string) task.Priority {
	switch s {
	case "lowest":
		return task.PriorityLowest
	case "low":
		return task.PriorityLow
	case "high":
		return task.PriorityHigh
	case "highest":
		return task.PriorityHighest
	default:
		return task.PriorityMedium
	}
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Task")
		if m.formKind == "subtask" {
			title = titleStyle.Render("Subtask")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	if m.viewingSubtasks {
		return m.viewSubtasks(w)
	}

	// Filter tabs
	var tabs []string
	for i, name := range filterNames {
		if taskFilter(i) == m.filter {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	var rows []string
	rows = append(rows, header, "")
	if len(m.tasks) == 0 {
		rows = append(rows, mutedStyle.Render("  No tasks. Press n to add one."))
	}

	projects := make(map[string]task.Project)
	for _, p := range m.s.tasks.Projects() {
		projects[p.ID] = p
	}

	for i, t := range m.tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		check := "[ ]"
		nameStyle := normalItemStyle
		if t.Completed {
			check = "[x]"
			nameStyle = doneItemStyle
		}
		if i == m.cursor {
			nameStyle = selectedItemStyle
		}

		line := fmt.Sprintf("%s%s %s %s", cursor, check, priorityMarker(t.Priority), nameStyle.Render(t.Name))

		var meta []string
		if p, ok := projects[t.ProjectID]; ok {
			dot := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("●")
			meta = append(meta, dot+" "+p.Name)
		}
		if t.DueDate != nil {
			meta = append(meta, t.DueDate.Format("Jan 02"))
		}
		meta = append(meta, fmt.Sprintf("%d/%d", t.Pomodoros.Completed, t.Pomodoros.Total))
		if len(t.Subtasks) > 0 {
			done := 0
			for _, sub := range t.Subtasks {
				if sub.Completed {
					done++
				}
			}
			meta = append(meta, fmt.Sprintf("↳ %d/%d", done, len(t.Subtasks)))
		}
		line += mutedStyle.Render("  " + strings.Join(meta, "  "))

		rows = append(rows, line)
	}

	sum := m.s.tasks.Summarize()
	rows = append(rows, "", mutedStyle.Render(fmt.Sprintf(
		"  %d open (%s planned)  %d done (%s focused)",
		sum.Incomplete, formatMinutes(sum.EstimatedMinutes),
		sum.Completed, formatMinutes(sum.FocusedMinutes),
	)))
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  c: done  d: delete  f: filter  t: focus  enter: subtasks"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) viewSubtasks(w int) string {
	cur, ok := m.current()
	if !ok {
		return panelStyle.Width(w).Render(mutedStyle.Render("No task selected"))
	}

	var rows []string
	rows = append(rows, titleStyle.Render(cur.Name))
	if cur.Notes != "" {
		rows = append(rows, mutedStyle.Render(cur.Notes))
	}
	rows = append(rows, "")

	if len(cur.Subtasks) == 0 {
		rows = append(rows, mutedStyle.Render("  No subtasks. Press n to add one."))
	}
	for i, sub := range cur.Subtasks {
		cursor := "  "
		style := normalItemStyle
		if i == m.subCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		if sub.Completed {
			check = "[x]"
			if i != m.subCursor {
				style = doneItemStyle
			}
		}
		rows = append(rows, fmt.Sprintf("%s%s %s", cursor, check, style.Render(sub.Name)))
	}

	rows = append(rows, "", mutedStyle.Render("  n: new  c: toggle  d: delete  esc: back"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func priorityMarker(p task.Priority) string {
	switch p {
	case task.PriorityHighest:
		return errorStyle.Render("!!")
	case task.PriorityHigh:
		return accentStyle.Render("! ")
	case task.PriorityLow, task.PriorityLowest:
		return mutedStyle.Render("· ")
	default:
		return "  "
	}
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorStatus(err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true} }
}
