package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/doruk/focusdo/internal/task"
)

type projectsModel struct {
	s      *session
	width  int
	height int

	groups []task.Group
	cursor int

	viewingTasks bool
	taskCursor   int

	formActive bool
	form       *huh.Form
	editingID  string

	formName  *string
	formColor *string
}

func newProjectsModel(s *session) projectsModel {
	name, color := "", ""
	m := projectsModel{s: s, formName: &name, formColor: &color}
	m.refresh()
	return m
}

func (m *projectsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *projectsModel) refresh() {
	m.groups = m.s.tasks.GroupByProject()
	if m.cursor >= len(m.groups) {
		m.cursor = max(0, len(m.groups)-1)
	}
	if m.viewingTasks {
		if g, ok := m.current(); !ok || m.taskCursor >= len(g.Tasks) {
			m.taskCursor = 0
		}
	}
}

func (m projectsModel) current() (task.Group, bool) {
	if m.cursor < 0 || m.cursor >= len(m.groups) {
		return task.Group{}, false
	}
	return m.groups[m.cursor], true
}

func (m projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.viewingTasks {
		return m.updateTaskView(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.groups)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.New):
		return m.showForm("")
	case key.Matches(keyMsg, keys.Edit):
		if g, ok := m.current(); ok && g.Project != nil {
			return m.showForm(g.Project.ID)
		}
	case key.Matches(keyMsg, keys.Delete):
		if g, ok := m.current(); ok && g.Project != nil {
			if err := m.s.tasks.DeleteProject(g.Project.ID); err != nil {
				return m, errorStatus(err)
			}
			m.refresh()
			return m, status("Deleted " + g.Project.Name + " (tasks moved to Inbox)")
		}
	case key.Matches(keyMsg, keys.Enter):
		if _, ok := m.current(); ok {
			m.viewingTasks = true
			m.taskCursor = 0
		}
	}
	return m, nil
}

func (m projectsModel) updateTaskView(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	g, ok := m.current()
	if !ok {
		m.viewingTasks = false
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Back):
		m.viewingTasks = false
	case key.Matches(msg, keys.Up):
		if m.taskCursor > 0 {
			m.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.taskCursor < len(g.Tasks)-1 {
			m.taskCursor++
		}
	case key.Matches(msg, keys.Toggle):
		if m.taskCursor < len(g.Tasks) {
			t, err := m.s.tasks.ToggleCompletion(g.Tasks[m.taskCursor].ID)
			if err != nil {
				return m, errorStatus(err)
			}
			if t.Completed {
				m.s.tracker.RecordTaskCompleted()
			}
			m.refresh()
		}
	case key.Matches(msg, keys.Focus):
		if m.taskCursor < len(g.Tasks) {
			t := g.Tasks[m.taskCursor]
			m.s.engine.SetCurrentTask(t.ID)
			return m, status(fmt.Sprintf("Timer focused on %q (press 3)", t.Name))
		}
	}
	return m, nil
}

func (m projectsModel) showForm(editID string) (projectsModel, tea.Cmd) {
	*m.formName = ""
	*m.formColor = ""
	m.editingID = editID

	if editID != "" {
		if p, err := m.s.tasks.Project(editID); err == nil {
			*m.formName = p.Name
			*m.formColor = p.Color
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project name").Value(m.formName),
			huh.NewInput().Title("Color (hex, empty for auto)").Value(m.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
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
		saveCmd := m.save()
		m.refresh()
		return m, saveCmd
	}

	return m, cmd
}

func (m *projectsModel) save() tea.Cmd {
	if m.editingID != "" {
		if _, err := m.s.tasks.UpdateProject(m.editingID, *m.formName, *m.formColor); err != nil {
			return errorStatus(err)
		}
		return status("Updated " + *m.formName)
	}
	p, err := m.s.tasks.CreateProject(*m.formName, *m.formColor)
	if err != nil {
		return errorStatus(err)
	}
	return status("Added " + p.Name)
}

func (m projectsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Project"), "", m.form.View()),
		)
	}

	if m.viewingTasks {
		return m.viewGroupTasks(w)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Projects"), "")

	for i, g := range m.groups {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		name := "Inbox"
		dot := mutedStyle.Render("●")
		if g.Project != nil {
			name = g.Project.Name
			dot = lipgloss.NewStyle().Foreground(lipgloss.Color(g.Project.Color)).Render("●")
		}

		open := 0
		for _, t := range g.Tasks {
			if !t.Completed {
				open++
			}
		}

		rows = append(rows, fmt.Sprintf("%s%s %s%s", cursor, dot, style.Render(name),
			mutedStyle.Render(fmt.Sprintf("  %d open, %s", open, formatMinutes(g.EstimatedMinutes)))))
	}

	rows = append(rows, "", mutedStyle.Render("  n: new  e: edit  d: delete  enter: tasks"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m projectsModel) viewGroupTasks(w int) string {
	g, ok := m.current()
	if !ok {
		return panelStyle.Width(w).Render(mutedStyle.Render("No project selected"))
	}

	name := "Inbox"
	if g.Project != nil {
		name = g.Project.Name
	}

	var rows []string
	rows = append(rows, titleStyle.Render(name), "")
	if len(g.Tasks) == 0 {
		rows = append(rows, mutedStyle.Render("  No tasks here yet."))
	}
	for i, t := range g.Tasks {
		cursor := "  "
		style := normalItemStyle
		if i == m.taskCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		if t.Completed {
			check = "[x]"
			if i != m.taskCursor {
				style = doneItemStyle
			}
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s", cursor, check, priorityMarker(t.Priority), style.Render(t.Name)))
	}

	rows = append(rows, "", mutedStyle.Render("  c: toggle  t: focus  esc: back"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
