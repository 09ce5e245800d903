package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/doruk/focusdo/internal/config"
	"github.com/doruk/focusdo/internal/export"
	"github.com/doruk/focusdo/internal/progress"
	"github.com/doruk/focusdo/internal/storage"
	"github.com/doruk/focusdo/internal/task"
	"github.com/doruk/focusdo/internal/timer"
)

// session bundles the core components shared by every view. All component
// calls happen synchronously on the Update goroutine.
type session struct {
	storage  *storage.Store
	log      *zap.Logger
	tasks    *task.Store
	engine   *timer.Engine
	tracker  *progress.Tracker
	settings config.AppSettings
}

func (s *session) saveTimerState() {
	if err := s.storage.SaveJSON(storage.KeyTimerState, s.engine.Snapshot()); err != nil {
		s.log.Warn("persist timer state", zap.Error(err))
	}
}

// App is the root Bubble Tea model.
type App struct {
	s      *session
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	tasksView    tasksModel
	projectsView projectsModel
	timerView    timerModel
	progressView progressModel
	settingsView settingsModel

	help   help.Model
	status string
}

// NewApp rehydrates the three core components from storage and wires the
// timer's completion events into the task store and progress tracker.
func NewApp(st *storage.Store, log *zap.Logger) (App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	tasks := task.NewStore(st, log)
	tracker := progress.New(st, log)

	ts := timer.DefaultSettings()
	st.LoadJSON(storage.KeyTimerSettings, &ts)
	engine, err := timer.New(ts)
	if err != nil {
		// Stored settings were unusable; run on defaults.
		log.Warn("stored timer settings invalid, using defaults", zap.Error(err))
		engine, err = timer.New(timer.DefaultSettings())
		if err != nil {
			return App{}, err
		}
	}
	var state timer.State
	if st.LoadJSON(storage.KeyTimerState, &state) {
		engine.Restore(state)
	}

	s := &session{
		storage:  st,
		log:      log,
		tasks:    tasks,
		engine:   engine,
		tracker:  tracker,
		settings: config.LoadAppSettings(st),
	}

	// Integration glue: the engine only emits events; attributing a
	// completed focus session to the selected task and the daily stats
	// happens here.
	engine.Subscribe(func(ev timer.Event) {
		switch ev.Kind {
		case timer.EventFocusCompleted:
			if ev.TaskID != "" {
				if _, err := tasks.IncrementCompletedPomodoros(ev.TaskID); err != nil {
					log.Warn("attribute pomodoro", zap.String("task", ev.TaskID), zap.Error(err))
				}
			}
			tracker.RecordPomodoroCompleted(ev.DurationSeconds / 60)
			s.saveTimerState()
		case timer.EventBreakCompleted, timer.EventStateChanged:
			s.saveTimerState()
		}
	})

	h := help.New()
	h.ShowAll = false

	a := App{
		s:            s,
		activeView:   viewTasks,
		tasksView:    newTasksModel(s),
		projectsView: newProjectsModel(s),
		timerView:    newTimerModel(s),
		progressView: newProgressModel(s),
		settingsView: newSettingsModel(s),
		help:         h,
	}
	return a, nil
}

func (a App) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.tasksView.setSize(a.width, contentHeight)
		a.projectsView.setSize(a.width, contentHeight)
		a.timerView.setSize(a.width, contentHeight)
		a.progressView.setSize(a.width, contentHeight)
		a.settingsView.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.s.saveTimerState()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTasks
			a.tasksView.refresh()
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewProjects
			a.projectsView.refresh()
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewProgress
			a.progressView.refresh()
			return a, nil
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 5
			a.refreshCurrentView()
			return a, nil
		}

	case tickMsg:
		var cmd tea.Cmd
		a.timerView, cmd = a.timerView.update(msg)
		// A tick can complete an interval, which mutates tasks and
		// progress through the engine subscription.
		a.tasksView.refresh()
		a.progressView.refresh()
		return a, tea.Batch(tickCmd(), cmd)

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.tasksView, cmd = a.tasksView.update(msg)
	case viewProjects:
		a.projectsView, cmd = a.projectsView.update(msg)
	case viewTimer:
		a.timerView, cmd = a.timerView.update(msg)
	case viewProgress:
		a.progressView, cmd = a.progressView.update(msg)
	case viewSettings:
		a.settingsView, cmd = a.settingsView.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasksView.formActive
	case viewProjects:
		return a.projectsView.formActive
	case viewSettings:
		return a.settingsView.formActive
	}
	return false
}

func (a *App) refreshCurrentView() {
	switch a.activeView {
	case viewTasks:
		a.tasksView.refresh()
	case viewProjects:
		a.projectsView.refresh()
	case viewProgress:
		a.progressView.refresh()
	}
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTasks:
		content = a.tasksView.view()
	case viewProjects:
		content = a.projectsView.view()
	case viewTimer:
		content = a.timerView.view()
	case viewProgress:
		content = a.progressView.view()
	case viewSettings:
		content = a.settingsView.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("focusdo")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Timer indicator in footer
	timerInfo := ""
	switch a.s.engine.Status() {
	case timer.StatusRunning:
		timerInfo = successStyle.Render(fmt.Sprintf(" ● %s %s",
			formatClock(a.s.engine.Remaining()), a.s.engine.Mode()))
	case timer.StatusPaused:
		timerInfo = warningStyle.Render(fmt.Sprintf(" ⏸ %s %s",
			formatClock(a.s.engine.Remaining()), a.s.engine.Mode()))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"JSON snapshot", "CSV tasks"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	// Copy everything on the Update goroutine; the returned command only
	// writes files.
	home, _ := os.UserHomeDir()
	dateStr := time.Now().Format("2006-01-02")

	if format == 0 {
		snap, err := a.s.storage.Snapshot()
		if err != nil {
			return func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
		}
		path := filepath.Join(home, fmt.Sprintf("focusdo-export-%s.json", dateStr))
		return func() tea.Msg {
			if err := export.ToJSON(snap, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
			return exportDoneMsg{path: path}
		}
	}

	tasks := a.s.tasks.Tasks()
	projects := make(map[string]*task.Project)
	for _, p := range a.s.tasks.Projects() {
		c := p
		projects[p.ID] = &c
	}
	path := filepath.Join(home, fmt.Sprintf("focusdo-export-%s.csv", dateStr))
	return func() tea.Msg {
		if err := export.ToCSV(tasks, projects, path); err != nil {
			return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
