package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/doruk/focusdo/internal/task"
	"github.com/doruk/focusdo/internal/timer"
)

type timerModel struct {
	s      *session
	width  int
	height int

	pickingTask bool
	pickCursor  int
	candidates  []task.Task
}

func newTimerModel(s *session) timerModel {
	return timerModel{s: s}
}

func (m *timerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.s.engine.Status() != timer.StatusRunning {
			return m, nil
		}
		before := m.s.engine.Sessions()
		beforeMode := m.s.engine.Mode()
		m.s.engine.Tick()
		if m.s.engine.Sessions() > before {
			return m, status("Focus session complete. Time for a break.")
		}
		if beforeMode != timer.ModeFocus && m.s.engine.Mode() == timer.ModeFocus &&
			m.s.engine.Status() != timer.StatusRunning {
			return m, status("Break over. Ready to focus.")
		}
		return m, nil

	case tea.KeyMsg:
		if m.pickingTask {
			return m.updateTaskPicker(msg)
		}
		switch {
		case key.Matches(msg, keys.Start):
			m.s.engine.Start()
		case key.Matches(msg, keys.Pause):
			if m.s.engine.Status() == timer.StatusRunning {
				m.s.engine.Pause()
			} else {
				m.s.engine.Start()
			}
		case key.Matches(msg, keys.Reset):
			m.s.engine.Reset()
		case key.Matches(msg, keys.Skip):
			m.s.engine.Skip()
		case key.Matches(msg, keys.Focus):
			m.candidates = nil
			for _, t := range m.s.tasks.Tasks() {
				if !t.Completed {
					m.candidates = append(m.candidates, t)
				}
			}
			m.pickCursor = 0
			m.pickingTask = true
		}
	}
	return m, nil
}

func (m timerModel) updateTaskPicker(msg tea.KeyMsg) (timerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.pickingTask = false
	case key.Matches(msg, keys.Up):
		if m.pickCursor > 0 {
			m.pickCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.pickCursor < len(m.candidates) {
			m.pickCursor++
		}
	case key.Matches(msg, keys.Enter):
		m.pickingTask = false
		if m.pickCursor == len(m.candidates) {
			m.s.engine.SetCurrentTask("")
			return m, status("Timer detached from tasks")
		}
		t := m.candidates[m.pickCursor]
		m.s.engine.SetCurrentTask(t.ID)
		return m, status(fmt.Sprintf("Timer focused on %q", t.Name))
	}
	return m, nil
}

func (m timerModel) view() string {
	w := m.width - 4

	if m.pickingTask {
		return m.viewTaskPicker(w)
	}

	e := m.s.engine

	modeLabel := "Focus"
	modeStyle := accentStyle
	switch e.Mode() {
	case timer.ModeShortBreak:
		modeLabel = "Short Break"
		modeStyle = successStyle
	case timer.ModeLongBreak:
		modeLabel = "Long Break"
		modeStyle = highlightStyle
	}

	clock := timerStyle.Render(bigClock(e.Remaining()))

	statusLine := mutedStyle.Render("idle")
	switch e.Status() {
	case timer.StatusRunning:
		statusLine = successStyle.Render("running")
	case timer.StatusPaused:
		statusLine = warningStyle.Render("paused")
	}

	// One dot per focus session in the current long-break cycle.
	interval := e.Settings().LongBreakInterval
	done := e.Sessions() % interval
	if done == 0 && e.Sessions() > 0 {
		done = interval
	}
	var dots []string
	for i := 0; i < interval; i++ {
		if i < done {
			dots = append(dots, successStyle.Render("●"))
		} else {
			dots = append(dots, mutedStyle.Render("○"))
		}
	}

	taskLine := mutedStyle.Render("No task attached (press t)")
	if id := e.CurrentTask(); id != "" {
		if t, err := m.s.tasks.Task(id); err == nil {
			taskLine = normalItemStyle.Render(fmt.Sprintf("▸ %s  %d/%d", t.Name, t.Pomodoros.Completed, t.Pomodoros.Total))
		}
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		modeStyle.Bold(true).Render(modeLabel),
		"",
		clock,
		"",
		statusLine,
		strings.Join(dots, " "),
		"",
		taskLine,
		"",
		mutedStyle.Render(fmt.Sprintf("%d focus sessions completed", e.Sessions())),
		"",
		mutedStyle.Render("s: start  space: pause/resume  r: reset  x: skip  t: attach task"),
	)

	return activePanelStyle.Width(w).Align(lipgloss.Center).Render(body)
}

func (m timerModel) viewTaskPicker(w int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Attach Task"), "")

	for i, t := range m.candidates {
		cursor := "  "
		style := normalItemStyle
		if i == m.pickCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, fmt.Sprintf("%s%s %s", cursor, priorityMarker(t.Priority), style.Render(t.Name)))
	}

	cursor := "  "
	style := mutedStyle
	if m.pickCursor == len(m.candidates) {
		cursor = "> "
		style = selectedItemStyle
	}
	rows = append(rows, fmt.Sprintf("%s   %s", cursor, style.Render("(none)")))

	rows = append(rows, "", mutedStyle.Render("  enter: select  esc: cancel"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// bigClock renders mm:ss in a chunky block font.
func bigClock(secs int) string {
	text := formatClock(secs)
	rows := make([]string, 5)
	for _, ch := range text {
		glyph, ok := clockGlyphs[ch]
		if !ok {
			continue
		}
		for i := 0; i < 5; i++ {
			if rows[i] != "" {
				rows[i] += " "
			}
			rows[i] += glyph[i]
		}
	}
	return strings.Join(rows, "\n")
}

var clockGlyphs = map[rune][5]string{
	'0': {"█████", "█   █", "█   █", "█   █", "█████"},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {"█████", "    █", "█████", "█    ", "█████"},
	'3': {"█████", "    █", " ████", "    █", "█████"},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "█████", "    █", "█████"},
	'6': {"█████", "█    ", "█████", "█   █", "█████"},
	'7': {"█████", "    █", "   █ ", "  █  ", "  █  "},
	'8': {"█████", "█   █", "█████", "█   █", "█████"},
	'9': {"█████", "█   █", "█████", "    █", "█████"},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}
