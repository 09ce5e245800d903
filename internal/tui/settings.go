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

	"github.com/doruk/focusdo/internal/config"
	"github.com/doruk/focusdo/internal/storage"
	"github.com/doruk/focusdo/internal/timer"
)

type settingsModel struct {
	s      *session
	width  int
	height int

	formActive bool
	form       *huh.Form

	formFocus      *string
	formShort      *string
	formLong       *string
	formInterval   *string
	formAutoBreaks *bool
	formAutoFocus  *bool
	formWeekStart  *string
}

func newSettingsModel(s *session) settingsModel {
	focus, short, long, interval, weekStart := "", "", "", "", ""
	autoBreaks, autoFocus := false, false
	return settingsModel{
		s:              s,
		formFocus:      &focus,
		formShort:      &short,
		formLong:       &long,
		formInterval:   &interval,
		formAutoBreaks: &autoBreaks,
		formAutoFocus:  &autoFocus,
		formWeekStart:  &weekStart,
	}
}

func (m *settingsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.Matches(keyMsg, keys.Edit) || key.Matches(keyMsg, keys.Enter) {
		return m.showForm()
	}
	return m, nil
}

func (m settingsModel) showForm() (settingsModel, tea.Cmd) {
	ts := m.s.engine.Settings()
	*m.formFocus = strconv.Itoa(ts.FocusSeconds / 60)
	*m.formShort = strconv.Itoa(ts.ShortBreakSeconds / 60)
	*m.formLong = strconv.Itoa(ts.LongBreakSeconds / 60)
	*m.formInterval = strconv.Itoa(ts.LongBreakInterval)
	*m.formAutoBreaks = ts.AutoStartBreaks
	*m.formAutoFocus = ts.AutoStartFocus
	*m.formWeekStart = strconv.Itoa(int(m.s.settings.WeekStart))

	validateMinutes := func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 1 {
			return fmt.Errorf("enter a positive number of minutes")
		}
		return nil
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Focus (minutes)").Value(m.formFocus).Validate(validateMinutes),
			huh.NewInput().Title("Short break (minutes)").Value(m.formShort).Validate(validateMinutes),
			huh.NewInput().Title("Long break (minutes)").Value(m.formLong).Validate(validateMinutes),
			huh.NewInput().Title("Focus sessions before long break").Value(m.formInterval).Validate(validateMinutes),
			huh.NewConfirm().Title("Auto-start breaks").Value(m.formAutoBreaks),
			huh.NewConfirm().Title("Auto-start focus after break").Value(m.formAutoFocus),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Sunday", "0"),
					huh.NewOption("Monday", "1"),
				).Value(m.formWeekStart),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
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
		return m, m.save()
	}

	return m, cmd
}

func (m *settingsModel) save() tea.Cmd {
	atoi := func(s string) int {
		n, _ := strconv.Atoi(strings.TrimSpace(s))
		return n
	}

	ts := timer.Settings{
		FocusSeconds:      atoi(*m.formFocus) * 60,
		ShortBreakSeconds: atoi(*m.formShort) * 60,
		LongBreakSeconds:  atoi(*m.formLong) * 60,
		LongBreakInterval: atoi(*m.formInterval),
		AutoStartBreaks:   *m.formAutoBreaks,
		AutoStartFocus:    *m.formAutoFocus,
	}

	if err := m.s.engine.Configure(ts); err != nil {
		return errorStatus(err)
	}
	if err := m.s.storage.SaveJSON(storage.KeyTimerSettings, ts); err != nil {
		return errorStatus(err)
	}

	ws := time.Weekday(atoi(*m.formWeekStart))
	m.s.settings.WeekStart = ws
	if err := config.SaveAppSettings(m.s.storage, m.s.settings); err != nil {
		return errorStatus(err)
	}

	return status("Settings saved")
}

func (m settingsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Settings"), "", m.form.View()),
		)
	}

	ts := m.s.engine.Settings()
	onOff := func(b bool) string {
		if b {
			return successStyle.Render("on")
		}
		return mutedStyle.Render("off")
	}

	rows := []string{
		titleStyle.Render("Settings"),
		"",
		fmt.Sprintf("  Focus                 %d min", ts.FocusSeconds/60),
		fmt.Sprintf("  Short break           %d min", ts.ShortBreakSeconds/60),
		fmt.Sprintf("  Long break            %d min", ts.LongBreakSeconds/60),
		fmt.Sprintf("  Long break after      %d sessions", ts.LongBreakInterval),
		fmt.Sprintf("  Auto-start breaks     %s", onOff(ts.AutoStartBreaks)),
		fmt.Sprintf("  Auto-start focus      %s", onOff(ts.AutoStartFocus)),
		fmt.Sprintf("  Week starts on        %s", m.s.settings.WeekStart),
		"",
		mutedStyle.Render("  e: edit"),
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
