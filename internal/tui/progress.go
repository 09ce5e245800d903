package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/doruk/focusdo/internal/progress"
)

type progressModel struct {
	s      *session
	width  int
	height int

	offset  int // 7-day blocks back from today (0 = current)
	entries []progress.RangeEntry

	chart barchart.Model
}

func newProgressModel(s *session) progressModel {
	m := progressModel{
		s:     s,
		chart: barchart.New(60, 10),
	}
	m.refresh()
	return m
}

func (m *progressModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.refresh()
}

func (m *progressModel) dateRange() (time.Time, time.Time) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, -7*m.offset)
	return end.AddDate(0, 0, -6), end
}

func (m *progressModel) refresh() {
	start, end := m.dateRange()
	m.entries = m.s.tracker.Range(start, end)
	m.buildChart()
}

func (m progressModel) update(msg tea.Msg) (progressModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keys.Left):
		m.offset++
		m.refresh()
	case key.Matches(keyMsg, keys.Right):
		if m.offset > 0 {
			m.offset--
		}
		m.refresh()
	}
	return m, nil
}

func (m *progressModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 60
	}
	m.chart = barchart.New(chartWidth, 10)

	var bars []barchart.BarData
	for _, e := range m.entries {
		day, _ := time.Parse(progress.DateKey, e.Date)
		label := day.Format("Mon 02")

		var values []barchart.BarValue
		if e.Day != nil && e.Day.CompletedPomodoros > 0 {
			values = append(values, barchart.BarValue{
				Name:  "pomodoros",
				Value: float64(e.Day.CompletedPomodoros),
				Style: lipgloss.NewStyle().Foreground(colorPrimary),
			})
		} else {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m progressModel) view() string {
	w := m.width - 4

	start, end := m.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s", start.Format("Jan 02"), end.Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Progress"), "  ", dateLabel)

	today := m.s.tracker.Today()
	pct := m.s.tracker.Percentage()

	pctStyle := errorStyle
	switch {
	case pct >= 80:
		pctStyle = successStyle
	case pct >= 40:
		pctStyle = warningStyle
	}

	todayCard := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Today"),
		fmt.Sprintf("  Tasks      %d / %d", today.CompletedTasks, today.PlannedTasks),
		fmt.Sprintf("  Pomodoros  %d / %d", today.CompletedPomodoros, today.PlannedPomodoros),
		fmt.Sprintf("  Focused    %s", formatMinutes(today.TotalFocusMinutes)),
		fmt.Sprintf("  Completion %s", pctStyle.Render(fmt.Sprintf("%d%%", pct))),
	)

	sum := m.s.tasks.Summarize()
	backlogCard := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Backlog"),
		fmt.Sprintf("  Open       %d (%s planned)", sum.Incomplete, formatMinutes(sum.EstimatedMinutes)),
		fmt.Sprintf("  Done       %d (%s focused)", sum.Completed, formatMinutes(sum.FocusedMinutes)),
	)

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(todayCard), " ", panelStyle.Render(backlogCard),
	)

	historyRows := m.renderHistoryTable(w)
	nav := mutedStyle.Render("  ←/→: navigate weeks")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", cards, "", m.chart.View(), "", historyRows, "", nav,
		),
	)
}

func (m progressModel) renderHistoryTable(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %12s %10s %6s", "Date", "Tasks", "Pomodoros", "Focused", "Pct")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))

	for _, e := range m.entries {
		if e.Day == nil {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s", e.Date, "-")))
			continue
		}
		d := e.Day
		pct, _ := m.s.tracker.HistoricalPercentage(e.Date)
		if e.Date == m.s.tracker.Today().Date {
			pct = m.s.tracker.Percentage()
		}
		rows = append(rows, fmt.Sprintf("  %-12s %7d/%-2d %9d/%-2d %10s %5d%%",
			e.Date, d.CompletedTasks, d.PlannedTasks,
			d.CompletedPomodoros, d.PlannedPomodoros,
			formatMinutes(d.TotalFocusMinutes), pct,
		))
	}

	return strings.Join(rows, "\n")
}
