package tui

import (
	"fmt"
	"time"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewProjects
	viewTimer
	viewProgress
	viewSettings
)

var viewNames = []string{"Tasks", "Projects", "Timer", "Progress", "Settings"}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// formatClock renders seconds as mm:ss (the countdown display).
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// formatMinutes renders a minute total as "1h 05m" or "45m".
func formatMinutes(mins int) string {
	if mins >= 60 {
		return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
	}
	return fmt.Sprintf("%dm", mins)
}
