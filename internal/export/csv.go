package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/doruk/focusdo/internal/task"
)

// ToCSV writes the task list to path, one row per task.
func ToCSV(tasks []task.Task, projects map[string]*task.Project, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Name", "Project", "Priority", "Completed", "Due", "Pomodoros", "Tags", "Subtasks", "Created"}); err != nil {
		return err
	}

	for _, t := range tasks {
		projectName := "Inbox"
		if p, ok := projects[t.ProjectID]; ok {
			projectName = p.Name
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Local().Format("2006-01-02")
		}

		row := []string{
			t.ID,
			t.Name,
			projectName,
			t.Priority.String(),
			fmt.Sprintf("%t", t.Completed),
			due,
			fmt.Sprintf("%d/%d", t.Pomodoros.Completed, t.Pomodoros.Total),
			strings.Join(t.Tags, ","),
			fmt.Sprintf("%d", len(t.Subtasks)),
			t.CreatedAt.Local().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
