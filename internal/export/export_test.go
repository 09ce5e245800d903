package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/doruk/focusdo/internal/storage"
	"github.com/doruk/focusdo/internal/task"
)

func TestToCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.csv")

	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{
			ID:        "t1",
			Name:      "write report",
			Priority:  task.PriorityHigh,
			ProjectID: "p1",
			DueDate:   &due,
			Pomodoros: task.Pomodoros{Completed: 1, Total: 3},
			Tags:      []string{"deep", "work"},
			Subtasks:  []task.Subtask{{ID: "s1", Name: "outline"}},
			CreatedAt: time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:        "t2",
			Name:      "inbox task",
			Priority:  task.PriorityMedium,
			Completed: true,
			Pomodoros: task.Pomodoros{Total: 1},
			CreatedAt: time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC),
		},
	}
	projects := map[string]*task.Project{
		"p1": {ID: "p1", Name: "Reports"},
	}

	if err := ToCSV(tasks, projects, path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 { // header + 2 tasks
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0][0] != "ID" {
		t.Fatalf("missing header: %v", records[0])
	}

	first := records[1]
	if first[1] != "write report" || first[2] != "Reports" || first[3] != "high" {
		t.Fatalf("bad row: %v", first)
	}
	if first[6] != "1/3" {
		t.Fatalf("bad pomodoro column: %q", first[6])
	}
	if !strings.Contains(first[7], "deep") {
		t.Fatalf("bad tags column: %q", first[7])
	}

	second := records[2]
	if second[2] != "Inbox" {
		t.Fatalf("inbox task should export project Inbox, got %q", second[2])
	}
	if second[4] != "true" {
		t.Fatalf("completed flag missing: %v", second)
	}
	if second[5] != "" {
		t.Fatalf("undated task should have an empty due column, got %q", second[5])
	}
}

func TestJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")

	snap := &storage.Snapshot{
		ExportedAt: "2026-08-26T10:00:00Z",
		Domains: map[string]json.RawMessage{
			storage.KeyTasks:      json.RawMessage(`[{"id":"t1"}]`),
			storage.KeyDailyStats: json.RawMessage(`{"date":"2026-08-26"}`),
		},
	}

	if err := ToJSON(snap, path); err != nil {
		t.Fatal(err)
	}

	got, err := FromJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.ExportedAt != snap.ExportedAt {
		t.Fatalf("exported_at mismatch: %q", got.ExportedAt)
	}
	if len(got.Domains) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(got.Domains))
	}
}

func TestFromJSONMissingFile(t *testing.T) {
	if _, err := FromJSON(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromJSONMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte(`{broken`), 0o644)

	if _, err := FromJSON(path); err == nil {
		t.Fatal("expected parse error")
	}
}
