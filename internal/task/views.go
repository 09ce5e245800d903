package task

import "time"

// Group is a project bucket with its tasks and aggregate planned minutes.
// A nil Project means the inbox.
type Group struct {
	Project          *Project
	Tasks            []Task
	EstimatedMinutes int
}

// Summary aggregates the live collection. Incomplete is total minus
// completed; EstimatedMinutes covers incomplete tasks, FocusedMinutes the
// sessions already recorded on completed tasks.
type Summary struct {
	Incomplete       int
	Completed        int
	EstimatedMinutes int
	FocusedMinutes   int
}

func (s *Store) filtered(keep func(*Task) bool) []Task {
	var out []Task
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, *t.clone())
		}
	}
	return out
}

// DueToday returns tasks due on the current calendar day.
func (s *Store) DueToday() []Task {
	today := s.now()
	return s.filtered(func(t *Task) bool { return t.DueOn(today) })
}

// DueTomorrow returns tasks due on the next calendar day.
func (s *Store) DueTomorrow() []Task {
	tomorrow := s.now().AddDate(0, 0, 1)
	return s.filtered(func(t *Task) bool { return t.DueOn(tomorrow) })
}

// DueThisWeek returns tasks due within the current calendar week. The week
// starts on weekStart and spans 7 days inclusive.
func (s *Store) DueThisWeek(weekStart time.Weekday) []Task {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	back := (int(today.Weekday()) - int(weekStart) + 7) % 7
	start := today.AddDate(0, 0, -back)
	end := start.AddDate(0, 0, 7)

	return s.filtered(func(t *Task) bool {
		if t.DueDate == nil {
			return false
		}
		d := *t.DueDate
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
		return !day.Before(start) && day.Before(end)
	})
}

// HighPriority returns tasks at high priority or above.
func (s *Store) HighPriority() []Task {
	return s.filtered(func(t *Task) bool { return t.Priority >= PriorityHigh })
}

// CompletedTasks returns tasks whose completed flag is set.
func (s *Store) CompletedTasks() []Task {
	return s.filtered(func(t *Task) bool { return t.Completed })
}

// ByProject returns tasks belonging to projectID, in collection order.
// An empty projectID selects the inbox.
func (s *Store) ByProject(projectID string) []Task {
	return s.filtered(func(t *Task) bool { return t.ProjectID == projectID })
}

// ByTag returns tasks carrying the given tag.
func (s *Store) ByTag(tag string) []Task {
	return s.filtered(func(t *Task) bool { return t.HasTag(tag) })
}

// GroupByProject buckets tasks by project, the inbox group first, then
// projects in creation order. Each group carries its aggregate planned
// minutes.
func (s *Store) GroupByProject() []Group {
	groups := []Group{{}}
	index := map[string]int{"": 0}
	for _, p := range s.projects {
		c := *p
		index[p.ID] = len(groups)
		groups = append(groups, Group{Project: &c})
	}

	for _, t := range s.tasks {
		i, ok := index[t.ProjectID]
		if !ok {
			i = 0 // dangling reference renders in the inbox
		}
		groups[i].Tasks = append(groups[i].Tasks, *t.clone())
		groups[i].EstimatedMinutes += t.EstimatedMinutes()
	}
	return groups
}

// Summarize recomputes the collection statistics from the live tasks.
func (s *Store) Summarize() Summary {
	var sum Summary
	for _, t := range s.tasks {
		if t.Completed {
			sum.Completed++
			sum.FocusedMinutes += t.FocusedMinutes()
		} else {
			sum.Incomplete++
			sum.EstimatedMinutes += t.EstimatedMinutes()
		}
	}
	return sum
}
