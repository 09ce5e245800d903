package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Domain keys for the persisted snapshot.
const (
	KeyTasks         = "tasks"
	KeyProjects      = "projects"
	KeyTimerSettings = "timer_settings"
	KeyDailyStats    = "daily_stats"
	KeyHistory       = "history"
	KeyAppSettings   = "app_settings"
)

// KeyTimerState holds the timer engine snapshot between sessions. It is
// session-local state, not part of the bulk snapshot contract.
const KeyTimerState = "timer_state"

// domainShape maps each domain to its expected top-level JSON container:
// '[' for lists, '{' for objects.
var domainShape = map[string]byte{
	KeyTasks:         '[',
	KeyProjects:      '[',
	KeyTimerSettings: '{',
	KeyDailyStats:    '{',
	KeyHistory:       '{',
	KeyAppSettings:   '{',
}

// Snapshot is a bulk export of every persisted domain.
type Snapshot struct {
	ExportedAt string                     `json:"exported_at"`
	Domains    map[string]json.RawMessage `json:"domains"`
}

// Snapshot returns every stored domain as one structured export. Domains
// never saved are omitted.
func (s *Store) Snapshot() (*Snapshot, error) {
	snap := &Snapshot{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Domains:    make(map[string]json.RawMessage),
	}
	for key := range domainShape {
		data, err := s.Get(key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("snapshot %q: %w", key, err)
		}
		snap.Domains[key] = json.RawMessage(data)
	}
	return snap, nil
}

// Import overwrites stored domains from snap. Each domain's top-level JSON
// shape is checked against the expected container type; domains with an
// unknown key or an invalid shape are skipped rather than aborting the
// import. The skipped keys are returned for reporting.
func (s *Store) Import(snap *Snapshot) ([]string, error) {
	var skipped []string
	for key, data := range snap.Domains {
		shape, ok := domainShape[key]
		if !ok || !hasShape(data, shape) {
			skipped = append(skipped, key)
			continue
		}
		if err := s.Put(key, data); err != nil {
			return skipped, fmt.Errorf("import %q: %w", key, err)
		}
	}
	return skipped, nil
}

func hasShape(data []byte, shape byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == shape && json.Valid(data)
}
