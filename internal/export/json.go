package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/doruk/focusdo/internal/storage"
)

// ToJSON writes a full storage snapshot to path, pretty-printed so the
// file doubles as a human-readable backup.
func ToJSON(snap *storage.Snapshot, path string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// FromJSON reads a snapshot previously written by ToJSON.
func FromJSON(path string) (*storage.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json file: %w", err)
	}

	var snap storage.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}
