package storage

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "focusdo.db")
	s, err := New(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put("tasks", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen and read back
	s2, err := New(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	v, err := s2.Get("tasks")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "[]" {
		t.Fatalf("expected [], got %s", v)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

// ============================================================
// Key-value operations
// ============================================================

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("k", []byte(`1`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("k", []byte(`2`)); err != nil {
		t.Fatal(err)
	}

	v, err := s.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "2" {
		t.Fatalf("expected 2, got %s", v)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	s.Put("k", []byte(`1`))
	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing key is not an error
	if err := s.Delete("k"); err != nil {
		t.Fatalf("delete missing key: %v", err)
	}
}

func TestClearAndKeys(t *testing.T) {
	s := newTestStore(t)

	s.Put("a", []byte(`1`))
	s.Put("b", []byte(`2`))

	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	keys, _ = s.Keys()
	if len(keys) != 0 {
		t.Fatalf("expected no keys after clear, got %v", keys)
	}
}

// ============================================================
// JSON helpers
// ============================================================

func TestLoadJSONRoundTrip(t *testing.T) {
	s := newTestStore(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := s.SaveJSON("p", payload{Name: "deep work", Count: 3}); err != nil {
		t.Fatal(err)
	}

	var got payload
	if !s.LoadJSON("p", &got) {
		t.Fatal("expected LoadJSON to report true")
	}
	if got.Name != "deep work" || got.Count != 3 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoadJSONMissingKey(t *testing.T) {
	s := newTestStore(t)

	var got map[string]int
	if s.LoadJSON("missing", &got) {
		t.Fatal("expected false for missing key")
	}
}

func TestLoadJSONCorruptValue(t *testing.T) {
	s := newTestStore(t)

	s.Put("bad", []byte(`{not json`))

	var got map[string]int
	if s.LoadJSON("bad", &got) {
		t.Fatal("expected false for corrupt value")
	}
}

// ============================================================
// Snapshot / import
// ============================================================

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)

	s.Put(KeyTasks, []byte(`[{"id":"t1"}]`))
	s.Put(KeyDailyStats, []byte(`{"date":"2026-08-26"}`))
	// Session-local state must not appear in the snapshot.
	s.Put(KeyTimerState, []byte(`{"mode":"focus"}`))

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.ExportedAt == "" {
		t.Fatal("missing exported_at")
	}
	if _, ok := snap.Domains[KeyTasks]; !ok {
		t.Fatal("snapshot missing tasks domain")
	}
	if _, ok := snap.Domains[KeyProjects]; ok {
		t.Fatal("snapshot should omit unsaved domains")
	}
	if _, ok := snap.Domains[KeyTimerState]; ok {
		t.Fatal("snapshot should omit timer state")
	}

	// Import into a fresh store
	s2 := newTestStore(t)
	skipped, err := s2.Import(snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped domains: %v", skipped)
	}
	v, err := s2.Get(KeyTasks)
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != `[{"id":"t1"}]` {
		t.Fatalf("imported tasks mismatch: %s", v)
	}
}

func TestImportSkipsWrongShape(t *testing.T) {
	s := newTestStore(t)

	snap := &Snapshot{
		Domains: map[string]json.RawMessage{
			KeyTasks:      json.RawMessage(`{"not":"a list"}`), // tasks must be a list
			KeyDailyStats: json.RawMessage(`{"date":"2026-08-26"}`),
			"unknown_key": json.RawMessage(`[]`),
		},
	}

	skipped, err := s.Import(snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped domains, got %v", skipped)
	}

	if _, err := s.Get(KeyTasks); !errors.Is(err, ErrNotFound) {
		t.Fatal("malformed tasks domain should not be written")
	}
	if _, err := s.Get(KeyDailyStats); err != nil {
		t.Fatalf("valid domain should be written: %v", err)
	}
}

func TestImportSkipsInvalidJSON(t *testing.T) {
	s := newTestStore(t)

	snap := &Snapshot{
		Domains: map[string]json.RawMessage{
			KeyHistory: json.RawMessage(`{broken`),
		},
	}

	skipped, err := s.Import(snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 1 || skipped[0] != KeyHistory {
		t.Fatalf("expected history skipped, got %v", skipped)
	}
}
