// Package jsonfile provides JSON file backed persistence.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dev-namespace/hydra/internal/core/history"
)

// HistoryStore persists run records as a JSON array on disk, newest
// first. Every operation reads or rewrites the whole file; run history
// is small and bounded by maxEntries so that stays cheap.
type HistoryStore struct {
	path       string
	maxEntries int
	mu         sync.RWMutex
}

// NewHistoryStore creates a store backed by the file at path.
// maxEntries caps retained records; 0 disables pruning.
func NewHistoryStore(path string, maxEntries int) *HistoryStore {
	return &HistoryStore{path: path, maxEntries: maxEntries}
}

// List returns every recorded run, newest first.
func (s *HistoryStore) List(ctx context.Context) ([]history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

// Get returns the run with the given ID, or history.ErrNotFound.
func (s *HistoryStore) Get(ctx context.Context, id string) (history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.read()
	if err != nil {
		return history.Entry{}, err
	}

	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return history.Entry{}, history.ErrNotFound
}

// LastFailed returns the most recent run with a nonzero exit code, or
// history.ErrNotFound when every recorded run succeeded.
func (s *HistoryStore) LastFailed(ctx context.Context) (history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.read()
	if err != nil {
		return history.Entry{}, err
	}

	for _, e := range entries {
		if e.Failed() {
			return e, nil
		}
	}
	return history.Entry{}, history.ErrNotFound
}

// Save prepends a run record and prunes anything past maxEntries.
func (s *HistoryStore) Save(ctx context.Context, entry history.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}

	entries = append([]history.Entry{entry}, entries...)
	if s.maxEntries > 0 && len(entries) > s.maxEntries {
		entries = entries[:s.maxEntries]
	}

	return s.write(entries)
}

// Clear removes every recorded run.
func (s *HistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write([]history.Entry{})
}

// read loads the on-disk array. A missing or empty file is an empty
// history, not an error.
func (s *HistoryStore) read() ([]history.Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var entries []history.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("history file corrupted (run 'hydra history --clear' to reset): %w", err)
	}
	return entries, nil
}

// write replaces the on-disk array via a temp file and rename so a
// crash mid-write never leaves a truncated history behind.
func (s *HistoryStore) write(entries []history.Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename history file: %w", err)
	}
	return nil
}
