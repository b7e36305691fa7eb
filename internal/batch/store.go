package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"charsmith/internal/core/domain"
)

var (
	// ErrStateNotFound is returned when no state exists for a batch.
	ErrStateNotFound = errors.New("batch state not found")

	// ErrStateCorrupt is returned when a state file exists but cannot
	// be parsed. Callers must treat this as "state unknown", never as
	// "state is empty".
	ErrStateCorrupt = errors.New("batch state corrupt")
)

const stateSuffix = ".json"

// StateStore persists BatchState as one JSON document per batch in a
// dedicated directory. Writes go through a temp file, fsync and an
// atomic rename under an exclusive file lock; readers never observe a
// partially written state.
type StateStore struct {
	dir string
}

// NewStateStore opens (creating if needed) a state directory.
func NewStateStore(dir string) (*StateStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &StateStore{dir: dir}, nil
}

func (s *StateStore) path(batchID string) string {
	return filepath.Join(s.dir, "batch_"+batchID+stateSuffix)
}

func (s *StateStore) lockPath(batchID string) string {
	return filepath.Join(s.dir, "batch_"+batchID+".lock")
}

// Save durably writes the state. The rename is the single commit point.
func (s *StateStore) Save(state *domain.BatchState) error {
	if state.BatchID == "" {
		return fmt.Errorf("refusing to save state without batch_id")
	}

	lock := flock.New(s.lockPath(state.BatchID))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock state file: %w", err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "batch_"+state.BatchID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(state.BatchID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}

// Load reads the state for a batch id.
func (s *StateStore) Load(batchID string) (*domain.BatchState, error) {
	return s.loadFile(s.path(batchID))
}

func (s *StateStore) loadFile(path string) (*domain.BatchState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStateNotFound, path)
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	var state domain.BatchState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStateCorrupt, path, err)
	}
	if state.BatchID == "" {
		return nil, fmt.Errorf("%w: %s: missing batch_id", ErrStateCorrupt, path)
	}
	return &state, nil
}

// List loads every parseable state in the directory, newest first.
// Unparseable files are logged and skipped.
func (s *StateStore) List() ([]*domain.BatchState, error) {
	paths, err := s.stateFiles()
	if err != nil {
		return nil, err
	}

	var states []*domain.BatchState
	for _, path := range paths {
		state, err := s.loadFile(path)
		if err != nil {
			slog.Warn("Skipping unreadable state file", "path", path, "error", err)
			continue
		}
		states = append(states, state)
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].StartTime.After(states[j].StartTime)
	})
	return states, nil
}

// LoadMostRecent returns the state with the newest start time.
func (s *StateStore) LoadMostRecent() (*domain.BatchState, error) {
	states, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("%w: no batches in %s", ErrStateNotFound, s.dir)
	}
	return states[0], nil
}

// Delete removes the state for exactly the given batch id. Candidates
// are located by loading them and comparing the embedded batch_id field;
// filename matching is not used because one id can be a prefix of
// another.
func (s *StateStore) Delete(batchID string) error {
	paths, err := s.stateFiles()
	if err != nil {
		return err
	}

	for _, path := range paths {
		state, err := s.loadFile(path)
		if err != nil {
			continue
		}
		if state.BatchID != batchID {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete state for batch %s: %w", batchID, err)
		}
		os.Remove(s.lockPath(batchID))
		return nil
	}
	return fmt.Errorf("%w: %s", ErrStateNotFound, batchID)
}

// Clean removes state files older than the retention window. A file
// that fails to parse is logged and skipped; it never aborts the sweep.
// Returns the number of files removed.
func (s *StateStore) Clean(olderThan time.Duration) (int, error) {
	paths, err := s.stateFiles()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, path := range paths {
		state, err := s.loadFile(path)
		if err != nil {
			slog.Warn("Skipping unreadable state file during cleanup", "path", path, "error", err)
			continue
		}
		if state.StartTime.After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			slog.Warn("Failed to remove state file", "path", path, "error", err)
			continue
		}
		os.Remove(s.lockPath(state.BatchID))
		removed++
	}
	return removed, nil
}

func (s *StateStore) stateFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read state directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), stateSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}
	return paths, nil
}
