package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rhacs-labs/acs-ops/internal/types"
)

// RunStore persists and retrieves run results
type RunStore interface {
	Save(run *types.RunResult) error
	Last() (*types.RunResult, error)
}

// FileRunStore keeps the most recent run as a JSON file in a state
// directory
type FileRunStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileRunStore creates a store rooted at dir
func NewFileRunStore(dir string) *FileRunStore {
	return &FileRunStore{dir: dir}
}

// ErrNoRuns is returned when no run has been recorded yet
var ErrNoRuns = fmt.Errorf("no runs recorded")

func (s *FileRunStore) lastPath() string {
	return filepath.Join(s.dir, "last-run.json")
}

// Save writes the run, replacing any previous one
func (s *FileRunStore) Save(run *types.RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("error creating state directory: %w", err)
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding run: %w", err)
	}

	tmp := s.lastPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("error writing run: %w", err)
	}
	if err := os.Rename(tmp, s.lastPath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error replacing run file: %w", err)
	}
	return nil
}

// Last returns the most recently saved run
func (s *FileRunStore) Last() (*types.RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.lastPath())
	if os.IsNotExist(err) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("error reading run: %w", err)
	}

	var run types.RunResult
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("error parsing run: %w", err)
	}
	return &run, nil
}

// DefaultStateDir returns the state directory under the user's home
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".acs-ops-state"
	}
	return filepath.Join(home, ".acs-ops", "state")
}
