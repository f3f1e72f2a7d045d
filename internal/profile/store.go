// Package profile persists per-cluster session values (Central URL, API
// token, cluster IDs) between invocations so repeated runs skip the
// discovery calls.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store is a JSON file holding key/value session state. Writes go
// through read-merge-write so concurrent runs lose at most their own
// keys, last writer wins per key.
type Store struct {
	path   string
	values map[string]string
}

// Open loads the profile at path, creating an empty one when the file
// does not exist yet
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: map[string]string{}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading profile %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("error parsing profile %s: %w", path, err)
	}
	return s, nil
}

// Get returns the value for key, empty string when unset
func (s *Store) Get(key string) string {
	return s.values[key]
}

// Set records a value in memory. Flush persists it.
func (s *Store) Set(key, value string) {
	s.values[key] = value
}

// Keys returns the stored keys
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

// Flush merges the in-memory values over the file's current content and
// writes the result back atomically
func (s *Store) Flush() error {
	merged := map[string]string{}
	if data, err := os.ReadFile(s.path); err == nil {
		// tolerate a corrupt file, our values replace it
		_ = json.Unmarshal(data, &merged)
	}
	for k, v := range s.values {
		merged[k] = v
	}
	s.values = merged

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding profile: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("error creating profile directory: %w", err)
	}
	tmp := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("error writing profile: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error replacing profile %s: %w", s.path, err)
	}
	return nil
}

// DefaultPath returns the profile location under the user's home
// directory
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".acs-ops-profile.json"
	}
	return filepath.Join(home, ".acs-ops", "profile.json")
}
