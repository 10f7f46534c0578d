// Package registry persists the user's preferences as a single JSON object.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kaedenn/kext/config"
)

// ErrCorrupt is returned when the registry file exists but is not a JSON object.
var ErrCorrupt = errors.New("registry is not a valid JSON object")

// PreferenceSet maps keys to JSON values. Numbers decode as float64.
type PreferenceSet map[string]any

// Status describes what a read found on disk.
type Status int

// Read outcomes
const (
	StatusUnloaded   Status = iota // Nothing read yet
	StatusAbsent                   // No file; the set is empty
	StatusPresent                  // File parsed
	StatusCorrupt                  // File exists but is not a JSON object
	StatusUnreadable               // File exists but could not be read
)

// String returns the string representation of a Status
func (s Status) String() string {
	switch s {
	case StatusUnloaded:
		return "unloaded"
	case StatusAbsent:
		return "absent"
	case StatusPresent:
		return "present"
	case StatusCorrupt:
		return "corrupt"
	case StatusUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// ReadFile reads the registry at path. A missing file is an empty set, not
// an error.
func ReadFile(path string) (PreferenceSet, Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return PreferenceSet{}, StatusAbsent, nil
		}
		return nil, StatusUnreadable, fmt.Errorf("failed to read registry %s: %w", path, err)
	}

	var prefs PreferenceSet
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, StatusCorrupt, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	// "null" unmarshals into a nil map without error
	if prefs == nil {
		return nil, StatusCorrupt, fmt.Errorf("%w: %s: top-level value is null", ErrCorrupt, path)
	}
	return prefs, StatusPresent, nil
}

// WriteFile replaces the registry at path with prefs. The document is
// written to a temporary file in the same directory and renamed over the
// old one.
func WriteFile(path string, prefs PreferenceSet) error {
	if prefs == nil {
		prefs = PreferenceSet{}
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, config.DirPerm); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary registry: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return nil
}
