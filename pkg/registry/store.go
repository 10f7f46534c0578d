package registry

import (
	"encoding/json"
	"maps"
	"sort"
	"sync"
)

// Logger receives the store's diagnostics.
type Logger interface {
	Logf(format string, args ...any)
}

// Store is the lazily loaded registry of one owner. The file is read once,
// on first access, and rewritten in full after every change. Other
// processes writing the same file are not coordinated; the last write wins.
type Store struct {
	path string
	info Logger
	errs Logger

	mu     sync.Mutex
	prefs  PreferenceSet
	status Status
}

// NewStore creates a Store backed by path. info receives routine messages,
// errs receives read and write failures.
func NewStore(path string, info, errs Logger) *Store {
	return &Store{path: path, info: info, errs: errs}
}

// Path returns the registry file path.
func (s *Store) Path() string {
	return s.path
}

// Status returns the outcome of the load, or StatusUnloaded before first use.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// diagnostics holds messages raised while mu is held. Loggers may read
// the store back (a notifier checking a preference), so they run only
// after mu is released.
type diagnostics []func()

func (d *diagnostics) add(fn func()) {
	*d = append(*d, fn)
}

func (d *diagnostics) flush() {
	for _, fn := range *d {
		fn()
	}
}

// Read reads the registry from disk without touching the loaded set.
// Corrupt and unreadable files are reported once and returned as errors;
// use errors.Is(err, ErrCorrupt) to tell them apart.
func (s *Store) Read() (PreferenceSet, error) {
	prefs, status, err := ReadFile(s.path)
	s.reportRead(status, err)
	return prefs, err
}

func (s *Store) reportRead(status Status, err error) {
	switch status {
	case StatusAbsent:
		s.info.Logf("Registry %s does not exist", s.path)
	case StatusPresent:
		s.info.Logf("Read registry %s", s.path)
	default:
		s.errs.Logf("Failed to read registry: %v", err)
	}
}

// Write replaces the registry on disk with prefs. Failures are reported
// and returned.
func (s *Store) Write(prefs PreferenceSet) error {
	err := WriteFile(s.path, prefs)
	s.reportWrite(err)
	return err
}

func (s *Store) reportWrite(err error) {
	if err != nil {
		s.errs.Logf("Failed to write registry: %v", err)
		return
	}
	s.info.Logf("Wrote registry %s", s.path)
}

// save must be called with mu held.
func (s *Store) save(d *diagnostics) error {
	err := WriteFile(s.path, s.prefs)
	d.add(func() { s.reportWrite(err) })
	return err
}

// ensureLoaded must be called with mu held. A failed load leaves an empty
// set so reads fall back to defaults.
func (s *Store) ensureLoaded(d *diagnostics) {
	if s.status != StatusUnloaded {
		return
	}
	prefs, status, err := ReadFile(s.path)
	if prefs == nil {
		prefs = PreferenceSet{}
	}
	s.prefs, s.status = prefs, status
	d.add(func() { s.reportRead(status, err) })
}

// Get returns the value stored for key, or fallback if the key is absent.
func (s *Store) Get(key string, fallback any) any {
	var d diagnostics
	defer d.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(&d)
	if v, ok := s.prefs[key]; ok {
		return v
	}
	return fallback
}

// Set stores value under key and rewrites the registry. A failed write
// keeps the in-memory change.
func (s *Store) Set(key string, value any) error {
	var d diagnostics
	defer d.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(&d)
	s.prefs[key] = value
	return s.save(&d)
}

// Remove deletes key and rewrites the registry.
func (s *Store) Remove(key string) error {
	var d diagnostics
	defer d.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(&d)
	if _, ok := s.prefs[key]; !ok {
		return nil
	}
	delete(s.prefs, key)
	return s.save(&d)
}

// Reset clears every key and rewrites the registry.
func (s *Store) Reset() error {
	var d diagnostics
	defer d.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(&d)
	s.prefs = PreferenceSet{}
	return s.save(&d)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	var d diagnostics
	defer d.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(&d)
	keys := make([]string, 0, len(s.prefs))
	for k := range s.prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a shallow copy of the loaded set.
func (s *Store) Snapshot() PreferenceSet {
	var d diagnostics
	defer d.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(&d)
	return maps.Clone(s.prefs)
}

// String renders the loaded set as JSON, for display.
func (s *Store) String() string {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
