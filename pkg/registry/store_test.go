package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger counts diagnostics.
type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Logf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func newTestStore(t *testing.T) (*Store, *recordingLogger, *recordingLogger) {
	t.Helper()
	info, errs := &recordingLogger{}, &recordingLogger{}
	path := filepath.Join(t.TempDir(), "example@kaedenn.net", "registry.json")
	return NewStore(path, info, errs), info, errs
}

func TestStoreRead(t *testing.T) {
	t.Run("Absent is empty", func(t *testing.T) {
		s, _, errs := newTestStore(t)
		prefs, err := s.Read()
		require.NoError(t, err)
		assert.NotNil(t, prefs)
		assert.Empty(t, prefs)
		assert.Empty(t, errs.lines)
	})

	t.Run("Corrupt logs exactly one diagnostic", func(t *testing.T) {
		s, _, errs := newTestStore(t)
		require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
		require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0644))

		prefs, err := s.Read()
		assert.Nil(t, prefs)
		assert.True(t, errors.Is(err, ErrCorrupt))
		assert.Len(t, errs.lines, 1)
	})

	t.Run("Round trip", func(t *testing.T) {
		s, _, _ := newTestStore(t)
		want := PreferenceSet{"icon": "starred", "panel": float64(0), "extra": []any{"kept"}}
		require.NoError(t, s.Write(want))

		got, err := s.Read()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestStoreGet(t *testing.T) {
	s, info, _ := newTestStore(t)
	require.NoError(t, WriteFile(s.Path(), PreferenceSet{"icon": "starred", "zero": float64(0), "none": nil}))
	assert.Equal(t, StatusUnloaded, s.Status())

	assert.Equal(t, "starred", s.Get("icon", "system-run"))
	assert.Equal(t, StatusPresent, s.Status())
	assert.Equal(t, "right", s.Get("panel", "right"))

	// Present keys win even when their value is a zero value or null
	assert.Equal(t, float64(0), s.Get("zero", float64(7)))
	assert.Nil(t, s.Get("none", "fallback"))

	// Loaded once; later changes on disk are not picked up
	reads := len(info.lines)
	require.NoError(t, WriteFile(s.Path(), PreferenceSet{"icon": "changed"}))
	assert.Equal(t, "starred", s.Get("icon", "system-run"))
	assert.Len(t, info.lines, reads)
}

func TestStoreGetFallsBackOnCorrupt(t *testing.T) {
	s, _, errs := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("[1,2,3]"), 0644))

	assert.Equal(t, "system-run", s.Get("icon", "system-run"))
	assert.Equal(t, "right", s.Get("panel", "right"))
	assert.Equal(t, StatusCorrupt, s.Status())
	assert.Len(t, errs.lines, 1)
}

func TestStoreSet(t *testing.T) {
	s, _, _ := newTestStore(t)
	require.NoError(t, WriteFile(s.Path(), PreferenceSet{"unknown": "preserved"}))

	require.NoError(t, s.Set("panel", "left"))
	assert.Equal(t, "left", s.Get("panel", "right"))

	onDisk, _, err := ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, PreferenceSet{"unknown": "preserved", "panel": "left"}, onDisk)

	require.NoError(t, s.Remove("panel"))
	require.NoError(t, s.Remove("missing"))
	onDisk, _, err = ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, PreferenceSet{"unknown": "preserved"}, onDisk)

	assert.Equal(t, []string{"unknown"}, s.Keys())

	require.NoError(t, s.Reset())
	onDisk, _, err = ReadFile(s.Path())
	require.NoError(t, err)
	assert.Empty(t, onDisk)
}

func TestStoreSetFailureKeepsMemory(t *testing.T) {
	info, errs := &recordingLogger{}, &recordingLogger{}
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0644))
	s := NewStore(filepath.Join(parent, "registry.json"), info, errs)

	err := s.Set("icon", "starred")
	assert.Error(t, err)
	assert.Equal(t, "starred", s.Get("icon", "system-run"))
	// One for the failed read of the file under a non-directory, one for the write
	assert.Len(t, errs.lines, 2)
}

func TestStoreSnapshotIsCopy(t *testing.T) {
	s, _, _ := newTestStore(t)
	require.NoError(t, s.Set("a", "1"))

	snap := s.Snapshot()
	snap["a"] = "2"
	snap["b"] = "3"

	assert.Equal(t, "1", s.Get("a", nil))
	assert.Nil(t, s.Get("b", nil))
	assert.JSONEq(t, `{"a":"1"}`, s.String())
}

// readBackLogger reads the store from inside Logf, as a notifier checking a
// preference does.
type readBackLogger struct {
	s     *Store
	lines []string
}

func (l *readBackLogger) Logf(format string, args ...any) {
	l.s.Get("notifications-enabled", true)
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestStoreLogsOutsideLock(t *testing.T) {
	t.Run("Corrupt load", func(t *testing.T) {
		info, errs := &readBackLogger{}, &readBackLogger{}
		path := filepath.Join(t.TempDir(), "registry.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
		s := NewStore(path, info, errs)
		info.s, errs.s = s, s

		assert.Equal(t, "system-run", s.Get("icon", "system-run"))
		assert.Len(t, errs.lines, 1)

		require.NoError(t, s.Set("a", "1"))
		assert.Equal(t, []string{"a"}, s.Keys())
	})

	t.Run("Failed write", func(t *testing.T) {
		info, errs := &readBackLogger{}, &readBackLogger{}
		path := filepath.Join(t.TempDir(), "registry.json")
		s := NewStore(path, info, errs)
		info.s, errs.s = s, s

		require.NoError(t, os.Mkdir(path, 0755))
		assert.Error(t, s.Set("icon", "starred"))
		assert.Error(t, s.Reset())
		// One for the unreadable load, one per failed write
		assert.Len(t, errs.lines, 3)
	})
}
