package env

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaedenn/kext/config"
	"github.com/kaedenn/kext/pkg/registry"
	"github.com/kaedenn/kext/util/log"
)

type sinks struct {
	console []string
	errs    []string
	notes   []string
}

func newTestEnv(t *testing.T) (*Env, *sinks) {
	t.Helper()
	s := &sinks{}
	e, err := New(t.TempDir(),
		log.WithConsole(func(line string) { s.console = append(s.console, line) }),
		log.WithErrorSink(func(line string) { s.errs = append(s.errs, line) }),
		log.WithNotifier(func(title, msg string) { s.notes = append(s.notes, title+"|"+msg) }),
	)
	require.NoError(t, err)
	return e, s
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	e, _ := newTestEnv(t)
	assert.Equal(t, config.RegistryPath(e.CacheDir()), e.Store.Path())
	assert.Equal(t, registry.StatusUnloaded, e.Store.Status())
	assert.Equal(t, config.DefaultIcon, e.Config.GetIcon())
}

func TestStandardLoggers(t *testing.T) {
	t.Run("Notify", func(t *testing.T) {
		e, s := newTestEnv(t)
		e.Notify.Log("KExt button has been pressed", log.Config{Attribution: log.Bool(false)})

		assert.Equal(t, []string{"[KExtLog]: KExt button has been pressed"}, s.console)
		assert.Equal(t, []string{config.AppName + "|[KExtLog]: KExt button has been pressed"}, s.notes)
		assert.Equal(t, []string{"[KExtLog]: KExt button has been pressed"}, readLines(t, config.LogPath(e.CacheDir())))
	})

	t.Run("ErrorNotify", func(t *testing.T) {
		e, s := newTestEnv(t)
		e.ErrorNotify.Log("boom", log.Config{Attribution: log.Bool(false)})

		assert.Empty(t, s.console)
		assert.Equal(t, []string{"[KExtError]: boom"}, s.errs)
		assert.Len(t, s.notes, 1)
		assert.FileExists(t, config.LogPath(e.CacheDir()))
	})

	t.Run("Debug goes to the debug file", func(t *testing.T) {
		e, s := newTestEnv(t)
		require.NoError(t, e.Config.SetDebugEnabled(true))
		s.console = nil

		e.Debugf("value=%d", 3)

		require.Len(t, s.console, 1)
		assert.Regexp(t, `^\[KExtDebug\] \[\d\d:\d\d:\d\d\] \[env_test\.go:[^:]+:\d+\]: value=3$`, s.console[0])
		lines := readLines(t, config.DebugLogPath(e.CacheDir()))
		assert.Equal(t, s.console, lines)
	})

	t.Run("Debug disabled", func(t *testing.T) {
		e, s := newTestEnv(t)
		e.Debugf("hidden")
		for _, line := range s.console {
			assert.NotContains(t, line, DebugPrefix)
		}
		assert.NoFileExists(t, config.DebugLogPath(e.CacheDir()))
	})

	t.Run("Errorf", func(t *testing.T) {
		e, s := newTestEnv(t)
		e.Errorf("failed: %s", "reason")
		require.Len(t, s.errs, 1)
		assert.Contains(t, s.errs[0], "failed: reason")
		assert.Empty(t, s.notes)
	})
}

func TestStoreDiagnostics(t *testing.T) {
	e, s := newTestEnv(t)
	require.NoError(t, os.WriteFile(e.Store.Path(), []byte("[1, 2]"), 0644))

	assert.Equal(t, "fallback", e.Store.Get("icon", "fallback"))
	assert.Equal(t, registry.StatusCorrupt, e.Store.Status())

	require.Len(t, s.errs, 1)
	assert.Contains(t, s.errs[0], "[KExtError]")
	assert.Len(t, s.notes, 1)
}

// within fails the test if fn does not return in time.
func within(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("call did not return")
	}
}

func TestStoreDiagnosticsReadingPreferences(t *testing.T) {
	// The UI notifier checks the notifications preference before showing
	// anything, so error notifications re-enter the store.
	newEnv := func(t *testing.T) (*Env, *[]string) {
		var notes []string
		e, err := New(t.TempDir(),
			log.WithConsole(func(string) {}),
			log.WithErrorSink(func(string) {}),
		)
		require.NoError(t, err)
		e.RegisterNotifier(func(_, msg string) {
			if e.Config.GetNotificationsEnabled() {
				notes = append(notes, msg)
			}
		})
		return e, &notes
	}

	t.Run("Corrupt load", func(t *testing.T) {
		e, notes := newEnv(t)
		require.NoError(t, os.WriteFile(e.Store.Path(), []byte("{not json"), 0644))

		var icon string
		within(t, 3*time.Second, func() { icon = e.Config.GetIcon() })
		assert.Equal(t, config.DefaultIcon, icon)
		require.Len(t, *notes, 1)
		assert.Contains(t, (*notes)[0], "Failed to read registry")
	})

	t.Run("Failed write", func(t *testing.T) {
		e, notes := newEnv(t)
		assert.Equal(t, config.DefaultIcon, e.Config.GetIcon())
		// A directory in place of the file makes the final rename fail
		require.NoError(t, os.Mkdir(e.Store.Path(), 0755))

		var err error
		within(t, 3*time.Second, func() { err = e.Config.SetIcon("starred") })
		assert.Error(t, err)
		assert.Equal(t, "starred", e.Config.GetIcon())
		require.Len(t, *notes, 1)
		assert.Contains(t, (*notes)[0], "Failed to write registry")
	})
}

func TestPts(t *testing.T) {
	e, _ := newTestEnv(t)
	l := e.Pts(3)
	assert.Same(t, l, e.Pts(3))
	assert.NotSame(t, l, e.Pts(4))
	assert.Equal(t, "/dev/pts/3", l.Resolve().Path)
	assert.Equal(t, log.OutFile, l.Resolve().Mode)
	assert.Equal(t, LogPrefix, l.Prefix())
}

func TestNotifierRegisteredLater(t *testing.T) {
	dir := t.TempDir()
	var errs, notes []string
	e, err := New(dir,
		log.WithConsole(func(string) {}),
		log.WithErrorSink(func(line string) { errs = append(errs, line) }),
	)
	require.NoError(t, err)

	e.Notify.Log("early")
	assert.Len(t, errs, 1)

	e.RegisterNotifier(func(_, msg string) { notes = append(notes, msg) })
	e.Notify.Log("late", log.Config{Attribution: log.Bool(false)})
	assert.Equal(t, []string{"[KExtLog]: late"}, notes)
	assert.FileExists(t, filepath.Join(dir, config.LogFile))
}
