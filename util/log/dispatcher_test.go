package log

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFile collects appended bytes; Close is counted so tests can check
// that every opened handle was closed.
type memFile struct {
	buf    *bytes.Buffer
	closed *int
}

func (f memFile) Write(p []byte) (int, error) { return f.buf.Write(p) }
func (f memFile) Close() error {
	*f.closed++
	return nil
}

// recorder captures everything a Dispatcher emits.
type recorder struct {
	console []string
	errs    []string
	notes   []string
	files   map[string]*bytes.Buffer
	opens   []string
	closed  int
	openErr error
}

func newRecorder() *recorder {
	return &recorder{files: make(map[string]*bytes.Buffer)}
}

func (r *recorder) open(path string) (io.WriteCloser, error) {
	r.opens = append(r.opens, path)
	if r.openErr != nil {
		return nil, r.openErr
	}
	buf, ok := r.files[path]
	if !ok {
		buf = &bytes.Buffer{}
		r.files[path] = buf
	}
	return memFile{buf: buf, closed: &r.closed}, nil
}

func (r *recorder) dispatcher(opts ...Option) *Dispatcher {
	clock := time.Date(2024, 3, 9, 7, 5, 3, 0, time.Local)
	base := []Option{
		WithTitle("Test"),
		WithConsole(func(line string) { r.console = append(r.console, line) }),
		WithErrorSink(func(line string) { r.errs = append(r.errs, line) }),
		WithNotifier(func(title, msg string) { r.notes = append(r.notes, title+"|"+msg) }),
		WithOpener(r.open),
		WithClock(func() time.Time { return clock }),
	}
	return NewDispatcher(append(base, opts...)...)
}

var noOrigin = Config{Attribution: Bool(false)}

func TestModeString(t *testing.T) {
	assert.Equal(t, "none", Mode(0).String())
	assert.Equal(t, "log", OutLog.String())
	assert.Equal(t, "log|notify|file", (OutLog | OutNotify | OutFile).String())
	assert.True(t, (OutError | OutFile).Has(OutFile))
	assert.False(t, (OutError | OutFile).Has(OutLog))
}

func TestResolve(t *testing.T) {
	r := newRecorder()
	d := r.dispatcher()

	t.Run("Defaults", func(t *testing.T) {
		c := d.MakeLogger("P", Config{}).Resolve()
		assert.Equal(t, OutLog, c.Mode)
		assert.Equal(t, "\n", c.EOL)
		assert.Empty(t, c.Path)
		assert.False(t, *c.Escape)
		assert.False(t, *c.Timestamp)
		assert.True(t, *c.Attribution)
	})

	t.Run("Override wins field by field", func(t *testing.T) {
		l := d.MakeLogger("P", Config{Mode: OutFile, Path: "/base", Escape: Bool(true), Timestamp: Bool(true)})
		c := l.Resolve(Config{Path: "/call", Escape: Bool(false)})
		assert.Equal(t, OutFile, c.Mode)
		assert.Equal(t, "/call", c.Path)
		assert.False(t, *c.Escape)
		assert.True(t, *c.Timestamp)

		// Base is untouched by a previous override
		c = l.Resolve()
		assert.Equal(t, "/base", c.Path)
		assert.True(t, *c.Escape)
	})

	t.Run("Zero mode and empty EOL inherit", func(t *testing.T) {
		l := d.MakeLogger("P", Config{Mode: OutError | OutFile, EOL: "\r\n"})
		c := l.Resolve(Config{Mode: 0, EOL: ""})
		assert.Equal(t, OutError|OutFile, c.Mode)
		assert.Equal(t, "\r\n", c.EOL)
	})
}

func TestMessageFormat(t *testing.T) {
	tests := []struct {
		name     string
		base     Config
		msg      string
		expected string
	}{
		{"Plain", noOrigin, "hello", "[P]: hello"},
		{"Timestamp", Config{Attribution: Bool(false), Timestamp: Bool(true)}, "hello", "[P] [07:05:03]: hello"},
		{"Explicit origin", Config{Origin: "panel:42"}, "hello", "[P] [panel:42]: hello"},
		{"Timestamp and origin", Config{Origin: "panel:42", Timestamp: Bool(true)}, "hi", "[P] [07:05:03] [panel:42]: hi"},
		{"Escape", Config{Attribution: Bool(false), Escape: Bool(true)}, "a\nb\x01", `[P]: a\nb\x01`},
		{"No escape", noOrigin, "a\tb", "[P]: a\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecorder()
			r.dispatcher().MakeLogger("P", tt.base).Log(tt.msg)
			require.Len(t, r.console, 1)
			assert.Equal(t, tt.expected, r.console[0])
		})
	}
}

func TestAttributionFromCaller(t *testing.T) {
	r := newRecorder()
	l := r.dispatcher().MakeLogger("P", Config{})

	l.Log("from Log")
	l.Logf("from %s", "Logf")

	require.Len(t, r.console, 2)
	assert.Regexp(t, `^\[P\] \[dispatcher_test\.go:TestAttributionFromCaller:\d+\]: from Log$`, r.console[0])
	assert.Regexp(t, `^\[P\] \[dispatcher_test\.go:TestAttributionFromCaller:\d+\]: from Logf$`, r.console[1])

	l.Log("quiet", noOrigin)
	assert.Equal(t, "[P]: quiet", r.console[2])
}

func TestFanOut(t *testing.T) {
	t.Run("All destinations", func(t *testing.T) {
		r := newRecorder()
		l := r.dispatcher().MakeLogger("P", Config{
			Mode:        OutLog | OutError | OutNotify | OutFile,
			Path:        "/tmp/p.log",
			Attribution: Bool(false),
		})
		l.Log("msg")

		assert.Equal(t, []string{"[P]: msg"}, r.console)
		assert.Equal(t, []string{"[P]: msg"}, r.errs)
		assert.Equal(t, []string{"Test|[P]: msg"}, r.notes)
		assert.Equal(t, "[P]: msg\n", r.files["/tmp/p.log"].String())
		assert.Equal(t, 1, r.closed)
	})

	t.Run("File failure does not stop notification", func(t *testing.T) {
		r := newRecorder()
		r.openErr = errors.New("permission denied")
		l := r.dispatcher().MakeLogger("P", Config{Mode: OutFile | OutNotify, Path: "/root/denied.log", Attribution: Bool(false)})

		assert.NotPanics(t, func() { l.Log("msg") })

		assert.Equal(t, []string{"/root/denied.log"}, r.opens)
		assert.Equal(t, []string{"Test|[P]: msg"}, r.notes)
		require.Len(t, r.errs, 1)
		assert.Contains(t, r.errs[0], "permission denied")
		assert.Empty(t, r.console)
	})

	t.Run("Panicking notifier does not stop file", func(t *testing.T) {
		r := newRecorder()
		d := r.dispatcher()
		d.RegisterNotifier(func(string, string) { panic("no display") })
		l := d.MakeLogger("P", Config{Mode: OutNotify | OutFile, Path: "/p.log", Attribution: Bool(false)})

		assert.NotPanics(t, func() { l.Log("msg") })

		assert.Equal(t, "[P]: msg\n", r.files["/p.log"].String())
		require.Len(t, r.errs, 1)
		assert.Contains(t, r.errs[0], "no display")
	})
}

func TestFilePath(t *testing.T) {
	t.Run("Per-call override applies to one call", func(t *testing.T) {
		r := newRecorder()
		l := r.dispatcher().MakeLogger("P", Config{Mode: OutFile, Path: "/base.log", Attribution: Bool(false)})

		l.Log("one", Config{Path: "/override.log"})
		l.Log("two")

		assert.Equal(t, []string{"/override.log", "/base.log"}, r.opens)
		assert.Equal(t, "[P]: one\n", r.files["/override.log"].String())
		assert.Equal(t, "[P]: two\n", r.files["/base.log"].String())
	})

	t.Run("Dispatcher default path", func(t *testing.T) {
		r := newRecorder()
		l := r.dispatcher(WithDefaultPath("/default.log")).MakeLogger("P", Config{Mode: OutFile, Attribution: Bool(false)})
		l.Log("msg", Config{EOL: "\r\n"})
		assert.Equal(t, "[P]: msg\r\n", r.files["/default.log"].String())
	})

	t.Run("Missing path is reported once", func(t *testing.T) {
		r := newRecorder()
		l := r.dispatcher().MakeLogger("P", Config{Mode: OutFile | OutLog, Attribution: Bool(false)})

		l.Log("one")
		l.Log("two")

		assert.Empty(t, r.opens)
		require.Len(t, r.errs, 1)
		assert.Contains(t, r.errs[0], "without a path")
		assert.Equal(t, []string{"[P]: one", "[P]: two"}, r.console)
	})
}

func TestMissingNotifierReportedOnce(t *testing.T) {
	r := newRecorder()
	d := r.dispatcher()
	d.RegisterNotifier(nil)
	l := d.MakeLogger("P", Config{Mode: OutNotify, Attribution: Bool(false)})

	l.Log("one")
	l.Log("two")

	assert.Empty(t, r.notes)
	assert.Len(t, r.errs, 1)
}

func TestAppendToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "extension.log")
	var errs []string
	d := NewDispatcher(
		WithConsole(func(string) {}),
		WithErrorSink(func(line string) { errs = append(errs, line) }),
	)
	l := d.MakeLogger("KExtLog", Config{Mode: OutFile, Path: path, Attribution: Bool(false)})

	l.Log("first")
	l.Log("second")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[KExtLog]: first\n[KExtLog]: second\n", string(data))
	assert.Empty(t, errs)
}

func logVia(l *Logger, msg string) {
	l.Output(2, msg)
}

func TestOutputCallDepth(t *testing.T) {
	r := newRecorder()
	l := r.dispatcher().MakeLogger("P", Config{})

	logVia(l, "wrapped")

	require.Len(t, r.console, 1)
	assert.Regexp(t, `^\[P\] \[dispatcher_test\.go:TestOutputCallDepth:\d+\]: wrapped$`, r.console[0])
}
