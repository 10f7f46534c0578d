package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kaedenn/kext/config"
	"github.com/kaedenn/kext/util"
)

// Mode is a set of output destinations. The flags are independent; one
// call may write to several of them.
type Mode uint8

// Output destinations
const (
	OutLog    Mode = 1 << iota // console (standard logger)
	OutError                   // error channel
	OutNotify                  // user notification
	OutFile                    // append to a file
)

var modeNames = []struct {
	mode Mode
	name string
}{
	{OutLog, "log"},
	{OutError, "error"},
	{OutNotify, "notify"},
	{OutFile, "file"},
}

// Has reports whether every flag in f is set in m.
func (m Mode) Has(f Mode) bool {
	return m&f == f
}

// String returns the set flags joined with "|".
func (m Mode) String() string {
	var names []string
	for _, mn := range modeNames {
		if m.Has(mn.mode) {
			names = append(names, mn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Config describes where and how a Logger writes. Zero fields inherit from
// the next level: per-call override, then the logger's base config, then
// the package defaults (OutLog, "\n", no escaping, no timestamp,
// attribution on).
//
// Mode and EOL have no explicit "unset" value: a zero Mode or an empty EOL
// always inherits, so a per-call override cannot silence every destination
// or drop the line terminator. Use a logger whose base has the wanted Mode
// instead.
type Config struct {
	Mode        Mode
	Path        string // Used with OutFile. Empty falls back to the dispatcher's default path
	EOL         string // Appended to file output
	Escape      *bool  // Escape control characters in the message
	Timestamp   *bool  // Prepend HH:MM:SS
	Attribution *bool  // Prepend the origin tag
	Origin      string // Explicit origin tag. Empty means the calling file and line
}

// Bool returns a pointer to v, for the optional fields of Config.
func Bool(v bool) *bool {
	return &v
}

var defaultConfig = Config{
	Mode:        OutLog,
	EOL:         "\n",
	Escape:      Bool(false),
	Timestamp:   Bool(false),
	Attribution: Bool(true),
}

// Merge returns c with every field that is set in over replaced.
func (c Config) Merge(over Config) Config {
	if over.Mode != 0 {
		c.Mode = over.Mode
	}
	if over.Path != "" {
		c.Path = over.Path
	}
	if over.EOL != "" {
		c.EOL = over.EOL
	}
	if over.Escape != nil {
		c.Escape = over.Escape
	}
	if over.Timestamp != nil {
		c.Timestamp = over.Timestamp
	}
	if over.Attribution != nil {
		c.Attribution = over.Attribution
	}
	if over.Origin != "" {
		c.Origin = over.Origin
	}
	return c
}

// Notifier shows a message to the user.
type Notifier func(title, message string)

// Sink receives one formatted log line.
type Sink func(line string)

// Opener opens path for appending.
type Opener func(path string) (io.WriteCloser, error)

// Dispatcher builds Loggers that share sinks. One Dispatcher is created at
// startup and handed to every component that logs.
type Dispatcher struct {
	title       string
	defaultPath string
	console     Sink
	errs        Sink
	open        Opener
	now         func() time.Time

	mu       sync.RWMutex
	notifier Notifier
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTitle sets the title of user notifications.
func WithTitle(title string) Option {
	return func(d *Dispatcher) { d.title = title }
}

// WithDefaultPath sets the file used by OutFile when no logger sets a path.
func WithDefaultPath(path string) Option {
	return func(d *Dispatcher) { d.defaultPath = path }
}

// WithConsole replaces the console sink.
func WithConsole(s Sink) Option {
	return func(d *Dispatcher) { d.console = s }
}

// WithErrorSink replaces the error channel. Sink failures are reported here too.
func WithErrorSink(s Sink) Option {
	return func(d *Dispatcher) { d.errs = s }
}

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) Option {
	return func(d *Dispatcher) { d.notifier = n }
}

// WithOpener replaces how log files are opened.
func WithOpener(o Opener) Option {
	return func(d *Dispatcher) { d.open = o }
}

// WithClock replaces the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher creates a Dispatcher. Without options it logs to the
// standard logger and stderr, has no notifier and no default file.
func NewDispatcher(opts ...Option) *Dispatcher {
	console := log.New(log.Writer(), "", log.LstdFlags)
	errs := log.New(os.Stderr, "", log.LstdFlags)
	d := &Dispatcher{
		title:   config.AppName,
		console: func(line string) { console.Print(line) },
		errs:    func(line string) { errs.Print(line) },
		open:    appendOpener,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterNotifier attaches the notification sink. The UI registers itself
// after the dispatcher is built.
func (d *Dispatcher) RegisterNotifier(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifier = n
}

func (d *Dispatcher) currentNotifier() Notifier {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.notifier
}

// MakeLogger returns a Logger that tags messages with prefix and writes
// according to base unless a call overrides it.
func (d *Dispatcher) MakeLogger(prefix string, base Config) *Logger {
	return &Logger{d: d, prefix: prefix, base: base}
}

// report writes to the error channel. A failing channel is ignored.
func (d *Dispatcher) report(msg string) {
	defer func() { _ = recover() }()
	d.errs(msg)
}

// safely runs one sink, turning a panic into a report.
func (d *Dispatcher) safely(prefix, sink string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.report(fmt.Sprintf("[%s] %s output failed: %v", prefix, sink, r))
		}
	}()
	fn()
}

// appendLine opens, appends and closes. The file is closed on every path.
func (d *Dispatcher) appendLine(path, line, eol string) (err error) {
	w, err := d.open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	_, err = io.WriteString(w, line+eol)
	return err
}

func appendOpener(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), config.DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Logger fans one message out to the destinations of its resolved config.
type Logger struct {
	d      *Dispatcher
	prefix string
	base   Config

	missingPath     util.SafeFlag
	missingNotifier util.SafeFlag
}

// Prefix returns the tag the logger puts in front of every message.
func (l *Logger) Prefix() string {
	return l.prefix
}

// Log writes msg. Overrides are merged over the base config in order and
// apply to this call only.
func (l *Logger) Log(msg string, overrides ...Config) {
	l.emit(2, msg, overrides)
}

// Logf formats and writes with the base config.
func (l *Logger) Logf(format string, args ...any) {
	l.emit(2, fmt.Sprintf(format, args...), nil)
}

// Output is Log for wrappers. calldepth counts the frames between the
// caller to attribute and Output, as in log.Output.
func (l *Logger) Output(calldepth int, msg string, overrides ...Config) {
	l.emit(calldepth+1, msg, overrides)
}

// Resolve returns the effective config for a call with the given overrides.
func (l *Logger) Resolve(overrides ...Config) Config {
	c := defaultConfig.Merge(l.base)
	for _, o := range overrides {
		c = c.Merge(o)
	}
	return c
}

func (l *Logger) emit(skip int, msg string, overrides []Config) {
	c := l.Resolve(overrides...)

	if *c.Escape {
		msg = util.EscapeString(msg)
	}

	origin := ""
	if *c.Attribution {
		origin = c.Origin
		if origin == "" {
			if pc, file, line, ok := runtime.Caller(skip); ok {
				origin = callerOrigin(pc, file, line)
			}
		}
	}

	var b strings.Builder
	b.WriteString("[" + l.prefix + "]")
	if *c.Timestamp {
		b.WriteString(" [" + util.FormatTime(l.d.now()) + "]")
	}
	if origin != "" {
		b.WriteString(" [" + origin + "]")
	}
	b.WriteString(": ")
	b.WriteString(msg)
	line := b.String()

	if c.Mode.Has(OutLog) {
		l.d.safely(l.prefix, "console", func() { l.d.console(line) })
	}
	if c.Mode.Has(OutError) {
		l.d.safely(l.prefix, "error", func() { l.d.errs(line) })
	}
	if c.Mode.Has(OutNotify) {
		l.notify(line)
	}
	if c.Mode.Has(OutFile) {
		l.writeFile(c, line)
	}
}

func (l *Logger) notify(line string) {
	n := l.d.currentNotifier()
	if n == nil {
		if l.missingNotifier.Once() {
			l.d.report(fmt.Sprintf("[%s] notification requested but no notifier is registered", l.prefix))
		}
		return
	}
	l.d.safely(l.prefix, "notify", func() { n(l.d.title, line) })
}

func (l *Logger) writeFile(c Config, line string) {
	path := c.Path
	if path == "" {
		path = l.d.defaultPath
	}
	if path == "" {
		if l.missingPath.Once() {
			l.d.report(fmt.Sprintf("[%s] file output requested without a path; skipping file output", l.prefix))
		}
		return
	}
	l.d.safely(l.prefix, "file", func() {
		if err := l.d.appendLine(path, line, c.EOL); err != nil {
			l.d.report(fmt.Sprintf("[%s] failed to write %s: %v", l.prefix, path, err))
		}
	})
}

// callerOrigin renders file.go:Func:line.
func callerOrigin(pc uintptr, file string, line int) string {
	parts := []string{filepath.Base(file)}
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		if i := strings.Index(name, "."); i >= 0 {
			name = name[i+1:]
		}
		parts = append(parts, name)
	}
	parts = append(parts, strconv.Itoa(line))
	return strings.Join(parts, ":")
}
