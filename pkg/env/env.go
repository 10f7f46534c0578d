// Package env builds the objects shared by every part of the extension:
// the log dispatcher with its standard loggers, the preferences registry
// and the typed configuration over it.
package env

import (
	"fmt"
	"sync"

	"github.com/kaedenn/kext/config"
	"github.com/kaedenn/kext/pkg/registry"
	"github.com/kaedenn/kext/util/log"
)

// Logger prefixes
const (
	DebugPrefix = "KExtDebug"
	ErrorPrefix = "KExtError"
	LogPrefix   = "KExtLog"
)

// Env holds the dispatcher, the standard loggers and the registry.
type Env struct {
	Dispatcher *log.Dispatcher

	Debug       *log.Logger // console and debug file, timestamped
	Error       *log.Logger // error channel and log file, timestamped
	ErrorNotify *log.Logger // error channel, notification and log file
	Cache       *log.Logger // console and log file, timestamped
	Notify      *log.Logger // console, notification and log file

	Store  *registry.Store
	Config *config.AppConfig

	cacheDir string

	ptsMu sync.Mutex
	pts   map[int]*log.Logger
}

// New creates the environment rooted at cacheDir, normally config.CacheDir().
// opts are applied to the dispatcher after the defaults.
func New(cacheDir string, opts ...log.Option) (*Env, error) {
	if cacheDir == "" {
		return nil, fmt.Errorf("cache directory is empty")
	}

	base := []log.Option{
		log.WithTitle(config.AppName),
		log.WithDefaultPath(config.LogPath(cacheDir)),
	}
	d := log.NewDispatcher(append(base, opts...)...)

	e := &Env{
		Dispatcher: d,
		Debug: d.MakeLogger(DebugPrefix, log.Config{
			Mode:      log.OutLog | log.OutFile,
			Path:      config.DebugLogPath(cacheDir),
			Timestamp: log.Bool(true),
		}),
		Error: d.MakeLogger(ErrorPrefix, log.Config{
			Mode:      log.OutError | log.OutFile,
			Timestamp: log.Bool(true),
		}),
		ErrorNotify: d.MakeLogger(ErrorPrefix, log.Config{
			Mode: log.OutError | log.OutNotify | log.OutFile,
		}),
		Cache: d.MakeLogger(LogPrefix, log.Config{
			Mode:      log.OutLog | log.OutFile,
			Timestamp: log.Bool(true),
		}),
		Notify: d.MakeLogger(LogPrefix, log.Config{
			Mode: log.OutLog | log.OutNotify | log.OutFile,
		}),
		cacheDir: cacheDir,
		pts:      make(map[int]*log.Logger),
	}

	e.Store = registry.NewStore(config.RegistryPath(cacheDir), e.Cache, e.ErrorNotify)
	e.Config = config.NewAppConfig(e.Store)
	return e, nil
}

// CacheDir returns the directory holding the registry and log files.
func (e *Env) CacheDir() string {
	return e.cacheDir
}

// Pts returns a logger writing only to the terminal /dev/pts/n. Loggers are
// created once per terminal.
func (e *Env) Pts(n int) *log.Logger {
	e.ptsMu.Lock()
	defer e.ptsMu.Unlock()
	if l, ok := e.pts[n]; ok {
		return l
	}
	l := e.Dispatcher.MakeLogger(LogPrefix, log.Config{
		Mode: log.OutFile,
		Path: config.PtsPath(n),
	})
	e.pts[n] = l
	return l
}

// Debugf writes to the debug logger when the debug-enable preference is on.
func (e *Env) Debugf(format string, args ...any) {
	if !e.Config.GetDebugEnabled() {
		return
	}
	e.Debug.Output(2, fmt.Sprintf(format, args...))
}

// Errorf writes to the error logger.
func (e *Env) Errorf(format string, args ...any) {
	e.Error.Output(2, fmt.Sprintf(format, args...))
}

// RegisterNotifier attaches the notification sink used by ErrorNotify and Notify.
func (e *Env) RegisterNotifier(n log.Notifier) {
	e.Dispatcher.RegisterNotifier(n)
}
