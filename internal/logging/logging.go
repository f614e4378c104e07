// Package logging is a thin zerolog wrapper with a process-wide root
// logger and per-component children, modeled on the logging package
// found across the broader pack (structured, leveled, field-based).
package logging

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the project-wide logging type.
type Logger = zerolog.Logger

var (
	once  sync.Once
	root  atomic.Pointer[Logger]
	ready atomic.Bool
)

// Options configures the root logger.
type Options struct {
	Level  string // trace|debug|info|warn|error|fatal|panic
	Format string // "json" or "console"
}

// FromEnv builds Options from LOG_LEVEL / LOG_FORMAT, defaulting to
// info/json so production deploys get machine-parseable logs.
func FromEnv() Options {
	return Options{
		Level:  strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		Format: strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT"))),
	}
}

// Init configures zerolog and builds the root logger. Safe to call once;
// subsequent calls are no-ops.
func Init(opt Options) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339

		lvl := parseLevel(opt.Level)
		var w = os.Stdout
		var l zerolog.Logger
		if opt.Format == "console" {
			l = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).Level(lvl).With().Timestamp().Logger()
		} else {
			l = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
		}
		root.Store(&l)
		ready.Store(true)
	})
}

// Get returns the process-wide root logger, initializing it from the
// environment on first use.
func Get() *Logger {
	if !ready.Load() {
		Init(FromEnv())
	}
	return root.Load()
}

// Named returns a child logger tagged with a "component" field.
func Named(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "info", "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
