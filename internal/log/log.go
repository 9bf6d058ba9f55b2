// Package log configures structured logging for go-focus. Packages ask for a
// component logger; the process picks the level and output format once.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Format selects the handler used for output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configures the process-wide logger.
type Options struct {
	Level  string    // debug, info, warn or error
	Format Format    // defaults to FormatFromEnv
	Output io.Writer // defaults to stdout
}

var (
	level slog.LevelVar

	mu   sync.RWMutex
	root *slog.Logger
)

func init() {
	root = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
}

// Component returns a logger tagged with a component name. Level changes made
// later through SetLevel still apply to it.
func Component(name string) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With("component", name)
}

// Setup replaces the process logger and makes it the slog default.
// Component loggers created before Setup keep writing to the old output.
func Setup(opts Options) *slog.Logger {
	level.Set(ParseLevel(opts.Level))

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	format := opts.Format
	if format == "" {
		format = FormatFromEnv()
	}

	handlerOpts := &slog.HandlerOptions{Level: &level}
	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(out, handlerOpts)
	} else {
		h = slog.NewTextHandler(out, handlerOpts)
	}

	l := slog.New(h)
	mu.Lock()
	root = l
	mu.Unlock()
	slog.SetDefault(l)
	return l
}

// Init sets up stdout logging at the given level, JSON in production.
func Init(levelName string) {
	Setup(Options{Level: levelName})
}

// SetLevel changes the minimum level of every component logger.
func SetLevel(levelName string) {
	level.Set(ParseLevel(levelName))
}

// FormatFromEnv is JSON when GO_ENV=production, text otherwise.
func FormatFromEnv() Format {
	if os.Getenv("GO_ENV") == "production" {
		return FormatJSON
	}
	return FormatText
}

// ParseLevel maps a level name to a slog level. Unknown names are info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
