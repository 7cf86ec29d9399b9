// Package logger holds the process-wide slog instance. Configure it once
// at startup via InitFromConfig; everything else reads it through L.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/youyuan/match-engine/internal/config"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config selects handler, level and the component tag stamped on every line.
type Config struct {
	Level      string
	Format     Format
	Component  string
	WithSource bool
}

var (
	mu      sync.RWMutex
	global  *slog.Logger
	current = Config{
		Level:  "info",
		Format: FormatText,
	}
)

// InitFromConfig builds the global logger from the app config. A nil
// config falls back to the defaults.
func InitFromConfig(c *config.Config) {
	if c == nil {
		Init(nil)
		return
	}
	Init(&Config{
		Level:      c.Log.Level,
		Format:     Format(c.Log.Format),
		Component:  c.Log.Component,
		WithSource: c.Log.Source,
	})
}

// Init replaces the global logger. Calling it again reconfigures in place.
func Init(c *Config) {
	mu.Lock()
	defer mu.Unlock()

	if c != nil {
		current = *c
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(current.Level),
		AddSource: current.WithSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// human-readable timestamps in text mode
			if a.Key == slog.TimeKey && current.Format == FormatText {
				return slog.String(slog.TimeKey, time.Now().Format("2006-01-02 15:04:05"))
			}
			return a
		},
	}

	var handler slog.Handler
	if strings.EqualFold(string(current.Format), string(FormatJSON)) {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	base := slog.New(handler)
	if current.Component != "" {
		base = base.With("component", current.Component)
	}
	global = base
}

// L returns the global logger, lazily initializing the default one when
// nothing configured it yet.
func L() *slog.Logger {
	mu.RLock()
	if global != nil {
		defer mu.RUnlock()
		return global
	}
	mu.RUnlock()

	Init(nil)

	mu.RLock()
	defer mu.RUnlock()
	return global
}

// With returns a child of the global logger carrying extra attributes.
func With(args ...any) *slog.Logger { return L().With(args...) }

func Debug(msg string, args ...any) { L().Debug(msg, args...) }
func Info(msg string, args ...any)  { L().Info(msg, args...) }
func Warn(msg string, args ...any)  { L().Warn(msg, args...) }
func Error(msg string, args ...any) { L().Error(msg, args...) }

func parseLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
