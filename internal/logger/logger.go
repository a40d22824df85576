// Package logger holds the process-wide slog logger and request-scoped
// children carried in a context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oggyb/muzz-matchmaking/internal/config"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type Config struct {
	Level      string
	Format     Format
	Component  string
	WithSource bool
	// Output defaults to stdout.
	Output io.Writer
}

var (
	initMu  sync.Mutex
	current = Config{Level: "info", Format: FormatText}
	level   = new(slog.LevelVar)
	global  atomic.Pointer[slog.Logger]
)

// InitFromConfig initializes global logger from app config.
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

// Init replaces the global logger and makes it the slog default. A nil
// config rebuilds from the last one used.
func Init(c *Config) {
	initMu.Lock()
	defer initMu.Unlock()

	if c != nil {
		current = *c
	}
	level.Set(parseLevel(current.Level))

	l := slog.New(newHandler(current))
	if current.Component != "" {
		l = l.With("component", current.Component)
	}
	global.Store(l)
	slog.SetDefault(l)
}

func newHandler(c Config) slog.Handler {
	out := c.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(string(c.Format), string(FormatJSON)) {
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level, AddSource: c.WithSource})
	}
	return slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:     level,
		AddSource: c.WithSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.DateTime))
			}
			return a
		},
	})
}

// SetLevel changes the level of the global logger and every child derived
// from it.
func SetLevel(s string) { level.Set(parseLevel(s)) }

// L returns the global logger, initializing a default one on first use.
func L() *slog.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	Init(nil)
	return global.Load()
}

// With creates a child logger with additional attributes.
func With(args ...any) *slog.Logger { return L().With(args...) }

// Named returns a child logger tagged with a sub-component.
func Named(component string) *slog.Logger { return L().With("component", component) }

func Debug(msg string, args ...any) { L().Debug(msg, args...) }
func Info(msg string, args ...any)  { L().Info(msg, args...) }
func Warn(msg string, args ...any)  { L().Warn(msg, args...) }
func Error(msg string, args ...any) { L().Error(msg, args...) }

type ctxKey struct{}

// NewContext stores a request-scoped logger in ctx.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by NewContext, or the global one.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return L()
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func parseLevel(s string) slog.Level {
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
