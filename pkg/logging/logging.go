// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logging.Setup()                          // INFO level, from LOG_LEVEL env
//	logging.SetupWithLevel(slog.LevelDebug)  // explicit level override
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
//
// Records carrying a silent error (see apierr.IsSilent) are dropped before
// they reach the output.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/mmynk/storefront/internal/apierr"
)

// Setup configures colored logging at the level specified by LOG_LEVEL env var
// (default: INFO).
func Setup() {
	SetupWithLevel(LevelFromString(os.Getenv("LOG_LEVEL")))
}

// SetupWithLevel configures colored logging at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(New(os.Stderr, level))
}

// New returns a tint logger writing to w that drops silent errors.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewSilentFilter(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}),
	))
}

// LevelFromString parses debug, warn and error; anything else is INFO.
func LevelFromString(s string) slog.Level {
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

// SilentFilter is a slog.Handler that discards records with a silent error
// attribute, including attributes bound earlier with Logger.With.
type SilentFilter struct {
	next   slog.Handler
	silent bool
}

// NewSilentFilter wraps next.
func NewSilentFilter(next slog.Handler) *SilentFilter {
	return &SilentFilter{next: next}
}

func (h *SilentFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return !h.silent && h.next.Enabled(ctx, level)
}

func (h *SilentFilter) Handle(ctx context.Context, r slog.Record) error {
	if h.silent {
		return nil
	}
	drop := false
	r.Attrs(func(a slog.Attr) bool {
		if isSilentAttr(a) {
			drop = true
			return false
		}
		return true
	})
	if drop {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *SilentFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	silent := h.silent
	for _, a := range attrs {
		if isSilentAttr(a) {
			silent = true
		}
	}
	return &SilentFilter{next: h.next.WithAttrs(attrs), silent: silent}
}

func (h *SilentFilter) WithGroup(name string) slog.Handler {
	return &SilentFilter{next: h.next.WithGroup(name), silent: h.silent}
}

func isSilentAttr(a slog.Attr) bool {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindAny:
		err, ok := v.Any().(error)
		return ok && apierr.IsSilent(err)
	case slog.KindGroup:
		for _, ga := range v.Group() {
			if isSilentAttr(ga) {
				return true
			}
		}
	}
	return false
}
