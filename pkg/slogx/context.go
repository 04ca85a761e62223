package slogx

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or fallback when there is
// none. A nil fallback means slog.Default().
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}

// With returns a ctx whose logger (base when ctx has none) carries args.
// Outbound HTTP calls made with the returned ctx log with them too.
func With(ctx context.Context, base *slog.Logger, args ...any) context.Context {
	return WithContext(ctx, FromContext(ctx, base).With(args...))
}
