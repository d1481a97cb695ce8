package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const (
	loggerKey ctxKey = "logger"
	fieldsKey ctxKey = "fields"
)

// With returns a new context that includes a logger with fields.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)

	bound := Fields(ctx)
	merged := make([]any, 0, len(bound)+len(fields))
	merged = append(merged, bound...)
	merged = append(merged, fields...)

	ctx = context.WithValue(ctx, fieldsKey, merged)
	return context.WithValue(ctx, loggerKey, l)
}

// From returns the logger stored in context, or default if missing.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}

// Fields returns the key/value pairs bound to ctx by With.
func Fields(ctx context.Context) []any {
	fields, _ := ctx.Value(fieldsKey).([]any)
	return fields
}

// Bind returns base carrying the fields bound to ctx, such as the trace id.
func Bind(ctx context.Context, base *slog.Logger) *slog.Logger {
	fields := Fields(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
