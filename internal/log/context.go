// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package log provides structured logging utilities.
package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	attemptIDKey ctxKey = "attempt_id"
	categoryKey  ctxKey = "category"
)

// ContextWithAttemptID stores the provided playback attempt ID in the context.
func ContextWithAttemptID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, attemptIDKey, id)
}

// ContextWithCategory stores the active category name in the context.
func ContextWithCategory(ctx context.Context, category string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, categoryKey, category)
}

// AttemptIDFromContext extracts the attempt ID from context if present.
func AttemptIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(attemptIDKey).(string); ok {
		return v
	}
	return ""
}

// CategoryFromContext extracts the category name from context if present.
func CategoryFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(categoryKey).(string); ok {
		return v
	}
	return ""
}

// WithContext enriches the supplied logger with correlation fields from context.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if ctx == nil {
		return logger
	}
	builder := logger.With()
	added := false
	if id := AttemptIDFromContext(ctx); id != "" {
		builder = builder.Str(FieldAttemptID, id)
		added = true
	}
	if c := CategoryFromContext(ctx); c != "" {
		builder = builder.Str(FieldCategory, c)
		added = true
	}
	if !added {
		return logger
	}
	return builder.Logger()
}

// WithComponentFromContext returns a logger that is annotated with the component
// name and enriched with correlation fields from ctx.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	return WithContext(ctx, WithComponent(component))
}
