package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for run record identifiers.
	FieldRunID = "run_id"
	// FieldVerifyID is the standardized structured logging key for verification pass identifiers.
	FieldVerifyID = "verify_id"
)

type contextKey struct{ name string }

var (
	runIDKey    = contextKey{"run_id"}
	verifyIDKey = contextKey{"verify_id"}
)

// WithRunID stores a run identifier on the context for downstream log lines.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithVerifyID stores a verification identifier on the context for downstream log lines.
func WithVerifyID(ctx context.Context, verifyID string) context.Context {
	return context.WithValue(ctx, verifyIDKey, verifyID)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ctx.Value(runIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if id, ok := ctx.Value(verifyIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldVerifyID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
