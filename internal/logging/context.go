package logging

import (
	"context"
	"log/slog"

	"transcodesched/internal/svcctx"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionKey is the standardized structured logging key for a session's
	// "client:session" identifier.
	FieldSessionKey = "session_key"
	// FieldUID is the standardized structured logging key for the owning uid.
	FieldUID = "uid"
	// FieldSessionState is the standardized structured logging key for a
	// session's current state.
	FieldSessionState = "session_state"
	// FieldCorrelationID is the standardized structured logging key for request
	// correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if key, ok := svcctx.SessionKeyFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSessionKey, key))
	}
	if uid, ok := svcctx.UIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldUID, int64(uid)))
	}
	if rid, ok := svcctx.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
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
