// Package svcctx carries request-scoped identifiers through a context.Context
// so logging and notification code can tag output without threading explicit
// parameters through every call.
package svcctx

import "context"

type contextKey string

const (
	sessionKeyKey contextKey = "session_key"
	uidKey        contextKey = "uid"
	requestIDKey  contextKey = "request_id"
)

// WithSessionKey annotates context with a session's "client:session" string form.
func WithSessionKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKeyKey, key)
}

// SessionKeyFromContext extracts the session key string if present.
func SessionKeyFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionKeyKey).(string)
	return v, ok && v != ""
}

// WithUID annotates context with the uid the current operation belongs to.
func WithUID(ctx context.Context, uid int32) context.Context {
	return context.WithValue(ctx, uidKey, uid)
}

// UIDFromContext extracts the uid if present.
func UIDFromContext(ctx context.Context) (int32, bool) {
	v, ok := ctx.Value(uidKey).(int32)
	return v, ok
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey).(string)
	return v, ok && v != ""
}
