package shared

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDContextKey holds the authenticated user's ID, set by the auth
	// middleware.
	UserIDContextKey contextKey = "user_id"

	// traceIDContextKey holds the request trace ID.
	traceIDContextKey contextKey = "trace_id"
)

// SetTraceID returns a context carrying a fresh trace ID.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, traceIDContextKey, uuid.NewString())
}

// GetTraceID extracts the trace ID from the context, or "" if unset.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDContextKey).(string)
	return traceID
}

// UserID extracts the authenticated user's ID from the context.
// The second return value reports whether it was present and valid.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}
