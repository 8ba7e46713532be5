// Package requestid threads a per-request correlation id through context.
// The HTTP layer mints one per inbound request; handlers read it back so
// errors, logs and journal rows all carry the same id.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const requestIDKey contextKey = iota

// New returns a fresh request id.
func New() string {
	return uuid.NewString()
}

// WithRequestID returns a context carrying the id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// FromContext extracts the request id, or "" when none was set.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
