package appforge

import (
	"context"

	"github.com/google/uuid"
)

type ctxRequestIDKey struct{}

// WithRequestID sets a caller-supplied correlation ID. Session IDs passed to
// the chat client are derived from it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey{}, requestID)
}

// RequestIDFromContext returns the ID set by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestIDKey{}).(string)
	return id
}

func newRequestID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ensureRequestID returns ctx carrying a request ID, generating one if needed.
func ensureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := newRequestID()
	return WithRequestID(ctx, id), id
}
