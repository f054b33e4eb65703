// Package requestmeta carries per-request identifiers through the context.
package requestmeta

import "context"

// contextKey is an unexported type for context keys in this package.
// Using a custom type prevents collisions with keys from other packages
// that might use the same underlying string value.
type contextKey string

const (
	// HeaderXRequestID is the inbound header the request ID is echoed from.
	HeaderXRequestID = "x-request-id"

	contextKeyRequestID contextKey = HeaderXRequestID
)

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestID extracts the request ID, or "" when none is attached.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}
