// Package ctxkeys holds typed context keys shared by the HTTP layers.
// It is a leaf package so handlers and middleware can both import it.
package ctxkeys

import "context"

// Key is the named type for all context keys set by this module's middleware.
type Key string

const (
	// UserID is the user id verified from a bearer token.
	UserID Key = "user_id"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// String reads a string value, returning "" when unset.
func String(ctx context.Context, key Key) string {
	v, _ := ctx.Value(key).(string)
	return v
}
