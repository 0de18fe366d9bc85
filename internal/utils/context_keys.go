package utils

// contextKey is a type used for context keys to avoid conflicts with other packages' context keys.
type contextKey struct {
	name string
}

// Returns string representation of the context key.
func (c *contextKey) String() string {
	return c.name
}

// TraceIdKey is the context key holding the per-request trace ID.
var TraceIdKey = &contextKey{"traceId"}

// UserIdKey is the context key holding the authenticated user's ID,
// set by the bearer-token middleware.
var UserIdKey = &contextKey{"userId"}

// SanitizedPayloadKey is the context key holding the validated request body.
var SanitizedPayloadKey = &contextKey{"sanitizedPayload"}
