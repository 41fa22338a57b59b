package domain

import "context"

type callerKey struct{}

// Caller is the identity established for a single request. A zero Caller is anonymous.
type Caller struct {
	Email string
}

// Authenticated reports whether the request presented a valid token.
func (c Caller) Authenticated() bool {
	return c.Email != ""
}

// WithCaller returns a copy of ctx carrying the caller identity.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext returns the caller attached to ctx, or an anonymous Caller.
func CallerFromContext(ctx context.Context) Caller {
	c, _ := ctx.Value(callerKey{}).(Caller)
	return c
}
