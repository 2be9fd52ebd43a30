package session

import "context"

type sessionContextKey struct{}

// WithSession adds a session to the context
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// FromContext retrieves the session resolved by the middleware.
// The value reflects the session at the start of the request.
func FromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(Session)
	return session, ok
}

// MustFromContext retrieves a session from the context or panics
func MustFromContext(ctx context.Context) Session {
	session, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return session
}

// IDFromContext returns the session identifier stored in the context.
func IDFromContext(ctx context.Context) (string, bool) {
	session, ok := FromContext(ctx)
	if !ok || session.IsZero() {
		return "", false
	}
	return session.ID, true
}
