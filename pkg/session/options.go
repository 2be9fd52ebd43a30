package session

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithStore sets a custom session store.
// The store is then responsible for its own expiration policy.
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithConfig sets custom configuration
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithExpiration sets the idle timeout for sessions
func WithExpiration(d time.Duration) Option {
	return func(m *Manager) {
		m.config.Expiration = d
	}
}

// WithCookiePath sets the path attribute of the session cookie
func WithCookiePath(path string) Option {
	return func(m *Manager) {
		m.config.CookiePath = path
	}
}

// WithSweepInterval sets the minimum time between two sweeps
func WithSweepInterval(interval time.Duration) Option {
	return func(m *Manager) {
		m.config.SweepInterval = interval
	}
}

// WithGenerator sets the identifier generator used by the default store
func WithGenerator(fn IDGenerator) Option {
	return func(m *Manager) {
		m.generateID = fn
	}
}

// WithLogger sets the logger used for session events
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
