package session

import "time"

// Config holds session configuration
type Config struct {
	// Expiration is the idle time after which a session is evicted.
	Expiration time.Duration `env:"SESSION_EXPIRATION" envDefault:"30m"`

	// CookiePath scopes the session cookie. Empty means no Path attribute.
	CookiePath string `env:"SESSION_COOKIE_PATH" envDefault:"/"`

	// SweepInterval limits how often the store is swept (0 sweeps on every request).
	// Expired sessions are never recognized regardless of this value.
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"0s"`

	// SecureIDs switches the default store to crypto/rand identifiers.
	SecureIDs bool `env:"SESSION_SECURE_IDS" envDefault:"false"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		Expiration: DefaultExpiration,
		CookiePath: "/",
	}
}

// NewFromConfig creates a new Manager from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) *Manager {
	configOpts := []Option{
		WithConfig(cfg),
	}

	configOpts = append(configOpts, opts...)

	return New(configOpts...)
}
