package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// Event names logged by the Manager.
const (
	EventCreated    = "created"
	EventUpdated    = "updated"
	EventRecognized = "recognized"
)

// Manager tracks sessions for incoming requests.
type Manager struct {
	store      Store
	config     Config
	logger     *slog.Logger
	now        func() time.Time
	generateID IDGenerator
	lastSweep  atomic.Int64
}

// New creates a new session manager with the given options.
// Without WithStore a MemoryStore is built from the configuration.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.config.Expiration <= 0 {
		m.config.Expiration = DefaultExpiration
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	m.logger = m.logger.With(logger.Component("session"))

	if m.store == nil {
		generate := m.generateID
		if generate == nil && m.config.SecureIDs {
			generate = SecureIDGenerator
		}
		m.store = NewMemoryStore(
			WithStoreExpiration(m.config.Expiration),
			WithIDGenerator(generate),
			WithStoreClock(m.now),
		)
	}

	return m
}

// Handle reconciles the session of the request and always returns false so
// the rest of the pipeline keeps running.
func (m *Manager) Handle(w http.ResponseWriter, r *http.Request) bool {
	m.resolve(w, r)
	return false
}

// resolve sweeps the store, classifies the request cookie and applies the
// resulting action. The request Cookie header is rewritten so later handlers
// see the final session id.
func (m *Manager) resolve(w http.ResponseWriter, r *http.Request) Session {
	ctx := r.Context()
	m.sweep(ctx, m.now())

	rec := ReconcileRequest(r, m.store.Contains)
	if rec.Action == ActionTouch {
		if sess, ok := m.store.Touch(rec.SessionID); ok {
			setRequestCookie(r, sess.ID)
			m.logger.DebugContext(ctx, "session recognized",
				logger.Event(EventRecognized),
				logger.SessionID(sess.ID),
			)
			return sess
		}
		// evicted or deleted after classification
		rec.State, rec.Action = StateUnknownCookie, ActionReissue
	}

	sess := m.store.Create()
	m.setCookie(w, sess.ID, 0)
	setRequestCookie(r, sess.ID)

	if rec.Action == ActionIssueNew {
		m.logger.DebugContext(ctx, "session created",
			logger.Event(EventCreated),
			logger.SessionID(sess.ID),
		)
	} else {
		m.logger.DebugContext(ctx, "session identifier updated",
			logger.Event(EventUpdated),
			logger.SessionID(sess.ID),
		)
	}
	return sess
}

// sweep evicts expired sessions, at most once per SweepInterval.
func (m *Manager) sweep(ctx context.Context, now time.Time) {
	if interval := m.config.SweepInterval; interval > 0 {
		last := m.lastSweep.Load()
		if last != 0 && now.Sub(time.Unix(0, last)) < interval {
			return
		}
		if !m.lastSweep.CompareAndSwap(last, now.UnixNano()) {
			return
		}
	}

	if n := m.store.Sweep(now); n > 0 {
		m.logger.DebugContext(ctx, "expired sessions evicted", logger.Count(n))
	}
}

// GetSession returns the live session presented by the request.
func (m *Manager) GetSession(r *http.Request) (Session, bool) {
	rec := ReconcileRequest(r, m.store.Contains)
	if rec.State != StateKnownCookie {
		return Session{}, false
	}
	return m.store.Get(rec.SessionID)
}

// DeleteSession removes the session presented by the request, if any.
func (m *Manager) DeleteSession(r *http.Request) {
	if sess, ok := m.GetSession(r); ok {
		m.store.Delete(sess.ID)
	}
}

// Delete removes the given session. Deleting twice is a no-op.
func (m *Manager) Delete(sess Session) {
	m.DeleteID(sess.ID)
}

// DeleteID removes the session with the given identifier.
func (m *Manager) DeleteID(id string) {
	if id == "" {
		return
	}
	m.store.Delete(id)
}

// Destroy deletes the request's session and expires the client cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	m.DeleteSession(r)
	m.setCookie(w, "", -1)
}

// Sessions returns a point-in-time copy of all live sessions.
func (m *Manager) Sessions() map[string]Session {
	return m.store.Snapshot()
}

// Lookup returns the live session with the given identifier.
func (m *Manager) Lookup(id string) (Session, bool) {
	return m.store.Get(id)
}

// Len returns the number of sessions held by the store.
func (m *Manager) Len() int {
	return m.store.Len()
}

// Expiration returns the configured idle timeout.
func (m *Manager) Expiration() time.Duration {
	return m.config.Expiration
}

// CookiePath returns the path the session cookie is issued for.
func (m *Manager) CookiePath() string {
	return m.config.CookiePath
}

func (m *Manager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:   CookieName,
		Value:  value,
		Path:   m.config.CookiePath,
		MaxAge: maxAge,
	})
}
