package session

import (
	"sync"
	"time"
)

// DefaultExpiration is the idle time after which a session is evicted.
const DefaultExpiration = 30 * time.Minute

// MemoryStore implements Store with a map guarded by a single mutex.
// Every read and write, including sweeps and snapshots, goes through the same
// lock. No I/O happens while it is held.
type MemoryStore struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	expiration time.Duration
	generateID IDGenerator
	now        func() time.Time
}

// StoreOption configures a MemoryStore.
type StoreOption func(*MemoryStore)

// WithStoreExpiration sets the idle duration after which records are evicted.
// Non-positive values are ignored.
func WithStoreExpiration(d time.Duration) StoreOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.expiration = d
		}
	}
}

// WithIDGenerator replaces the identifier generator.
func WithIDGenerator(fn IDGenerator) StoreOption {
	return func(s *MemoryStore) {
		if fn != nil {
			s.generateID = fn
		}
	}
}

// WithStoreClock sets the time source. Mostly useful in tests.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		sessions:   make(map[string]*Session),
		expiration: DefaultExpiration,
		generateID: DefaultIDGenerator,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Expiration returns the configured idle timeout.
func (s *MemoryStore) Expiration() time.Duration {
	return s.expiration
}

// Create stores a new session. An id collision silently replaces the old record.
func (s *MemoryStore) Create() Session {
	id := s.generateID()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newSession(id, s.now())
	s.sessions[id] = &sess
	return sess
}

// Get returns a copy of the live record for id.
func (s *MemoryStore) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(id)
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Contains reports whether id is a live record.
func (s *MemoryStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.lookup(id)
	return ok
}

// Touch sets the last activity time of id to now.
func (s *MemoryStore) Touch(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(id)
	if !ok {
		return Session{}, false
	}
	sess.touch(s.now())
	return *sess, true
}

// Delete removes id from the store.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// Sweep evicts every record idle longer than the expiration.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.Expired(now, s.expiration) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Snapshot returns a copy of all live records keyed by id.
func (s *MemoryStore) Snapshot() map[string]Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Session, len(s.sessions))
	now := s.now()
	for id, sess := range s.sessions {
		if !sess.Expired(now, s.expiration) {
			out[id] = *sess
		}
	}
	return out
}

// Len returns the number of records held, including ones not swept yet.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// lookup must be called with s.mu held. Records past their expiration are
// dropped here so they are never observed between sweeps.
func (s *MemoryStore) lookup(id string) (*Session, bool) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if sess.Expired(s.now(), s.expiration) {
		delete(s.sessions, id)
		return nil, false
	}
	return sess, true
}

var _ Store = (*MemoryStore)(nil)
