package session

import "time"

// Session is the server-side record correlating requests from one client.
// Values handed out by the store are copies; changing them has no effect on
// the stored record.
type Session struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// newSession creates a record whose creation and activity times are both now.
func newSession(id string, now time.Time) Session {
	return Session{
		ID:             id,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// IsZero reports whether s is the zero value (no session).
func (s Session) IsZero() bool {
	return s.ID == ""
}

// IdleFor returns how long the session has been inactive at the given time.
func (s Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivityAt)
}

// Expired reports whether the session has been idle strictly longer than expiration.
func (s Session) Expired(now time.Time, expiration time.Duration) bool {
	return s.IdleFor(now) > expiration
}

// touch moves the activity timestamp forward, never backward.
func (s *Session) touch(now time.Time) {
	if now.After(s.LastActivityAt) {
		s.LastActivityAt = now
	}
}
