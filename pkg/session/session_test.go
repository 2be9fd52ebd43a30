package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sess := session.Session{ID: "id", CreatedAt: now, LastActivityAt: now}

	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{"fresh", 0, false},
		{"just under", 30*time.Minute - time.Nanosecond, false},
		{"exactly at expiration", 30 * time.Minute, false},
		{"just over", 30*time.Minute + time.Nanosecond, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := now.Add(tt.elapsed)
			assert.Equal(t, tt.elapsed, sess.IdleFor(at))
			assert.Equal(t, tt.want, sess.Expired(at, 30*time.Minute))
		})
	}
}

func TestSession_IsZero(t *testing.T) {
	assert.True(t, session.Session{}.IsZero())
	assert.False(t, session.Session{ID: "x"}.IsZero())
}
