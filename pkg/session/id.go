package session

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces session identifiers.
type IDGenerator func() string

// DefaultIDGenerator joins a random UUID with the current millisecond and a
// nanosecond tick count, then base64-encodes the result.
// The identifiers are unique within a process but not hard to guess: use
// SecureIDGenerator when session ids must resist guessing.
func DefaultIDGenerator() string {
	now := time.Now()
	raw := uuid.NewString() +
		strconv.Itoa(now.Nanosecond()/int(time.Millisecond)) +
		strconv.FormatInt(now.UnixNano(), 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// SecureIDGenerator returns 256 bits from crypto/rand, base64-encoded.
func SecureIDGenerator() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b) // never returns an error since go1.24
	return base64.RawURLEncoding.EncodeToString(b)
}
