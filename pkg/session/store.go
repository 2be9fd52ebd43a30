package session

import "time"

// Store defines the session table used by the Manager.
// Implementations must be safe for concurrent use. None of the methods fail:
// absent sessions are reported through boolean results.
type Store interface {
	// Create generates a fresh identifier, stores a new record and returns it.
	Create() Session

	// Get returns the live record for id.
	Get(id string) (Session, bool)

	// Contains reports whether id is a live record.
	Contains(id string) bool

	// Touch updates the last activity time of a live record and returns the
	// updated copy. It reports false when the record does not exist.
	Touch(id string) (Session, bool)

	// Delete removes a record. Deleting an absent id is a no-op.
	Delete(id string)

	// Sweep removes all records idle longer than the store's expiration
	// and returns how many were evicted.
	Sweep(now time.Time) int

	// Snapshot returns a point-in-time copy of all live records.
	Snapshot() map[string]Session

	// Len returns the number of records currently held.
	Len() int
}
