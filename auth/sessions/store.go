// Package sessions defines the expiring key-value store backing the auth
// service: one slot per user for the currently valid refresh token, plus the
// failed-login counters used for attempt throttling.
package sessions

import (
	"context"
	"time"
)

// Store defines the interface for session state storage operations.
// Implementations must make IncrementWithExpiry a single atomic operation:
// concurrent failed logins for the same key must accumulate without lost
// updates, and the TTL is attached only when the counter is first created so
// the blocking window stays anchored to the first failure.
type Store interface {
	// Put sets key to value with the given expiry, overwriting any existing value
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get retrieves the value for key, or "" if the key is absent or expired
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error

	// IncrementWithExpiry atomically increments the integer counter at key and
	// returns the new count. A freshly created counter (count == 1) gets the
	// given TTL; an existing counter's TTL is left untouched.
	IncrementWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// CompareAndDelete atomically deletes key if its current value equals
	// expected, reporting whether the delete happened. This is the
	// serialization point for refresh-token rotation: of two callers racing
	// on the same stored token, only one comparison can succeed.
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
}
