// Package kvstore provides the TTL-scoped ephemeral key-value store used to
// gate repeatable actions: one-time codes, dedup flags, and small caches.
package kvstore

import (
	"context"
	"time"
)

// Store is the ephemeral key-value contract.
//
// A zero TTL stores the entry without expiry (persist-until-overwritten).
// Reads of expired entries behave as not-found even if the entry is still
// physically present. Operations are atomic per key; no cross-key guarantees
// are made.
type Store interface {
	// Set creates or overwrites the entry with expiry now+ttl (no expiry
	// when ttl is zero).
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value and whether a live entry exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Delete removes the entry; deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}
