package shared

import (
	"context"
	"time"
)

// IdempotencyStore records keys that have already been acted upon so that a
// retried commit does not repeat its side effect. The usage ledger keys
// redemption commits by (discount-or-promotion id, order id).
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases any resources held by the store
	Close() error
}
