package port

import "context"

type CacheRepository interface {
	// DecrementStock atomically decreases stock in cache, returns false if insufficient
	DecrementStock(ctx context.Context, itemID int64, quantity int) (bool, error)

	// IncrementStock restores stock (for rollback on failure) or adds received goods
	IncrementStock(ctx context.Context, itemID int64, quantity int) error

	// SetStock overwrites the cached stock with the persisted quantity
	SetStock(ctx context.Context, itemID int64, quantity int) error

	// GetStock returns the cached stock and whether the item is cached at all
	GetStock(ctx context.Context, itemID int64) (int, bool, error)

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
