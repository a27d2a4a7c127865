package interfaces

import (
	"context"
	"time"
)

// -----------------------------------------------------------------------------
// ICache defines the contract for the fetch cache backends.
// -----------------------------------------------------------------------------

type ICache interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the schema or verifies connectivity.
	Initialize(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// Get returns the payload stored under key. found is false when the key is
	// missing or expired.
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)

	// -----------------------------------------------------------------------------

	// Set stores payload under key for ttl.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// -----------------------------------------------------------------------------

	// CleanupExpired removes entries past their expiry and returns how many
	// were deleted.
	CleanupExpired(ctx context.Context) (int64, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
