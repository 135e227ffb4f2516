package cache

import (
	"time"

	"github.com/mselser95/polymarket-seeder/pkg/types"
)

// Cache holds feed snapshots keyed by query.
type Cache interface {
	// Get returns the snapshot stored under key, if it is still fresh.
	Get(key string) ([]types.RawMarket, bool)

	// Put stores a snapshot for ttl. It returns once the snapshot is
	// readable, or false if the cache refused it.
	Put(key string, records []types.RawMarket, ttl time.Duration) bool

	// Drop removes the snapshot stored under key.
	Drop(key string)

	// Close releases the cache.
	Close()
}
