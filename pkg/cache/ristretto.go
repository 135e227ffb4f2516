package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/mselser95/polymarket-seeder/pkg/types"
	"go.uber.org/zap"
)

// RistrettoCache keeps feed snapshots in ristretto. Each snapshot costs 1,
// so MaxSnapshots bounds the number of distinct queries held.
type RistrettoCache struct {
	store  *ristretto.Cache
	logger *zap.Logger
}

// RistrettoConfig holds configuration for the snapshot cache.
type RistrettoConfig struct {
	MaxSnapshots int64
	Logger       *zap.Logger
}

// DefaultRistrettoConfig sizes the cache for a handful of feed queries.
func DefaultRistrettoConfig(logger *zap.Logger) *RistrettoConfig {
	return &RistrettoConfig{
		MaxSnapshots: 100,
		Logger:       logger,
	}
}

// NewRistrettoCache creates a ristretto-backed snapshot cache.
func NewRistrettoCache(cfg *RistrettoConfig) (*RistrettoCache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.MaxSnapshots <= 0 {
		return nil, fmt.Errorf("max snapshots must be positive, got %d", cfg.MaxSnapshots)
	}

	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.MaxSnapshots * 10,
		MaxCost:     cfg.MaxSnapshots,
		BufferItems: 64,
		// Cost counts snapshots, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RistrettoCache{
		store:  store,
		logger: logger,
	}, nil
}

// Get returns a fresh snapshot for key.
func (r *RistrettoCache) Get(key string) ([]types.RawMarket, bool) {
	value, found := r.store.Get(key)
	if !found {
		CacheMissesTotal.Inc()
		r.logger.Debug("feed-snapshot-miss", zap.String("key", key))
		return nil, false
	}

	records, ok := value.([]types.RawMarket)
	if !ok {
		CacheMissesTotal.Inc()
		return nil, false
	}

	CacheHitsTotal.Inc()
	r.logger.Debug("feed-snapshot-hit",
		zap.String("key", key),
		zap.Int("records", len(records)))
	return records, true
}

// Put stores a snapshot. Ristretto buffers writes, so Put waits for the
// buffer to drain before returning.
func (r *RistrettoCache) Put(key string, records []types.RawMarket, ttl time.Duration) bool {
	if !r.store.SetWithTTL(key, records, 1, ttl) {
		r.logger.Warn("feed-snapshot-dropped", zap.String("key", key))
		return false
	}
	r.store.Wait()

	CacheSetsTotal.Inc()
	r.logger.Debug("feed-snapshot-stored",
		zap.String("key", key),
		zap.Int("records", len(records)),
		zap.Duration("ttl", ttl))
	return true
}

// Drop removes the snapshot for key.
func (r *RistrettoCache) Drop(key string) {
	r.store.Del(key)
	CacheDeletesTotal.Inc()
	r.logger.Debug("feed-snapshot-dropped", zap.String("key", key))
}

// Close stops ristretto's background goroutines.
func (r *RistrettoCache) Close() {
	r.store.Close()
	r.logger.Info("feed-cache-closed")
}
