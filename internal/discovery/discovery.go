package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/polymarket-seeder/pkg/cache"
	"github.com/mselser95/polymarket-seeder/pkg/types"
	"go.uber.org/zap"
)

// Fetcher obtains raw market records from the Gamma API.
type Fetcher interface {
	FetchTrendingMarkets(ctx context.Context, limit int, orderBy string) ([]types.RawMarket, error)
}

// CachedFetcher serves repeated fetches of the same query from a cache.
// Only successful responses are cached.
type CachedFetcher struct {
	fetcher Fetcher
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
}

// CachedFetcherConfig holds cached fetcher configuration.
type CachedFetcherConfig struct {
	Fetcher Fetcher
	Cache   cache.Cache
	TTL     time.Duration
	Logger  *zap.Logger
}

// NewCachedFetcher wraps a fetcher with a cache.
func NewCachedFetcher(cfg *CachedFetcherConfig) (*CachedFetcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CachedFetcher{
		fetcher: cfg.Fetcher,
		cache:   cfg.Cache,
		ttl:     cfg.TTL,
		logger:  logger,
	}, nil
}

// FetchTrendingMarkets returns a cached snapshot when one is fresh.
// The returned slice is shared with the cache and must not be modified.
func (f *CachedFetcher) FetchTrendingMarkets(ctx context.Context, limit int, orderBy string) ([]types.RawMarket, error) {
	key := cacheKey(limit, orderBy)

	if markets, found := f.cache.Get(key); found {
		FeedCacheServedTotal.Inc()
		return markets, nil
	}

	markets, err := f.fetcher.FetchTrendingMarkets(ctx, limit, orderBy)
	if err != nil {
		return nil, err
	}

	if !f.cache.Put(key, markets, f.ttl) {
		f.logger.Warn("failed-to-cache-feed", zap.String("key", key))
	}

	return markets, nil
}

// Forget drops the cached snapshot for one query, so the next fetch of it
// goes to the feed.
func (f *CachedFetcher) Forget(limit int, orderBy string) {
	f.cache.Drop(cacheKey(limit, orderBy))
}

func cacheKey(limit int, orderBy string) string {
	return fmt.Sprintf("feed:%s:%d", orderBy, limit)
}
