package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mselser95/polymarket-seeder/pkg/cache"
	"github.com/mselser95/polymarket-seeder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_FetchTrendingMarkets_QueryParams(t *testing.T) {
	tests := []struct {
		orderBy       string
		wantAscending string
	}{
		{orderBy: "volume24hr", wantAscending: "false"},
		{orderBy: "createdAt", wantAscending: "false"},
		{orderBy: "endDate", wantAscending: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.orderBy, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				assert.Equal(t, "/markets", r.URL.Path)
				assert.Equal(t, "true", q.Get("active"))
				assert.Equal(t, "false", q.Get("closed"))
				assert.Equal(t, tt.orderBy, q.Get("order"))
				assert.Equal(t, tt.wantAscending, q.Get("ascending"))
				assert.Equal(t, "application/json", r.Header.Get("Accept"))
				_, _ = w.Write([]byte(`[]`))
			}))
			defer server.Close()

			client := NewClient(server.URL, zap.NewNop())
			markets, err := client.FetchTrendingMarkets(context.Background(), 20, tt.orderBy)
			require.NoError(t, err)
			assert.Empty(t, markets)
		})
	}
}

func TestClient_FetchTrendingMarkets_ResponseShapes(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCount int
		wantErr   error
	}{
		{
			name:      "array",
			status:    http.StatusOK,
			body:      `[{"id":"1","question":"Q","outcomes":"[\"Yes\", \"No\"]","endDate":"2030-01-01T00:00:00Z"}]`,
			wantCount: 1,
		},
		{
			name:      "data-wrapper",
			status:    http.StatusOK,
			body:      `{"data":[{"id":"1"},{"id":"2"}]}`,
			wantCount: 2,
		},
		{
			name:    "unexpected-object",
			status:  http.StatusOK,
			body:    `{"message":"maintenance"}`,
			wantErr: types.ErrMalformedFeedResponse,
		},
		{
			name:    "html-error-page",
			status:  http.StatusOK,
			body:    `<html>oops</html>`,
			wantErr: types.ErrMalformedFeedResponse,
		},
		{
			name:    "server-error",
			status:  http.StatusInternalServerError,
			body:    `internal error`,
			wantErr: types.ErrFeedUnavailable,
		},
		{
			name:    "rate-limited",
			status:  http.StatusTooManyRequests,
			body:    `slow down`,
			wantErr: types.ErrFeedUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, zap.NewNop())
			markets, err := client.FetchTrendingMarkets(context.Background(), 20, "volume24hr")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, markets, tt.wantCount)
		})
	}
}

func TestClient_FetchTrendingMarkets_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, zap.NewNop())
	_, err := client.FetchTrendingMarkets(context.Background(), 20, "volume24hr")

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrFeedUnavailable), "got %v", err)
}

func TestClient_FetchTrendingMarkets_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.FetchTrendingMarkets(ctx, 20, "volume24hr")

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrFeedTimeout), "got %v", err)
}

func TestClient_FetchTrendingMarkets_CallerCanceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := client.FetchTrendingMarkets(ctx, 20, "volume24hr")

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.False(t, errors.Is(err, types.ErrFeedUnavailable), "cancellation classified as outage: %v", err)
}

type countingFetcher struct {
	calls atomic.Int32
	err   error
}

func (c *countingFetcher) FetchTrendingMarkets(ctx context.Context, limit int, orderBy string) ([]types.RawMarket, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return []types.RawMarket{{ID: "1"}, {ID: "2"}}, nil
}

func newTestCache(t *testing.T) *cache.RistrettoCache {
	t.Helper()
	c, err := cache.NewRistrettoCache(cache.DefaultRistrettoConfig(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewCachedFetcher_Validation(t *testing.T) {
	c := newTestCache(t)

	_, err := NewCachedFetcher(nil)
	assert.Error(t, err)
	_, err = NewCachedFetcher(&CachedFetcherConfig{Cache: c, TTL: time.Minute})
	assert.Error(t, err)
	_, err = NewCachedFetcher(&CachedFetcherConfig{Fetcher: &countingFetcher{}, TTL: time.Minute})
	assert.Error(t, err)
	_, err = NewCachedFetcher(&CachedFetcherConfig{Fetcher: &countingFetcher{}, Cache: c})
	assert.Error(t, err)
}

func TestCachedFetcher_ServesFromCache(t *testing.T) {
	c := newTestCache(t)
	inner := &countingFetcher{}

	f, err := NewCachedFetcher(&CachedFetcherConfig{Fetcher: inner, Cache: c, TTL: time.Minute})
	require.NoError(t, err)

	first, err := f.FetchTrendingMarkets(context.Background(), 100, "volume24hr")
	require.NoError(t, err)

	second, err := f.FetchTrendingMarkets(context.Background(), 100, "volume24hr")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())

	// A different query is a different key.
	_, err = f.FetchTrendingMarkets(context.Background(), 50, "volume24hr")
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())

	f.Forget(100, "volume24hr")
	_, err = f.FetchTrendingMarkets(context.Background(), 100, "volume24hr")
	require.NoError(t, err)
	assert.Equal(t, int32(3), inner.calls.Load())

	// Forgetting one query leaves the others cached.
	_, err = f.FetchTrendingMarkets(context.Background(), 50, "volume24hr")
	require.NoError(t, err)
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestCachedFetcher_DoesNotCacheFailures(t *testing.T) {
	c := newTestCache(t)
	inner := &countingFetcher{err: types.ErrFeedUnavailable}

	f, err := NewCachedFetcher(&CachedFetcherConfig{Fetcher: inner, Cache: c, TTL: time.Minute})
	require.NoError(t, err)

	for range 3 {
		_, err = f.FetchTrendingMarkets(context.Background(), 100, "volume24hr")
		assert.ErrorIs(t, err, types.ErrFeedUnavailable)
	}
	assert.Equal(t, int32(3), inner.calls.Load())
}
