package selection

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mselser95/polymarket-seeder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFetcher struct {
	records []types.RawMarket
	err     error
	block   bool

	gotLimit int
	gotOrder string
}

func (s *stubFetcher) FetchTrendingMarkets(ctx context.Context, limit int, orderBy string) ([]types.RawMarket, error) {
	s.gotLimit = limit
	s.gotOrder = orderBy
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.records, s.err
}

func fixedClock() time.Time { return testNow }

func TestNewPipeline_Validation(t *testing.T) {
	_, err := NewPipeline(nil)
	assert.Error(t, err)

	_, err = NewPipeline(&PipelineConfig{})
	assert.Error(t, err)

	p, err := NewPipeline(&PipelineConfig{Fetcher: &stubFetcher{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxResults, p.maxResults)
	assert.Equal(t, DefaultFeedTimeout, p.feedTimeout)
	assert.Equal(t, "volume24hr", p.feedOrder)
}

func TestPipeline_Run(t *testing.T) {
	fetcher := &stubFetcher{records: []types.RawMarket{
		binary("a", "Will X happen?", 48*time.Hour),
		binary("b", "Soon?", time.Hour),
		binary("c", "Will Y happen?", 72*time.Hour),
	}}

	logger, _ := zap.NewDevelopment()
	p, err := NewPipeline(&PipelineConfig{
		Fetcher:    fetcher,
		FeedLimit:  100,
		FeedOrder:  "volume24hr",
		MaxResults: 10,
		Clock:      fixedClock,
		Logger:     logger,
	})
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, fetcher.gotLimit)
	assert.Equal(t, "volume24hr", fetcher.gotOrder)
	require.Len(t, result.Markets, 2)
	assert.Equal(t, int64(172800), result.Markets[0].Duration)
	assert.Equal(t, int64(259200), result.Markets[1].Duration)
	assert.Equal(t, 1, result.Rejections[types.RejectExpiresTooSoon])
}

func TestPipeline_Run_NothingQualifiesIsNotAnError(t *testing.T) {
	p, err := NewPipeline(&PipelineConfig{
		Fetcher: &stubFetcher{records: []types.RawMarket{binary("a", "Soon?", time.Hour)}},
		Clock:   fixedClock,
	})
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Markets)
	assert.Equal(t, 1, result.Examined)
}

func TestPipeline_Run_FeedFailures(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *stubFetcher
		want    error
	}{
		{
			name:    "unavailable",
			fetcher: &stubFetcher{err: fmt.Errorf("%w: connection refused", types.ErrFeedUnavailable)},
			want:    types.ErrFeedUnavailable,
		},
		{
			name:    "malformed",
			fetcher: &stubFetcher{err: fmt.Errorf("%w: not an array", types.ErrMalformedFeedResponse)},
			want:    types.ErrMalformedFeedResponse,
		},
		{
			name:    "unclassified-becomes-unavailable",
			fetcher: &stubFetcher{err: errors.New("dns failure")},
			want:    types.ErrFeedUnavailable,
		},
		{
			name:    "stalled-feed-times-out",
			fetcher: &stubFetcher{block: true},
			want:    types.ErrFeedTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipeline(&PipelineConfig{
				Fetcher:     tt.fetcher,
				FeedTimeout: 20 * time.Millisecond,
				Clock:       fixedClock,
			})
			require.NoError(t, err)

			result, err := p.Run(context.Background())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
		})
	}
}

func TestPipeline_Run_CallerCancellationIsNotAFeedFailure(t *testing.T) {
	p, err := NewPipeline(&PipelineConfig{
		Fetcher:     &stubFetcher{block: true},
		FeedTimeout: time.Second,
		Clock:       fixedClock,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result, err := p.Run(ctx)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, types.ErrFeedUnavailable)
	assert.NotErrorIs(t, err, types.ErrFeedTimeout)
	assert.Equal(t, "canceled", types.FeedErrorKind(err))
}
