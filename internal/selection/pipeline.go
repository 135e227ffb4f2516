package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mselser95/polymarket-seeder/pkg/types"
	"go.uber.org/zap"
)

// DefaultFeedTimeout bounds the single feed fetch of a run.
const DefaultFeedTimeout = 10 * time.Second

// Fetcher obtains raw market records from the upstream feed.
type Fetcher interface {
	FetchTrendingMarkets(ctx context.Context, limit int, orderBy string) ([]types.RawMarket, error)
}

// Pipeline runs one fetch followed by one selection pass.
type Pipeline struct {
	fetcher     Fetcher
	selector    *Selector
	feedLimit   int
	feedOrder   string
	maxResults  int
	feedTimeout time.Duration
	clock       func() time.Time
	logger      *zap.Logger
}

// PipelineConfig holds pipeline configuration.
type PipelineConfig struct {
	Fetcher     Fetcher
	Selector    *Selector
	FeedLimit   int
	FeedOrder   string
	MaxResults  int
	FeedTimeout time.Duration
	Clock       func() time.Time
	Logger      *zap.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg *PipelineConfig) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}

	p := &Pipeline{
		fetcher:     cfg.Fetcher,
		selector:    cfg.Selector,
		feedLimit:   cfg.FeedLimit,
		feedOrder:   cfg.FeedOrder,
		maxResults:  cfg.MaxResults,
		feedTimeout: cfg.FeedTimeout,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
	}

	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.selector == nil {
		p.selector = NewSelector(&SelectorConfig{Logger: p.logger})
	}
	if p.feedOrder == "" {
		p.feedOrder = "volume24hr"
	}
	if p.maxResults <= 0 {
		p.maxResults = DefaultMaxResults
	}
	if p.feedTimeout <= 0 {
		p.feedTimeout = DefaultFeedTimeout
	}
	if p.clock == nil {
		p.clock = time.Now
	}

	return p, nil
}

// Run fetches the feed and selects markets from it.
// A fetch failure is returned as an error wrapping one of the types.ErrFeed*
// sentinels; an empty result with a nil error means nothing qualified.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() {
		RunDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	records, err := p.fetch(ctx)
	if errors.Is(err, context.Canceled) {
		RunsTotal.WithLabelValues("canceled").Inc()
		p.logger.Debug("pipeline-canceled", zap.Error(err))
		return nil, err
	}
	if err != nil {
		RunsTotal.WithLabelValues(types.FeedErrorKind(err)).Inc()
		p.logger.Error("pipeline-fetch-failed",
			zap.String("kind", types.FeedErrorKind(err)),
			zap.Error(err))
		return nil, err
	}

	now := p.clock()
	result := p.selector.Select(records, p.maxResults, now)

	RunsTotal.WithLabelValues("ok").Inc()
	p.logger.Info("pipeline-run-complete",
		zap.Int("records", len(records)),
		zap.Int("examined", result.Examined),
		zap.Int("selected", len(result.Markets)),
		zap.Int("rejected", result.Rejected()),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}

func (p *Pipeline) fetch(ctx context.Context) ([]types.RawMarket, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.feedTimeout)
	defer cancel()

	records, err := p.fetcher.FetchTrendingMarkets(fetchCtx, p.feedLimit, p.feedOrder)
	if err == nil {
		return records, nil
	}

	switch {
	case errors.Is(err, types.ErrFeedTimeout),
		errors.Is(err, types.ErrFeedUnavailable),
		errors.Is(err, types.ErrMalformedFeedResponse):
		return nil, fmt.Errorf("fetch feed: %w", err)
	case errors.Is(err, context.Canceled):
		return nil, fmt.Errorf("fetch feed: %w", err)
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("fetch feed: %w: %w", types.ErrFeedTimeout, err)
	default:
		return nil, fmt.Errorf("fetch feed: %w: %w", types.ErrFeedUnavailable, err)
	}
}
