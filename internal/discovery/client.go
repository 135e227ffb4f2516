package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mselser95/polymarket-seeder/pkg/types"
	"go.uber.org/zap"
)

const (
	// MaxBatchSize is the maximum number of markets to fetch per API request.
	MaxBatchSize = 100

	// DefaultTimeout bounds a single Gamma API request.
	DefaultTimeout = 10 * time.Second

	userAgent = "polymarket-seeder/1.0"
)

// Client is an HTTP client for the Polymarket Gamma API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Gamma API client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger,
	}
}

// FetchTrendingMarkets fetches active, open markets ordered by orderBy.
// Limits above MaxBatchSize are paginated; 0 means a single full batch.
// Failures wrap types.ErrFeedUnavailable, types.ErrFeedTimeout or
// types.ErrMalformedFeedResponse.
func (c *Client) FetchTrendingMarkets(ctx context.Context, limit int, orderBy string) ([]types.RawMarket, error) {
	start := time.Now()
	defer func() {
		FeedRequestDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	var (
		markets []types.RawMarket
		err     error
	)
	if limit > MaxBatchSize {
		markets, err = c.fetchWithPagination(ctx, limit, orderBy)
	} else {
		markets, err = c.fetchPage(ctx, limit, 0, orderBy)
	}
	if err != nil {
		FeedErrorsTotal.WithLabelValues(types.FeedErrorKind(err)).Inc()
		return nil, err
	}

	FeedRecordsTotal.Add(float64(len(markets)))
	return markets, nil
}

// fetchPage fetches a single page of markets.
func (c *Client) fetchPage(ctx context.Context, limit int, offset int, orderBy string) ([]types.RawMarket, error) {
	if limit <= 0 {
		limit = MaxBatchSize
	}

	params := url.Values{}
	params.Add("closed", "false")
	params.Add("active", "true")
	params.Add("limit", strconv.Itoa(limit))
	params.Add("offset", strconv.Itoa(offset))
	params.Add("order", orderBy)

	// endDate ascending surfaces markets expiring soonest; everything else
	// is most-first.
	if orderBy == "endDate" {
		params.Add("ascending", "true")
	} else {
		params.Add("ascending", "false")
	}

	requestURL := fmt.Sprintf("%s/markets?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", types.ErrFeedUnavailable, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("fetching-markets",
		zap.String("url", requestURL),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	FeedRequestsTotal.Inc()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("do request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", types.ErrFeedUnavailable, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError("read response body", err)
	}

	markets, err := types.DecodeFeed(body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("fetched-markets",
		zap.Int("count", len(markets)))

	return markets, nil
}

// fetchWithPagination fetches pages of MaxBatchSize until limit is reached
// or the feed runs dry.
func (c *Client) fetchWithPagination(ctx context.Context, limit int, orderBy string) ([]types.RawMarket, error) {
	var (
		all         []types.RawMarket
		currentPage = 0
	)

	c.logger.Debug("starting-paginated-fetch",
		zap.Int("requested-limit", limit),
		zap.Int("batch-size", MaxBatchSize))

	for len(all) < limit {
		pageSize := min(limit-len(all), MaxBatchSize)
		offset := currentPage * MaxBatchSize

		page, err := c.fetchPage(ctx, pageSize, offset, orderBy)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", currentPage, err)
		}

		all = append(all, page...)

		c.logger.Debug("fetched-page",
			zap.Int("page", currentPage),
			zap.Int("markets", len(page)),
			zap.Int("total", len(all)))

		if len(page) < pageSize {
			c.logger.Debug("pagination-complete-no-more-data",
				zap.Int("total-fetched", len(all)))
			break
		}

		currentPage++
	}

	return all, nil
}

// classifyTransportError maps an HTTP transport error to a feed sentinel.
// Cancellation by the caller is passed through unclassified.
func classifyTransportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", types.ErrFeedTimeout, op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %w", types.ErrFeedTimeout, op, err)
	}

	return fmt.Errorf("%w: %s: %w", types.ErrFeedUnavailable, op, err)
}
