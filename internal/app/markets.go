package app

import (
	"time"

	"go.uber.org/zap"
)

// runFeedRefresher runs the pipeline once at startup and then once per cache
// TTL, so readiness reflects the feed even without API traffic.
func (a *App) runFeedRefresher() {
	defer a.wg.Done()

	a.refreshFeed()

	if a.cfg.FeedCacheTTL <= 0 {
		return
	}

	ticker := time.NewTicker(a.cfg.FeedCacheTTL)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.refreshFeed()
		}
	}
}

// refreshFeed always goes to the feed, so readiness reflects the feed and not
// a cached snapshot. The fresh snapshot then serves API requests.
func (a *App) refreshFeed() {
	a.fetcher.Forget(a.cfg.FeedLimit, a.cfg.FeedOrder)

	result, err := a.pipeline.Run(a.ctx)
	if a.ctx.Err() != nil {
		return
	}

	a.healthChecker.RecordFeedResult(err)
	if err != nil {
		a.logger.Warn("feed-refresh-failed", zap.Error(err))
		return
	}

	a.logger.Info("feed-refreshed",
		zap.Int("fetched", result.Fetched),
		zap.Int("selected", len(result.Markets)))
}
