package app

import (
	"context"
	"sync"

	"github.com/mselser95/polymarket-seeder/internal/discovery"
	"github.com/mselser95/polymarket-seeder/internal/selection"
	"github.com/mselser95/polymarket-seeder/internal/storage"
	"github.com/mselser95/polymarket-seeder/pkg/cache"
	"github.com/mselser95/polymarket-seeder/pkg/config"
	"github.com/mselser95/polymarket-seeder/pkg/healthprobe"
	"github.com/mselser95/polymarket-seeder/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the serve-mode orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	feedCache     *cache.RistrettoCache
	fetcher       *discovery.CachedFetcher
	pipeline      *selection.Pipeline
	storage       storage.RunStore
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	// Factory overrides FACTORY_ADDRESS. Without either, /api/artifact is disabled.
	Factory string
}
