package app

import (
	"context"
	"fmt"
	"io"

	"github.com/mselser95/polymarket-seeder/internal/discovery"
	"github.com/mselser95/polymarket-seeder/internal/normalize"
	"github.com/mselser95/polymarket-seeder/internal/render"
	"github.com/mselser95/polymarket-seeder/internal/selection"
	"github.com/mselser95/polymarket-seeder/internal/storage"
	"github.com/mselser95/polymarket-seeder/pkg/cache"
	"github.com/mselser95/polymarket-seeder/pkg/config"
	"github.com/mselser95/polymarket-seeder/pkg/healthprobe"
	"github.com/mselser95/polymarket-seeder/pkg/httpserver"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	feedCache, err := cache.NewRistrettoCache(cache.DefaultRistrettoConfig(logger))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	fetcher, err := setupCachedFetcher(cfg, logger, feedCache)
	if err != nil {
		feedCache.Close()
		cancel()
		return nil, fmt.Errorf("setup fetcher: %w", err)
	}

	pipeline, err := NewPipeline(cfg, logger, fetcher, nil)
	if err != nil {
		feedCache.Close()
		cancel()
		return nil, fmt.Errorf("setup pipeline: %w", err)
	}

	// A missing factory only disables the artifact endpoint.
	var deploy *render.DeployConfig
	factory := opts.Factory
	if factory == "" {
		factory = cfg.FactoryAddress
	}
	if factory != "" {
		deploy, err = NewDeployConfig(cfg, factory)
		if err != nil {
			feedCache.Close()
			cancel()
			return nil, fmt.Errorf("setup deploy config: %w", err)
		}
	} else {
		logger.Warn("artifact-endpoint-disabled",
			zap.String("reason", "FACTORY_ADDRESS not set"))
	}

	runStore, err := NewRunStore(ctx, cfg, logger, nil)
	if err != nil {
		feedCache.Close()
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Pipeline:      pipeline,
		Deploy:        deploy,
		DefaultFormat: cfg.OutputFormat,
		Store:         runStore,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		feedCache:     feedCache,
		fetcher:       fetcher,
		pipeline:      pipeline,
		storage:       runStore,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCachedFetcher(cfg *config.Config, logger *zap.Logger, feedCache cache.Cache) (*discovery.CachedFetcher, error) {
	ttl := cfg.FeedCacheTTL
	if ttl <= 0 {
		// Caching disabled; a nanosecond TTL expires before the next request.
		ttl = 1
	}

	return discovery.NewCachedFetcher(&discovery.CachedFetcherConfig{
		Fetcher: discovery.NewClient(cfg.PolymarketGammaURL, logger),
		Cache:   feedCache,
		TTL:     ttl,
		Logger:  logger,
	})
}

// NewPipeline builds the selection pipeline from configuration.
// onDecision may be nil.
func NewPipeline(cfg *config.Config, logger *zap.Logger, fetcher selection.Fetcher, onDecision func(selection.Decision)) (*selection.Pipeline, error) {
	selector := selection.NewSelector(&selection.SelectorConfig{
		Normalizer: normalize.New(&normalize.Config{
			MinMargin:      cfg.SelectMinExpiryMargin,
			MaxTitleLength: cfg.SelectMaxTitleLength,
		}),
		Logger:     logger,
		OnDecision: onDecision,
	})

	return selection.NewPipeline(&selection.PipelineConfig{
		Fetcher:     fetcher,
		Selector:    selector,
		FeedLimit:   cfg.FeedLimit,
		FeedOrder:   cfg.FeedOrder,
		MaxResults:  cfg.SelectMaxResults,
		FeedTimeout: cfg.FeedTimeout,
		Logger:      logger,
	})
}

// NewDeployConfig builds renderer constants from configuration and a factory address.
func NewDeployConfig(cfg *config.Config, factory string) (*render.DeployConfig, error) {
	addr, err := render.ParseFactoryAddress(factory)
	if err != nil {
		return nil, err
	}

	deploy := &render.DeployConfig{
		Factory:       addr,
		EnvFile:       cfg.DeployEnvFile,
		RPCURLVar:     cfg.DeployRPCURLVar,
		PrivateKeyVar: cfg.DeployPrivateKeyVar,
		GasLimit:      cfg.DeployGasLimit,
		CallDelay:     cfg.DeployCallDelay,
	}

	err = deploy.Validate()
	if err != nil {
		return nil, err
	}

	return deploy, nil
}

// NewRunStore returns the run store selected by STORAGE_MODE.
// Console output goes to consoleOut, or is discarded when it is nil.
func NewRunStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, consoleOut io.Writer) (storage.RunStore, error) {
	switch cfg.StorageMode {
	case storage.ModePostgres:
		pgStore, err := storage.NewPostgresStore(ctx, &storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStore, nil
	case storage.ModeConsole:
		if consoleOut == nil {
			consoleOut = io.Discard
		}
		return storage.NewConsoleStore(consoleOut, logger), nil
	default:
		return storage.NopStore{}, nil
	}
}
