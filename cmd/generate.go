package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mselser95/polymarket-seeder/internal/app"
	"github.com/mselser95/polymarket-seeder/internal/discovery"
	"github.com/mselser95/polymarket-seeder/internal/render"
	"github.com/mselser95/polymarket-seeder/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a market creation artifact from trending markets",
	Long: `Fetches trending markets, selects up to --max binary Yes/No markets that end
more than a day from now, and writes a deployment artifact to stdout or --output.

If the feed cannot be fetched the artifact is replaced by a marked error
(a script that exits 1, a comment-only Solidity file, or {"error": ...}) and
the command exits non-zero. Logs and run summaries go to stderr.`,
	RunE: runGenerate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("format", "f", "", "Output format: bash, solidity, calldata (default OUTPUT_FORMAT)")
	generateCmd.Flags().IntP("max", "m", 0, "Maximum number of markets to select (default SELECT_MAX_RESULTS)")
	generateCmd.Flags().IntP("limit", "l", 0, "Number of feed records to fetch (default FEED_LIMIT)")
	generateCmd.Flags().StringP("sort", "s", "", "Feed order: volume24hr, createdAt, endDate (default FEED_ORDER)")
	generateCmd.Flags().String("factory", "", "Market factory address (default FACTORY_ADDRESS)")
	generateCmd.Flags().StringP("output", "o", "", "Write the artifact to this file instead of stdout")
}

type generateOptions struct {
	Format  string
	Factory string
	Output  string
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	err = applySelectionFlags(cmd, cfg)
	if err != nil {
		return err
	}

	opts := generateOptions{}
	opts.Format, _ = cmd.Flags().GetString("format")
	opts.Factory, _ = cmd.Flags().GetString("factory")
	opts.Output, _ = cmd.Flags().GetString("output")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return generate(ctx, cfg, logger, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// applySelectionFlags copies explicitly set feed and selection flags onto cfg.
func applySelectionFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("max") {
		cfg.SelectMaxResults, _ = cmd.Flags().GetInt("max")
	}
	if cmd.Flags().Changed("limit") {
		cfg.FeedLimit, _ = cmd.Flags().GetInt("limit")
	}
	if cmd.Flags().Changed("sort") {
		cfg.FeedOrder, _ = cmd.Flags().GetString("sort")
	}

	err := cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func generate(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts generateOptions, stdout io.Writer, stderr io.Writer) error {
	format := opts.Format
	if format == "" {
		format = cfg.OutputFormat
	}

	factory := opts.Factory
	if factory == "" {
		factory = cfg.FactoryAddress
	}
	if factory == "" {
		return fmt.Errorf("factory address required: set FACTORY_ADDRESS or --factory")
	}

	deploy, err := app.NewDeployConfig(cfg, factory)
	if err != nil {
		return fmt.Errorf("deploy config: %w", err)
	}

	renderer, err := render.New(format, deploy)
	if err != nil {
		return err
	}

	store, err := app.NewRunStore(ctx, cfg, logger, stderr)
	if err != nil {
		return fmt.Errorf("setup storage: %w", err)
	}
	defer store.Close()

	pipeline, err := app.NewPipeline(cfg, logger, discovery.NewClient(cfg.PolymarketGammaURL, logger), nil)
	if err != nil {
		return fmt.Errorf("setup pipeline: %w", err)
	}

	var buf bytes.Buffer

	result, runErr := pipeline.Run(ctx)
	if runErr != nil {
		err = renderer.RenderFailure(&buf, runErr)
		if err != nil {
			return fmt.Errorf("render failure artifact: %w", err)
		}
		err = writeArtifact(opts.Output, format, buf.Bytes(), stdout)
		if err != nil {
			logger.Error("failed-to-write-failure-artifact", zap.Error(err))
		}
		return fmt.Errorf("generate markets: %w", runErr)
	}

	err = renderer.Render(&buf, result.Markets)
	if err != nil {
		return fmt.Errorf("render artifact: %w", err)
	}

	err = writeArtifact(opts.Output, format, buf.Bytes(), stdout)
	if err != nil {
		return err
	}

	if len(result.Markets) == 0 {
		logger.Warn("no-markets-qualified",
			zap.Int("examined", result.Examined))
	}

	err = store.SaveRun(ctx, result.ToRun(format))
	if err != nil {
		// The artifact is already written; a lost audit record is not fatal.
		logger.Error("run-store-failed", zap.Error(err))
	}

	logger.Info("artifact-generated",
		zap.String("format", format),
		zap.Int("markets", len(result.Markets)),
		zap.String("output", outputName(opts.Output)))

	return nil
}

func writeArtifact(path string, format string, data []byte, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(data)
		if err != nil {
			return fmt.Errorf("write artifact: %w", err)
		}
		return nil
	}

	perm := os.FileMode(0o644)
	if format == render.FormatBash {
		perm = 0o755
	}

	err := os.WriteFile(path, data, perm)
	if err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

func outputName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
