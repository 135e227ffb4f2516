package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/mselser95/polymarket-seeder/internal/app"
	"github.com/mselser95/polymarket-seeder/internal/discovery"
	"github.com/mselser95/polymarket-seeder/internal/selection"
	"github.com/mselser95/polymarket-seeder/pkg/config"
	"github.com/mselser95/polymarket-seeder/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listMarketsCmd = &cobra.Command{
	Use:   "list-markets",
	Short: "Show the selection verdict for every fetched market",
	Long: `Fetches markets from the Polymarket Gamma API and prints, for each record in
feed order, whether it was accepted or why it was rejected. Records after the
selection cap are shown as "not examined". Useful for debugging why a market
was or was not seeded.`,
	RunE: runListMarkets,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(listMarketsCmd)
	listMarketsCmd.Flags().IntP("limit", "l", 20, "Number of feed records to fetch")
	listMarketsCmd.Flags().IntP("max", "m", 0, "Maximum number of markets to select (default SELECT_MAX_RESULTS)")
	listMarketsCmd.Flags().StringP("sort", "s", "", "Feed order: volume24hr, createdAt, endDate (default FEED_ORDER)")
	listMarketsCmd.Flags().BoolP("verbose", "v", false, "Show reject details and market IDs")
}

// recordingFetcher keeps the last fetched feed so unexamined records can be listed.
type recordingFetcher struct {
	selection.Fetcher
	records []types.RawMarket
}

func (f *recordingFetcher) FetchTrendingMarkets(ctx context.Context, limit int, orderBy string) ([]types.RawMarket, error) {
	records, err := f.Fetcher.FetchTrendingMarkets(ctx, limit, orderBy)
	f.records = records
	return records, err
}

func runListMarkets(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// list-markets has its own, smaller limit default.
	cfg.FeedLimit, _ = cmd.Flags().GetInt("limit")
	err = applySelectionFlags(cmd, cfg)
	if err != nil {
		return err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return listMarkets(ctx, cfg, logger, verbose, cmd.OutOrStdout())
}

func listMarkets(ctx context.Context, cfg *config.Config, logger *zap.Logger, verbose bool, out io.Writer) error {
	fetcher := &recordingFetcher{Fetcher: discovery.NewClient(cfg.PolymarketGammaURL, logger)}

	decisions := make(map[int]selection.Decision)
	pipeline, err := app.NewPipeline(cfg, logger, fetcher, func(d selection.Decision) {
		decisions[d.Index] = d
	})
	if err != nil {
		return fmt.Errorf("setup pipeline: %w", err)
	}

	fmt.Fprintf(out, "Fetching up to %d markets from Polymarket (order: %s)...\n\n", cfg.FeedLimit, cfg.FeedOrder)

	result, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	if len(fetcher.records) == 0 {
		fmt.Fprintln(out, "No markets found.")
		return nil
	}

	printVerdicts(out, fetcher.records, decisions, verbose)

	fmt.Fprintf(out, "\nFetched: %d, examined: %d, selected: %d, rejected: %d\n",
		result.Fetched, result.Examined, len(result.Markets), result.Rejected())

	return nil
}

func printVerdicts(out io.Writer, records []types.RawMarket, decisions map[int]selection.Decision, verbose bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "#\tVERDICT\tDURATION\tQUESTION\n")
	fmt.Fprintf(w, "-\t-------\t--------\t--------\n")

	for i := range records {
		rec := &records[i]

		question := "(none)"
		if rec.Question != nil {
			question = *rec.Question
		}
		if runes := []rune(question); len(runes) > 60 {
			question = string(runes[:57]) + "..."
		}

		verdict := "not examined"
		duration := "-"
		d, examined := decisions[i]
		switch {
		case examined && d.Accepted:
			verdict = "ACCEPTED"
			duration = fmt.Sprintf("%ds", d.Market.Duration)
			question = d.Market.Title
		case examined:
			verdict = string(d.Reason)
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, verdict, duration, question)

		if verbose {
			fmt.Fprintf(w, "\tID: %s\t\t\n", rec.ID)
			if rec.Slug != "" {
				fmt.Fprintf(w, "\tSlug: %s\t\t\n", rec.Slug)
			}
			if examined && !d.Accepted {
				fmt.Fprintf(w, "\tDetail: %s\t\t\n", d.Detail)
			}
		}
	}

	w.Flush()
}
