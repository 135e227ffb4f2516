package storage

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/mselser95/polymarket-seeder/pkg/types"
	"go.uber.org/zap"
)

// ConsoleStore implements RunStore by pretty-printing a run summary.
// The CLI points it at stderr so artifacts on stdout stay clean.
type ConsoleStore struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsoleStore creates a new console store.
func NewConsoleStore(out io.Writer, logger *zap.Logger) *ConsoleStore {
	logger.Info("console-storage-initialized")
	return &ConsoleStore{
		out:    out,
		logger: logger,
	}
}

// SaveRun prints the run summary.
func (c *ConsoleStore) SaveRun(ctx context.Context, run *types.SelectionRun) error {
	var b strings.Builder

	rule := strings.Repeat("━", 72)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "MARKET SELECTION RUN %s\n", shortID(run.ID))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Time:     %s\n", run.GeneratedAt.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Format:   %s\n", run.Format)
	fmt.Fprintf(&b, "Examined: %d\n", run.Examined)
	fmt.Fprintf(&b, "Selected: %d\n", len(run.Markets))

	if len(run.Rejections) > 0 {
		fmt.Fprintln(&b, "Rejected:")
		reasons := make([]string, 0, len(run.Rejections))
		for reason := range run.Rejections {
			reasons = append(reasons, string(reason))
		}
		slices.Sort(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(&b, "  %-28s %d\n", reason, run.Rejections[types.RejectReason(reason)])
		}
	}

	fmt.Fprintln(&b, rule)
	for i, m := range run.Markets {
		fmt.Fprintf(&b, "%2d. %-80s %9ds\n", i+1, m.Title, m.Duration)
	}
	if len(run.Markets) == 0 {
		fmt.Fprintln(&b, "No markets qualified.")
	}
	fmt.Fprintln(&b, rule)

	_, err := io.WriteString(c.out, b.String())
	if err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStore) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
