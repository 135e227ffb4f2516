package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/polymarket-seeder/pkg/types"
)

// EndDate formats t the way the Gamma API reports endDate.
func EndDate(t time.Time) *string {
	return types.StrPtr(t.UTC().Format(time.RFC3339))
}

// CreateTestMarket creates a binary Yes/No feed record that ends after the given offset from now.
func CreateTestMarket(id string, question string, now time.Time, endsIn time.Duration) *types.RawMarket {
	return &types.RawMarket{
		ID:       id,
		Slug:     "slug-" + id,
		Question: types.StrPtr(question),
		Outcomes: types.OutcomesText(`["Yes", "No"]`),
		EndDate:  EndDate(now.Add(endsIn)),
	}
}

// CreateTestFeed creates n distinct qualifying records ending a week after now.
func CreateTestFeed(n int, now time.Time) []types.RawMarket {
	feed := make([]types.RawMarket, 0, n)
	for i := range n {
		id := string(rune('a' + i%26))
		if i >= 26 {
			id += uuid.NewString()[:4]
		}
		feed = append(feed, *CreateTestMarket(id, "Market "+id+"?", now, 7*24*time.Hour))
	}
	return feed
}

// CreateTestRun creates a selection run with two markets.
func CreateTestRun(format string) *types.SelectionRun {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &types.SelectionRun{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Format:      format,
		Examined:    4,
		Rejections: map[types.RejectReason]int{
			types.RejectNotBinaryMarket: 1,
			types.RejectExpiresTooSoon: 1,
		},
		Markets: []types.ValidatedMarket{
			{Title: "Will X happen?", Duration: 172800, SourceID: "1", EndsAt: now.Add(48 * time.Hour)},
			{Title: "He said yes", Duration: 259200, SourceID: "2", EndsAt: now.Add(72 * time.Hour)},
		},
	}
}
