package selection

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/polymarket-seeder/internal/normalize"
	"github.com/mselser95/polymarket-seeder/pkg/types"
	"go.uber.org/zap"
)

// DefaultMaxResults is the number of markets seeded per run.
const DefaultMaxResults = 10

// Decision is the verdict for one examined feed record.
type Decision struct {
	Index    int
	Record   *types.RawMarket
	Market   *types.ValidatedMarket // nil when rejected
	Reason   types.RejectReason     // empty when accepted
	Detail   string
	Accepted bool
}

// Result is the outcome of selecting from one batch of records.
type Result struct {
	Markets    []types.ValidatedMarket
	Fetched    int
	Examined   int
	Rejections map[types.RejectReason]int
	SelectedAt time.Time
}

// Rejected returns the total number of rejected records.
func (r *Result) Rejected() int {
	total := 0
	for _, n := range r.Rejections {
		total += n
	}
	return total
}

// ToRun converts the result into a SelectionRun with a fresh run ID.
func (r *Result) ToRun(format string) *types.SelectionRun {
	return &types.SelectionRun{
		ID:          uuid.NewString(),
		GeneratedAt: r.SelectedAt,
		Format:      format,
		Examined:    r.Examined,
		Rejections:  r.Rejections,
		Markets:     r.Markets,
	}
}

// Normalizer validates a single feed record.
type Normalizer interface {
	Normalize(rec *types.RawMarket, now time.Time) (types.ValidatedMarket, error)
}

// Selector applies the normalizer to feed records in order, drops duplicate
// titles and caps the result.
type Selector struct {
	normalizer Normalizer
	logger     *zap.Logger
	onDecision func(Decision)
}

// SelectorConfig holds selector configuration.
type SelectorConfig struct {
	Normalizer Normalizer
	Logger     *zap.Logger
	OnDecision func(Decision) // optional per-record trace
}

// NewSelector creates a selector. A nil normalizer or logger uses defaults.
func NewSelector(cfg *SelectorConfig) *Selector {
	s := &Selector{
		normalizer: normalize.Default(),
		logger:     zap.NewNop(),
	}
	if cfg == nil {
		return s
	}
	if cfg.Normalizer != nil {
		s.normalizer = cfg.Normalizer
	}
	if cfg.Logger != nil {
		s.logger = cfg.Logger
	}
	s.onDecision = cfg.OnDecision
	return s
}

// Select returns up to maxResults validated markets from records, in feed order,
// using the default normalizer.
func Select(records []types.RawMarket, maxResults int, now time.Time) []types.ValidatedMarket {
	return NewSelector(nil).Select(records, maxResults, now).Markets
}

// Select evaluates records in feed order. Once maxResults markets are accepted
// the remaining records are not examined. maxResults <= 0 means DefaultMaxResults.
func (s *Selector) Select(records []types.RawMarket, maxResults int, now time.Time) *Result {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	result := &Result{
		Markets:    make([]types.ValidatedMarket, 0, maxResults),
		Rejections: make(map[types.RejectReason]int),
		Fetched:    len(records),
		SelectedAt: now,
	}
	seen := make(map[string]struct{}, maxResults)

	for i := range records {
		if len(result.Markets) >= maxResults {
			break
		}

		rec := &records[i]
		result.Examined++
		RecordsExaminedTotal.Inc()

		market, err := s.evaluate(rec, now)
		if err == nil {
			if _, dup := seen[market.Title]; dup {
				err = types.Reject(types.RejectDuplicateTitle, "title %q already selected", market.Title)
			}
		}

		if err != nil {
			reason := types.ReasonOf(err)
			result.Rejections[reason]++
			RecordsRejectedTotal.WithLabelValues(string(reason)).Inc()
			s.logger.Debug("record-rejected",
				zap.Int("index", i),
				zap.String("market-id", rec.ID),
				zap.String("reason", string(reason)),
				zap.Error(err))
			s.emit(Decision{Index: i, Record: rec, Reason: reason, Detail: err.Error()})
			continue
		}

		seen[market.Title] = struct{}{}
		result.Markets = append(result.Markets, market)
		MarketsSelectedTotal.Inc()
		s.logger.Debug("record-accepted",
			zap.Int("index", i),
			zap.String("market-id", rec.ID),
			zap.String("title", market.Title),
			zap.Int64("duration-seconds", market.Duration))
		accepted := market
		s.emit(Decision{Index: i, Record: rec, Market: &accepted, Accepted: true})
	}

	return result
}

// evaluate normalizes one record, turning a panic into an unexpected_error
// rejection so a single bad record never aborts the run.
func (s *Selector) evaluate(rec *types.RawMarket, now time.Time) (market types.ValidatedMarket, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("record-evaluation-panicked",
				zap.String("market-id", rec.ID),
				zap.Any("panic", r))
			market = types.ValidatedMarket{}
			err = types.Reject(types.RejectUnexpectedError, "%s", fmt.Sprint(r))
		}
	}()

	return s.normalizer.Normalize(rec, now)
}

func (s *Selector) emit(d Decision) {
	if s.onDecision != nil {
		s.onDecision(d)
	}
}
