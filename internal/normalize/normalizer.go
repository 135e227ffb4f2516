package normalize

import (
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/polymarket-seeder/pkg/types"
)

const (
	// DefaultMinMargin is how far in the future a market must end to be seeded.
	DefaultMinMargin = 24 * time.Hour

	// DefaultMaxTitleLength caps the question text passed to createMarket.
	DefaultMaxTitleLength = 80

	ellipsis = "..."
)

// Expected binary outcome labels, in order.
const (
	OutcomeYes = "Yes"
	OutcomeNo  = "No"
)

// Normalizer turns raw feed records into validated markets.
// The zero value is not usable; use New or Default.
type Normalizer struct {
	minMargin      time.Duration
	maxTitleLength int
}

// Config holds normalizer configuration.
type Config struct {
	MinMargin      time.Duration
	MaxTitleLength int
}

// New creates a normalizer. Non-positive values fall back to defaults.
func New(cfg *Config) *Normalizer {
	n := &Normalizer{
		minMargin:      DefaultMinMargin,
		maxTitleLength: DefaultMaxTitleLength,
	}
	if cfg == nil {
		return n
	}
	if cfg.MinMargin > 0 {
		n.minMargin = cfg.MinMargin
	}
	// Room for at least one character plus the ellipsis.
	if cfg.MaxTitleLength > len(ellipsis) {
		n.maxTitleLength = cfg.MaxTitleLength
	}
	return n
}

// Default returns a normalizer with the default margin and title length.
func Default() *Normalizer {
	return New(nil)
}

// Normalize validates rec against now using the default normalizer.
func Normalize(rec *types.RawMarket, now time.Time) (types.ValidatedMarket, error) {
	return Default().Normalize(rec, now)
}

// Normalize validates a single record.
// Every failure is a *types.RejectError; the record is never modified.
func (n *Normalizer) Normalize(rec *types.RawMarket, now time.Time) (types.ValidatedMarket, error) {
	if rec == nil {
		return types.ValidatedMarket{}, types.Reject(types.RejectNotBinaryMarket, "nil record")
	}

	labels, rejectErr := parseOutcomes(rec.Outcomes)
	if rejectErr != nil {
		return types.ValidatedMarket{}, rejectErr
	}

	if labels[0] != OutcomeYes || labels[1] != OutcomeNo {
		return types.ValidatedMarket{}, types.Reject(types.RejectUnexpectedOutcomeLabels,
			"outcomes %q/%q", labels[0], labels[1])
	}

	if rec.EndDate == nil || *rec.EndDate == "" {
		return types.ValidatedMarket{}, types.Reject(types.RejectInvalidExpiry, "missing endDate")
	}

	endsAt, err := ParseExpiry(*rec.EndDate)
	if err != nil {
		return types.ValidatedMarket{}, types.Reject(types.RejectInvalidExpiry, "%v", err)
	}

	// Margin is checked on whole seconds so the emitted duration itself
	// always clears it.
	duration := int64(endsAt.Sub(now) / time.Second)
	minSeconds := int64(n.minMargin / time.Second)
	if duration <= minSeconds {
		return types.ValidatedMarket{}, types.Reject(types.RejectExpiresTooSoon,
			"%ds remaining, need more than %ds", duration, minSeconds)
	}

	var question string
	if rec.Question != nil {
		question = *rec.Question
	}
	title := n.SanitizeTitle(question)
	if title == "" {
		return types.ValidatedMarket{}, types.Reject(types.RejectEmptyTitle, "question empty after sanitization")
	}

	return types.ValidatedMarket{
		Title:    title,
		Duration: duration,
		SourceID: rec.ID,
		EndsAt:   endsAt,
	}, nil
}

// SanitizeTitle makes s safe to embed in a quoted shell or Solidity string.
// Quotes and backticks are stripped, non-ASCII characters are dropped and
// overlong titles are truncated with an ellipsis.
func (n *Normalizer) SanitizeTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '"', r == '\'', r == '`':
			continue
		case r > 0x7F:
			continue
		}
		b.WriteRune(r)
	}

	title := b.String()
	if len(title) > n.maxTitleLength {
		title = title[:n.maxTitleLength-len(ellipsis)] + ellipsis
	}
	return title
}

// SanitizeTitle applies the default sanitization rules.
func SanitizeTitle(s string) string {
	return Default().SanitizeTitle(s)
}

// parseOutcomes returns the two outcome labels or a classified rejection.
func parseOutcomes(o types.Outcomes) ([2]string, *types.RejectError) {
	var labels [2]string

	if !o.Present() {
		return labels, types.Reject(types.RejectNotBinaryMarket, "outcomes missing")
	}

	raw := o.Raw
	if o.IsText() {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return labels, types.Reject(types.RejectMalformedOutcomes, "outcomes string: %v", err)
		}
		raw = []byte(text)
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return labels, types.Reject(types.RejectMalformedOutcomes, "outcomes: %v", err)
	}

	list, ok := value.([]any)
	if !ok {
		return labels, types.Reject(types.RejectNotBinaryMarket, "outcomes is %T, not a list", value)
	}
	if len(list) != 2 {
		return labels, types.Reject(types.RejectNotBinaryMarket, "%d outcomes", len(list))
	}

	for i, entry := range list {
		label, ok := entry.(string)
		if !ok {
			return labels, types.Reject(types.RejectNotBinaryMarket, "outcome %d is %T, not text", i, entry)
		}
		labels[i] = label
	}

	return labels, nil
}
