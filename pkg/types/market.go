package types

import (
	"bytes"
	"time"

	json "github.com/goccy/go-json"
)

// RawMarket is a single market record as served by the Gamma API.
// Only the fields the selection pipeline consults are decoded. Decoding is
// lenient: a field carrying the wrong JSON type is treated as absent, and a
// record that is not a JSON object decodes to the zero RawMarket.
type RawMarket struct {
	ID       string
	Slug     string
	Question *string
	Outcomes Outcomes
	EndDate  *string
}

// UnmarshalJSON decodes a Gamma market record field by field.
func (m *RawMarket) UnmarshalJSON(data []byte) error {
	*m = RawMarket{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		// Not an object. Leave the record empty so it is rejected downstream.
		return nil
	}

	m.ID = stringOrEmpty(fields["id"])
	m.Slug = stringOrEmpty(fields["slug"])
	m.Question = optionalString(fields["question"])
	m.EndDate = optionalString(fields["endDate"])
	if raw, ok := fields["outcomes"]; ok {
		m.Outcomes = Outcomes{Raw: append([]byte(nil), raw...)}
	}

	return nil
}

// MarshalJSON encodes the record back into Gamma's field names.
func (m RawMarket) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if m.ID != "" {
		out["id"] = m.ID
	}
	if m.Slug != "" {
		out["slug"] = m.Slug
	}
	if m.Question != nil {
		out["question"] = *m.Question
	}
	if m.EndDate != nil {
		out["endDate"] = *m.EndDate
	}
	if m.Outcomes.Present() {
		out["outcomes"] = json.RawMessage(m.Outcomes.Raw)
	}
	return json.Marshal(out)
}

// Outcomes holds the outcomes field exactly as received.
// Gamma serves it as a JSON-encoded string ("[\"Yes\", \"No\"]"), other
// feeds send a plain array; both are interpreted by the normalizer.
type Outcomes struct {
	Raw []byte
}

// OutcomesOf builds an array-form Outcomes value.
func OutcomesOf(labels ...string) Outcomes {
	raw, _ := json.Marshal(labels)
	return Outcomes{Raw: raw}
}

// OutcomesText builds a string-form Outcomes value carrying text verbatim.
func OutcomesText(text string) Outcomes {
	raw, _ := json.Marshal(text)
	return Outcomes{Raw: raw}
}

// Present reports whether the field was set to something other than null.
func (o Outcomes) Present() bool {
	trimmed := bytes.TrimSpace(o.Raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// IsText reports whether the field was sent as a JSON string.
func (o Outcomes) IsText() bool {
	trimmed := bytes.TrimSpace(o.Raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}

// ValidatedMarket is a market that passed normalization and is ready to be
// rendered. Renderers only read Title and Duration.
type ValidatedMarket struct {
	Title    string
	Duration int64 // seconds from selection time until EndsAt

	SourceID string
	EndsAt   time.Time
}

// SelectionRun is the outcome of one pipeline run, as persisted by storage.
type SelectionRun struct {
	ID          string
	GeneratedAt time.Time
	Format      string
	Examined    int
	Rejections  map[RejectReason]int
	Markets     []ValidatedMarket
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}

func stringOrEmpty(raw json.RawMessage) string {
	if s := optionalString(raw); s != nil {
		return *s
	}
	return ""
}

func optionalString(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}
