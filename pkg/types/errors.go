package types

import (
	"context"
	"errors"
	"fmt"
)

// RejectReason classifies why a feed record was not selected.
type RejectReason string

// Record-level reject reasons. Values double as metric labels.
const (
	RejectMalformedOutcomes       RejectReason = "malformed_outcomes"
	RejectNotBinaryMarket         RejectReason = "not_binary_market"
	RejectUnexpectedOutcomeLabels RejectReason = "unexpected_outcome_labels"
	RejectInvalidExpiry           RejectReason = "invalid_expiry"
	RejectExpiresTooSoon          RejectReason = "expires_too_soon"
	RejectEmptyTitle              RejectReason = "empty_title"
	RejectDuplicateTitle          RejectReason = "duplicate_title"
	RejectUnexpectedError         RejectReason = "unexpected_error"
)

// RejectError is returned by the normalizer for a record it will not accept.
type RejectError struct {
	Reason RejectReason
	Detail string
}

// Reject builds a RejectError with a formatted detail message.
func Reject(reason RejectReason, format string, args ...any) *RejectError {
	return &RejectError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func (e *RejectError) Error() string {
	if e.Detail == "" {
		return "rejected: " + string(e.Reason)
	}
	return fmt.Sprintf("rejected: %s: %s", e.Reason, e.Detail)
}

// Is matches any RejectError carrying the same reason.
func (e *RejectError) Is(target error) bool {
	var other *RejectError
	if !errors.As(target, &other) {
		return false
	}
	return other.Reason == e.Reason
}

// ReasonOf extracts the reject reason from err.
// Errors that are not RejectErrors map to RejectUnexpectedError.
func ReasonOf(err error) RejectReason {
	var rejectErr *RejectError
	if errors.As(err, &rejectErr) {
		return rejectErr.Reason
	}
	return RejectUnexpectedError
}

// Pipeline-level failures. They abort a run and are reported to the caller.
var (
	ErrFeedUnavailable       = errors.New("feed unavailable")
	ErrFeedTimeout           = errors.New("feed timeout")
	ErrMalformedFeedResponse = errors.New("malformed feed response")
)

// FeedErrorKind returns a stable label for a pipeline-level failure.
// A run abandoned by its caller is "canceled", not a feed failure.
func FeedErrorKind(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrFeedTimeout):
		return "feed_timeout"
	case errors.Is(err, ErrMalformedFeedResponse):
		return "malformed_feed_response"
	case errors.Is(err, ErrFeedUnavailable):
		return "feed_unavailable"
	default:
		return "unknown"
	}
}
