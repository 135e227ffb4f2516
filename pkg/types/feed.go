package types

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// DecodeFeed decodes a Gamma /markets response body.
// The API returns a bare array; some deployments wrap it as {"data": [...]}.
// Any other top-level shape is reported as ErrMalformedFeedResponse.
func DecodeFeed(body []byte) ([]RawMarket, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedFeedResponse)
	}

	switch trimmed[0] {
	case '[':
		var markets []RawMarket
		if err := json.Unmarshal(trimmed, &markets); err != nil {
			return nil, fmt.Errorf("%w: decode array: %w", ErrMalformedFeedResponse, err)
		}
		return markets, nil

	case '{':
		var wrapper struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: decode object: %w", ErrMalformedFeedResponse, err)
		}
		data := bytes.TrimSpace(wrapper.Data)
		if len(data) == 0 || data[0] != '[' {
			return nil, fmt.Errorf("%w: object has no data array", ErrMalformedFeedResponse)
		}
		var markets []RawMarket
		if err := json.Unmarshal(data, &markets); err != nil {
			return nil, fmt.Errorf("%w: decode data array: %w", ErrMalformedFeedResponse, err)
		}
		return markets, nil

	default:
		return nil, fmt.Errorf("%w: top-level value is neither array nor object", ErrMalformedFeedResponse)
	}
}
