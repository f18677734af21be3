package client

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is returned when the explorer answers a token list
	// request without a result, which is how it rejects an address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrMissingResult is returned when a response lacks the expected result field.
	ErrMissingResult = errors.New("response has no result")
)

// UpstreamStatusError reports a non-200 answer from an upstream API.
type UpstreamStatusError struct {
	API        string
	URL        string
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s request to %s failed with status %d", e.API, e.URL, e.StatusCode)
}
