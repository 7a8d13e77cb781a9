package strava

import (
	"errors"
	"fmt"
)

// RateLimitMessage is the exact message Strava returns once a quota is spent
const RateLimitMessage = "Rate Limit Exceeded"

var (
	// ErrRateLimitExceeded means the API quota is spent. Callers must stop
	// issuing requests rather than retry.
	ErrRateLimitExceeded = errors.New("strava rate limit exceeded")

	// ErrNotFound is returned when an activity or segment id does not resolve
	ErrNotFound = errors.New("strava record not found")

	// ErrUnauthorized is returned when the access token is rejected
	ErrUnauthorized = errors.New("strava rejected the access token")

	// ErrMalformedResponse is returned when a payload can't be decoded or is
	// missing required fields
	ErrMalformedResponse = errors.New("malformed strava response")

	// ErrNoLeaderTime is returned when a segment has no leader time for the
	// requested gender
	ErrNoLeaderTime = errors.New("segment has no leader time")
)

// APIError is any other non-200 response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}
