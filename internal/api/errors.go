package api

import (
	"errors"
	"fmt"
)

// ErrRateLimited matches HTTP errors caused by throttling. Callers use it
// with errors.Is to suppress the failure from user-facing error state.
var ErrRateLimited = errors.New("rate limited")

// ErrUnauthorized matches HTTP errors caused by a missing or expired
// session. Read paths treat it as a cache miss.
var ErrUnauthorized = errors.New("unauthorized")

// HTTPError is returned for any non-2xx response from the marketplace API.
type HTTPError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %d on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("api %d on %s %s", e.StatusCode, e.Method, e.Path)
}

// Is lets errors.Is match the throttling and session sentinels.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.StatusCode == 429
	case ErrUnauthorized:
		return e.StatusCode == 401
	}
	return false
}
