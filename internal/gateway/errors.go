package gateway

import (
	"errors"
	"net/http"
)

// Error taxonomy for backend calls. Callers match with errors.Is; no call is
// retried automatically.
var (
	ErrNetwork    = errors.New("network failure")
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrTimeout    = errors.New("timed out")

	// ErrUpstreamFailure is a 2xx response whose body carries success=false.
	ErrUpstreamFailure = errors.New("upstream reported failure")
)

// StatusError is a non-2xx backend response. It unwraps to the sentinel for
// its class so the original status stays available to callers that need it.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Message
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrTimeout
	default:
		return ErrNetwork
	}
}

// Kind labels an error for metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrUpstreamFailure):
		return "upstream"
	default:
		return "other"
	}
}
