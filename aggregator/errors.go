package aggregator

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers connection failures and timeouts
	ErrTransport = errors.New("transport error")
	// ErrHTTPStatus is returned for non-2xx responses
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrMalformedBody is returned when the body is not a JSON object
	ErrMalformedBody = errors.New("malformed body")
	// ErrMissingApps is returned when the document has no usable apps list
	ErrMissingApps = errors.New("apps field missing or not a list")
)

// StatusError carries the status code of a rejected response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrHTTPStatus
}

// category names the failure class of err for logging
func category(err error) string {
	switch {
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrHTTPStatus):
		return "status"
	case errors.Is(err, ErrMalformedBody):
		return "malformed"
	case errors.Is(err, ErrMissingApps):
		return "schema"
	default:
		return "unexpected"
	}
}
