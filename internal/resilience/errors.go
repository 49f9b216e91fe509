package resilience

import (
	"context"
	"errors"
	"net"
)

// IsTimeout reports whether the error chain contains a context deadline or a
// network timeout. Cascades treat timeouts identically to ordinary failures,
// but the location tiers need to classify the terminal reason.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsTransientHTTPStatus reports whether a status code indicates a provider
// hiccup worth advancing past rather than a permanent rejection.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// permanentError marks a failure that no later attempt can recover from,
// such as a rejection every equivalent provider would repeat.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as terminal for a cascade.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
