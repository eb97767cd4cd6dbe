package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/sony/gobreaker/v2"
)

type ErrorClassification struct {
	Retryable     bool
	RecordFailure bool
}

type ErrorClassifier func(err error) ErrorClassification

var (
	// Transient failures are retried and count against the breaker.
	Transient = ErrorClassification{Retryable: true, RecordFailure: true}
	// Permanent failures are returned at once but still count against the breaker.
	Permanent = ErrorClassification{RecordFailure: true}
	// Ignored covers caller mistakes and cancellation: no retry, no breaker failure.
	Ignored = ErrorClassification{}
)

// Classify applies the outcomes every adapter shares. specific is consulted after
// cancellation and open-circuit checks and before the network-error check; it reports
// false when it has no opinion. Unknown errors are Permanent.
func Classify(err error, specific func(error) (ErrorClassification, bool)) ErrorClassification {
	switch {
	case err == nil:
		return Ignored
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Ignored
	case IsCircuitOpen(err):
		return Transient
	}
	if specific != nil {
		if class, ok := specific(err); ok {
			return class
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient
	}
	return Permanent
}

// ClassifyHTTPStatus treats timeouts, throttling and 5xx gateway failures as Transient and
// every other status as Ignored, since a 4xx says nothing about provider health.
func ClassifyHTTPStatus(statusCode int) ErrorClassification {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return Transient
	default:
		return Ignored
	}
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func defaultClassifier(err error) ErrorClassification {
	return Classify(err, nil)
}
