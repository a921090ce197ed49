package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Request failure kinds, used as log fields and metric labels.
const (
	KindTimeout     = "timeout"
	KindConnection  = "connection"
	KindForbidden   = "forbidden"
	KindNotFound    = "not_found"
	KindRateLimited = "rate_limited"
)

// RequestError is a classified crawl failure.
type RequestError struct {
	Kind   string
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return "other"
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &RequestError{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &RequestError{Kind: KindTimeout, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &RequestError{Kind: KindConnection, Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return &RequestError{Kind: KindForbidden, Status: statusCode, Err: wrapped}
		case http.StatusNotFound:
			return &RequestError{Kind: KindNotFound, Status: statusCode, Err: wrapped}
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return &RequestError{Kind: KindRateLimited, Status: statusCode, Err: wrapped}
		}
	}

	if err == nil {
		return fmt.Errorf("http status %d", statusCode)
	}
	return err
}

// retryable reports whether a failure is worth another attempt.
func retryable(err error) bool {
	switch errorTypeLabel(err) {
	case KindForbidden, KindNotFound:
		return false
	}
	return true
}
