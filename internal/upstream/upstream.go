// Package upstream classifies failures of the external services rasoi calls and
// guards those calls with circuit breakers.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrNotFound means the service answered but had no result.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is a transient failure: network, timeout, 5xx, 429 or an open breaker.
	ErrUnavailable = errors.New("service unavailable")
	// ErrPermanent is a failure that retrying will not fix: bad credentials, bad request, bad payload.
	ErrPermanent = errors.New("request failed")
)

// StatusError classifies an unexpected HTTP status code.
func StatusError(service string, code int) error {
	switch {
	case code == http.StatusTooManyRequests || code >= 500:
		return fmt.Errorf("%s: status %d: %w", service, code, ErrUnavailable)
	case code == http.StatusNotFound:
		return fmt.Errorf("%s: status %d: %w", service, code, ErrNotFound)
	default:
		return fmt.Errorf("%s: status %d: %w", service, code, ErrPermanent)
	}
}

// TransportError wraps a failure to reach service. A cancelled caller context is
// returned as is.
func TransportError(ctx context.Context, service string, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	return fmt.Errorf("%s: %v: %w", service, err, ErrUnavailable)
}

// GoogleError classifies an error returned by a google.golang.org/api client.
func GoogleError(ctx context.Context, service string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return StatusError(service, gerr.Code)
	}
	return TransportError(ctx, service, err)
}

// IsClassified reports whether err already carries one of the package sentinels.
func IsClassified(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnavailable) || errors.Is(err, ErrPermanent)
}
