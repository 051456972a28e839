package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusTooManyRequests, ErrUnavailable},
		{http.StatusInternalServerError, ErrUnavailable},
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrPermanent},
		{http.StatusForbidden, ErrPermanent},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := StatusError("svc", tt.code)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "svc")
		})
	}
}

func TestTransportError(t *testing.T) {
	err := TransportError(context.Background(), "svc", errors.New("connection refused"))
	assert.ErrorIs(t, err, ErrUnavailable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = TransportError(ctx, "svc", fmt.Errorf("get: %w", context.Canceled))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestGoogleError(t *testing.T) {
	ctx := context.Background()
	assert.ErrorIs(t, GoogleError(ctx, "youtube", &googleapi.Error{Code: 403}), ErrPermanent)
	assert.ErrorIs(t, GoogleError(ctx, "youtube", &googleapi.Error{Code: 503}), ErrUnavailable)
	assert.ErrorIs(t, GoogleError(ctx, "youtube", errors.New("dial tcp")), ErrUnavailable)
}

func TestBreaker_OpensOnUnavailable(t *testing.T) {
	b := NewBreaker("test-open", BreakerSettings{MinRequests: 2, FailureRatio: 0.5, Timeout: time.Hour})

	calls := 0
	failing := func() (string, error) {
		calls++
		return "", fmt.Errorf("boom: %w", ErrUnavailable)
	}

	for i := 0; i < 2; i++ {
		_, err := Do(b, failing)
		require.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := Do(b, failing)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, calls, "open breaker should not call fn")
}

func TestBreaker_IgnoresNotFoundAndPermanent(t *testing.T) {
	b := NewBreaker("test-ignore", BreakerSettings{MinRequests: 2, FailureRatio: 0.5, Timeout: time.Hour})

	for i := 0; i < 5; i++ {
		_, err := Do(b, func() (int, error) { return 0, ErrNotFound })
		require.ErrorIs(t, err, ErrNotFound)
		_, err = Do(b, func() (int, error) { return 0, ErrPermanent })
		require.ErrorIs(t, err, ErrPermanent)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_ReturnsValue(t *testing.T) {
	b := NewBreaker("test-value", BreakerSettings{})

	got, err := Do(b, func() ([]string, error) { return []string{"a", "b"}, nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, "test-value", b.Name())
}

func TestIsClassified(t *testing.T) {
	assert.True(t, IsClassified(fmt.Errorf("x: %w", ErrPermanent)))
	assert.False(t, IsClassified(errors.New("plain")))
}
