package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/ayusman/rasoi/internal/logging"
)

// HTTPServer is the part of *http.Server the HTTP service needs.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService serves an HTTP server until the supervisor stops it.
type HTTPService struct {
	name            string
	server          HTTPServer
	shutdownTimeout time.Duration
}

func NewHTTPService(name string, server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{name: name, server: server, shutdownTimeout: shutdownTimeout}
}

func (h *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s: %w", h.name, err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s shutdown: %w", h.name, err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTPService) String() string { return h.name }

// FuncService adapts a blocking function to suture.Service.
type FuncService struct {
	name string
	fn   func(ctx context.Context) error
}

func NewFuncService(name string, fn func(ctx context.Context) error) *FuncService {
	return &FuncService{name: name, fn: fn}
}

func (f *FuncService) Serve(ctx context.Context) error { return f.fn(ctx) }
func (f *FuncService) String() string                   { return f.name }

// Final wraps fn so that its return ends the whole tree instead of being
// restarted. The result is passed to done before the tree terminates.
func Final(name string, fn func(ctx context.Context) error, done func(error)) *FuncService {
	return NewFuncService(name, func(ctx context.Context) error {
		err := fn(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if done != nil {
			done(err)
		}
		return suture.ErrTerminateSupervisorTree
	})
}

// Ticker runs fn every interval until stopped. Errors are logged, not fatal.
func Ticker(name string, interval time.Duration, fn func(ctx context.Context) error) *FuncService {
	return NewFuncService(name, func(ctx context.Context) error {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				if err := fn(ctx); err != nil {
					logging.Warn().Err(err).Str("service", name).Msg("periodic task failed")
				}
			}
		}
	})
}
