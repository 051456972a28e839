package input

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/ayusman/rasoi/internal/metrics"
)

// Throttled limits how often clicks and scrolls reach the wrapped driver.
// Pointer moves pass through.
type Throttled struct {
	Driver
	click  *rate.Limiter
	scroll *rate.Limiter
}

// NewThrottled allows clicksPerSec clicks and scrollsPerSec scrolls. A rate of
// zero disables the limit for that action.
func NewThrottled(d Driver, clicksPerSec, scrollsPerSec float64) *Throttled {
	return &Throttled{
		Driver: d,
		click:  newLimiter(clicksPerSec),
		scroll: newLimiter(scrollsPerSec),
	}
}

func newLimiter(perSec float64) *rate.Limiter {
	if perSec <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSec), 1)
}

// Click returns ErrThrottled when the click budget is spent.
func (t *Throttled) Click(ctx context.Context) error {
	if !t.click.Allow() {
		metrics.GesturesThrottled.WithLabelValues("click").Inc()
		return ErrThrottled
	}
	return t.Driver.Click(ctx)
}

// Scroll returns ErrThrottled when the scroll budget is spent.
func (t *Throttled) Scroll(ctx context.Context, amount int) error {
	if !t.scroll.Allow() {
		label := "scroll_up"
		if amount < 0 {
			label = "scroll_down"
		}
		metrics.GesturesThrottled.WithLabelValues(label).Inc()
		return ErrThrottled
	}
	return t.Driver.Scroll(ctx, amount)
}
