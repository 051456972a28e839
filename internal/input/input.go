// Package input issues OS pointer actions on behalf of recognized gestures.
package input

import (
	"context"
	"errors"
)

// ErrThrottled is returned when an action was dropped by a rate limiter.
var ErrThrottled = errors.New("action throttled")

// Driver moves and clicks the system pointer. Scroll amounts are wheel clicks,
// positive for up.
type Driver interface {
	ScreenSize(ctx context.Context) (width, height int, err error)
	MoveTo(ctx context.Context, x, y int) error
	Click(ctx context.Context) error
	Scroll(ctx context.Context, amount int) error
}
