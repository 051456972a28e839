package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/rasoi/internal/capture"
	"github.com/ayusman/rasoi/internal/detector"
	"github.com/ayusman/rasoi/internal/gesture"
	"github.com/ayusman/rasoi/internal/input"
	"github.com/ayusman/rasoi/internal/logging"
	"github.com/ayusman/rasoi/internal/metrics"
)

// errQuit is returned by step when the preview window asked to quit.
var errQuit = errors.New("quit requested")

func (a *App) loop(ctx context.Context) error {
	fps := a.opts.IdleFPS
	a.camera.SetFPS(fps)
	ticker := time.NewTicker(capture.Interval(fps))
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.quit:
			return nil
		case <-ticker.C:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			failures++
			logging.Debug().Err(err).Int("failures", failures).Msg("frame read failed")
			if failures >= a.opts.MaxReadFailures {
				return fmt.Errorf("%w: %d consecutive read failures, last: %v", ErrStreamEnded, failures, err)
			}
			continue
		}
		failures = 0

		active, err := a.step(ctx, frame)
		frame.Close()
		if errors.Is(err, errQuit) {
			logging.Info().Msg("quit from preview window")
			return nil
		}

		if next := a.gate.Observe(active); next != fps {
			fps = next
			a.camera.SetFPS(fps)
			ticker.Reset(capture.Interval(fps))
			logging.Debug().Int("fps", fps).Msg("capture rate changed")
		}
	}
}

// step runs one frame through motion gating, detection, classification and
// the driver. It reports whether the frame showed motion or a hand.
func (a *App) step(ctx context.Context, frame *gocv.Mat) (bool, error) {
	start := time.Now()
	defer func() { metrics.FrameDuration.Observe(time.Since(start).Seconds()) }()

	moved := false
	if a.motion != nil {
		moved, _ = a.motion.Detect(frame)
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		logging.Warn().Err(err).Msg("hand detection failed")
		hands = nil
	}

	enabled := a.IsEnabled()
	var fired []gesture.Gesture
	for _, hand := range a.targets(hands) {
		// The cursor follows every tracked hand, whatever its pose.
		a.smoother.Next(a.mapper.IndexTip(hand))
		if !enabled {
			continue
		}
		for _, g := range a.classifier.Gestures(hand) {
			if a.act(ctx, g) {
				fired = append(fired, g)
			}
		}
	}

	a.mu.RLock()
	sinks, window := a.sinks, a.window
	a.mu.RUnlock()

	for _, s := range sinks {
		s.Publish(frame, hands, fired)
	}
	if window != nil && window.Show(frame, hands) {
		return moved || len(hands) > 0, errQuit
	}
	return moved || len(hands) > 0, nil
}

// targets picks the hands to act on: the most confident one, or every hand
// in legacy mode.
func (a *App) targets(hands []detector.HandLandmarks) []*detector.HandLandmarks {
	if a.opts.Legacy {
		out := make([]*detector.HandLandmarks, len(hands))
		for i := range hands {
			out[i] = &hands[i]
		}
		return out
	}
	if best := detector.Best(hands); best != nil {
		return []*detector.HandLandmarks{best}
	}
	return nil
}

// act performs g and reports whether the driver accepted it.
func (a *App) act(ctx context.Context, g gesture.Gesture) bool {
	var err error
	switch g {
	case gesture.Pointer:
		p := a.smoother.Current()
		err = a.driver.MoveTo(ctx, int(p.X), int(p.Y))
	case gesture.Click:
		err = a.driver.Click(ctx)
	case gesture.ScrollUp:
		err = a.driver.Scroll(ctx, a.opts.ScrollAmount)
	case gesture.ScrollDown:
		err = a.driver.Scroll(ctx, -a.opts.ScrollAmount)
	default:
		return false
	}

	if errors.Is(err, input.ErrThrottled) {
		return false
	}
	if err != nil {
		logging.Warn().Err(err).Str("gesture", g.String()).Msg("input action failed")
		return false
	}

	metrics.GesturesFired.WithLabelValues(g.String()).Inc()
	if g != gesture.Pointer {
		logging.Debug().Str("gesture", g.String()).Msg("gesture fired")
	}

	a.mu.RLock()
	cb := a.onGesture
	a.mu.RUnlock()
	if cb != nil {
		cb(g)
	}
	return true
}
