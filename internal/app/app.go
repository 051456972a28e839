// Package app runs the gesture mouse: it reads camera frames, finds hands,
// classifies their pose and turns it into pointer actions.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/rasoi/internal/capture"
	"github.com/ayusman/rasoi/internal/config"
	"github.com/ayusman/rasoi/internal/detector"
	"github.com/ayusman/rasoi/internal/gesture"
	"github.com/ayusman/rasoi/internal/input"
	"github.com/ayusman/rasoi/internal/logging"
)

// ErrStreamEnded is returned by Run when the camera stopped producing frames.
var ErrStreamEnded = errors.New("camera stream ended")

// Options tune the pipeline. Zero values fall back to the defaults in New.
type Options struct {
	IdleFPS         int
	ActiveFPS       int
	IdleTimeout     time.Duration
	MotionThreshold float64 // percent of changed pixels; 0 disables motion gating
	MaxReadFailures int

	SmoothFactor float64
	ScrollAmount int
	// ScreenWidth and ScreenHeight override the size reported by the driver.
	ScreenWidth  int
	ScreenHeight int
	// Legacy fires every matching gesture for every hand.
	Legacy bool
}

// OptionsFrom copies the pipeline settings out of the mouse configuration.
func OptionsFrom(cfg config.MouseConfig) Options {
	return Options{
		IdleFPS:         cfg.IdleFPS,
		ActiveFPS:       cfg.ActiveFPS,
		IdleTimeout:     cfg.IdleTimeout,
		MotionThreshold: cfg.MotionThreshold,
		MaxReadFailures: cfg.MaxReadFailures,
		SmoothFactor:    cfg.SmoothFactor,
		ScrollAmount:    cfg.ScrollAmount,
		ScreenWidth:     cfg.ScreenWidth,
		ScreenHeight:    cfg.ScreenHeight,
		Legacy:          cfg.LegacyOverlap,
	}
}

func (o *Options) setDefaults() {
	if o.IdleFPS <= 0 {
		o.IdleFPS = capture.DefaultFPS
	}
	if o.ActiveFPS < o.IdleFPS {
		o.ActiveFPS = o.IdleFPS
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = 2 * time.Second
	}
	if o.MaxReadFailures <= 0 {
		o.MaxReadFailures = 30
	}
	if o.SmoothFactor < 1 {
		o.SmoothFactor = 3
	}
	if o.ScrollAmount <= 0 {
		o.ScrollAmount = 40
	}
}

// FrameSink receives every processed frame. The frame is only valid for the
// duration of the call.
type FrameSink interface {
	Publish(frame *gocv.Mat, hands []detector.HandLandmarks, gestures []gesture.Gesture)
}

// Window shows frames locally. Show returns true when the user asked to quit.
type Window interface {
	Show(frame *gocv.Mat, hands []detector.HandLandmarks) (quit bool)
	Close() error
}

// App owns the capture pipeline.
type App struct {
	opts       Options
	camera     capture.Camera
	detector   detector.Detector
	driver     input.Driver
	motion     *capture.MotionDetector
	gate       *capture.Gate
	classifier gesture.Classifier
	smoother   *gesture.Smoother
	mapper     gesture.ScreenMapper

	mu        sync.RWMutex
	enabled   bool
	sinks     []FrameSink
	window    Window
	onGesture func(gesture.Gesture)

	quit     chan struct{}
	quitOnce sync.Once
}

// New wires a pipeline. The camera is opened by Run.
func New(camera capture.Camera, det detector.Detector, driver input.Driver, opts Options) *App {
	opts.setDefaults()

	a := &App{
		opts:       opts,
		camera:     camera,
		detector:   det,
		driver:     driver,
		gate:       capture.NewGate(opts.IdleFPS, opts.ActiveFPS, opts.IdleTimeout),
		classifier: gesture.Classifier{Legacy: opts.Legacy},
		smoother:   gesture.NewSmoother(opts.SmoothFactor),
		enabled:    true,
		quit:       make(chan struct{}),
	}
	if opts.MotionThreshold > 0 {
		a.motion = capture.NewMotionDetector(opts.MotionThreshold)
	}
	return a
}

// AddSink registers a frame consumer such as the preview server.
func (a *App) AddSink(s FrameSink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sinks = append(a.sinks, s)
}

// SetWindow enables the local preview window. Pressing q in it stops Run.
func (a *App) SetWindow(w Window) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.window = w
}

// OnGesture registers a callback for every gesture that reached the driver.
func (a *App) OnGesture(fn func(gesture.Gesture)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onGesture = fn
}

// SetEnabled pauses or resumes gesture actions. Frames keep flowing to sinks.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	logging.Info().Bool("enabled", enabled).Msg("gesture control toggled")
}

func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Quit makes Run return. Safe to call more than once and from any goroutine.
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// Run opens the camera and processes frames until ctx is cancelled, Quit is
// called, the preview window receives q, or MaxReadFailures reads in a row
// fail. Only the last case returns an error (wrapping ErrStreamEnded).
func (a *App) Run(ctx context.Context) error {
	// Capture and HighGUI calls must all come from one OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := a.resolveScreen(ctx); err != nil {
		return err
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer a.close()

	logging.Info().
		Int("idle_fps", a.opts.IdleFPS).
		Int("active_fps", a.opts.ActiveFPS).
		Float64("screen_width", a.mapper.Width).
		Float64("screen_height", a.mapper.Height).
		Bool("legacy", a.opts.Legacy).
		Msg("gesture pipeline started")

	return a.loop(ctx)
}

func (a *App) resolveScreen(ctx context.Context) error {
	if a.opts.ScreenWidth > 0 && a.opts.ScreenHeight > 0 {
		a.mapper = gesture.ScreenMapper{Width: float64(a.opts.ScreenWidth), Height: float64(a.opts.ScreenHeight)}
		return nil
	}
	w, h, err := a.driver.ScreenSize(ctx)
	if err != nil {
		return fmt.Errorf("screen size: %w", err)
	}
	a.mapper = gesture.ScreenMapper{Width: float64(w), Height: float64(h)}
	return nil
}

func (a *App) close() {
	if err := a.camera.Close(); err != nil {
		logging.Warn().Err(err).Msg("closing camera")
	}
	if a.motion != nil {
		a.motion.Close()
	}
	if err := a.detector.Close(); err != nil {
		logging.Warn().Err(err).Msg("closing detector")
	}

	a.mu.RLock()
	w := a.window
	a.mu.RUnlock()
	if w != nil {
		if err := w.Close(); err != nil {
			logging.Warn().Err(err).Msg("closing preview window")
		}
	}
	logging.Info().Msg("gesture pipeline stopped")
}
