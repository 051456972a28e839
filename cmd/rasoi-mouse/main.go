// Command rasoi-mouse moves the pointer with hand gestures seen by the webcam.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/ayusman/rasoi/internal/app"
	"github.com/ayusman/rasoi/internal/capture"
	"github.com/ayusman/rasoi/internal/config"
	"github.com/ayusman/rasoi/internal/detector"
	"github.com/ayusman/rasoi/internal/gesture"
	"github.com/ayusman/rasoi/internal/input"
	"github.com/ayusman/rasoi/internal/logging"
	"github.com/ayusman/rasoi/internal/plugin"
	"github.com/ayusman/rasoi/internal/preview"
	"github.com/ayusman/rasoi/internal/supervisor"
	"github.com/ayusman/rasoi/internal/tray"
)

func init() {
	// The tray must run on the main thread on macOS.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("loading configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, cfg.Mouse)
	stop()
	if errors.Is(err, app.ErrStreamEnded) {
		logging.Error().Err(err).Msg("camera stopped delivering frames")
		os.Exit(1)
	}
	if err != nil {
		logging.Fatal().Err(err).Msg("rasoi-mouse stopped")
	}
}

func run(ctx context.Context, cfg config.MouseConfig) error {
	det, err := detector.NewMediaPipeDetector(detector.Config{
		Command:         cfg.DetectorCommand,
		MaxHands:        cfg.MaxHands,
		MinConfidence:   cfg.MinDetectionConfidence,
		MinTrackingConf: cfg.MinTrackingConfidence,
	})
	if err != nil {
		return err
	}

	plugins := plugin.NewManager(cfg.PluginDir)
	if err := plugins.Discover(); err != nil {
		det.Close()
		return err
	}
	driver, err := input.NewPluginDriver(plugins, plugin.NewExecutor(2*time.Second))
	if err != nil {
		det.Close()
		return err
	}

	camera := capture.NewCamera(cfg.CameraID, capture.WithMirror(cfg.Mirror))
	a := app.New(camera, det, input.NewThrottled(driver, cfg.ClickRate, cfg.ScrollRate), app.OptionsFrom(cfg))

	if cfg.PreviewWindow {
		a.SetWindow(preview.NewWindow("rasoi-mouse"))
	}

	tree := supervisor.New("rasoi-mouse", supervisor.DefaultTreeConfig())

	var previewURL string
	if cfg.PreviewAddr != "" {
		hub := preview.NewHub()
		a.AddSink(hub)
		tree.Add(supervisor.NewHTTPService("preview", &http.Server{
			Addr:              cfg.PreviewAddr,
			Handler:           preview.Handler(hub),
			ReadHeaderTimeout: 10 * time.Second,
		}, 5*time.Second))
		previewURL = "http://" + browserHost(cfg.PreviewAddr)
		logging.Info().Str("url", previewURL).Msg("preview available")
	}

	var runErr error
	var t *tray.Tray
	tree.Add(supervisor.Final("pipeline", a.Run, func(err error) {
		runErr = err
		if t != nil {
			t.Stop()
		}
	}))

	logging.Info().
		Int("camera", cfg.CameraID).
		Str("plugins", cfg.PluginDir).
		Bool("legacy", cfg.LegacyOverlap).
		Msg("rasoi-mouse starting")

	if !cfg.Tray {
		err := tree.Serve(ctx)
		return treeResult(err, runErr)
	}

	t = tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnQuit(a.Quit)
	if previewURL != "" {
		t.OnPreview(func() { openBrowser(previewURL) })
	}
	a.OnGesture(func(g gesture.Gesture) { t.SetLastGesture(g.String()) })

	errCh := tree.ServeBackground(ctx)
	go func() {
		<-ctx.Done()
		t.Stop()
	}()
	t.Run()

	a.Quit()
	return treeResult(<-errCh, runErr)
}

// treeResult maps the supervisor outcome to the pipeline's own error.
func treeResult(treeErr, runErr error) error {
	if runErr != nil {
		return runErr
	}
	if treeErr == nil || errors.Is(treeErr, context.Canceled) || errors.Is(treeErr, suture.ErrTerminateSupervisorTree) {
		return nil
	}
	return treeErr
}

// browserHost turns a listen address like ":8081" into something a browser can open.
func browserHost(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "127.0.0.1" + addr
	}
	return strings.Replace(addr, "0.0.0.0", "127.0.0.1", 1)
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logging.Warn().Err(err).Str("url", url).Msg("could not open browser")
		return
	}
	go cmd.Wait()
}
