// Command rasoi-recipes serves the recipe finder web UI and JSON API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/rasoi/internal/cache"
	"github.com/ayusman/rasoi/internal/config"
	"github.com/ayusman/rasoi/internal/logging"
	"github.com/ayusman/rasoi/internal/recipe"
	"github.com/ayusman/rasoi/internal/server"
	"github.com/ayusman/rasoi/internal/speech"
	"github.com/ayusman/rasoi/internal/store"
	"github.com/ayusman/rasoi/internal/supervisor"
	"github.com/ayusman/rasoi/internal/video"
)

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

	if err := run(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("rasoi-recipes stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if dir := filepath.Dir(cfg.Data.DB); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	st, err := store.New(cfg.Data.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	lookupCache, err := cache.New(cfg.Cache, st)
	if err != nil {
		return err
	}
	if c, ok := lookupCache.(*cache.Redis); ok {
		defer c.Close()
	}

	finder := recipe.NewMealDBClient(cfg.MealDB.BaseURL, cfg.MealDB.Timeout)

	var generator recipe.Generator
	if cfg.Gemini.APIKey != "" {
		generator = recipe.NewGeminiClient(cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.Gemini.APIKey, cfg.Gemini.Timeout)
	} else {
		logging.Warn().Msg("RASOI_GEMINI_API_KEY not set: recipes missing from TheMealDB will not be generated")
	}
	recipes := recipe.NewService(finder, generator, lookupCache, cfg.Cache.TTL)

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findStaticDir(cfg.Data.Dir)
	}

	srvCfg := server.Config{
		Recipes:     recipes,
		Store:       st,
		StaticDir:   staticDir,
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   cfg.Server.RateLimit,
		RateWindow:  cfg.Server.RateWindow,
	}

	if cfg.YouTube.APIKey != "" {
		videos, err := video.NewClient(ctx, video.Options{
			APIKey:     cfg.YouTube.APIKey,
			Endpoint:   cfg.YouTube.Endpoint,
			MaxResults: cfg.YouTube.MaxResults,
			Timeout:    cfg.YouTube.Timeout,
			Cache:      lookupCache,
			CacheTTL:   cfg.Cache.TTL,
		})
		if err != nil {
			return err
		}
		srvCfg.Videos = videos
	} else {
		logging.Warn().Msg("RASOI_YOUTUBE_API_KEY not set: videos disabled")
	}

	if cfg.Speech.APIKey != "" {
		recognizer, err := speech.NewRecognizer(ctx, speech.RecognizerOptions{
			APIKey:   cfg.Speech.APIKey,
			Endpoint: cfg.Speech.Endpoint,
			Language: cfg.Speech.Language,
			Timeout:  cfg.Speech.Timeout,
		})
		if err != nil {
			return err
		}
		srvCfg.Transcriber = recognizer
		if len(cfg.Speech.RecordCommand) > 0 {
			recorder := &speech.CommandRecorder{Command: cfg.Speech.RecordCommand, SampleRate: cfg.Speech.SampleRate}
			srvCfg.Listener = speech.NewListener(recorder, recognizer, cfg.Speech.ListenFor)
		}
	} else {
		logging.Warn().Msg("RASOI_SPEECH_API_KEY not set: speech input disabled")
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(srvCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.New("rasoi-recipes", supervisor.DefaultTreeConfig())
	tree.Add(supervisor.NewHTTPService("http", httpServer, cfg.Server.ShutdownTimeout))
	if cfg.Cache.Backend == "sqlite" {
		tree.Add(supervisor.Ticker("cache-purge", time.Hour, func(ctx context.Context) error {
			n, err := st.Cache().Purge(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				logging.Debug().Int64("entries", n).Msg("purged expired cache entries")
			}
			return st.Settings().Set(ctx, store.SettingCachePurgedAt, time.Now().UTC().Format(time.RFC3339))
		}))
	}

	logging.Info().
		Str("addr", cfg.Server.Addr).
		Str("db", cfg.Data.DB).
		Str("cache", cfg.Cache.Backend).
		Bool("generation", generator != nil).
		Msg("rasoi-recipes listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// findStaticDir looks for a web/static directory next to the working
// directory or under dataDir. Returns "" when none exists.
func findStaticDir(dataDir string) string {
	candidates := []string{"web/static", "../web/static", "../../web/static"}
	if dataDir != "" {
		candidates = append(candidates, filepath.Join(dataDir, "web", "static"))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
