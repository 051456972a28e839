// Package server provides the HTTP server for the rasoi recipe finder.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/rasoi/internal/server/api"
	"github.com/ayusman/rasoi/internal/speech"
	"github.com/ayusman/rasoi/internal/store"
	"github.com/ayusman/rasoi/internal/video"
)

// Config holds the server configuration.
type Config struct {
	Recipes     api.RecipeFinder
	Videos      video.Searcher
	Transcriber speech.Transcriber
	Listener    api.Listener
	Store       *store.Store

	StaticDir   string
	CORSOrigins []string
	// RateLimit is requests per RateWindow per client IP on /api. Zero disables it.
	RateLimit  int
	RateWindow time.Duration
}

// Server represents the HTTP server for the recipe finder.
type Server struct {
	config   Config
	router   chi.Router
	searcher *api.Searcher
	page     *pageRenderer
	start    time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config:   config,
		router:   chi.NewRouter(),
		searcher: api.NewSearcher(config.Recipes, config.Videos, config.Store),
		page:     newPageRenderer(),
		start:    time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if len(s.config.CORSOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.config.CORSOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
				ExposedHeaders: []string{"X-Request-ID"},
				MaxAge:         300,
			}))
		}
		if s.config.RateLimit > 0 {
			window := s.config.RateWindow
			if window <= 0 {
				window = time.Minute
			}
			r.Use(httprate.LimitByIP(s.config.RateLimit, window))
		}

		r.Get("/health", s.handleHealth)

		recipes := api.NewRecipeHandler(s.searcher, s.config.Videos, s.config.Store)
		r.Get("/recipes", recipes.Search)
		r.Post("/recipes", recipes.Search)
		r.Get("/videos", recipes.Videos)
		r.Get("/history", recipes.History)

		sp := api.NewSpeechHandler(s.config.Transcriber, s.config.Listener)
		r.Post("/speech", sp.Upload)
		r.Post("/speech/listen", sp.Listen)
	})

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		r.Handle("/static/*", http.StripPrefix("/static/", fs))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
		"features": map[string]bool{
			"videos":  s.config.Videos != nil,
			"speech":  s.config.Transcriber != nil,
			"listen":  s.config.Listener != nil,
			"history": s.config.Store != nil,
		},
	}
	if s.config.Store != nil {
		if purged, err := s.config.Store.Settings().Get(r.Context(), store.SettingCachePurgedAt); err == nil {
			response["cache_purged_at"] = purged
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
