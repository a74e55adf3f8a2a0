// Package server exposes the deckfill engine over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill"
)

// DefaultMaxUploadBytes bounds the size of an uploaded template
const DefaultMaxUploadBytes = 64 << 20

// Config configures the HTTP server
type Config struct {
	// Base is the engine configuration; requests may override the delimiter
	// and strict mode.
	Base *deckfill.Config
	// MaxUploadBytes bounds uploaded templates; DefaultMaxUploadBytes when 0.
	MaxUploadBytes int64
	// ImageLoader resolves picture bindings; images are only accepted as data
	// URIs when nil, so requests cannot read server files.
	ImageLoader deckfill.ImageLoader
}

// Server is the HTTP API server for deckfill
type Server struct {
	router chi.Router
	cfg    Config
	log    *zap.Logger
	cache  *deckfill.TemplateCache
}

// New creates and configures the HTTP server
func New(cfg Config, log *zap.Logger) *Server {
	if cfg.Base == nil {
		cfg.Base = deckfill.DefaultConfig()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.ImageLoader == nil {
		cfg.ImageLoader = dataURIOnly{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{cfg: cfg, log: log}
	if cfg.Base.CacheMaxSize > 0 {
		s.cache = deckfill.NewTemplateCache(cfg.Base.CacheMaxSize, cfg.Base.CacheTTL)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/api/fill", s.handleFill)
	r.Post("/api/inspect", s.handleInspect)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
