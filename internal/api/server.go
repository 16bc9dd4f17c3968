package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mfeng-dev/thesisfmt/internal/config"
	"github.com/mfeng-dev/thesisfmt/internal/pipeline"
)

// Server is the HTTP API server for thesisfmt.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	store        *config.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, store *config.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		store:        store,
		log:          log,
		cfg:          cfg,
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints (auth is a no-op without a configured key).
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/convert", s.handleConvert)
		r.Get("/api/convert/{jobID}", s.handleConvertStatus)
		r.Get("/api/convert/{jobID}/download", s.handleConvertDownload)

		r.Post("/api/check", s.handleCheck)

		r.Get("/api/templates", s.handleListTemplates)
		r.Get("/api/templates/{name}", s.handleGetTemplate)
		r.Put("/api/templates/{name}", s.handlePutTemplate)
		r.Delete("/api/templates/{name}", s.handleDeleteTemplate)

		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
