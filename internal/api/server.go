package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/outliner/internal/config"
	"github.com/dgallion1/outliner/internal/pipeline"
	"github.com/dgallion1/outliner/internal/prefs"
	"github.com/dgallion1/outliner/internal/relay"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for the outliner.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	prefs        *prefs.Store
	bridge       *relay.Client
	mcp          http.Handler
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. bridge and mcp may be nil.
func NewServer(orch *pipeline.Orchestrator, store *prefs.Store, bridge *relay.Client, mcp http.Handler, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		prefs:        store,
		bridge:       bridge,
		mcp:          mcp,
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

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/outline", s.handleOutline)
		r.Post("/api/outline/document", s.handleOutlineDocument)

		r.Post("/api/tabs/{tabID}/scans", s.handleSubmitScan)
		r.Get("/api/tabs/{tabID}/outline", s.handleTabOutline)
		r.Post("/api/tabs/{tabID}/highlight", s.handleHighlight)
		r.Post("/api/tabs/{tabID}/focus", s.handleFocus)
		r.Delete("/api/tabs/{tabID}", s.handleCloseTab)
		r.Get("/api/scans/{scanID}", s.handleScanStatus)

		r.Get("/api/users/{userID}/preferences", s.handleGetPreferences)
		r.Put("/api/users/{userID}/preferences", s.handlePutPreferences)

		r.Get("/api/stats/builds", s.handleBuildStats)

		if s.mcp != nil {
			r.Handle("/mcp", s.mcp)
		}
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
