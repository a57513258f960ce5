// Package api provides the HTTP API server and handlers for the catalog.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/daleelapp/daleel-server/internal/config"
	"github.com/daleelapp/daleel-server/internal/media/images"
	"github.com/daleelapp/daleel-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      *store.Store
	services   *Services
	storage    *StorageServices
	processor  *images.Processor
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
	adminToken string
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, st *store.Store, services *Services, storage *StorageServices, processor *images.Processor, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	humaConfig := huma.DefaultConfig(cfg.Server.Name+" API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:   "http",
			Scheme: "bearer",
		},
	}

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:      st,
		services:   services,
		storage:    storage,
		processor:  processor,
		router:     router,
		api:        api,
		logger:     logger,
		adminToken: cfg.Admin.Token,
	}

	s.registerHealthRoutes()
	s.registerCategoryRoutes()
	s.registerBusinessRoutes()
	s.registerUploadRoutes()

	// Uploaded media is served straight off the filesystem when the
	// public base URL is a local path.
	if strings.HasPrefix(cfg.Media.PublicBaseURL, "/") {
		prefix := strings.TrimSuffix(cfg.Media.PublicBaseURL, "/")
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Media.BasePath)))
		router.Handle(prefix+"/*", fs)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
