// Package api provides the HTTP server for Simmer: the JSON API under /api/v1,
// the live event stream, and the server-rendered pages.
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/simmerapp/simmer-server/internal/dto"
	"github.com/simmerapp/simmer-server/internal/metrics"
	"github.com/simmerapp/simmer-server/internal/ratelimit"
	"github.com/simmerapp/simmer-server/internal/sse"
	"github.com/simmerapp/simmer-server/internal/store"
)

// Options holds the HTTP-facing settings of the server.
type Options struct {
	Name                   string
	Version                string
	CORSAllowedOrigins     []string
	CookieSecure           bool
	AuthRateLimitPerMinute int
	AccessTokenDuration    time.Duration
	RefreshTokenDuration   time.Duration
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	enricher        *dto.Enricher
	sseManager      *sse.Manager
	sseHandler      *sse.Handler
	metrics         *metrics.Metrics
	authRateLimiter *ratelimit.KeyedRateLimiter
	pages           *pageRenderer
	opts            Options
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// sseManager, m and logger may be nil.
func NewServer(
	st store.Store,
	services *Services,
	sseManager *sse.Manager,
	m *metrics.Metrics,
	opts Options,
	logger *slog.Logger,
) *Server {
	if opts.Name == "" {
		opts.Name = "Simmer"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	router := chi.NewRouter()

	s := &Server{
		store:           st,
		services:        services,
		enricher:        dto.NewEnricher(st),
		sseManager:      sseManager,
		metrics:         m,
		authRateLimiter: ratelimit.PerMinute(opts.AuthRateLimitPerMinute),
		pages:           newPageRenderer(opts.Name),
		opts:            opts,
		router:          router,
		logger:          logger,
	}
	if sseManager != nil {
		s.sseHandler = sse.NewHandler(sseManager, identifyRequest, logger)
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig(opts.Name+" API", opts.Version)
	humaConfig.OpenAPIPath = "/api/openapi"
	humaConfig.DocsPath = "/api/docs"
	humaConfig.SchemasPath = "/api/schemas"
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, used by tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Shutdown stops background work owned by the server.
func (s *Server) Shutdown() {
	s.authRateLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(corsForAPI(s.opts.CORSAllowedOrigins))
	s.router.Use(noStore)
	s.router.Use(clientMiddleware)
	s.router.Use(authMiddleware(s.services.Auth))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerRecipeRoutes()
	s.registerFeedRoutes()
	s.registerTagRoutes()
	s.registerReactionRoutes()
	s.registerCommentRoutes()
	s.registerProfileRoutes()
	s.registerSearchRoutes()

	if s.sseHandler != nil {
		s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.registerPageRoutes()
}

// corsForAPI applies CORS to /api paths only. Pages are same-origin.
func corsForAPI(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	withCORS := cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return func(next http.Handler) http.Handler {
		api := withCORS(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				api.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authOperation marks an operation as requiring a bearer token in the OpenAPI document.
var authOperation = []map[string][]string{{"bearer": {}}}
