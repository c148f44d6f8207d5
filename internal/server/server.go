// Package server provides the HTTP and WebSocket API for Kotae.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/cache"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/search"
	"github.com/hyperjump/kotae/internal/service"
	"github.com/hyperjump/kotae/internal/storage"
)

// WatchService lists the inbox directories being watched.
type WatchService interface {
	Directories() []string
}

// Server is the HTTP server for the Kotae API.
type Server struct {
	queries *service.QueryService
	engine  *search.Engine
	indexer *indexer.Indexer
	storage storage.Storage
	config  *config.ServerConfig
	logger  *zap.Logger
	version string

	// optional
	cache     *cache.AnswerCache
	watch     WatchService
	model     string
	diskPaths []string

	server *http.Server
}

// ServerOption configures optional status reporting.
type ServerOption func(*Server)

// WithCache reports answer cache statistics in the status endpoint.
func WithCache(c *cache.AnswerCache) ServerOption {
	return func(s *Server) { s.cache = c }
}

// WithWatchService exposes the watched inbox directories.
func WithWatchService(w WatchService) ServerOption {
	return func(s *Server) { s.watch = w }
}

// WithModelName reports the configured model in the status endpoint.
func WithModelName(name string) ServerOption {
	return func(s *Server) { s.model = name }
}

// WithDiskPaths reports the on-disk size of the given paths in the status endpoint.
func WithDiskPaths(paths ...string) ServerOption {
	return func(s *Server) { s.diskPaths = paths }
}

// NewServer creates a server with the given dependencies.
func NewServer(
	queries *service.QueryService,
	engine *search.Engine,
	idx *indexer.Indexer,
	storage storage.Storage,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	version string,
	opts ...ServerOption,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		queries: queries,
		engine:  engine,
		indexer: idx,
		storage: storage,
		config:  cfg,
		logger:  logger,
		version: version,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	timeout := time.Duration(s.config.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(s.config.AllowedOrigins))

	// The socket outlives any request timeout and must not be compressed.
	r.Get("/ws/query", s.handleQueryWebSocket)

	// A query runs until the agent finishes or the client goes away.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Post("/api/query", s.handleQuery)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Use(middleware.Compress(5))

		r.Get("/health", s.handleHealth)
		r.Get("/api/status", s.handleStatus)

		r.Route("/api/documents", func(r chi.Router) {
			r.Get("/", s.handleListDocuments)
			r.Post("/upload", s.handleUploadDocument)
			r.Post("/upload-file", s.handleUploadFile)
			r.Get("/search", s.handleSearchDocuments)
			r.Get("/{title}", s.handleGetDocument)
			r.Delete("/{title}", s.handleDeleteDocument)
		})

		r.Get("/api/queries/history", s.handleQueryHistory)
		r.Get("/api/agent/state", s.handleAgentState)
		r.Get("/api/analytics", s.handleAnalytics)
		r.Get("/api/watch/directories", s.handleWatchDirectories)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr), zap.String("version", s.version))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// corsHandler sets Access-Control headers for allowed origins and answers
// preflight requests. An empty list allows any origin.
func corsHandler(allowed []string) func(http.Handler) http.Handler {
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	})
}

// originAllowed decides WebSocket upgrades, which bypass the CORS handler.
func originAllowed(allowed []string, origin string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	origin = strings.TrimRight(origin, "/")
	for _, o := range allowed {
		if o == "*" || strings.TrimRight(o, "/") == origin {
			return true
		}
	}
	return false
}
