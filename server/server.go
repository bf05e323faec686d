package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/kmiya/newsbrief/pkg/archive"
	"github.com/kmiya/newsbrief/pkg/snapshot"
	"github.com/kmiya/newsbrief/pkg/summary"
)

// Server is the presentation layer over the persisted snapshot. It only
// reads what the ingestion pipeline wrote; a missing snapshot renders as an
// empty document, never an error.
type Server struct {
	config     ConfigProvider
	snapshots  SnapshotReader
	items      ArchiveReader // nil when archiving is disabled
	summarizer Summarizer
	version    string
	debug      bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// SnapshotReader loads the current snapshot document
type SnapshotReader interface {
	Load() (*snapshot.Document, error)
}

// ArchiveReader lists recently emitted items
type ArchiveReader interface {
	Recent(ctx context.Context, limit int) ([]archive.StoredItem, error)
}

// Summarizer produces an on-demand article summary, failure-as-value
type Summarizer interface {
	Summarize(ctx context.Context, title, url string) summary.Result
}

// New initializes a new server instance
func New(cfg ConfigProvider, snapshots SnapshotReader, items ArchiveReader, summarizer Summarizer, version string, debug bool) *Server {
	s := &Server{
		config:     cfg,
		snapshots:  snapshots,
		items:      items,
		summarizer: summarizer,
		version:    version,
		debug:      debug,
		router:     routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("newsbrief", "kmiya", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024)) // summary requests are tiny
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /news", s.newsHandler)
		r.HandleFunc("GET /categories", s.categoriesHandler)
		r.HandleFunc("GET /items", s.itemsHandler)
		r.HandleFunc("POST /summary", s.summaryHandler)
	})
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
