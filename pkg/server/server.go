// Package server serves trace timelines over HTTP.
//
// Routes:
//
//	GET  /healthz                                  liveness and version
//	GET  /trace?trace_id=<id>                      HTML page with the timeline
//	POST /theme                                    store the theme cookie
//	POST /api/timeline?format=svg                  render a posted span tree
//	GET  /api/traces/{traceID}/timeline.{format}   render a trace from the source
//
// The theme of rendered charts comes from the "theme" query parameter, then
// the "theme" cookie, then the configured default.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/tracegantt/pkg/pipeline"
	"github.com/matzehuels/tracegantt/pkg/source"
)

// ThemeCookie is the cookie persisting the chosen theme.
const ThemeCookie = "theme"

// MaxBodyBytes bounds posted span trees.
const MaxBodyBytes = 32 << 20

// Options configures a Server.
type Options struct {
	// Runner executes the pipeline. Nil creates a runner without cache.
	Runner *pipeline.Runner
	// Source resolves trace IDs. Without it the trace routes answer 503.
	Source source.Source
	// Defaults supplies render options not given by a request.
	Defaults pipeline.Options
	// SearchPage is the target of the "back to search" link.
	SearchPage string
	Logger     *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	runner     *pipeline.Runner
	src        source.Source
	defaults   pipeline.Options
	searchPage string
	logger     *log.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	searchPage := opts.SearchPage
	if searchPage == "" {
		searchPage = "search-traces.html"
	}
	return &Server{
		runner:     runner,
		src:        opts.Source,
		defaults:   opts.Defaults,
		searchPage: searchPage,
		logger:     logger,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/trace", s.handleTracePage)
	r.Post("/theme", s.handleTheme)
	r.Route("/api", func(r chi.Router) {
		r.Post("/timeline", s.handleRenderTree)
		r.Get("/traces/{traceID}/timeline.{format}", s.handleRenderTrace)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
