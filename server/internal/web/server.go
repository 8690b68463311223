// Package web serves the availability page and the sidebar actions that
// edit a session's master list.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/locavail/locavail/server/internal/availability"
	"github.com/locavail/locavail/server/internal/metrics"
	"github.com/locavail/locavail/server/internal/session"
	"github.com/locavail/locavail/server/internal/ws"
)

// shutdownTimeout bounds how long in-flight requests get to finish.
const shutdownTimeout = 5 * time.Second

// Clearer drops every cached sheet so the next render refetches.
type Clearer interface {
	Clear()
}

// Options wires a Server to the rest of the process.
type Options struct {
	Port     int
	Service  *availability.Service
	Cache    Clearer
	Sessions *session.Manager
	Metrics  *metrics.Metrics
	Hub      *ws.Hub
	// API is mounted under /api/v1/ behind the session middleware.
	API http.Handler
}

// Server is the HTTP front end.
type Server struct {
	opts Options
}

// NewServer returns a Server for opts. Service, Cache, Sessions, Metrics
// and Hub are required; API is optional.
func NewServer(opts Options) *Server {
	return &Server{opts: opts}
}

// Handler returns the full route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		logRequests,
		middleware.Recoverer,
	)

	r.Handle("/metrics", s.opts.Metrics)
	r.Handle("/ws/stream", s.opts.Hub)

	r.Group(func(r chi.Router) {
		r.Use(s.opts.Sessions.Middleware)

		r.Get("/", s.handleIndex)
		r.Post("/locations", s.handleAdd)
		r.Post("/locations/remove", s.handleRemove)
		r.Post("/refresh", s.handleRefresh)

		if s.opts.API != nil {
			r.Handle("/api/v1/*", s.opts.API)
		}
	})
	return r
}

// Serve listens on the configured port until ctx is cancelled, then shuts
// the listener down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.opts.Port),
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		slog.Info("web: listening", "port", s.opts.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("web: serve: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		slog.Info("web: shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// logRequests writes one structured line per request.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		if r.URL.Path == "/metrics" {
			level = slog.LevelDebug
		}
		slog.Log(r.Context(), level, "web: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
