package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trastes/internal/chart"
	"trastes/internal/core"
	applog "trastes/internal/log"
	"trastes/internal/middleware/ratelimit"
	"trastes/internal/middleware/security"
	"trastes/internal/sheets"
	appweb "trastes/web"
)

// storeTimeout bounds every store call made while serving a request.
const storeTimeout = 7 * time.Second

// Options carries everything the server needs. Writer and Reader are
// usually the same backend.
type Options struct {
	Addr     string
	Writer   sheets.RecordWriter
	Reader   sheets.RecordReader
	Roster   core.Roster
	Location *time.Location
	Charts   *chart.Renderer
	LogLimit int
	Logger   *applog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	writer    sheets.RecordWriter
	reader    sheets.RecordReader
	roster    core.Roster
	loc       *time.Location
	charts    *chart.Renderer
	logLimit  int
	now       func() time.Time
	limiter   *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and mounts every route.
func NewServer(opts Options) (*Server, error) {
	if opts.Writer == nil || opts.Reader == nil {
		return nil, errors.New("record writer and reader are required")
	}
	if opts.Charts == nil {
		return nil, errors.New("chart renderer is required")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	s := &Server{
		templates: t,
		writer:    opts.Writer,
		reader:    opts.Reader,
		roster:    opts.Roster,
		loc:       opts.Location,
		charts:    opts.Charts,
		logLimit:  opts.LogLimit,
		now:       opts.Now,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(applog.Middleware(opts.Logger))
	r.Use(requestLogger)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())
	r.With(security.StaticAssets(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", s.handleIndex)
	r.With(s.limiter.Middleware(clientIP, http.MethodPost)).Post("/", s.handleSubmit)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Shutdown stops the rate limiter sweep and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports whether the store can be read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if _, err := s.reader.ReadAll(ctx); err != nil {
		applog.FromContext(ctx).LogError(ctx, "Readiness check failed", err, applog.OpRead, nil)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
