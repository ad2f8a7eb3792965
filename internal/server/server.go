// Package server exposes the renderer over HTTP: an HTML page with an
// editor and a live preview, a JSON API, a health check, and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-mdrender/internal/assets"
	"github.com/alnah/go-mdrender/internal/config"
)

// ShutdownTimeout bounds how long in-flight requests may finish after
// the serve context is canceled.
const ShutdownTimeout = 10 * time.Second

// Sentinel errors for server setup.
var (
	ErrNilRenderer = errors.New("server: nil renderer")
	ErrTemplate    = errors.New("server: invalid page template")
)

// Renderer is the part of mdrender.Renderer the server needs.
type Renderer interface {
	Render(text string) string
}

// Options holds everything New needs besides the renderer.
type Options struct {
	Config  config.ServerConfig
	Page    *assets.Page
	Logger  *logrus.Logger
	Version string
}

// Server routes HTTP requests to the render pipeline.
type Server struct {
	http     http.Server
	router   *mux.Router
	renderer Renderer
	decoder  *schema.Decoder
	logger   *logrus.Logger
	metrics  *Metrics

	page    *template.Template
	style   template.CSS
	sample  string
	version string
}

// New builds the router and middleware chain. Nothing listens until Serve.
func New(r Renderer, opts Options) (*Server, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}
	if opts.Page == nil {
		page, err := assets.DefaultPage()
		if err != nil {
			return nil, fmt.Errorf("loading page assets: %w", err)
		}
		opts.Page = page
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	tmpl, err := template.New(assets.DefaultTemplate).Parse(opts.Page.Template)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	s := &Server{
		router:   mux.NewRouter(),
		renderer: r,
		decoder:  schema.NewDecoder(),
		logger:   opts.Logger,
		page:     tmpl,
		style:    template.CSS(opts.Page.Style), // #nosec G203 -- stylesheet ships with the binary or the operator's asset dir
		sample:   opts.Page.Sample,
		version:  opts.Version,
	}
	s.decoder.IgnoreUnknownKeys(true)
	if opts.Config.Metrics {
		s.metrics = NewMetrics()
	}

	s.routes(opts.Config.MaxBodyBytes)

	s.http = http.Server{
		Addr: opts.Config.Addr,
		Handler: handlers.RecoveryHandler(
			handlers.RecoveryLogger(s.logger),
			handlers.PrintRecoveryStack(s.logger.IsLevelEnabled(logrus.DebugLevel)),
		)(s.router),
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       opts.Config.ReadTimeout,
		WriteTimeout:      opts.Config.WriteTimeout,
	}

	return s, nil
}

func (s *Server) routes(maxBody int64) {
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	s.router.Use(loggingHandler(s.logger, s.metrics))

	render := s.router.NewRoute().Subrouter()
	if maxBody > 0 {
		render.Use(limitBody(maxBody))
	}
	render.HandleFunc("/", s.handlePage).Methods(http.MethodGet, http.MethodPost)
	render.HandleFunc("/api/render", s.handleAPI).Methods(http.MethodPost)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	if s.logger.IsLevelEnabled(logrus.DebugLevel) {
		_ = s.router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
			path, err := route.GetPathTemplate()
			if err != nil {
				return nil
			}
			methods, err := route.GetMethods()
			if err != nil {
				methods = []string{}
			}
			s.logger.Debugf("Methods: %s Path: %s", strings.Join(methods, ", "), path)
			return nil
		})
	}
}

// Handler returns the full handler chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Metrics returns the server's metrics, or nil when disabled.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ListenAndServe listens on the configured address and serves until ctx
// is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully, giving in-flight requests ShutdownTimeout to complete.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", ln.Addr().String()).Info("server listening")
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		_ = s.http.Close()
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
