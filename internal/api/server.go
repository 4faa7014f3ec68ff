package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/spritestyle/pkg/observability"
	"github.com/matzehuels/spritestyle/pkg/pipeline"
	"github.com/matzehuels/spritestyle/pkg/storage"
)

const (
	// DefaultMaxUpload caps request bodies.
	DefaultMaxUpload = 8 << 20

	// DefaultRequestTimeout bounds each request.
	DefaultRequestTimeout = 30 * time.Second

	shutdownTimeout = 10 * time.Second
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Runner    *pipeline.Runner
	Store     storage.Store
	Logger    *log.Logger
	MaxUpload int64
	Timeout   time.Duration
}

// New returns a server with default limits. A nil runner gets an uncached
// one; a nil logger discards output.
func New(runner *pipeline.Runner, store storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Server{
		Runner:    runner,
		Store:     store,
		Logger:    logger,
		MaxUpload: DefaultMaxUpload,
		Timeout:   DefaultRequestTimeout,
	}
}

// Routes returns the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(middleware.RequestSize(s.MaxUpload))
	r.Use(middleware.Timeout(s.Timeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)

		r.Route("/styles/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetStyle)
			r.Post("/generate", s.handleGenerate)
			r.Post("/validate", s.handleValidate)
		})

		r.Get("/palettes", s.handleListPalettes)
		r.Get("/palettes/{name}", s.handleGetPalette)
		r.Put("/palettes/{name}", s.handlePutPalette)
	})

	return r
}

// observe reports each request to the HTTP hooks and logs it once it
// completes. The route pattern is only known after routing.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))

		s.Logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
