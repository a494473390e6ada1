package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-now/internal/domain"
	"github.com/couchcryptid/weather-now/internal/weather"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WeatherService is the orchestrator surface the HTTP API drives.
type WeatherService interface {
	sharedobs.ReadinessChecker
	State() weather.State
	SearchByCity(ctx context.Context, city string) error
	SearchByCurrentLocation(ctx context.Context) error
}

// errorResponse is the body returned for a failed search.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Server exposes the weather API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        WeatherService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /weather routes.
func NewServer(addr string, svc WeatherService, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(svc))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/weather", func(r chi.Router) {
		r.Use(s.logRequests)
		r.Get("/", s.handleState)
		r.Post("/search", s.handleSearch)
		r.Post("/locate", s.handleLocate)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.svc.State())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: "city query parameter is required",
		})
		return
	}
	s.respond(w, s.svc.SearchByCity(r.Context(), city))
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.svc.SearchByCurrentLocation(r.Context()))
}

// respond writes the state after a search. A search overtaken by a newer one
// gets 409, since the state no longer reflects it.
func (s *Server) respond(w http.ResponseWriter, err error) {
	if errors.Is(err, weather.ErrSuperseded) {
		sharedobs.WriteJSON(w, http.StatusConflict, errorResponse{
			Error:   "superseded",
			Message: err.Error(),
		})
		return
	}
	if err != nil {
		kind := domain.KindOf(err)
		sharedobs.WriteJSON(w, statusFor(kind), errorResponse{
			Error:   string(kind),
			Message: domain.UserMessage(err),
		})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.svc.State())
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnsupported:
		return http.StatusNotImplemented
	case domain.KindPermission:
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
