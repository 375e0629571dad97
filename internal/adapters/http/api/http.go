// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/medalcast/internal/domain/prediction"
	"github.com/okian/medalcast/internal/domain/validate"
	"github.com/okian/medalcast/pkg/logger"
)

// Defaults for the request pipeline.
const (
	defaultRequestTimeout = 10 * time.Second
	defaultMaxBodyBytes   = 64 << 10
	corsMaxAge            = 300
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ReadinessProvider

	PredictAthlete(ctx context.Context, in map[string]any) (prediction.AthleteResponse, error)
	PredictCountry(ctx context.Context, in map[string]any) (prediction.CountryResponse, error)
}

// ReadinessProvider reports whether the models are ready to serve.
type ReadinessProvider interface {
	ModelsLoaded() bool
}

// Server wires HTTP routes for the prediction API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler

	allowedOrigins []string
	requestTimeout time.Duration
	logger         logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS origin allow list.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithMaxBodyBytes caps prediction request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.predictHandler.maxBody = n
		}
	}
}

// WithLogger sets the logger used for request and error logs.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(statsProvider),
		predictHandler: NewPredictHandler(deps),
		allowedOrigins: []string{"*"},
		requestTimeout: defaultRequestTimeout,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.predictHandler.logger = s.logger
	return s
}

// Router builds a chi router with the middleware stack and all API routes.
// Further routes may be registered on it afterwards.
func (s *Server) Router(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP, RequestID, middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}))
	s.Register(ctx, r)
	return r
}

// Register attaches all API routes to r.
func (s *Server) Register(ctx context.Context, r chi.Router) {
	r.Get("/", MetricsMiddleware(HandleRoot, "root"))
	r.Get("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Post("/predict/athlete", MetricsMiddleware(s.predictHandler.HandleAthlete, "predict_athlete"))
	r.Post("/predict/country", MetricsMiddleware(s.predictHandler.HandleCountry, "predict_country"))

	s.logger.Debug(ctx, "api routes registered")
}

type rootResponse struct {
	Message string `json:"message"`
}

// HandleRoot handles GET / requests.
func HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{Message: "Welcome to the Olympic Prediction API"})
}

type errorResponse struct {
	Code       string               `json:"code"`
	Message    string               `json:"message"`
	Violations []validate.Violation `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
