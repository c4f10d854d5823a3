// Package api provides the HTTP API server for flooring estimates.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"flooring-cost/decision/estimation"
	"flooring-cost/decision/pricing"
	"flooring-cost/decision/review"
	fcerrors "flooring-cost/pkg/errors"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Server is the HTTP API server
type Server struct {
	httpServer *http.Server
	catalog    *pricing.Catalog
	calculator *estimation.Calculator
	reviewer   *review.Engine
	config     *Config
	logger     zerolog.Logger
}

// Config holds server configuration
type Config struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxRequestSize int64
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		RequestTimeout: 30 * time.Second,
		MaxRequestSize: 1 << 20, // 1MB
	}
}

// NewServer creates a new API server. A nil catalog uses the built-in rate tables.
func NewServer(catalog *pricing.Catalog, config *Config, logger zerolog.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if catalog == nil {
		catalog = pricing.DefaultCatalog()
	}

	return &Server{
		catalog:    catalog,
		calculator: estimation.NewCalculator(),
		reviewer:   review.NewEngine(),
		config:     config,
		logger:     logger,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/estimate", s.handleEstimate)
		r.Post("/validate", s.handleValidate)
		r.Get("/tiers", s.handleTiers)
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info().Int("port", s.config.Port).Str("version", Version).Msg("API server starting")
	return s.httpServer.ListenAndServe()
}

// StartWithGracefulShutdown starts server with graceful shutdown handling
func (s *Server) StartWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		s.logger.Info().Str("signal", sig.String()).Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// =============================================================================
// HEALTH ENDPOINT
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}

// =============================================================================
// ESTIMATE ENDPOINT
// =============================================================================

// EstimateRequest is the API request for pricing an estimate
type EstimateRequest struct {
	estimation.EstimateRequest

	// Validate defaults to true; set false to price unchecked dimensions.
	Validate   *bool    `json:"validate,omitempty"`
	QuoteLimit *float64 `json:"quote_limit,omitempty"`
}

// EstimateResponse is the API response for a priced estimate
type EstimateResponse struct {
	estimation.Estimate

	Config  estimation.PricingConfig `json:"config"`
	Summary estimation.Summary       `json:"summary"`
	Review  *review.Result           `json:"review"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if !s.decode(w, r, &req) {
		return
	}

	if req.Validate == nil || *req.Validate {
		if res := estimation.ValidateEstimate(req.Rooms, req.Dimensions); !res.IsValid {
			s.errorResponse(w, http.StatusUnprocessableEntity, res.Err())
			return
		}
	}

	cfg, err := s.catalog.ConfigFor(req.EstimateRequest)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}

	est := s.calculator.Calculate(req.Rooms, req.Dimensions, cfg, req.MaterialType, req.MaterialGrade, req.AIRecommendation)
	if !isFinite(est.Subtotal) || !isFinite(est.Total) {
		s.errorResponse(w, http.StatusUnprocessableEntity,
			fcerrors.NewInvalidRequestError("estimate total is not a finite amount; check room areas and rates"))
		return
	}

	reviewReq := review.Request{Estimate: est, AIRecommendation: req.AIRecommendation}
	if req.QuoteLimit != nil {
		reviewReq.CustomPolicies = append(reviewReq.CustomPolicies, review.QuoteLimitPolicy(*req.QuoteLimit))
	}

	s.jsonResponse(w, http.StatusOK, EstimateResponse{
		Estimate: est,
		Config:   cfg,
		Summary:  est.Summary(),
		Review:   s.reviewer.Evaluate(reviewReq),
	})
}

// =============================================================================
// VALIDATE ENDPOINT
// =============================================================================

// ValidateRequest carries the room form to check
type ValidateRequest struct {
	Rooms      []string                            `json:"rooms"`
	Dimensions map[string]estimation.RoomDimension `json:"dimensions"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.jsonResponse(w, http.StatusOK, estimation.ValidateEstimate(req.Rooms, req.Dimensions))
}

// =============================================================================
// TIERS ENDPOINT
// =============================================================================

func (s *Server) handleTiers(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.catalog)
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fcerrors.NewInvalidRequestError("invalid request: %v", err))
		return false
	}
	return true
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		s.logger.Error().Err(err).Int("status", status).Msg("failed to encode response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Room  string `json:"room,omitempty"`
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var estErr *fcerrors.EstimateError
	if errors.As(err, &estErr) {
		resp.Error = estErr.Message
		resp.Code = estErr.Code
		resp.Room = estErr.Room
	}

	s.jsonResponse(w, status, resp)
}
