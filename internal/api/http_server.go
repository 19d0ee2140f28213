package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stolik/internal/config"
	"stolik/internal/domain"
	"stolik/internal/metrics"
	"stolik/internal/service"
)

// HTTPServer exposes the booking intake API.
type HTTPServer struct {
	cfg      *config.Config
	bookings *service.BookingService
	store    domain.Store
	server   *http.Server
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg *config.Config, bookings *service.BookingService, store domain.Store, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{cfg: cfg, bookings: bookings, store: store, logger: logger}
	auth := NewAuth(cfg.Auth, cfg.RateLimit)

	mux := http.NewServeMux()
	mux.HandleFunc("/book", srv.handleBook)
	mux.HandleFunc("/slots", srv.handleSlots)
	mux.HandleFunc("/healthz", srv.handleHealthz)
	mux.Handle("/api/v1/bookings", auth.Wrap(http.HandlerFunc(srv.handleRecentBookings)))
	mux.Handle("/api/v1/bookings/export", auth.Wrap(http.HandlerFunc(srv.handleExport)))

	handler := corsMiddleware(srv.loggingMiddleware(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// corsMiddleware mirrors a fully permissive CORS policy: every origin is
// allowed and preflight requests get an empty 204.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Api-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path, fmt.Sprintf("%d", recorder.status))
		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"status": "error", "error": message})
}
