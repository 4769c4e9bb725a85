package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/fars-accidents/internal/adapter/mapplot"
	"github.com/couchcryptid/fars-accidents/internal/adapter/xlsx"
	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/couchcryptid/fars-accidents/internal/fars"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/plot/vg"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Analyzer runs the accident analysis operations behind the API.
type Analyzer interface {
	ReadinessChecker
	SummarizeYears(ctx context.Context, years []domain.Token) (domain.Summary, error)
	MapState(ctx context.Context, state, year domain.Token, r fars.Renderer) error
}

// MapSize is the size of rendered map images.
type MapSize struct {
	Width, Height vg.Length
}

// Server exposes the analysis API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	mapSize    MapSize
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /summary, /map, /healthz, /readyz,
// and /metrics routes.
func NewServer(addr string, analyzer Analyzer, mapSize MapSize, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		analyzer: analyzer,
		mapSize:  mapSize,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(analyzer))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.HandleFunc("GET /map", s.handleMap)

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	years := domain.ParseTokens(r.URL.Query().Get("years"))
	if len(years) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("years is required, e.g. years=2013,2014"))
		return
	}

	summary, err := s.analyzer.SummarizeYears(r.Context(), years)
	if err != nil {
		s.logger.Error("summarize failed", "error", err)
		writeError(w, statusFor(err), err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, summary)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		summary.WriteText(w) //nolint:errcheck // client went away
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="fars_summary.xlsx"`)
		if err := xlsx.WriteSummary(w, summary); err != nil {
			s.logger.Error("xlsx export failed", "error", err)
		}
	default:
		writeError(w, http.StatusBadRequest, errors.New("format must be json, text, or xlsx"))
	}
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state, year := q.Get("state"), q.Get("year")
	if state == "" || year == "" {
		writeError(w, http.StatusBadRequest, errors.New("state and year are required"))
		return
	}
	if len(domain.ParseTokens(year)) != 1 {
		writeError(w, http.StatusBadRequest, errors.New("map supports a single year"))
		return
	}

	format := q.Get("format")
	contentType := "image/png"
	switch format {
	case "", "png":
		format = "png"
	case "svg":
		contentType = "image/svg+xml"
	default:
		writeError(w, http.StatusBadRequest, errors.New("format must be png or svg"))
		return
	}

	renderer := mapplot.NewRenderer(s.mapSize.Width, s.mapSize.Height, format)
	if err := s.analyzer.MapState(r.Context(), domain.Text(state), domain.Text(year), renderer); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if !renderer.Rendered() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := renderer.WriteTo(w); err != nil {
		s.logger.Error("map encode failed", "error", err, "state", state, "year", year)
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFileNotFound), errors.Is(err, domain.ErrInvalidStateCode):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
