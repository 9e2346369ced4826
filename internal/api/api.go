// Package api exposes the triage engine as a small JSON HTTP service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/symptriage/internal/model"
	"github.com/ppiankov/symptriage/internal/worker"
)

// Triager is the engine operation the API serves
type Triager interface {
	Triage(ctx context.Context, text string) *model.TriageResult
}

// Options configure the API; zero values disable the optional parts
type Options struct {
	MaxBodyBytes int64                // Requests above this get 413
	Limiter      *worker.Limiter      // Per-client limiter; nil disables
	Registry     *prometheus.Registry // Serves /metrics when set
	Logger       *slog.Logger
}

// API holds dependencies for HTTP handlers
type API struct {
	triager  Triager
	logger   *slog.Logger
	limiter  *worker.Limiter
	registry *prometheus.Registry
	metrics  *Metrics
	maxBody  int64
}

// TriageRequest is the POST body of /api/v1/triage
type TriageRequest struct {
	Text string `json:"text"`
}

// TriageResponse wraps the engine result with the disclaimer shown to users.
// ID identifies the response in server logs; descriptions are never logged.
type TriageResponse struct {
	ID string `json:"id"`
	*model.TriageResult
	Disclaimer string `json:"disclaimer"`
}

// New creates the API handler set
func New(triager Triager, opts Options) *API {
	if triager == nil {
		panic("api: triager is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = model.DefaultConfig().Server.MaxBodyBytes
	}

	a := &API{
		triager:  triager,
		logger:   logger,
		limiter:  opts.Limiter,
		registry: opts.Registry,
		maxBody:  maxBody,
	}
	if opts.Registry != nil {
		a.metrics = NewMetrics(opts.Registry)
	}
	return a
}

// Handler returns the router with middleware attached
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "application/json"))

	r.Get("/-/healthy", a.handleHealthy)
	if a.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}
	a.RegisterRoutes(r)

	return r
}

// RegisterRoutes attaches API endpoints to the router
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/triage", a.handleTriage)
	})
}

func (a *API) handleHealthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (a *API) handleTriage(w http.ResponseWriter, r *http.Request) {
	if a.limiter != nil && !a.limiter.Allow(clientKey(r)) {
		a.observeRequest(http.StatusTooManyRequests)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req TriageRequest
	body := http.MaxBytesReader(w, r.Body, a.maxBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.observeRequest(http.StatusRequestEntityTooLarge)
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		a.observeRequest(http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	start := time.Now()
	result := a.triager.Triage(r.Context(), req.Text)
	if a.metrics != nil {
		a.metrics.observeTriage(result, time.Since(start).Seconds())
	}

	id := ulid.Make().String()
	a.logger.Debug("triage served",
		"id", id,
		"request_id", middleware.GetReqID(r.Context()),
		"urgency", result.Urgency,
		"source", result.Source)

	a.observeRequest(http.StatusOK)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(TriageResponse{ID: id, TriageResult: result, Disclaimer: model.Disclaimer})
}

func (a *API) observeRequest(code int) {
	if a.metrics != nil {
		a.metrics.observeRequest(code)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// clientKey is the limiter key for a request: the client IP without port
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
