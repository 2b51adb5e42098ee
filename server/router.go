package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spektr-org/sharkscope/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Router wraps http.ServeMux with method checks, request ids, access logs
// and request metrics.
type Router struct {
	mux     *http.ServeMux
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewRouter creates a router. m may be nil.
func NewRouter(logger *zap.Logger, m *metrics.Metrics) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		mux:     http.NewServeMux(),
		logger:  logger,
		metrics: m,
	}
}

// Handle registers h for pattern, answering 405 to any other method.
func (r *Router) Handle(method, pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, r.wrap(pattern, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "method "+req.Method+" not allowed")
			return
		}
		h(w, req)
	}))
}

// HandleHandler registers a plain http.Handler (metrics exposition).
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRoutes mounts the dashboard API.
func (r *Router) RegisterRoutes(h *Handler) {
	r.Handle(http.MethodPost, "/api/v1/dashboard", h.Dashboard)
	r.Handle(http.MethodPost, "/api/v1/incidents", h.Incidents)
	r.Handle(http.MethodPost, "/api/v1/series", h.Series)
	r.Handle(http.MethodPost, "/api/v1/charts", h.Charts)
	r.Handle(http.MethodPost, "/api/v1/export", h.Export)
	r.Handle(http.MethodGet, "/api/v1/options", h.Options)
	r.Handle(http.MethodGet, "/api/v1/regions", h.Regions)
	r.Handle(http.MethodGet, "/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if r.metrics != nil {
		r.HandleHandler("/metrics", r.metrics.Handler())
	}
}

// wrap assigns the request id, then logs and measures the request.
func (r *Router) wrap(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		id := req.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, req)

		elapsed := time.Since(start)
		if r.metrics != nil {
			r.metrics.ObserveRequest(route, rec.status, elapsed)
		}
		r.logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
