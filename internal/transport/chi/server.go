package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/curator/internal/logger"
	transport "github.com/kailas-cloud/curator/internal/transport/curator"
	"github.com/kailas-cloud/curator/internal/version"
	curator "github.com/kailas-cloud/curator/pkg/sdk"
)

// maxBodyBytes bounds the search request body.
const maxBodyBytes = 1 << 20

// Searcher runs a search against the upstream Curator API.
type Searcher interface {
	Search(ctx context.Context, collectionID string, q curator.Query, opts *curator.SearchOptions) (*curator.SearchResponse, error)
}

// errorHandler tries to handle an upstream error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the Curator search endpoint over HTTP.
type Server struct {
	search        Searcher
	gatherer      prometheus.Gatherer
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the gateway HTTP API. gatherer backs GET /metrics;
// nil falls back to the default prometheus registry.
func NewServer(search Searcher, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		search:   search,
		gatherer: gatherer,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		apiErrorHandler,
		sentinelHandler(curator.ErrCollectionRequired, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorCodeUpstreamTimeout),
		sentinelHandler(curator.ErrTransport, http.StatusBadGateway, ErrorCodeUpstreamUnavailable),
		sentinelHandler(curator.ErrDecodeResponse, http.StatusBadGateway, ErrorCodeUpstreamError),
	}
	return s
}

// Register mounts the gateway routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/collections/{collectionID}/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /collections/{collectionID}/search.
// The upstream response is returned as is, including in-band ERROR statuses.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionID")

	var req SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx := r.Context()
	if id := chiMiddleware.GetReqID(ctx); id != "" {
		ctx = transport.ContextWithRequestID(ctx, id)
	}

	resp, err := s.search.Search(ctx, collectionID, req.toQuery(), req.toOptions())
	if err != nil {
		s.handleUpstreamError(ctx, w, err)
		return
	}

	if !resp.OK() {
		logpkg.FromContext(ctx).Info("search rejected by curator",
			zap.String("collection", collectionID),
			zap.String("status_code", resp.Status.Code()),
			zap.String("status_msg", resp.Status.StatusMsg),
		)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: version.Version})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func (s *Server) handleUpstreamError(ctx context.Context, w http.ResponseWriter, err error) {
	logpkg.FromContext(ctx).Warn("upstream error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

// apiErrorHandler relays a non-2xx Curator reply with its status code.
// A decodable search response body is forwarded unchanged.
func apiErrorHandler(w http.ResponseWriter, err error) bool {
	var apiErr *curator.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Response != nil {
		writeJSON(w, apiErr.StatusCode, apiErr.Response)
		return true
	}
	writeError(w, apiErr.StatusCode, ErrorCodeUpstreamError, apiErr.Error())
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
