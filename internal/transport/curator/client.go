package curator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/search/request"
	"github.com/kailas-cloud/curator/internal/domain/search/result"
)

// DefaultBaseURL is the public Curator API endpoint.
const DefaultBaseURL = "https://api.clarifai.com/v1"

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

const searchPathFormat = "curator/collections/%s/search"

// Config holds the Curator API connection settings.
type Config struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
	UserAgent   string
	Logger      *zap.Logger
}

// Client issues requests against the Curator API.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient validates the base URL and returns a Client.
// A nil HTTPClient falls back to http.DefaultClient.
func NewClient(cfg Config) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	baseURL, err := normalizeBaseURL(raw)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		token:      normalizeToken(cfg.AccessToken),
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Search POSTs the request to the collection search endpoint and decodes the reply.
//
// Application-level failures come back in-band as a response with status ERROR.
// Transport failures and non-2xx statuses are returned as errors.
func (c *Client) Search(ctx context.Context, collectionID string, req *request.Request) (*result.Response, error) {
	if collectionID == "" {
		return nil, domain.ErrCollectionRequired
	}

	body, err := req.Body()
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf(searchPathFormat, url.PathEscape(collectionID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	requestID := requestIDFromContext(ctx)
	c.prepare(httpReq, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrTransport, err)
	}

	c.logger.Debug("curator request",
		zap.String("method", httpReq.Method),
		zap.String("path", httpReq.URL.Path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.Int("request_bytes", len(body)),
		zap.Int("response_bytes", len(data)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp, data)
	}

	var out result.Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecodeResponse, err)
	}
	return &out, nil
}

func (c *Client) prepare(req *http.Request, requestID string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func newAPIError(resp *http.Response, data []byte) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       data,
	}
	var decoded result.Response
	if len(data) > 0 && json.Unmarshal(data, &decoded) == nil && decoded.Status.Status != "" {
		apiErr.Response = &decoded
	}
	return apiErr
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https, got %q", domain.ErrInvalidBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", domain.ErrInvalidBaseURL)
	}
	return strings.TrimSuffix(u.String(), "/"), nil
}

func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

type requestIDKey struct{}

// ContextWithRequestID makes Search reuse id as the X-Request-ID of the outgoing call.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
