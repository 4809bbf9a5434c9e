package curator

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	timeout     time.Duration
	userAgent   string

	defaultPerPage int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithBaseURL sets the API endpoint, for example "https://api.clarifai.com/v1".
func WithBaseURL(u string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = u
	})
}

// WithAccessToken sets the bearer token sent with every request.
// A leading "Bearer " is stripped.
func WithAccessToken(token string) Option {
	return optionFunc(func(c *clientConfig) {
		c.accessToken = token
	})
}

// WithHTTPClient sets the HTTP client. The client stays owned by the caller.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout bounds each request. Ignored when WithHTTPClient is used;
// configure the timeout on that client instead.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithDefaultPerPage sets the page size used when Query.PerPage is not set.
// Default: 20.
func WithDefaultPerPage(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPerPage = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
