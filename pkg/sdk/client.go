package curator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kailas-cloud/curator/internal/domain/search/filter"
	"github.com/kailas-cloud/curator/internal/domain/search/options"
	"github.com/kailas-cloud/curator/internal/domain/search/query"
	"github.com/kailas-cloud/curator/internal/domain/search/request"
	"github.com/kailas-cloud/curator/internal/domain/search/result"
	transport "github.com/kailas-cloud/curator/internal/transport/curator"
	"github.com/kailas-cloud/curator/internal/version"
)

const opSearch = "search"

// searcher is the transport used by Client (replaced in tests).
type searcher interface {
	Search(ctx context.Context, collectionID string, req *request.Request) (*result.Response, error)
}

// Client is the Curator SDK entry point. It is safe for concurrent use.
type Client struct {
	transport      searcher
	defaultPerPage int
	obs            *observer
}

// New creates a Client. No network call is made.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		defaultPerPage: DefaultPerPage,
		userAgent:      "curator-go/" + version.Version,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil && cfg.timeout > 0 {
		httpClient = &http.Client{Timeout: cfg.timeout}
	}

	t, err := transport.NewClient(transport.Config{
		BaseURL:     cfg.baseURL,
		AccessToken: cfg.accessToken,
		HTTPClient:  httpClient,
		UserAgent:   cfg.userAgent,
		Logger:      cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("curator: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		transport:      t,
		defaultPerPage: cfg.defaultPerPage,
		obs:            obs,
	}, nil
}

// Search runs one query against a collection and returns the server response as is.
//
// Exactly one HTTP request is made. opts may be nil. A response with status ERROR is
// returned with a nil error; transport failures and non-2xx replies return an error.
func (c *Client) Search(
	ctx context.Context, collectionID string, q Query, opts *SearchOptions,
) (resp *SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opSearch, collectionID, start, outcome(resp, err), err) }()

	req := request.New(
		query.Normalize(toInternalQuery(q), c.defaultPerPage),
		toInternalOptions(opts),
	)
	resp, err = c.transport.Search(ctx, collectionID, &req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", collectionID, err)
	}
	return resp, nil
}

func outcome(resp *SearchResponse, err error) string {
	switch {
	case err != nil:
		return outcomeError
	case !resp.OK():
		return outcomeRejected
	default:
		return outcomeOK
	}
}

func toInternalQuery(q Query) query.Query {
	out := query.Query{
		Tags:        q.Tags,
		ImageURLs:   q.ImageURLs,
		DocumentIDs: q.DocumentIDs,
		PerPage:     q.PerPage,
		Page:        q.Page,
		Start:       q.Start,
	}
	if q.BoolQuery != nil {
		out.BoolQuery = &filter.BoolQuery{
			Must:    q.BoolQuery.Must,
			Should:  q.BoolQuery.Should,
			MustNot: q.BoolQuery.MustNot,
		}
	}
	return out
}

func toInternalOptions(o *SearchOptions) *options.Options {
	if o == nil {
		return nil
	}
	return &options.Options{
		TopTags:     o.TopTags,
		ScoringMode: options.ScoringMode(o.ScoringMode),
		Extra:       o.Extra,
	}
}
