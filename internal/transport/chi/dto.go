package chi

import curator "github.com/kailas-cloud/curator/pkg/sdk"

// ErrorCode is a machine-readable gateway error code.
type ErrorCode string

// Gateway error codes.
const (
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeUnauthorized        ErrorCode = "unauthorized"
	ErrorCodeValidationFailed    ErrorCode = "validation_failed"
	ErrorCodeUpstreamError       ErrorCode = "upstream_error"
	ErrorCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrorCodeUpstreamTimeout     ErrorCode = "upstream_timeout"
	ErrorCodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of a gateway error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// SearchRequest is the JSON body of POST /collections/{collectionID}/search.
type SearchRequest struct {
	Tags        []string       `json:"tags,omitempty"`
	ImageURLs   []string       `json:"image_urls,omitempty"`
	DocumentIDs []string       `json:"document_ids,omitempty"`
	BoolQuery   *BoolQuery     `json:"bool_query,omitempty"`
	PerPage     int            `json:"per_page,omitempty"`
	Page        int            `json:"page,omitempty"`
	Start       int            `json:"start,omitempty"`
	TopTags     int            `json:"top_tags,omitempty"`
	SMode       string         `json:"smode,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

// BoolQuery is the metadata filter part of SearchRequest.
type BoolQuery struct {
	Must    map[string]any `json:"must,omitempty"`
	Should  map[string]any `json:"should,omitempty"`
	MustNot map[string]any `json:"must_not,omitempty"`
}

func (r *SearchRequest) toQuery() curator.Query {
	q := curator.Query{
		Tags:        r.Tags,
		ImageURLs:   r.ImageURLs,
		DocumentIDs: r.DocumentIDs,
		PerPage:     r.PerPage,
		Page:        r.Page,
		Start:       r.Start,
	}
	if r.BoolQuery != nil {
		q.BoolQuery = &curator.BoolQuery{
			Must:    r.BoolQuery.Must,
			Should:  r.BoolQuery.Should,
			MustNot: r.BoolQuery.MustNot,
		}
	}
	return q
}

func (r *SearchRequest) toOptions() *curator.SearchOptions {
	if r.TopTags == 0 && r.SMode == "" && len(r.Options) == 0 {
		return nil
	}
	return &curator.SearchOptions{
		TopTags:     r.TopTags,
		ScoringMode: curator.ScoringMode(r.SMode),
		Extra:       r.Options,
	}
}
