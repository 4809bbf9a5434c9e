package curator

import "github.com/kailas-cloud/curator/internal/domain/search/result"

// DefaultPerPage is the page size used when Query.PerPage is not set.
const DefaultPerPage = 20

// Query selects documents. All filter fields are forwarded unchanged.
// Page is 1-indexed; Start is a 0-indexed offset and wins over Page when positive.
type Query struct {
	Tags        []string
	ImageURLs   []string
	DocumentIDs []string
	BoolQuery   *BoolQuery

	PerPage int
	Page    int
	Start   int
}

// BoolQuery filters on document metadata field values.
type BoolQuery struct {
	Must    map[string]any
	Should  map[string]any
	MustNot map[string]any
}

// ScoringMode names the server-side ranking strategy.
type ScoringMode string

// Scoring mode constants.
const (
	ScoringDot ScoringMode = "dot"
)

// SearchOptions configures aggregation, scoring and passthrough options.
type SearchOptions struct {
	// TopTags requests a tag-frequency facet with that many buckets.
	// Zero or negative requests none.
	TopTags int
	// ScoringMode is sent as options.smode when set.
	ScoringMode ScoringMode
	// Extra is forwarded verbatim under options. A top_tags key is ignored,
	// and named fields above override keys of the same name.
	Extra map[string]any
}

// Response types decoded from the search endpoint.
type (
	SearchResponse     = result.Response
	Status             = result.Status
	SearchResult       = result.Item
	Document           = result.Document
	Aggregations       = result.Aggregations
	TopTagsAggregation = result.TopTagsAggregation
	TagBuckets         = result.TagBuckets
	TagBucket          = result.TagBucket
)

// In-band status values.
const (
	StatusOK    = result.StatusOK
	StatusError = result.StatusError
)
