package query

import "github.com/kailas-cloud/curator/internal/domain/search/filter"

// DefaultPerPage is the page size used when none is given.
const DefaultPerPage = 20

// Query is a loosely typed search: filter fields plus pagination controls.
// Page is 1-indexed, Start is a 0-indexed result offset.
// Filter fields, BoolQuery included, are forwarded as given.
type Query struct {
	Tags        []string
	ImageURLs   []string
	DocumentIDs []string
	BoolQuery   *filter.BoolQuery

	PerPage int
	Page    int
	Start   int
}

// Payload is the filter part of a query as the search endpoint expects it.
type Payload struct {
	Tags        []string          `json:"tags,omitempty"`
	ImageURLs   []string          `json:"image_urls,omitempty"`
	DocumentIDs []string          `json:"document_ids,omitempty"`
	BoolQuery   *filter.BoolQuery `json:"bool_query,omitempty"`
}

// Normalized is a query with pagination resolved to num/start.
type Normalized struct {
	perPage int
	start   int
	payload Payload
}

// Normalize resolves pagination and splits off the filter payload.
//
// PerPage <= 0 falls back to defaultPerPage (or DefaultPerPage when that is <= 0 too).
// A positive Start is used as the offset directly; otherwise Page N > 1 maps to
// (N-1)*PerPage and anything else maps to 0.
func Normalize(q Query, defaultPerPage int) Normalized {
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	start := 0
	switch {
	case q.Start > 0:
		start = q.Start
	case q.Page > 1:
		start = (q.Page - 1) * perPage
	}

	return Normalized{
		perPage: perPage,
		start:   start,
		payload: Payload{
			Tags:        q.Tags,
			ImageURLs:   q.ImageURLs,
			DocumentIDs: q.DocumentIDs,
			BoolQuery:   q.BoolQuery.Clone(),
		},
	}
}

// PerPage returns the resolved page size (wire "num").
func (n Normalized) PerPage() int { return n.perPage }

// Start returns the resolved result offset (wire "start").
func (n Normalized) Start() int { return n.start }

// Payload returns the filter payload (wire "query").
func (n Normalized) Payload() Payload { return n.payload }
