package request

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/curator/internal/domain/search/options"
	"github.com/kailas-cloud/curator/internal/domain/search/query"
)

// Aggs is the aggregation part of a search request.
type Aggs struct {
	TopTags int `json:"top_tags"`
}

// Request is a search request ready to be sent.
type Request struct {
	num     int
	start   int
	payload query.Payload
	aggs    *Aggs
	options map[string]any
}

// wire is the JSON body. Field order is the encoding order.
type wire struct {
	Num     int            `json:"num"`
	Start   int            `json:"start"`
	Query   query.Payload  `json:"query"`
	Aggs    *Aggs          `json:"aggs,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// New builds a request from a normalized query and optional search options.
func New(q query.Normalized, opts *options.Options) Request {
	r := Request{
		num:     q.PerPage(),
		start:   q.Start(),
		payload: q.Payload(),
	}
	if opts.WantsTopTags() {
		r.aggs = &Aggs{TopTags: opts.TopTags}
	}
	r.options = opts.Passthrough()
	return r
}

// Num returns the page size.
func (r *Request) Num() int { return r.num }

// Start returns the result offset.
func (r *Request) Start() int { return r.start }

// Query returns the filter payload.
func (r *Request) Query() query.Payload { return r.payload }

// Aggs returns the requested aggregations (nil when none).
func (r *Request) Aggs() *Aggs { return r.aggs }

// Options returns the passthrough options (nil when none).
func (r *Request) Options() map[string]any { return r.options }

// Body encodes the request as JSON.
func (r *Request) Body() ([]byte, error) {
	data, err := json.Marshal(wire{
		Num:     r.num,
		Start:   r.start,
		Query:   r.payload,
		Aggs:    r.aggs,
		Options: r.options,
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}
	return data, nil
}
