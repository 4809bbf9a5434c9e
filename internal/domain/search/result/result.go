package result

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Status values reported in-band by the search endpoint.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Response is a decoded search response.
type Response struct {
	Status          Status        `json:"status"`
	TotalNumResults int           `json:"total_num_results"`
	Results         []Item        `json:"results"`
	Aggregations    *Aggregations `json:"aggregations,omitempty"`
}

// Status is the application-level outcome of a search.
// StatusCode holds whatever JSON value the server sent (string or number).
type Status struct {
	Status     string `json:"status"`
	StatusCode any    `json:"status_code,omitempty"`
	StatusMsg  string `json:"status_msg,omitempty"`
}

// Code returns StatusCode as text, or "" when absent.
func (s Status) Code() string {
	switch v := s.StatusCode.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Item is a single search hit.
type Item struct {
	Score    float64  `json:"score"`
	Document Document `json:"document"`
}

// Document is a searchable record as returned in results.
type Document struct {
	DocID          string           `json:"docid"`
	AnnotationSets []map[string]any `json:"annotation_sets"`
	MediaRefs      []map[string]any `json:"media_refs"`
	Metadata       map[string]any   `json:"metadata"`
}

const aggTopTags = "top_tags"

// Aggregations holds facet data computed by the server.
// Facets other than top_tags are kept undecoded in Other.
type Aggregations struct {
	TopTags *TopTagsAggregation
	Other   map[string]json.RawMessage
}

// UnmarshalJSON decodes top_tags and keeps every other facet as raw JSON.
func (a *Aggregations) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err //nolint:wrapcheck // surfaced as a decode error by the caller
	}
	*a = Aggregations{}
	if v, ok := raw[aggTopTags]; ok {
		delete(raw, aggTopTags)
		if string(v) != "null" {
			var tt TopTagsAggregation
			if err := json.Unmarshal(v, &tt); err != nil {
				return fmt.Errorf("aggregations.top_tags: %w", err)
			}
			a.TopTags = &tt
		}
	}
	if len(raw) > 0 {
		a.Other = raw
	}
	return nil
}

// MarshalJSON writes top_tags and the raw facets back as one object.
func (a Aggregations) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Other)+1)
	for k, v := range a.Other {
		out[k] = v
	}
	if a.TopTags != nil {
		out[aggTopTags] = a.TopTags
	}
	return json.Marshal(out) //nolint:wrapcheck // plain map encoding
}

// Facet returns the raw JSON of a facet other than top_tags, or nil.
func (a *Aggregations) Facet(name string) json.RawMessage {
	if a == nil {
		return nil
	}
	return a.Other[name]
}

// TopTagsAggregation wraps the tag-frequency facet.
type TopTagsAggregation struct {
	TopTags TagBuckets `json:"top_tags"`
}

// TagBuckets is a list of tag-frequency buckets.
type TagBuckets struct {
	Buckets []TagBucket `json:"buckets"`
}

// TagBucket is one tag and the number of matching documents.
type TagBucket struct {
	Key      string `json:"key"`
	DocCount int    `json:"doc_count"`
}

// OK reports whether the server accepted the search.
func (r *Response) OK() bool {
	return r != nil && r.Status.Status == StatusOK
}

// DocIDs returns the document IDs of the results in order.
func (r *Response) DocIDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, len(r.Results))
	for i := range r.Results {
		ids[i] = r.Results[i].Document.DocID
	}
	return ids
}

// TopTagBuckets returns the tag buckets, or nil when no tag aggregation was returned.
func (a *Aggregations) TopTagBuckets() []TagBucket {
	if a == nil || a.TopTags == nil {
		return nil
	}
	return a.TopTags.TopTags.Buckets
}
