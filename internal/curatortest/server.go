// Package curatortest provides an in-memory Curator search endpoint for tests.
package curatortest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/curator/internal/domain/search/result"
)

// Document is a record stored in a fake collection.
type Document struct {
	DocID    string
	Tags     []string
	MediaURL string
	Metadata map[string]any
}

// RecordedRequest is a search request received by the server.
type RecordedRequest struct {
	Collection string
	Header     http.Header
	Body       []byte
}

// Server is a fake Curator API backed by httptest.Server.
type Server struct {
	*httptest.Server

	token string

	mu          sync.RWMutex
	collections map[string][]Document
	requests    []RecordedRequest
}

// Option configures the Server.
type Option func(*Server)

// WithToken requires "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// NewServer starts a fake Curator server. Close it when done.
func NewServer(opts ...Option) *Server {
	s := &Server{collections: make(map[string][]Document)}
	for _, o := range opts {
		o(s)
	}

	r := chi.NewRouter()
	r.Use(s.auth)
	r.Post("/curator/collections/{collectionID}/search", s.handleSearch)
	s.Server = httptest.NewServer(r)
	return s
}

// AddDocuments appends documents to a collection, creating it if needed.
func (s *Server) AddDocuments(collection string, docs ...Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], docs...)
}

// Requests returns the search requests received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeStatus(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type searchBody struct {
	Num   int `json:"num"`
	Start int `json:"start"`
	Query struct {
		Tags        []string `json:"tags"`
		ImageURLs   []string `json:"image_urls"`
		DocumentIDs []string `json:"document_ids"`
		BoolQuery   *struct {
			Must    map[string]any `json:"must"`
			Should  map[string]any `json:"should"`
			MustNot map[string]any `json:"must_not"`
		} `json:"bool_query"`
	} `json:"query"`
	Aggs *struct {
		TopTags int `json:"top_tags"`
	} `json:"aggs"`
	Options map[string]any `json:"options"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collectionID")
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Collection: collection,
		Header:     r.Header.Clone(),
		Body:       data,
	})
	docs, ok := s.collections[collection]
	docs = append([]Document(nil), docs...)
	s.mu.Unlock()

	if !ok {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("collection %q not found", collection))
		return
	}

	var body searchBody
	if err := json.Unmarshal(data, &body); err != nil {
		writeStatus(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	// Application-level errors are reported in-band with HTTP 200.
	for _, u := range body.Query.ImageURLs {
		if !validURL(u) {
			writeStatus(w, http.StatusOK, "INVALID_IMAGE_URL", fmt.Sprintf("invalid image url %q", u))
			return
		}
	}
	for _, id := range body.Query.DocumentIDs {
		if findDoc(docs, id) == nil {
			writeStatus(w, http.StatusOK, "INVALID_DOCUMENT_ID", fmt.Sprintf("unknown document %q", id))
			return
		}
	}

	dot, _ := body.Options["smode"].(string)
	hits := rank(docs, body, dot == "dot")

	resp := result.Response{
		Status:          result.Status{Status: result.StatusOK},
		TotalNumResults: len(hits),
		Results:         page(hits, body.Start, body.Num),
	}
	if body.Aggs != nil && body.Aggs.TopTags > 0 {
		resp.Aggregations = topTags(hits, body.Aggs.TopTags)
	}
	writeJSON(w, http.StatusOK, resp)
}

type hit struct {
	doc   Document
	score float64
}

func rank(docs []Document, body searchBody, dot bool) []hit {
	// Tags of documents referenced by ID act as extra query tags.
	qtags := append([]string(nil), body.Query.Tags...)
	for _, id := range body.Query.DocumentIDs {
		qtags = append(qtags, findDoc(docs, id).Tags...)
	}

	var hits []hit
	for _, d := range docs {
		if bq := body.Query.BoolQuery; bq != nil && !matches(d, bq.Must, bq.Should, bq.MustNot) {
			continue
		}
		score := 1.0
		if len(qtags) > 0 {
			overlap := countOverlap(d.Tags, qtags)
			if overlap == 0 {
				continue
			}
			score = float64(overlap)
			if !dot {
				score /= float64(len(qtags))
			}
		}
		if len(body.Query.ImageURLs) > 0 && contains(body.Query.ImageURLs, d.MediaURL) {
			score += 1
		}
		hits = append(hits, hit{doc: d, score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.DocID < hits[j].doc.DocID
	})
	return hits
}

func page(hits []hit, start, num int) []result.Item {
	if start < 0 {
		start = 0
	}
	if start >= len(hits) {
		return []result.Item{}
	}
	end := len(hits)
	if num > 0 && start+num < end {
		end = start + num
	}
	items := make([]result.Item, 0, end-start)
	for _, h := range hits[start:end] {
		items = append(items, result.Item{
			Score: h.score,
			Document: result.Document{
				DocID:          h.doc.DocID,
				AnnotationSets: annotationSets(h.doc),
				MediaRefs:      mediaRefs(h.doc),
				Metadata:       metadata(h.doc),
			},
		})
	}
	return items
}

func topTags(hits []hit, n int) *result.Aggregations {
	counts := make(map[string]int)
	for _, h := range hits {
		for _, t := range h.doc.Tags {
			counts[t]++
		}
	}
	buckets := make([]result.TagBucket, 0, len(counts))
	for k, c := range counts {
		buckets = append(buckets, result.TagBucket{Key: k, DocCount: c})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].DocCount != buckets[j].DocCount {
			return buckets[i].DocCount > buckets[j].DocCount
		}
		return buckets[i].Key < buckets[j].Key
	})
	if len(buckets) > n {
		buckets = buckets[:n]
	}
	return &result.Aggregations{TopTags: &result.TopTagsAggregation{
		TopTags: result.TagBuckets{Buckets: buckets},
	}}
}

func matches(d Document, must, should, mustNot map[string]any) bool {
	for k, v := range must {
		if !fieldEquals(d, k, v) {
			return false
		}
	}
	for k, v := range mustNot {
		if fieldEquals(d, k, v) {
			return false
		}
	}
	if len(should) == 0 {
		return true
	}
	for k, v := range should {
		if fieldEquals(d, k, v) {
			return true
		}
	}
	return false
}

func fieldEquals(d Document, key string, want any) bool {
	got, ok := d.Metadata[key]
	return ok && fmt.Sprint(got) == fmt.Sprint(want)
}

func countOverlap(docTags, qtags []string) int {
	n := 0
	for _, q := range qtags {
		if contains(docTags, q) {
			n++
		}
	}
	return n
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func findDoc(docs []Document, id string) *Document {
	for i := range docs {
		if docs[i].DocID == id {
			return &docs[i]
		}
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func annotationSets(d Document) []map[string]any {
	if len(d.Tags) == 0 {
		return []map[string]any{}
	}
	tags := make([]map[string]any, len(d.Tags))
	for i, t := range d.Tags {
		tags[i] = map[string]any{"tag": map[string]any{"cname": t}}
	}
	return []map[string]any{{"namespace": "default", "annotations": tags}}
}

func mediaRefs(d Document) []map[string]any {
	if d.MediaURL == "" {
		return []map[string]any{}
	}
	return []map[string]any{{"url": d.MediaURL, "media_type": "image"}}
}

func metadata(d Document) map[string]any {
	out := make(map[string]any, len(d.Metadata))
	for k, v := range d.Metadata {
		out[k] = v
	}
	return out
}

func writeStatus(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, result.Response{
		Status: result.Status{
			Status:     result.StatusError,
			StatusCode: code,
			StatusMsg:  msg,
		},
		Results: []result.Item{},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Fixture returns a small photo collection used across tests.
func Fixture() []Document {
	return []Document{
		doc("image_1", "http://img.example.com/1.jpg", "photographer_1", "royalty_free", "nobody", "city", "dog"),
		doc("image_2", "http://img.example.com/2.jpg", "photographer_2", "rights_managed", "nobody", "dog", "puppy"),
		doc("image_3", "http://img.example.com/3.jpg", "photographer_3", "royalty_free", "nobody", "city", "night"),
		doc("image_4", "http://img.example.com/4.jpg", "photographer_3", "rights_managed", "city", "street"),
		doc("image_5", "http://img.example.com/5.jpg", "photographer_3", "royalty_free", "nobody", "city"),
		doc("image_6", "http://img.example.com/6.jpg", "photographer_1", "royalty_free", "nobody", "beach"),
		doc("image_7", "http://img.example.com/7.jpg", "photographer_2", "royalty_free", "nobody", "city", "puppy", "night"),
	}
}

func doc(id, mediaURL, photographer, license string, tags ...string) Document {
	return Document{
		DocID:    id,
		Tags:     tags,
		MediaURL: mediaURL,
		Metadata: map[string]any{
			"photographer_id": photographer,
			"license_type":    license,
			"caption":         strings.Join(tags, " "),
		},
	}
}
