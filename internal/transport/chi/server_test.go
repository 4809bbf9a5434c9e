package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/curator/internal/curatortest"
	curator "github.com/kailas-cloud/curator/pkg/sdk"
)

type stubSearcher struct {
	resp *curator.SearchResponse
	err  error

	collection string
	query      curator.Query
	opts       *curator.SearchOptions
	calls      int
}

func (s *stubSearcher) Search(
	_ context.Context, collectionID string, q curator.Query, opts *curator.SearchOptions,
) (*curator.SearchResponse, error) {
	s.calls++
	s.collection = collectionID
	s.query = q
	s.opts = opts
	return s.resp, s.err
}

func newTestRouter(s Searcher) chi.Router {
	srv := NewServer(s, prometheus.NewRegistry(), zap.NewNop())
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	srv.Register(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func okResponse() *curator.SearchResponse {
	return &curator.SearchResponse{
		Status:          curator.Status{Status: curator.StatusOK},
		TotalNumResults: 1,
		Results: []curator.SearchResult{
			{Score: 1, Document: curator.Document{DocID: "image_1"}},
		},
	}
}

func TestSearch_DecodesRequest(t *testing.T) {
	stub := &stubSearcher{resp: okResponse()}
	r := newTestRouter(stub)

	body := `{"tags":["dog"],"bool_query":{"must":{"license":"cc"}},"per_page":5,"page":2,` +
		`"top_tags":10,"smode":"dot","options":{"mode":"fast"}}`
	rr := doJSON(t, r, "POST", "/collections/photos/search", body)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if stub.collection != "photos" {
		t.Errorf("collection = %q", stub.collection)
	}
	if len(stub.query.Tags) != 1 || stub.query.Tags[0] != "dog" {
		t.Errorf("tags = %v", stub.query.Tags)
	}
	if stub.query.PerPage != 5 || stub.query.Page != 2 {
		t.Errorf("per_page/page = %d/%d", stub.query.PerPage, stub.query.Page)
	}
	if stub.query.BoolQuery == nil || stub.query.BoolQuery.Must["license"] != "cc" {
		t.Errorf("bool_query = %+v", stub.query.BoolQuery)
	}
	if stub.opts == nil {
		t.Fatal("expected options")
	}
	if stub.opts.TopTags != 10 || stub.opts.ScoringMode != curator.ScoringDot || stub.opts.Extra["mode"] != "fast" {
		t.Errorf("options = %+v", stub.opts)
	}

	var resp curator.SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := resp.DocIDs(); len(got) != 1 || got[0] != "image_1" {
		t.Errorf("docids = %v", got)
	}
}

func TestSearch_EmptyBody(t *testing.T) {
	stub := &stubSearcher{resp: okResponse()}
	r := newTestRouter(stub)

	rr := doJSON(t, r, "POST", "/collections/photos/search", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if stub.opts != nil {
		t.Errorf("options = %+v, want nil", stub.opts)
	}
}

func TestSearch_InvalidJSON_400(t *testing.T) {
	stub := &stubSearcher{resp: okResponse()}
	r := newTestRouter(stub)

	rr := doJSON(t, r, "POST", "/collections/photos/search", `{"tags":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if stub.calls != 0 {
		t.Errorf("searcher called %d times", stub.calls)
	}
}

func TestSearch_InBandErrorIs200(t *testing.T) {
	stub := &stubSearcher{resp: &curator.SearchResponse{
		Status: curator.Status{Status: curator.StatusError, StatusMsg: "bad image url"},
	}}
	r := newTestRouter(stub)

	rr := doJSON(t, r, "POST", "/collections/photos/search", `{"image_urls":["nope"]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp curator.SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OK() {
		t.Error("expected ERROR status")
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody ErrorCode
	}{
		{"empty collection", curator.ErrCollectionRequired, http.StatusBadRequest, ErrorCodeValidationFailed},
		{"deadline", fmt.Errorf("%w: %w", curator.ErrTransport, context.DeadlineExceeded),
			http.StatusGatewayTimeout, ErrorCodeUpstreamTimeout},
		{"transport", fmt.Errorf("search: %w", curator.ErrTransport), http.StatusBadGateway, ErrorCodeUpstreamUnavailable},
		{"decode", curator.ErrDecodeResponse, http.StatusBadGateway, ErrorCodeUpstreamError},
		{"api error", &curator.APIError{StatusCode: http.StatusForbidden, Status: "403 Forbidden"},
			http.StatusForbidden, ErrorCodeUpstreamError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrorCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubSearcher{err: tt.err})

			rr := doJSON(t, r, "POST", "/collections/photos/search", `{}`)
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if errResp.Code != tt.wantBody {
				t.Errorf("code = %s, want %s", errResp.Code, tt.wantBody)
			}
		})
	}
}

func TestSearch_APIErrorForwardsResponse(t *testing.T) {
	apiErr := &curator.APIError{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Response: &curator.SearchResponse{
			Status: curator.Status{Status: curator.StatusError, StatusMsg: "collection not found"},
		},
	}
	r := newTestRouter(&stubSearcher{err: fmt.Errorf("search %q: %w", "missing", apiErr)})

	rr := doJSON(t, r, "POST", "/collections/missing/search", `{}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp curator.SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status.StatusMsg != "collection not found" {
		t.Errorf("status_msg = %q", resp.Status.StatusMsg)
	}
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(&stubSearcher{})

	rr := doJSON(t, r, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Version == "" {
		t.Errorf("health = %+v", resp)
	}
}

func TestMetrics_ServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "curator_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	srv := NewServer(&stubSearcher{}, reg, zap.NewNop())
	r := chi.NewRouter()
	srv.Register(r)

	rr := doJSON(t, r, "GET", "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "curator_test_total 1") {
		t.Errorf("metrics body missing counter:\n%s", rr.Body.String())
	}
}

func TestSearch_EndToEndThroughSDK(t *testing.T) {
	upstream := curatortest.NewServer(curatortest.WithToken("secret"))
	t.Cleanup(upstream.Close)
	upstream.AddDocuments("photos", curatortest.Fixture()...)

	client, err := curator.New(curator.WithBaseURL(upstream.URL), curator.WithAccessToken("secret"))
	if err != nil {
		t.Fatalf("curator.New: %v", err)
	}
	r := newTestRouter(client)

	req := httptest.NewRequest("POST", "/collections/photos/search",
		bytes.NewBufferString(`{"tags":["nobody"],"per_page":2,"page":2,"top_tags":3}`))
	req.Header.Set("X-Request-Id", "req-42")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp curator.SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("results = %d, want 2", len(resp.Results))
	}
	if len(resp.Aggregations.TopTagBuckets()) == 0 {
		t.Error("expected top_tags buckets")
	}

	recorded := upstream.Requests()
	if len(recorded) != 1 {
		t.Fatalf("upstream requests = %d", len(recorded))
	}
	if got := recorded[0].Header.Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}
	var sent map[string]any
	if err := json.Unmarshal(recorded[0].Body, &sent); err != nil {
		t.Fatalf("decode upstream body: %v", err)
	}
	if sent["start"] != float64(2) || sent["num"] != float64(2) {
		t.Errorf("start/num = %v/%v", sent["start"], sent["num"])
	}
}

func TestSearch_EndToEndUnknownCollection(t *testing.T) {
	upstream := curatortest.NewServer()
	t.Cleanup(upstream.Close)

	client, err := curator.New(curator.WithBaseURL(upstream.URL))
	if err != nil {
		t.Fatalf("curator.New: %v", err)
	}
	r := newTestRouter(client)

	rr := doJSON(t, r, "POST", "/collections/nope/search", `{"tags":["dog"]}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
}
