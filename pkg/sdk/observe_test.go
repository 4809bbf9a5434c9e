package curator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobs "go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/curator/internal/domain/search/result"
)

func TestObserver_Nil(t *testing.T) {
	var o *observer
	o.observe("search", "c", time.Now(), outcomeOK, nil) // must not panic
}

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	o.observe("search", "c", time.Now(), outcomeOK, nil)
	o.observe("search", "c", time.Now(), outcomeOK, nil)
	o.observe("search", "c", time.Now(), outcomeRejected, nil)
	o.observe("search", "c", time.Now(), outcomeError, errors.New("boom"))

	if v := testutil.ToFloat64(o.metrics.operations.WithLabelValues("search", "ok")); v != 2 {
		t.Errorf("ok count = %f, want 2", v)
	}
	if v := testutil.ToFloat64(o.metrics.operations.WithLabelValues("search", "rejected")); v != 1 {
		t.Errorf("rejected count = %f, want 1", v)
	}
	if v := testutil.ToFloat64(o.metrics.operations.WithLabelValues("search", "error")); v != 1 {
		t.Errorf("error count = %f, want 1", v)
	}
	if n := testutil.CollectAndCount(o.metrics.duration); n == 0 {
		t.Error("expected duration observations")
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}

	second.observe("search", "c", time.Now(), outcomeOK, nil)
	if v := testutil.ToFloat64(first.metrics.operations.WithLabelValues("search", "ok")); v != 1 {
		t.Errorf("shared counter = %f, want 1", v)
	}
}

func TestObserver_Logging(t *testing.T) {
	core, logs := zapobs.New(zapcore.DebugLevel)
	o, err := newObserver(zap.New(core), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	o.observe("search", "photos", time.Now(), outcomeOK, nil)
	o.observe("search", "photos", time.Now(), outcomeRejected, nil)
	o.observe("search", "photos", time.Now(), outcomeError, errors.New("boom"))

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("got %d log entries, want 3", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Errorf("entry %d level = %s, want %s", i, e.Level, wantLevels[i])
		}
		if e.ContextMap()["collection"] != "photos" {
			t.Errorf("entry %d collection = %v", i, e.ContextMap()["collection"])
		}
	}
	if entries[2].ContextMap()["error"] != "boom" {
		t.Errorf("error field = %v", entries[2].ContextMap()["error"])
	}
}

func TestSearch_Observed(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	stub := &stubSearcher{resp: &result.Response{Status: result.Status{Status: "ERROR"}}}
	c := &Client{transport: stub, defaultPerPage: DefaultPerPage, obs: obs}

	if _, err := c.Search(context.Background(), "c", Query{}, nil); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if v := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", "rejected")); v != 1 {
		t.Errorf("rejected count = %f, want 1", v)
	}
}

func TestNew_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(WithPrometheus(reg), WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.obs == nil || c.obs.metrics == nil {
		t.Fatal("metrics not configured")
	}
}
