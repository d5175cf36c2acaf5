package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	logrustest "github.com/sirupsen/logrus/hooks/test"

	"github.com/TobiSchelling/bizpulse/internal/database"
	"github.com/TobiSchelling/bizpulse/internal/metrics"
)

const qualityJSON = `{
  "timestamp": "2026-02-06T14:30:00Z",
  "overall_score": 60,
  "file_counts": {"edd": 0, "api_service": 5, "reviews": 10},
  "total_files": 15,
  "quality_factors": ["Limited file coverage"],
  "recommendations": ["Sync EDD database tables - no files found"]
}`

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServer(t *testing.T, db *database.DB, gatherer prometheus.Gatherer) *Server {
	t.Helper()
	logger, _ := logrustest.NewNullLogger()
	srv, err := New(db, gatherer, logger)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexRoute(t *testing.T) {
	db := openTestDB(t)
	db.Store(context.Background(), qualityJSON, []string{"bizpulse-analysis", "data-quality", "assessment"}, 0.6)
	srv := newTestServer(t, db, nil)

	rec := get(srv, "/")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Data Quality Assessment") {
		t.Error("expected report title in response body")
	}
	if !strings.Contains(body, "1 stored") {
		t.Error("expected store count in response body")
	}
}

func TestIndexEmpty(t *testing.T) {
	srv := newTestServer(t, openTestDB(t), nil)
	rec := get(srv, "/")
	if !strings.Contains(rec.Body.String(), "No reports yet") {
		t.Error("expected empty state message")
	}
}

func TestIndexTagFilter(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	db.Store(ctx, qualityJSON, []string{"bizpulse-analysis", "data-quality"}, 0.6)
	db.Store(ctx, `{"error":"No post data"}`, []string{"bizpulse-analysis", "wordpress", "content-performance"}, 0.7)
	srv := newTestServer(t, db, nil)

	body := get(srv, "/?tag=wordpress").Body.String()
	if !strings.Contains(body, "Content Performance") || strings.Contains(body, "Data Quality Assessment") {
		t.Errorf("expected only content reports, got %s", body)
	}
}

func TestReportRoute(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertMemory(context.Background(), qualityJSON, []string{"bizpulse-analysis", "data-quality"}, 0.6)
	srv := newTestServer(t, db, nil)

	rec := get(srv, "/report/"+id)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h1>Data Quality Assessment</h1>") {
		t.Errorf("expected rendered heading, got %s", body)
	}
	if !strings.Contains(body, "Sync EDD database tables") {
		t.Error("expected recommendations in rendered report")
	}
}

func TestReportRouteInvalidDocument(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertMemory(context.Background(), "plain text note", []string{"misc"}, 0.1)
	srv := newTestServer(t, db, nil)

	rec := get(srv, "/report/"+id)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "plain text note") {
		t.Error("expected raw content fallback")
	}
}

func TestReportNotFound(t *testing.T) {
	srv := newTestServer(t, openTestDB(t), nil)
	if rec := get(srv, "/report/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := get(srv, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", rec.Code)
	}
}

func TestReportJSONRoute(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertMemory(context.Background(), qualityJSON, []string{"data-quality"}, 0.6)
	srv := newTestServer(t, db, nil)

	rec := get(srv, "/api/reports/"+id)
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if rec.Body.String() != qualityJSON {
		t.Error("expected stored JSON verbatim")
	}
}

func TestMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveQualityScore(60)
	srv := newTestServer(t, openTestDB(t), reg)

	rec := get(srv, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "bizpulse_quality_score 60") {
		t.Errorf("expected quality gauge, got %s", rec.Body.String())
	}
}

func TestMetricsRouteDisabled(t *testing.T) {
	srv := newTestServer(t, openTestDB(t), nil)
	if rec := get(srv, "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a gatherer, got %d", rec.Code)
	}
}

func TestTitle(t *testing.T) {
	cases := map[string][]string{
		"Business Intelligence Report": {"bizpulse-analysis", "business-intelligence", "comprehensive-report"},
		"Support Metrics":              {"bizpulse-analysis", "support-metrics", "weekly-report"},
		"Report":                       {"other"},
	}
	for want, tags := range cases {
		if got := Title(tags); got != want {
			t.Errorf("Title(%v): expected %q, got %q", tags, want, got)
		}
	}
}
