package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logrustest "github.com/sirupsen/logrus/hooks/test"

	"github.com/TobiSchelling/bizpulse/internal/source"
)

var articleHTML = `<html><head><title>Release notes</title></head><body>
<nav>Home | Blog</nav>
<article><h1>Release notes</h1>
<p>` + strings.Repeat("This release improves the checkout flow and fixes several bugs. ", 20) + `</p>
<p>` + strings.Repeat("Customers can now export invoices as PDF files. ", 20) + `</p>
</article></body></html>`

func TestFillMissingContent(t *testing.T) {
	var goneHits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(articleHTML))
		default:
			goneHits++
			w.WriteHeader(http.StatusGone)
		}
	}))
	defer srv.Close()

	logger, _ := logrustest.NewNullLogger()
	f := NewContentFetcher(0, logger)

	posts := []source.PostRecord{
		{ID: 1, Content: "<p>already here</p>"},
		{ID: 2, Link: srv.URL + "/ok"},
		{ID: 3, Link: srv.URL + "/gone"},
		{ID: 4, Link: srv.URL + "/gone-too"},
		{ID: 5},
	}
	result := f.FillMissingContent(context.Background(), posts)

	if result.AlreadyHadContent != 1 {
		t.Errorf("expected 1 post with content, got %d", result.AlreadyHadContent)
	}
	if result.Fetched != 1 {
		t.Errorf("expected 1 fetched, got %d", result.Fetched)
	}
	if result.Failed != 3 {
		t.Errorf("expected 3 failed, got %d", result.Failed)
	}
	if !strings.Contains(posts[1].Content, "export invoices") {
		t.Errorf("expected extracted text, got %q", posts[1].Content)
	}
	if goneHits != 1 {
		t.Errorf("expected failed domain to be skipped after one hit, got %d hits", goneHits)
	}
}

func TestFetchShortPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>tiny</p></body></html>"))
	}))
	defer srv.Close()

	f := NewContentFetcher(0, nil)
	text, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text != "" {
		t.Errorf("expected no content for short page, got %q", text)
	}
}
