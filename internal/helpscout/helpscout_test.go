package helpscout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	logrustest "github.com/sirupsen/logrus/hooks/test"

	"github.com/TobiSchelling/bizpulse/internal/source"
)

const conversationsJSON = `{
  "_embedded": {
    "conversations": [
      {
        "id": 101,
        "subject": "Login broken",
        "createdAt": "2026-02-03T09:00:00Z",
        "tags": [{"id": 1, "tag": "urgent"}, {"id": 2, "name": "billing"}],
        "_embedded": {
          "threads": [
            {"type": "customer", "createdAt": "2026-02-03T09:00:00Z"},
            {"type": "note", "createdAt": "2026-02-03T09:30:00Z"},
            {"type": "message", "createdAt": "2026-02-03T12:00:00Z"}
          ]
        }
      },
      {"id": 102, "subject": "Bad date", "createdAt": "yesterday"}
    ]
  }
}`

func newServer(t *testing.T) (*httptest.Server, *url.Values) {
	t.Helper()
	var last url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = r.URL.Query()
		switch r.URL.Path {
		case "/conversations":
			w.Write([]byte(conversationsJSON))
		case "/mailboxes":
			w.Write([]byte(`{"_embedded":{"mailboxes":[
				{"id":1,"name":"Support"},{"id":2,"name":"Sales"},{"id":3,"name":"Support EU"}]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func TestSearch(t *testing.T) {
	srv, last := newServer(t)
	logger, hook := logrustest.NewNullLogger()
	c := New(srv.URL, srv.Client(), logger)

	after := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	tickets, err := c.Search(context.Background(), source.TicketFilter{Status: "active", CreatedAfter: after})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := *last
	if q.Get("status") != "active" || q.Get("embed") != "threads" {
		t.Errorf("unexpected query %v", q)
	}
	if q.Get("query") != "(createdAt:[2026-01-30T00:00:00Z TO *])" {
		t.Errorf("unexpected search query %q", q.Get("query"))
	}

	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets))
	}
	tk := tickets[0]
	if tk.ID != 101 || tk.Subject != "Login broken" {
		t.Errorf("unexpected ticket %+v", tk)
	}
	if len(tk.Tags) != 2 || tk.Tags[0] != "urgent" || tk.Tags[1] != "billing" {
		t.Errorf("unexpected tags %v", tk.Tags)
	}
	if len(tk.Threads) != 3 || tk.Threads[1].Type != "note" {
		t.Errorf("unexpected threads %+v", tk.Threads)
	}

	if len(hook.AllEntries()) != 1 || hook.LastEntry().Data["id"] != int64(102) {
		t.Errorf("expected a warning for the bad date, got %v", hook.AllEntries())
	}
}

func TestSearchInboxes(t *testing.T) {
	srv, _ := newServer(t)
	logger, _ := logrustest.NewNullLogger()
	c := New(srv.URL, srv.Client(), logger)

	inboxes, err := c.SearchInboxes(context.Background(), "support", 10)
	if err != nil {
		t.Fatalf("SearchInboxes: %v", err)
	}
	if len(inboxes) != 2 || inboxes[1].Name != "Support EU" {
		t.Errorf("unexpected inboxes %+v", inboxes)
	}

	limited, _ := c.SearchInboxes(context.Background(), "", 1)
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}
}

func TestNewDefaultsBaseURL(t *testing.T) {
	if c := New("", nil, nil); c.baseURL != DefaultBaseURL {
		t.Errorf("expected %q, got %q", DefaultBaseURL, c.baseURL)
	}
	if c := New("https://proxy.example/v2/", nil, nil); c.baseURL != "https://proxy.example/v2" {
		t.Errorf("expected trimmed custom url, got %q", c.baseURL)
	}
}

func TestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	logger, _ := logrustest.NewNullLogger()
	c := New(srv.URL, srv.Client(), logger)
	if _, err := c.Search(context.Background(), source.TicketFilter{}); err == nil {
		t.Error("expected error for 503")
	}
}
