package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/bizpulse/internal/compose"
	"github.com/TobiSchelling/bizpulse/internal/database"
	"github.com/TobiSchelling/bizpulse/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

var md = goldmark.New()

const pageSize = 50

// reportTitles maps a report's identifying tag to its display title.
var reportTitles = []struct {
	tag   string
	title string
}{
	{"comprehensive-report", "Business Intelligence Report"},
	{"support-metrics", "Support Metrics"},
	{"content-performance", "Content Performance"},
	{"data-quality", "Data Quality Assessment"},
}

// Server is the HTTP server for browsing stored reports.
type Server struct {
	db     *database.DB
	pages  map[string]*template.Template
	mux    *http.ServeMux
	logger logrus.FieldLogger
}

// New creates a new Server. Metrics from gatherer are exposed on /metrics
// when it is non-nil.
func New(db *database.DB, gatherer prometheus.Gatherer, logger logrus.FieldLogger) (*Server, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"title":    Title,
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "report.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, pages: pages, mux: http.NewServeMux(), logger: logger}
	s.routes(gatherer)
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /report/{id}", s.handleReport)
	s.mux.HandleFunc("GET /api/reports/{id}", s.handleReportJSON)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	memories, err := s.db.GetMemories(tag, pageSize)
	if err != nil {
		s.logger.WithError(err).Error("Listing reports")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	stats, err := s.db.GetStats()
	if err != nil {
		s.logger.WithError(err).Error("Reading store stats")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Reports": memories,
		"Stats":   stats,
		"Tag":     tag,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}

	title := Title(m.Tags)
	var body string
	doc, err := report.Parse([]byte(m.Content))
	if err == nil {
		body, err = compose.Markdown(title, doc)
	}
	if err != nil {
		s.logger.WithError(err).WithField("id", m.ID).Warn("Stored report is not a valid document")
		body = "# " + title + "\n\n```\n" + m.Content + "\n```"
	}

	s.render(w, "report.html", map[string]any{
		"Report": m,
		"Title":  title,
		"Body":   body,
	})
}

func (s *Server) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(m.Content))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*database.Memory, bool) {
	m, err := s.db.GetMemory(r.PathValue("id"))
	if err != nil {
		s.logger.WithError(err).Error("Loading report")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	if m == nil {
		http.NotFound(w, r)
		return nil, false
	}
	return m, true
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.logger.Errorf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		s.logger.WithError(err).Errorf("Error rendering template %s", name)
	}
}

// Title returns the display title for a report with the given tags.
func Title(tags []string) string {
	for _, rt := range reportTitles {
		for _, t := range tags {
			if t == rt.tag {
				return rt.title
			}
		}
	}
	return "Report"
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port and shuts it down when
// ctx is done.
func Serve(ctx context.Context, srv *Server, port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		srv.logger.Infof("Server listening on http://%s", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
