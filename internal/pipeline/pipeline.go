package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TobiSchelling/bizpulse/internal/metrics"
	"github.com/TobiSchelling/bizpulse/internal/report"
	"github.com/TobiSchelling/bizpulse/internal/source"
)

// Report names, used for log fields, metrics labels and CLI output.
const (
	ReportSupport       = "support_metrics"
	ReportContent       = "content_performance"
	ReportQuality       = "data_quality"
	ReportComprehensive = "comprehensive_business_intelligence"
)

// Short-circuit messages for empty sources.
const (
	ErrNoTicketData = "No ticket data"
	ErrNoPostData   = "No post data"
)

const tagAnalysis = "bizpulse-analysis"

// Deps are the external collaborators a pipeline reads from and writes to.
type Deps struct {
	Tickets   source.TicketSource
	Content   source.ContentSource
	Inventory source.InventorySource
	Sink      source.MemorySink
}

// Directory is a named inventory location.
type Directory struct {
	Name string
	Path string
}

// DefaultDirectories are the inventory locations assessed by QualityAssessment.
var DefaultDirectories = []Directory{
	{Name: "edd", Path: "data/edd"},
	{Name: "api_service", Path: "data/api-service"},
	{Name: "reviews", Path: "data/reviews"},
}

// Pipeline runs the fetch, normalize, score, synthesize and persist steps
// for each report. It keeps no state between calls.
type Pipeline struct {
	deps        Deps
	directories []Directory
	inboxQuery  string
	logger      logrus.FieldLogger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the progress logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics records report outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithDirectories sets the inventory locations to assess.
func WithDirectories(dirs []Directory) Option {
	return func(p *Pipeline) {
		if len(dirs) > 0 {
			p.directories = dirs
		}
	}
}

// WithInboxQuery sets the inbox search query used by SupportAnalysis.
func WithInboxQuery(q string) Option {
	return func(p *Pipeline) {
		if q != "" {
			p.inboxQuery = q
		}
	}
}

// New creates a pipeline over deps.
func New(deps Deps, opts ...Option) *Pipeline {
	p := &Pipeline{
		deps:        deps,
		directories: DefaultDirectories,
		inboxQuery:  "support",
		logger:      logrus.StandardLogger(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// store serializes doc and writes it to the sink.
func (p *Pipeline) store(ctx context.Context, name string, doc report.Document, tags []string, importance float64) error {
	data, err := doc.Indent()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	err = p.deps.Sink.Store(ctx, string(data), tags, importance)
	p.metrics.SinkWrite(name, err)
	if err != nil {
		return fmt.Errorf("storing %s: %w", name, err)
	}
	return nil
}

func (p *Pipeline) log(name string) logrus.FieldLogger {
	return p.logger.WithField("report", name)
}
