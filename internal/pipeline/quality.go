package pipeline

import (
	"context"
	"fmt"

	"github.com/TobiSchelling/bizpulse/internal/metrics"
	"github.com/TobiSchelling/bizpulse/internal/quality"
	"github.com/TobiSchelling/bizpulse/internal/report"
	"github.com/TobiSchelling/bizpulse/internal/source"
)

const qualityImportance = 0.6

var qualityTags = []string{tagAnalysis, "data-quality", "assessment"}

// WordPressStatus is the connectivity block of a quality report.
type WordPressStatus struct {
	Accessible bool `json:"accessible"`
	Users      int  `json:"users"`
	Plugins    int  `json:"plugins"`
	Themes     int  `json:"themes"`
}

// QualityMetrics are the computed quality values.
type QualityMetrics struct {
	Score      int
	TotalFiles int
}

// QualityAssessment scores data coverage, content-site connectivity and
// access timing. An unreadable inventory counts as empty.
func (p *Pipeline) QualityAssessment(ctx context.Context) (report.Document, error) {
	doc, _, err := p.qualityAssessment(ctx)
	return doc, err
}

func (p *Pipeline) qualityAssessment(ctx context.Context) (report.Document, *QualityMetrics, error) {
	log := p.log(ReportQuality)
	log.Info("Assessing data quality...")

	counts := p.inventorySnapshot(ctx)

	site, err := p.deps.Content.GetSiteInfo(ctx)
	if err != nil {
		return report.Document{}, nil, fmt.Errorf("fetching site info: %w", err)
	}

	now := p.now()
	assessment := quality.Score(quality.Input{
		FileCounts:     counts,
		WordPressUsers: site.Users,
		HourOfDay:      now.Hour(),
	})
	qm := QualityMetrics{Score: assessment.OverallScore, TotalFiles: counts.Total()}

	doc := report.NewBuilder(now).
		Set("overall_score", qm.Score).
		Set("file_counts", p.orderedCounts(counts)).
		Set("total_files", qm.TotalFiles).
		Set("wordpress_status", WordPressStatus{
			Accessible: site.Users > 0,
			Users:      site.Users,
			Plugins:    len(site.Plugins),
			Themes:     len(site.Themes),
		}).
		Set("quality_factors", assessment.Factors).
		Set("recommendations", assessment.Recommendations).
		Finalize()

	if err := p.store(ctx, ReportQuality, doc, qualityTags, qualityImportance); err != nil {
		p.metrics.ReportGenerated(ReportQuality, metrics.OutcomeFailed)
		return report.Document{}, nil, err
	}

	p.metrics.ReportGenerated(ReportQuality, metrics.OutcomeOK)
	p.metrics.ObserveQualityScore(qm.Score)
	log.WithField("score", qm.Score).Infof("Assessment complete: %d/100 score", qm.Score)
	return doc, &qm, nil
}

// inventorySnapshot counts files in every configured directory. If any
// listing fails, every directory counts as zero.
func (p *Pipeline) inventorySnapshot(ctx context.Context) source.InventorySnapshot {
	counts := make(source.InventorySnapshot, len(p.directories))
	for _, dir := range p.directories {
		entries, err := p.deps.Inventory.ListDir(ctx, dir.Path, false)
		if err != nil {
			p.log(ReportQuality).WithError(err).WithField("path", dir.Path).
				Warn("Error accessing file inventory, assuming empty")
			p.metrics.InventoryFault()
			return p.emptySnapshot()
		}
		counts[dir.Name] = len(entries)
	}
	return counts
}

func (p *Pipeline) emptySnapshot() source.InventorySnapshot {
	counts := make(source.InventorySnapshot, len(p.directories))
	for _, dir := range p.directories {
		counts[dir.Name] = 0
	}
	return counts
}

// orderedCounts renders counts in configured directory order.
func (p *Pipeline) orderedCounts(counts source.InventorySnapshot) report.Document {
	b := report.NewObject()
	for _, dir := range p.directories {
		b.Set(dir.Name, counts[dir.Name])
	}
	return b.Finalize()
}
