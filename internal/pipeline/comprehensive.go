package pipeline

import (
	"context"
	"fmt"

	"github.com/TobiSchelling/bizpulse/internal/metrics"
	"github.com/TobiSchelling/bizpulse/internal/report"
	"github.com/TobiSchelling/bizpulse/internal/synthesize"
)

const comprehensiveImportance = 0.9

var comprehensiveTags = []string{tagAnalysis, "business-intelligence", "comprehensive-report"}

// ExecutiveSummary holds the headline numbers of a comprehensive report.
// Values from sub-analyses that produced an error document are zero.
type ExecutiveSummary struct {
	DataQualityScore    int     `json:"data_quality_score"`
	SupportUrgencyRate  float64 `json:"support_urgency_rate"`
	ContentProductivity float64 `json:"content_productivity"`
	TotalDataFiles      int     `json:"total_data_files"`
}

// ComprehensiveReport runs the support, content and quality analyses and
// combines them with synthesized insights. It never returns an error: any
// failure, including a panic in a collaborator, yields {error, timestamp}.
func (p *Pipeline) ComprehensiveReport(ctx context.Context) (doc report.Document) {
	defer func() {
		if r := recover(); r != nil {
			doc = p.fault(fmt.Errorf("panic: %v", r))
		}
	}()

	doc, err := p.comprehensiveReport(ctx)
	if err != nil {
		return p.fault(err)
	}
	return doc
}

func (p *Pipeline) comprehensiveReport(ctx context.Context) (report.Document, error) {
	log := p.log(ReportComprehensive)
	log.Info("Generating comprehensive business report...")

	supportDoc, support, err := p.supportAnalysis(ctx)
	if err != nil {
		return report.Document{}, err
	}
	contentDoc, content, err := p.contentAnalysis(ctx)
	if err != nil {
		return report.Document{}, err
	}
	qualityDoc, qual, err := p.qualityAssessment(ctx)
	if err != nil {
		return report.Document{}, err
	}

	var summary ExecutiveSummary
	if support != nil {
		summary.SupportUrgencyRate = support.UrgencyRate
	}
	if content != nil {
		summary.ContentProductivity = content.PublishingFrequency
	}
	if qual != nil {
		summary.DataQualityScore = qual.Score
		summary.TotalDataFiles = qual.TotalFiles
	}

	result := synthesize.Synthesize(synthesize.Metrics{
		UrgencyRate:         summary.SupportUrgencyRate,
		PublishingFrequency: summary.ContentProductivity,
		QualityScore:        summary.DataQualityScore,
	})

	doc := report.NewBuilder(p.now()).
		Set("report_type", ReportComprehensive).
		Set("executive_summary", summary).
		Set("detailed_analysis", report.NewObject().
			Set(ReportSupport, supportDoc).
			Set(ReportContent, contentDoc).
			Set(ReportQuality, qualityDoc).
			Finalize()).
		Set("key_insights", result.Insights).
		Set("action_items", result.Actions).
		Finalize()

	if err := p.store(ctx, ReportComprehensive, doc, comprehensiveTags, comprehensiveImportance); err != nil {
		return report.Document{}, err
	}

	p.metrics.ReportGenerated(ReportComprehensive, metrics.OutcomeOK)
	log.WithField("insights", len(result.Insights)).Info("Comprehensive report generated")
	return doc, nil
}

// fault converts a composition failure into an {error, timestamp} document.
func (p *Pipeline) fault(err error) report.Document {
	p.log(ReportComprehensive).WithError(err).Error("Error generating comprehensive report")
	p.metrics.ReportGenerated(ReportComprehensive, metrics.OutcomeFailed)
	return report.FaultDocument(err.Error(), p.now())
}
