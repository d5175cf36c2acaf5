package pipeline

import (
	"context"
	"fmt"

	"github.com/TobiSchelling/bizpulse/internal/metrics"
	"github.com/TobiSchelling/bizpulse/internal/normalize"
	"github.com/TobiSchelling/bizpulse/internal/report"
	"github.com/TobiSchelling/bizpulse/internal/source"
	"github.com/TobiSchelling/bizpulse/internal/stats"
)

const (
	supportPeriodDays = 7
	inboxLimit        = 10
	supportImportance = 0.8
)

var supportTags = []string{tagAnalysis, "support-metrics", "weekly-report"}

// ResponseTimes summarizes first-reply times in hours.
type ResponseTimes struct {
	Count       int     `json:"count"`
	AvgHours    float64 `json:"avg_hours"`
	MedianHours float64 `json:"median_hours"`
	MinHours    float64 `json:"min_hours"`
	MaxHours    float64 `json:"max_hours"`
}

// SupportMetrics are the computed support values.
type SupportMetrics struct {
	TotalTickets   int
	UrgentTickets  int
	UrgencyRate    float64
	InboxCount     int
	ResponseTimes  ResponseTimes
	DailyBreakdown map[string]int
}

// SupportAnalysis reports ticket volume, urgency and response times for the
// last seven days. With no tickets it returns {"error": "No ticket data"}
// and stores nothing.
func (p *Pipeline) SupportAnalysis(ctx context.Context) (report.Document, error) {
	doc, _, err := p.supportAnalysis(ctx)
	return doc, err
}

func (p *Pipeline) supportAnalysis(ctx context.Context) (report.Document, *SupportMetrics, error) {
	log := p.log(ReportSupport)
	log.Info("Analyzing support metrics...")

	now := p.now()
	tickets, err := p.deps.Tickets.Search(ctx, source.TicketFilter{
		Status:       "active",
		CreatedAfter: now.AddDate(0, 0, -supportPeriodDays),
	})
	if err != nil {
		return report.Document{}, nil, fmt.Errorf("searching tickets: %w", err)
	}

	inboxes, err := p.deps.Tickets.SearchInboxes(ctx, p.inboxQuery, inboxLimit)
	if err != nil {
		return report.Document{}, nil, fmt.Errorf("searching inboxes: %w", err)
	}

	if len(tickets) == 0 {
		log.Warn("No ticket data available")
		p.metrics.ReportGenerated(ReportSupport, metrics.OutcomeEmpty)
		return report.ErrorDocument(ErrNoTicketData), nil, nil
	}

	m := computeSupportMetrics(tickets, len(inboxes))
	doc := report.NewBuilder(now).
		Set("period_days", supportPeriodDays).
		Set("total_tickets", m.TotalTickets).
		Set("urgent_tickets", m.UrgentTickets).
		Set("urgency_rate", m.UrgencyRate).
		Set("inbox_count", m.InboxCount).
		Set("response_times", m.ResponseTimes).
		Set("daily_breakdown", m.DailyBreakdown).
		Finalize()

	if err := p.store(ctx, ReportSupport, doc, supportTags, supportImportance); err != nil {
		p.metrics.ReportGenerated(ReportSupport, metrics.OutcomeFailed)
		return report.Document{}, nil, err
	}

	p.metrics.ReportGenerated(ReportSupport, metrics.OutcomeOK)
	p.metrics.ObserveUrgencyRate(m.UrgencyRate)
	log.WithFields(map[string]any{
		"tickets": m.TotalTickets,
		"urgent":  m.UrgentTickets,
	}).Infof("Analysis complete: %d tickets, %d urgent", m.TotalTickets, m.UrgentTickets)
	return doc, &m, nil
}

func computeSupportMetrics(tickets []source.TicketRecord, inboxCount int) SupportMetrics {
	urgent := normalize.CountUrgent(tickets)
	summary := stats.Summarize(normalize.ResponseHours(tickets))

	return SupportMetrics{
		TotalTickets:  len(tickets),
		UrgentTickets: urgent,
		UrgencyRate:   stats.Rate(urgent, len(tickets)),
		InboxCount:    inboxCount,
		ResponseTimes: ResponseTimes{
			Count:       summary.Count,
			AvgHours:    summary.Avg,
			MedianHours: summary.Median,
			MinHours:    summary.Min,
			MaxHours:    summary.Max,
		},
		DailyBreakdown: normalize.DayOfWeekBucket(tickets),
	}
}
