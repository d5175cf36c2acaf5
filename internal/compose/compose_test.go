package compose

import (
	"strings"
	"testing"
	"time"

	"github.com/TobiSchelling/bizpulse/internal/report"
)

var ts = time.Date(2026, 2, 6, 9, 0, 0, 0, time.UTC)

func TestMarkdownComprehensive(t *testing.T) {
	support := report.NewBuilder(ts).
		Set("total_tickets", 10).
		Set("urgency_rate", 0.2).
		Finalize()

	doc := report.NewBuilder(ts).
		Set("report_type", "comprehensive_business_intelligence").
		Set("executive_summary", map[string]any{"data_quality_score": 60, "support_urgency_rate": 0.2}).
		Set("detailed_analysis", report.NewBuilder(ts).
			Set("support_metrics", support).
			Set("content_performance", report.ErrorDocument("No post data")).
			Finalize()).
		Set("key_insights", []string{"High urgent ticket rate indicates potential service issues"}).
		Set("action_items", []string{"Review urgent ticket resolution process"}).
		Finalize()

	md, err := Markdown("Business Report", doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"# Business Report",
		"_Generated 2026-02-06T09:00:00Z_",
		"## Overview",
		"- **Report Type:** comprehensive_business_intelligence",
		"## Executive Summary",
		"- **Data Quality Score:** 60",
		"- **Support Urgency Rate:** 0.2",
		"### Support Metrics",
		"- **Error:** No post data",
		"## Key Insights\n\n- High urgent ticket rate",
		"## Action Items\n\n- Review urgent ticket resolution process",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected markdown to contain %q\n%s", want, md)
		}
	}

	if strings.Index(md, "## Key Insights") < strings.Index(md, "## Detailed Analysis") {
		t.Error("expected insights after the detailed analysis")
	}
}

func TestMarkdownErrorDocument(t *testing.T) {
	md, err := Markdown("Support Metrics", report.FaultDocument("source unavailable", ts))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(md, "> **Error:** source unavailable") {
		t.Errorf("expected error callout, got:\n%s", md)
	}
}

func TestMarkdownListOfDocuments(t *testing.T) {
	doc := report.NewBuilder(ts).
		Set("top_performers", []map[string]any{{"title": "Big Post", "content_score": 12.5}}).
		Set("recent_posts", []string{}).
		Finalize()

	md, err := Markdown("Content", doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(md, "- **Big Post** - content_score: 12.5") {
		t.Errorf("expected inline post, got:\n%s", md)
	}
	if !strings.Contains(md, "## Recent Posts\n\n_None._") {
		t.Errorf("expected empty list marker, got:\n%s", md)
	}
}

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"key_insights": "Key Insights",
		"timestamp":    "Timestamp",
		"api_service":  "Api Service",
		"":             "",
		"trailing_":    "Trailing ",
	}
	for in, want := range tests {
		if got := Humanize(in); got != want {
			t.Errorf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}
