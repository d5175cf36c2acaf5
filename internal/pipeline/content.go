package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/TobiSchelling/bizpulse/internal/metrics"
	"github.com/TobiSchelling/bizpulse/internal/normalize"
	"github.com/TobiSchelling/bizpulse/internal/report"
	"github.com/TobiSchelling/bizpulse/internal/source"
	"github.com/TobiSchelling/bizpulse/internal/stats"
)

const (
	contentPeriodDays = 30
	postsPerPage      = 100
	highlightCount    = 5
	contentImportance = 0.7
	unknownSiteName   = "Unknown"
)

var contentTags = []string{tagAnalysis, "wordpress", "content-performance"}

// SiteSummary is the site block of a content report.
type SiteSummary struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Users int    `json:"users"`
}

// ContentMetrics aggregates the analyzed posts.
type ContentMetrics struct {
	TotalPosts            int            `json:"total_posts"`
	AvgWordCount          float64        `json:"avg_word_count"`
	MedianWordCount       float64        `json:"median_word_count"`
	AvgContentScore       float64        `json:"avg_content_score"`
	PublishingFrequency   float64        `json:"publishing_frequency"`
	WordCountDistribution map[string]int `json:"word_count_distribution"`
}

// ContentAnalysis reports on posts published in the last thirty days.
// With no posts it returns {"error": "No post data"} and stores nothing.
func (p *Pipeline) ContentAnalysis(ctx context.Context) (report.Document, error) {
	doc, _, err := p.contentAnalysis(ctx)
	return doc, err
}

func (p *Pipeline) contentAnalysis(ctx context.Context) (report.Document, *ContentMetrics, error) {
	log := p.log(ReportContent)
	log.Info("Analyzing content performance...")

	site, err := p.deps.Content.GetSiteInfo(ctx)
	if err != nil {
		return report.Document{}, nil, fmt.Errorf("fetching site info: %w", err)
	}

	now := p.now()
	posts, err := p.deps.Content.QueryPosts(ctx, source.PostFilter{
		Status:  "publish",
		After:   now.AddDate(0, 0, -contentPeriodDays),
		PerPage: postsPerPage,
		OrderBy: "date",
		Order:   "desc",
	})
	if err != nil {
		return report.Document{}, nil, fmt.Errorf("querying posts: %w", err)
	}

	if len(posts) == 0 {
		log.Warn("No post data available")
		p.metrics.ReportGenerated(ReportContent, metrics.OutcomeEmpty)
		return report.ErrorDocument(ErrNoPostData), nil, nil
	}

	postMetrics := make([]normalize.PostMetric, 0, len(posts))
	for _, post := range posts {
		postMetrics = append(postMetrics, normalize.PostMetrics(post, now))
	}
	cm := computeContentMetrics(postMetrics)

	name := site.Name
	if name == "" {
		name = unknownSiteName
	}

	doc := report.NewBuilder(now).
		Set("site_info", SiteSummary{Name: name, URL: site.URL, Users: site.Users}).
		Set("content_metrics", cm).
		Set("top_performers", topPerformers(postMetrics)).
		Set("recent_posts", recentPosts(postMetrics)).
		Finalize()

	if err := p.store(ctx, ReportContent, doc, contentTags, contentImportance); err != nil {
		p.metrics.ReportGenerated(ReportContent, metrics.OutcomeFailed)
		return report.Document{}, nil, err
	}

	p.metrics.ReportGenerated(ReportContent, metrics.OutcomeOK)
	log.WithField("posts", cm.TotalPosts).Infof("Analysis complete: %d posts analyzed", cm.TotalPosts)
	return doc, &cm, nil
}

func computeContentMetrics(posts []normalize.PostMetric) ContentMetrics {
	words := make([]float64, 0, len(posts))
	scores := make([]float64, 0, len(posts))
	for _, pm := range posts {
		words = append(words, float64(pm.WordCount))
		scores = append(scores, pm.ContentScore)
	}
	wordSummary := stats.Summarize(words)

	return ContentMetrics{
		TotalPosts:            len(posts),
		AvgWordCount:          wordSummary.Avg,
		MedianWordCount:       wordSummary.Median,
		AvgContentScore:       stats.Summarize(scores).Avg,
		PublishingFrequency:   float64(len(posts)) / contentPeriodDays,
		WordCountDistribution: stats.Bucketize(words, stats.WordCountBuckets),
	}
}

// topPerformers returns the highest-scoring posts. Ties keep source order.
func topPerformers(posts []normalize.PostMetric) []normalize.PostMetric {
	sorted := append([]normalize.PostMetric(nil), posts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ContentScore > sorted[j].ContentScore
	})
	return head(sorted, highlightCount)
}

// recentPosts returns the most recently published posts.
func recentPosts(posts []normalize.PostMetric) []normalize.PostMetric {
	sorted := append([]normalize.PostMetric(nil), posts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DaysSincePublished < sorted[j].DaysSincePublished
	})
	return head(sorted, highlightCount)
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
