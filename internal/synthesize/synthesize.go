package synthesize

// Threshold rules, evaluated in this order.
const (
	UrgencyRateThreshold         = 0.15
	PublishingFrequencyThreshold = 0.3
	QualityScoreThreshold        = 70
)

// Insight and action texts.
const (
	InsightHighUrgency = "High urgent ticket rate indicates potential service issues"
	ActionHighUrgency  = "Review urgent ticket resolution process"
	InsightLowCadence  = "Low content publishing frequency may impact SEO"
	ActionLowCadence   = "Increase content production schedule"
	InsightLowQuality  = "Data quality issues detected requiring attention"
	ActionLowQuality   = "Run comprehensive data synchronization"
	InsightNominal     = "All metrics within normal parameters"
	ActionNominal      = "Continue current monitoring schedule"
)

// Metrics are the computed values the rules inspect.
type Metrics struct {
	UrgencyRate         float64
	PublishingFrequency float64
	QualityScore        int
}

// Result holds paired insights and actions. Neither list is ever empty.
type Result struct {
	Insights []string
	Actions  []string
}

type rule struct {
	fires   func(Metrics) bool
	insight string
	action  string
}

var rules = []rule{
	{
		fires:   func(m Metrics) bool { return m.UrgencyRate > UrgencyRateThreshold },
		insight: InsightHighUrgency,
		action:  ActionHighUrgency,
	},
	{
		fires:   func(m Metrics) bool { return m.PublishingFrequency < PublishingFrequencyThreshold },
		insight: InsightLowCadence,
		action:  ActionLowCadence,
	},
	{
		fires:   func(m Metrics) bool { return m.QualityScore < QualityScoreThreshold },
		insight: InsightLowQuality,
		action:  ActionLowQuality,
	},
}

// Synthesize turns metrics into insights and recommended actions.
func Synthesize(m Metrics) Result {
	var r Result
	for _, rl := range rules {
		if rl.fires(m) {
			r.Insights = append(r.Insights, rl.insight)
			r.Actions = append(r.Actions, rl.action)
		}
	}

	if len(r.Insights) == 0 {
		r.Insights = []string{InsightNominal}
		r.Actions = []string{ActionNominal}
	}
	return r
}
