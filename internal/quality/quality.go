package quality

const maxScore = 100

// Factor and recommendation texts.
const (
	FactorExcellentCoverage = "Excellent file coverage"
	FactorGoodCoverage      = "Good file coverage"
	FactorLimitedCoverage   = "Limited file coverage"
	FactorWordPressOK       = "WordPress API accessible"
	FactorWordPressIssues   = "WordPress API issues"
	FactorBusinessHours     = "Data accessed during business hours"
	FactorOffHours          = "Data accessed outside business hours"

	RecommendFullSync       = "Run full data synchronization to improve file coverage"
	RecommendEDDSync        = "Sync EDD database tables - no files found"
	RecommendAPIServiceSync = "Sync API service data - missing key metrics"
	RecommendConnectivity   = "Check WordPress API connectivity and credentials"
	RecommendNone           = "Data quality is good - continue monitoring"
)

// Inventory source names with dedicated recommendations.
const (
	SourceEDD        = "edd"
	SourceAPIService = "api_service"
)

// Input carries the signals the score is computed from. WordPressUsers
// doubles as the connectivity signal: a site whose users cannot be listed
// scores as unreachable.
type Input struct {
	FileCounts     map[string]int
	WordPressUsers int
	HourOfDay      int
}

// Assessment is the scored result.
type Assessment struct {
	OverallScore    int      `json:"overall_score"`
	Factors         []string `json:"quality_factors"`
	Recommendations []string `json:"recommendations"`
}

// Score applies the additive scoring rules and caps the sum at 100.
func Score(in Input) Assessment {
	var score int
	var factors []string

	total := totalFiles(in.FileCounts)
	switch {
	case total > 50:
		score += 40
		factors = append(factors, FactorExcellentCoverage)
	case total > 20:
		score += 25
		factors = append(factors, FactorGoodCoverage)
	default:
		score += 10
		factors = append(factors, FactorLimitedCoverage)
	}

	if in.WordPressUsers > 0 {
		score += 30
		factors = append(factors, FactorWordPressOK)
	} else {
		factors = append(factors, FactorWordPressIssues)
	}

	if BusinessHours(in.HourOfDay) {
		score += 20
		factors = append(factors, FactorBusinessHours)
	} else {
		score += 10
		factors = append(factors, FactorOffHours)
	}

	return Assessment{
		OverallScore:    min(score, maxScore),
		Factors:         factors,
		Recommendations: Recommend(in.FileCounts, in.WordPressUsers),
	}
}

// BusinessHours reports whether hour lies in [6, 22].
func BusinessHours(hour int) bool {
	return hour >= 6 && hour <= 22
}

// Recommend lists follow-up actions in fixed rule order. The fallback is
// returned only when no rule fires. Missing sources count as zero files.
func Recommend(fileCounts map[string]int, wpUsers int) []string {
	var recs []string

	if totalFiles(fileCounts) < 20 {
		recs = append(recs, RecommendFullSync)
	}
	if fileCounts[SourceEDD] == 0 {
		recs = append(recs, RecommendEDDSync)
	}
	if fileCounts[SourceAPIService] == 0 {
		recs = append(recs, RecommendAPIServiceSync)
	}
	if wpUsers == 0 {
		recs = append(recs, RecommendConnectivity)
	}

	if len(recs) == 0 {
		recs = append(recs, RecommendNone)
	}
	return recs
}

func totalFiles(counts map[string]int) int {
	var total int
	for _, n := range counts {
		total += n
	}
	return total
}
