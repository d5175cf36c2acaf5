package quality

import (
	"slices"
	"testing"
)

func TestScoreScenario(t *testing.T) {
	counts := map[string]int{"edd": 0, "api_service": 5, "reviews": 10}
	a := Score(Input{FileCounts: counts, WordPressUsers: 3, HourOfDay: 14})

	if a.OverallScore != 60 {
		t.Errorf("expected score 60, got %d", a.OverallScore)
	}
	wantFactors := []string{FactorLimitedCoverage, FactorWordPressOK, FactorBusinessHours}
	if !slices.Equal(a.Factors, wantFactors) {
		t.Errorf("expected factors %v, got %v", wantFactors, a.Factors)
	}

	if !slices.Contains(a.Recommendations, RecommendEDDSync) {
		t.Error("expected EDD recommendation")
	}
	for _, unwanted := range []string{RecommendAPIServiceSync, RecommendConnectivity, RecommendNone} {
		if slices.Contains(a.Recommendations, unwanted) {
			t.Errorf("unexpected recommendation %q", unwanted)
		}
	}
}

func TestScoreCoverageTiers(t *testing.T) {
	tests := []struct {
		files  int
		points int
		factor string
	}{
		{0, 10, FactorLimitedCoverage},
		{20, 10, FactorLimitedCoverage},
		{21, 25, FactorGoodCoverage},
		{50, 25, FactorGoodCoverage},
		{51, 40, FactorExcellentCoverage},
	}
	for _, tt := range tests {
		// Off hours and no WordPress users contribute a fixed 10 points.
		a := Score(Input{FileCounts: map[string]int{"reviews": tt.files}, HourOfDay: 3})
		if a.OverallScore != tt.points+10 {
			t.Errorf("files=%d: expected %d, got %d", tt.files, tt.points+10, a.OverallScore)
		}
		if a.Factors[0] != tt.factor {
			t.Errorf("files=%d: expected factor %q, got %q", tt.files, tt.factor, a.Factors[0])
		}
	}
}

func TestScoreBusinessHoursBoundaries(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		a := Score(Input{HourOfDay: hour})
		in := hour >= 6 && hour <= 22
		want := 20
		if in {
			want = 30
		}
		if a.OverallScore != want {
			t.Errorf("hour=%d: expected %d, got %d", hour, want, a.OverallScore)
		}
	}
}

func TestScoreMaximumIsCapped(t *testing.T) {
	a := Score(Input{FileCounts: map[string]int{"edd": 100}, WordPressUsers: 5, HourOfDay: 12})
	if a.OverallScore > 100 {
		t.Errorf("score %d exceeds 100", a.OverallScore)
	}
	if a.OverallScore != 90 {
		t.Errorf("expected 90, got %d", a.OverallScore)
	}
}

func TestScoreMonotonic(t *testing.T) {
	prev := -1
	for files := 0; files <= 120; files += 5 {
		s := Score(Input{FileCounts: map[string]int{"edd": files}, HourOfDay: 2}).OverallScore
		if s < prev {
			t.Fatalf("score decreased at files=%d: %d < %d", files, s, prev)
		}
		prev = s
	}

	prev = -1
	for users := 0; users <= 5; users++ {
		s := Score(Input{WordPressUsers: users, HourOfDay: 2}).OverallScore
		if s < prev {
			t.Fatalf("score decreased at users=%d", users)
		}
		prev = s
	}

	off := Score(Input{HourOfDay: 23}).OverallScore
	on := Score(Input{HourOfDay: 12}).OverallScore
	if on < off {
		t.Errorf("business hours scored lower (%d) than off hours (%d)", on, off)
	}
}

func TestRecommendFallbackOnlyWhenNothingFires(t *testing.T) {
	good := map[string]int{"edd": 10, "api_service": 10, "reviews": 5}
	recs := Recommend(good, 2)
	if !slices.Equal(recs, []string{RecommendNone}) {
		t.Errorf("expected only fallback, got %v", recs)
	}

	tests := []struct {
		name   string
		counts map[string]int
		users  int
	}{
		{"low total", map[string]int{"edd": 5, "api_service": 5}, 2},
		{"no edd", map[string]int{"edd": 0, "api_service": 30}, 2},
		{"missing edd key", map[string]int{"api_service": 30}, 2},
		{"no api service", map[string]int{"edd": 30, "api_service": 0}, 2},
		{"no users", good, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := Recommend(tt.counts, tt.users)
			if slices.Contains(recs, RecommendNone) {
				t.Errorf("fallback should not appear: %v", recs)
			}
			if len(recs) == 0 {
				t.Error("expected at least one recommendation")
			}
		})
	}
}

func TestRecommendOrder(t *testing.T) {
	recs := Recommend(map[string]int{}, 0)
	want := []string{RecommendFullSync, RecommendEDDSync, RecommendAPIServiceSync, RecommendConnectivity}
	if !slices.Equal(recs, want) {
		t.Errorf("expected %v, got %v", want, recs)
	}
}
