package stats

import (
	"math"
	"sort"
)

// Summary holds descriptive statistics for a sequence of values.
type Summary struct {
	Count  int     `json:"count"`
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Bucket is a named half-open interval [Lower, Upper).
type Bucket struct {
	Name  string
	Lower float64
	Upper float64
}

// WordCountBuckets classifies posts by length.
var WordCountBuckets = []Bucket{
	{Name: "short", Lower: 0, Upper: 300},
	{Name: "medium", Lower: 300, Upper: 1000},
	{Name: "long", Lower: 1000, Upper: math.Inf(1)},
}

// Summarize computes count, mean, median, min and max.
// An empty input yields the zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return Summary{
		Count:  len(sorted),
		Avg:    sum / float64(len(sorted)),
		Median: median(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Bucketize counts values per bucket. Every bucket name is present in the
// result; values that fall in no bucket are ignored.
func Bucketize(values []float64, buckets []Bucket) map[string]int {
	counts := make(map[string]int, len(buckets))
	for _, b := range buckets {
		counts[b.Name] = 0
	}
	for _, v := range values {
		for _, b := range buckets {
			if v >= b.Lower && v < b.Upper {
				counts[b.Name]++
				break
			}
		}
	}
	return counts
}

// Rate returns successes/total, or 0 when total is 0.
func Rate(successes, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(successes) / float64(total)
}
