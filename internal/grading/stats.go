package grading

import (
	"math"
	"sort"
)

// histogramRanges are the fixed score bands reported for an exam.
var histogramRanges = []string{"0-19", "20-39", "40-59", "60-79", "80-100"}

// ScoreBucket is one histogram band.
type ScoreBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// Statistics summarizes the combined percentages of every submission on
// an exam. Snapshotted onto the exam at finalization.
type Statistics struct {
	TotalStudents int           `json:"total_students"`
	Mean          float64       `json:"mean"`
	Min           float64       `json:"min"`
	Max           float64       `json:"max"`
	Median        float64       `json:"median"`
	StdDev        float64       `json:"std_dev"`
	Histogram     []ScoreBucket `json:"histogram"`
}

// Aggregate computes class statistics over combined percentages.
// Standard deviation is the population form.
func Aggregate(percentages []float64) Statistics {
	st := Statistics{TotalStudents: len(percentages), Histogram: histogram(percentages)}
	if len(percentages) == 0 {
		return st
	}
	sorted := append([]float64(nil), percentages...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, p := range sorted {
		sum += p
	}
	mean := sum / float64(len(sorted))

	variance := 0.0
	for _, p := range sorted {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(sorted))

	st.Mean = Round2(mean)
	st.Min = Round2(sorted[0])
	st.Max = Round2(sorted[len(sorted)-1])
	st.Median = Round2(median(sorted))
	st.StdDev = Round2(math.Sqrt(variance))
	return st
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func histogram(percentages []float64) []ScoreBucket {
	buckets := make([]ScoreBucket, len(histogramRanges))
	for i, r := range histogramRanges {
		buckets[i] = ScoreBucket{Range: r}
	}
	for _, p := range percentages {
		switch {
		case p < 20:
			buckets[0].Count++
		case p < 40:
			buckets[1].Count++
		case p < 60:
			buckets[2].Count++
		case p < 80:
			buckets[3].Count++
		default:
			buckets[4].Count++
		}
	}
	return buckets
}
