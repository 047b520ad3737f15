package report

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a set of segment durations in milliseconds.
type Stats struct {
	Count    int     `yaml:"count" json:"count"`
	SumMs    float64 `yaml:"sum_ms" json:"sum_ms"`
	MeanMs   float64 `yaml:"mean_ms" json:"mean_ms"`
	StdDevMs float64 `yaml:"stddev_ms" json:"stddev_ms"`
	MinMs    float64 `yaml:"min_ms" json:"min_ms"`
	MedianMs float64 `yaml:"median_ms" json:"median_ms"`
	MaxMs    float64 `yaml:"max_ms" json:"max_ms"`
}

// Summarize computes duration statistics. An empty input yields zero Stats
// and a single value has zero standard deviation.
func Summarize(durations []float64) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	sorted := slices.Clone(durations)
	slices.Sort(sorted)

	s := Stats{
		Count:    len(sorted),
		SumMs:    floats.Sum(sorted),
		MeanMs:   stat.Mean(sorted, nil),
		MinMs:    floats.Min(sorted),
		MedianMs: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		MaxMs:    floats.Max(sorted),
	}
	if len(sorted) > 1 {
		s.StdDevMs = stat.StdDev(sorted, nil)
	}
	return s
}
