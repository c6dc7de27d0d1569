package bench

import (
	"sort"
	"time"
)

// Median returns the median of the samples. For an even count it averages
// the two middle values. An empty slice yields 0.
func Median(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// MinMax returns the smallest and largest sample
func MinMax(samples []time.Duration) (time.Duration, time.Duration) {
	if len(samples) == 0 {
		return 0, 0
	}

	min, max := samples[0], samples[0]
	for _, s := range samples[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	return min, max
}

// Spread returns (max - min) / median, a cheap noise indicator for a sample
// set. A zero median yields 0.
func Spread(samples []time.Duration) float64 {
	median := Median(samples)
	if median == 0 {
		return 0
	}

	min, max := MinMax(samples)
	return float64(max-min) / float64(median)
}
