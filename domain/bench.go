package domain

import (
	"context"
	"time"
)

// BenchVerdict classifies the outcome of a benchmark comparison
type BenchVerdict string

const (
	// BenchRegression means the after variant is significantly slower
	BenchRegression BenchVerdict = "regression"

	// BenchImprovement means the after variant is faster
	BenchImprovement BenchVerdict = "improvement"

	// BenchWithinThreshold means any slowdown is inside the configured
	// regression threshold
	BenchWithinThreshold BenchVerdict = "within_threshold"

	// BenchInconclusive means the measurement cannot support a verdict,
	// either because of too few samples or because repetition variance
	// exceeded the noise cutoff. Never silently treated as "no regression".
	BenchInconclusive BenchVerdict = "inconclusive"
)

// BenchmarkRequest describes two executable variants of the same workload
type BenchmarkRequest struct {
	// BeforeCommand and AfterCommand are argv vectors for each variant
	BeforeCommand []string
	AfterCommand  []string

	// Workload is the identifier appended to both commands
	Workload string

	// Repetitions overrides the configured repetition count when > 0
	Repetitions int

	OutputFormat OutputFormat
}

// VariantTiming holds the raw measurements for one variant
type VariantTiming struct {
	Samples  []time.Duration `json:"samples" yaml:"samples"`
	Median   time.Duration   `json:"median" yaml:"median"`
	Min      time.Duration   `json:"min" yaml:"min"`
	Max      time.Duration   `json:"max" yaml:"max"`

	// Spread is (max-min)/median, the relative dispersion used for the
	// noise cutoff
	Spread float64 `json:"spread" yaml:"spread"`
}

// BenchmarkResult is the outcome of timing both variants
type BenchmarkResult struct {
	Before VariantTiming `json:"before" yaml:"before"`
	After  VariantTiming `json:"after" yaml:"after"`

	SampleCount int `json:"sample_count" yaml:"sample_count"`

	// PercentChange of the after median relative to the before median
	PercentChange float64 `json:"percent_change" yaml:"percent_change"`

	// Regression is true iff the verdict is BenchRegression
	Regression bool         `json:"regression" yaml:"regression"`
	Verdict    BenchVerdict `json:"verdict" yaml:"verdict"`

	// Confidence explains inconclusive or borderline verdicts
	Confidence string `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// BenchService defines the core business logic for regression benchmarking
type BenchService interface {
	// Benchmark times both variants sequentially and classifies the result
	Benchmark(ctx context.Context, req BenchmarkRequest) (*BenchmarkResult, error)
}
