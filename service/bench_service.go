package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ludo-technologies/refscan/domain"
	"github.com/ludo-technologies/refscan/internal/bench"
	"github.com/ludo-technologies/refscan/internal/config"
	"github.com/ludo-technologies/refscan/internal/version"
)

// BenchServiceImpl implements domain.BenchService. It times the before and
// after variants sequentially in fresh processes so neither variant warms
// caches for the other.
type BenchServiceImpl struct {
	cfg      *config.Config
	runner   bench.Runner
	progress domain.ProgressManager
}

// NewBenchService creates a benchmark service using a real process runner
func NewBenchService(cfg *config.Config) *BenchServiceImpl {
	return &BenchServiceImpl{
		cfg:      cfg,
		runner:   bench.NewProcessRunner(),
		progress: &NoOpProgressManager{},
	}
}

// NewBenchServiceWithRunner creates a benchmark service with a custom runner
func NewBenchServiceWithRunner(cfg *config.Config, runner bench.Runner) *BenchServiceImpl {
	return &BenchServiceImpl{
		cfg:      cfg,
		runner:   runner,
		progress: &NoOpProgressManager{},
	}
}

// SetProgressManager replaces the progress manager used during timing runs
func (s *BenchServiceImpl) SetProgressManager(pm domain.ProgressManager) {
	s.progress = pm
}

// Benchmark times both variants sequentially and classifies the result
func (s *BenchServiceImpl) Benchmark(ctx context.Context, req domain.BenchmarkRequest) (*domain.BenchmarkResult, error) {
	if len(req.BeforeCommand) == 0 || len(req.AfterCommand) == 0 {
		return nil, domain.NewValidationError("both a before and an after command are required")
	}
	if err := bench.LookupExecutable(req.BeforeCommand); err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("before command: %v", err))
	}
	if err := bench.LookupExecutable(req.AfterCommand); err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("after command: %v", err))
	}

	reps := s.cfg.Benchmark.Repetitions
	if req.Repetitions > 0 {
		reps = req.Repetitions
	}

	beforeArgv := appendWorkload(req.BeforeCommand, req.Workload)
	afterArgv := appendWorkload(req.AfterCommand, req.Workload)

	total := 2 * reps
	if s.cfg.Benchmark.Warmup {
		total += 2
	}
	task := s.progress.StartTask("Benchmarking", total)
	defer task.Complete()

	task.Describe("Timing before variant")
	before, err := s.timeVariant(ctx, beforeArgv, reps, task)
	if err != nil {
		return nil, domain.NewBenchError("before variant failed", err)
	}
	task.Describe("Timing after variant")
	after, err := s.timeVariant(ctx, afterArgv, reps, task)
	if err != nil {
		return nil, domain.NewBenchError("after variant failed", err)
	}

	result := &domain.BenchmarkResult{
		Before:      before,
		After:       after,
		SampleCount: reps,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version.GetVersion(),
	}
	if before.Median > 0 {
		result.PercentChange = float64(after.Median-before.Median) / float64(before.Median) * 100
	}
	s.classify(result)

	return result, nil
}

// timeVariant runs one warmup plus reps timed repetitions of argv, each in a
// fresh process with its own timeout
func (s *BenchServiceImpl) timeVariant(ctx context.Context, argv []string, reps int, task domain.TaskProgress) (domain.VariantTiming, error) {
	var timing domain.VariantTiming

	// The warmup run is discarded so filesystem and interpreter startup
	// caches affect both variants equally
	if s.cfg.Benchmark.Warmup {
		if _, err := s.runOnce(ctx, argv); err != nil {
			return timing, fmt.Errorf("warmup run: %w", err)
		}
		task.Increment(1)
	}

	samples := make([]time.Duration, 0, reps)
	for i := 0; i < reps; i++ {
		elapsed, err := s.runOnce(ctx, argv)
		if err != nil {
			return timing, fmt.Errorf("repetition %d: %w", i+1, err)
		}
		samples = append(samples, elapsed)
		task.Increment(1)
	}

	timing.Samples = samples
	timing.Median = bench.Median(samples)
	timing.Min, timing.Max = bench.MinMax(samples)
	timing.Spread = bench.Spread(samples)
	return timing, nil
}

func (s *BenchServiceImpl) runOnce(ctx context.Context, argv []string) (time.Duration, error) {
	timeout := time.Duration(s.cfg.Benchmark.TimeoutSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.runner.Run(runCtx, argv)
}

// classify derives the verdict from medians, sample counts and spread
func (s *BenchServiceImpl) classify(result *domain.BenchmarkResult) {
	minSamples := s.cfg.Benchmark.MinSamples
	noiseCutoff := s.cfg.Benchmark.NoiseCutoff
	threshold := s.cfg.Benchmark.RegressionThreshold

	if result.SampleCount < minSamples {
		result.Verdict = domain.BenchInconclusive
		result.Confidence = fmt.Sprintf("only %d samples collected, %d required for a verdict",
			result.SampleCount, minSamples)
		return
	}

	if result.Before.Spread > noiseCutoff || result.After.Spread > noiseCutoff {
		result.Verdict = domain.BenchInconclusive
		result.Confidence = fmt.Sprintf("sample spread %.0f%%/%.0f%% exceeds the %.0f%% noise cutoff, measurements are too noisy to classify",
			result.Before.Spread*100, result.After.Spread*100, noiseCutoff*100)
		return
	}

	regressionBound := time.Duration(float64(result.Before.Median) * (1 + threshold))
	switch {
	case result.After.Median > regressionBound:
		result.Verdict = domain.BenchRegression
		result.Regression = true
	case result.After.Median < result.Before.Median:
		result.Verdict = domain.BenchImprovement
	default:
		result.Verdict = domain.BenchWithinThreshold
	}
}

func appendWorkload(argv []string, workload string) []string {
	out := make([]string, 0, len(argv)+1)
	out = append(out, argv...)
	if workload != "" {
		out = append(out, workload)
	}
	return out
}
