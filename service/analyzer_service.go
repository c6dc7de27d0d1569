package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ludo-technologies/refscan/domain"
	"github.com/ludo-technologies/refscan/internal/analyzer"
	"github.com/ludo-technologies/refscan/internal/config"
	"github.com/ludo-technologies/refscan/internal/parser"
	"github.com/ludo-technologies/refscan/internal/version"
)

// AnalyzerService implements domain.AnalyzeService: it parses Python files,
// measures every function, runs the lint checkers and assembles an immutable
// metric snapshot
type AnalyzerService struct {
	cfg      *config.Config
	reader   domain.FileReader
	progress domain.ProgressManager

	// checkers overrides the default checker set when non-nil
	checkers []analyzer.Checker
}

// NewAnalyzerService creates a new analyzer service
func NewAnalyzerService(cfg *config.Config, reader domain.FileReader, progress domain.ProgressManager) *AnalyzerService {
	return &AnalyzerService{
		cfg:      cfg,
		reader:   reader,
		progress: progress,
	}
}

// fileResult carries everything measured from one parsed module
type fileResult struct {
	units    []domain.UnitMetrics
	coverage domain.DocCoverageRecord
	findings []domain.LintFinding
	warnings []string
}

// fileTask analyzes one Python file as an executable task
type fileTask struct {
	path    string
	service *AnalyzerService

	mu      *sync.Mutex
	results *[]fileResult
}

func (t *fileTask) Name() string    { return t.path }
func (t *fileTask) IsEnabled() bool { return true }

func (t *fileTask) Execute(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fileCtx := ctx
	if secs := t.service.cfg.Performance.UnitTimeoutSeconds; secs > 0 {
		var cancel context.CancelFunc
		fileCtx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
		defer cancel()
	}

	result, err := t.service.analyzeFile(fileCtx, t.path)
	timedOut := errors.Is(err, context.DeadlineExceeded) || fileCtx.Err() != nil
	if err != nil && timedOut && ctx.Err() == nil {
		// The file blew its own time budget while the run is still live:
		// record it as incomplete instead of failing the batch
		result = &fileResult{units: []domain.UnitMetrics{{
			Unit:   domain.SourceUnit{Name: "<module>", FilePath: t.path, StartLine: 1, EndLine: 1},
			Status: domain.UnitStatusIncomplete,
			Error:  "analysis timed out",
		}}}
		err = nil
	}
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	*t.results = append(*t.results, *result)
	t.mu.Unlock()
	return result, nil
}

// Analyze measures all units in the requested files and assembles a snapshot
func (s *AnalyzerService) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	includes := req.IncludePatterns
	if len(includes) == 0 {
		includes = s.cfg.Analysis.IncludePatterns
	}
	excludes := req.ExcludePatterns
	if len(excludes) == 0 {
		excludes = s.cfg.Analysis.ExcludePatterns
	}

	files, err := s.reader.CollectPythonFiles(req.Paths, req.Recursive, includes, excludes)
	if err != nil {
		return nil, domain.NewAnalysisError("failed to collect Python files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewValidationError("no Python files found in the specified paths")
	}

	var mu sync.Mutex
	results := make([]fileResult, 0, len(files))

	tasks := make([]domain.ExecutableTask, 0, len(files))
	for _, file := range files {
		tasks = append(tasks, &fileTask{
			path:    file,
			service: s,
			mu:      &mu,
			results: &results,
		})
	}

	executor := NewParallelExecutorWithProgress(&s.cfg.Performance, s.progress)
	execErr := executor.Execute(ctx, tasks)

	response := s.assemble(results, len(files))

	// Per-file failures become warnings; the rest of the run still counts
	if execErr != nil {
		if agg, ok := execErr.(*AggregatedError); ok {
			for _, taskErr := range agg.Errors {
				response.Warnings = append(response.Warnings, taskErr.Error())
				var de domain.DomainError
				switch {
				case ctx.Err() != nil:
					response.Summary.Incomplete++
				case errors.As(taskErr.Err, &de) && de.Code == domain.ErrCodeParseError:
					response.Summary.ParseErrors++
				}
			}
		} else {
			return nil, domain.NewAnalysisError("analysis failed", execErr)
		}
	}

	s.applyChecks(response)
	return response, nil
}

// analyzeFile parses one file and measures everything in it
func (s *AnalyzerService) analyzeFile(ctx context.Context, path string) (*fileResult, error) {
	source, err := s.reader.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ast, err := parser.ParseSourceCtx(ctx, path, source)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}

	result := &fileResult{}

	if s.cfg.Complexity.Enabled {
		for _, fn := range ast.Functions() {
			unit := domain.SourceUnit{
				Name:      fn.Name,
				FilePath:  path,
				StartLine: fn.Location.StartLine,
				EndLine:   fn.Location.EndLine,
			}
			result.units = append(result.units, domain.UnitMetrics{
				Unit: unit,
				Metrics: domain.MetricsRecord{
					Cyclomatic: analyzer.CalculateCyclomaticComplexity(fn),
					Cognitive:  analyzer.CalculateCognitiveComplexity(fn),
					Length:     fn.CodeLines,
					Nesting:    analyzer.CalculateNestingDepth(fn),
				},
				Status: domain.UnitStatusOK,
			})
		}
	}

	if s.cfg.Documentation.Enabled {
		result.coverage = analyzer.AnalyzeDocCoverage(path, ast)
	}

	checkers := s.checkers
	if checkers == nil {
		checkers = analyzer.DefaultCheckers(s.cfg)
	}
	for _, checker := range checkers {
		findings, err := checker.Run(ast)
		if err != nil {
			// A broken checker is skipped; the file's metrics and the
			// remaining checkers still count
			result.warnings = append(result.warnings,
				fmt.Sprintf("checker %s failed on %s: %v", checker.Name(), path, err))
			continue
		}
		result.findings = append(result.findings, findings...)
	}

	return result, nil
}

// assemble merges per-file results into a deterministic response
func (s *AnalyzerService) assemble(results []fileResult, filesAnalyzed int) *domain.AnalyzeResponse {
	snapshot := &domain.MetricSnapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		Units:         make(map[string]domain.UnitMetrics),
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Version:       version.GetVersion(),
	}

	var findings []domain.LintFinding
	var coverage []domain.DocCoverageRecord
	var warnings []string

	for _, result := range results {
		for _, um := range result.units {
			snapshot.Units[um.Unit.Key()] = um
		}
		if result.coverage.Module != "" {
			coverage = append(coverage, result.coverage)
		}
		findings = append(findings, result.findings...)
		warnings = append(warnings, result.warnings...)
	}
	sort.Strings(warnings)

	sort.Slice(coverage, func(i, j int) bool { return coverage[i].Module < coverage[j].Module })
	snapshot.DocCoverage = coverage

	// Findings from concurrent file tasks arrive in completion order;
	// sort so repeated runs emit an identical sequence
	domain.SortFindings(findings)

	minLevel := s.cfg.Lint.MinSeverityLevel()
	filtered := findings[:0]
	for _, f := range findings {
		if severityLevel(f.Severity) >= minLevel {
			filtered = append(filtered, f)
		}
	}
	findings = filtered

	response := &domain.AnalyzeResponse{
		Snapshot:    snapshot,
		Findings:    findings,
		Warnings:    warnings,
		GeneratedAt: snapshot.GeneratedAt,
		Version:     snapshot.Version,
	}
	response.Summary = s.summarize(snapshot, filesAnalyzed)
	return response
}

// severityLevel maps a severity tier to its comparison rank
func severityLevel(s domain.Severity) int {
	switch s {
	case domain.SeverityHigh:
		return 3
	case domain.SeverityMedium:
		return 2
	default:
		return 1
	}
}

// summarize computes aggregate statistics over the snapshot
func (s *AnalyzerService) summarize(snapshot *domain.MetricSnapshot, filesAnalyzed int) domain.AnalyzeSummary {
	summary := domain.AnalyzeSummary{
		FilesAnalyzed: filesAnalyzed,
		TotalUnits:    len(snapshot.Units),
	}

	var sumCyclomatic, sumCognitive int
	for _, key := range snapshot.SortedKeys() {
		um := snapshot.Units[key]
		if um.Status != domain.UnitStatusOK {
			if um.Status == domain.UnitStatusIncomplete {
				summary.Incomplete++
			}
			continue
		}
		m := um.Metrics

		sumCyclomatic += m.Cyclomatic
		sumCognitive += m.Cognitive
		if m.Cyclomatic > summary.MaxCyclomatic {
			summary.MaxCyclomatic = m.Cyclomatic
		}
		if m.Cognitive > summary.MaxCognitive {
			summary.MaxCognitive = m.Cognitive
		}
		if m.Nesting > summary.MaxNesting {
			summary.MaxNesting = m.Nesting
		}

		if s.cfg.Complexity.ExceedsCyclomatic(m.Cyclomatic) {
			summary.UnitsOverCyclomatic++
		}
		if s.cfg.Complexity.ExceedsCognitive(m.Cognitive) {
			summary.UnitsOverCognitive++
		}
		if m.Length > s.cfg.Complexity.MaxLength {
			summary.UnitsOverLength++
		}
		if m.Nesting > s.cfg.Complexity.MaxNesting {
			summary.UnitsOverNesting++
		}
	}

	if completed := snapshot.CompletedUnits(); completed > 0 {
		summary.AverageCyclomatic = float64(sumCyclomatic) / float64(completed)
		summary.AverageCognitive = float64(sumCognitive) / float64(completed)
	}

	return summary
}

// applyChecks evaluates project-level thresholds and the overall verdict
func (s *AnalyzerService) applyChecks(response *domain.AnalyzeResponse) {
	summary := &response.Summary

	if s.cfg.Documentation.Enabled {
		total := analyzer.MergeDocCoverage(response.Snapshot.DocCoverage)
		summary.Checks = append(summary.Checks,
			domain.ThresholdCheck{
				Metric:    "doc_coverage",
				Value:     total.DocCoverage(),
				Threshold: s.cfg.Documentation.MinDocCoverage,
				Passed:    total.DocCoverage() >= s.cfg.Documentation.MinDocCoverage,
			},
			domain.ThresholdCheck{
				Metric:    "type_coverage",
				Value:     total.TypeCoverage(),
				Threshold: s.cfg.Documentation.MinTypeCoverage,
				Passed:    total.TypeCoverage() >= s.cfg.Documentation.MinTypeCoverage,
			},
		)
	}

	passed := summary.UnitsOverCyclomatic == 0 &&
		summary.UnitsOverCognitive == 0 &&
		summary.UnitsOverLength == 0 &&
		summary.UnitsOverNesting == 0
	for _, check := range summary.Checks {
		if !check.Passed {
			passed = false
		}
	}
	for _, f := range response.Findings {
		if f.Severity == domain.SeverityHigh {
			passed = false
			break
		}
	}
	summary.Passed = passed
}
