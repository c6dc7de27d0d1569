package app

import (
	"context"
	"io"

	"github.com/ludo-technologies/refscan/domain"
)

// CompareRequest describes one snapshot comparison run. Exactly one of the
// path pair or the directory pair must be set; directories are analyzed on
// the fly before diffing.
type CompareRequest struct {
	BeforeSnapshotPath string
	AfterSnapshotPath  string

	BeforeDir string
	AfterDir  string

	OutputFormat domain.OutputFormat
	OutputWriter io.Writer
}

// ComparisonOutputWriter renders a comparison result in one of the supported
// output formats
type ComparisonOutputWriter interface {
	WriteComparison(result *domain.ComparisonResult, format domain.OutputFormat, writer io.Writer) error
}

// LintComparer classifies findings between two runs as fixed or introduced
type LintComparer func(before, after []domain.LintFinding) *domain.LintComparison

// CompareUseCase orchestrates the snapshot comparison workflow
type CompareUseCase struct {
	analyzer    domain.AnalyzeService
	comparer    domain.CompareService
	store       domain.SnapshotStore
	formatter   ComparisonOutputWriter
	lintCompare LintComparer
}

// NewCompareUseCase creates a new compare use case
func NewCompareUseCase(analyzer domain.AnalyzeService, comparer domain.CompareService, store domain.SnapshotStore, formatter ComparisonOutputWriter, lintCompare LintComparer) *CompareUseCase {
	return &CompareUseCase{
		analyzer:    analyzer,
		comparer:    comparer,
		store:       store,
		formatter:   formatter,
		lintCompare: lintCompare,
	}
}

// Execute resolves both snapshots, diffs them and renders the result
func (uc *CompareUseCase) Execute(ctx context.Context, req CompareRequest) (*domain.ComparisonResult, error) {
	before, beforeFindings, err := uc.resolveSnapshot(ctx, req.BeforeSnapshotPath, req.BeforeDir, "before")
	if err != nil {
		return nil, err
	}
	after, afterFindings, err := uc.resolveSnapshot(ctx, req.AfterSnapshotPath, req.AfterDir, "after")
	if err != nil {
		return nil, err
	}

	result, err := uc.comparer.Compare(before, after)
	if err != nil {
		return nil, err
	}

	// Lint comparison is only possible when both sides were analyzed in
	// this run; persisted snapshots carry metrics, not findings
	if uc.lintCompare != nil && beforeFindings != nil && afterFindings != nil {
		result.Lint = uc.lintCompare(beforeFindings, afterFindings)
	}

	if req.OutputWriter != nil {
		format := req.OutputFormat
		if format == "" {
			format = domain.OutputFormatText
		}
		if err := uc.formatter.WriteComparison(result, format, req.OutputWriter); err != nil {
			return nil, domain.NewOutputError("failed to write comparison report", err)
		}
	}

	return result, nil
}

// resolveSnapshot loads a persisted snapshot or analyzes a directory
func (uc *CompareUseCase) resolveSnapshot(ctx context.Context, snapshotPath, dir, side string) (*domain.MetricSnapshot, []domain.LintFinding, error) {
	switch {
	case snapshotPath != "" && dir != "":
		return nil, nil, domain.NewValidationError("specify either a " + side + " snapshot or a " + side + " directory, not both")
	case snapshotPath != "":
		snapshot, err := uc.store.Load(snapshotPath)
		if err != nil {
			return nil, nil, err
		}
		return snapshot, nil, nil
	case dir != "":
		response, err := uc.analyzer.Analyze(ctx, domain.AnalyzeRequest{
			Paths:     []string{dir},
			Recursive: true,
		})
		if err != nil {
			return nil, nil, err
		}
		return response.Snapshot, response.Findings, nil
	default:
		return nil, nil, domain.NewValidationError("a " + side + " snapshot or directory is required")
	}
}
