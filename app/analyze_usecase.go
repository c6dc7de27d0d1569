package app

import (
	"context"
	"io"

	"github.com/ludo-technologies/refscan/domain"
)

// AnalyzeOutputWriter renders an analysis response in one of the supported
// output formats
type AnalyzeOutputWriter interface {
	WriteAnalyze(response *domain.AnalyzeResponse, format domain.OutputFormat, writer io.Writer) error
}

// AnalyzeUseCase orchestrates the snapshot analysis workflow: collect files,
// measure, optionally persist the snapshot, render the report.
type AnalyzeUseCase struct {
	service   domain.AnalyzeService
	store     domain.SnapshotStore
	formatter AnalyzeOutputWriter
}

// NewAnalyzeUseCase creates a new analyze use case
func NewAnalyzeUseCase(service domain.AnalyzeService, store domain.SnapshotStore, formatter AnalyzeOutputWriter) *AnalyzeUseCase {
	return &AnalyzeUseCase{
		service:   service,
		store:     store,
		formatter: formatter,
	}
}

// Execute performs the complete analysis workflow
func (uc *AnalyzeUseCase) Execute(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	if len(req.Paths) == 0 {
		return nil, domain.NewValidationError("at least one path is required")
	}
	if req.OutputFormat == "" {
		req.OutputFormat = domain.OutputFormatText
	}

	response, err := uc.service.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.SnapshotPath != "" {
		if err := uc.store.Save(req.SnapshotPath, response.Snapshot); err != nil {
			return nil, domain.NewOutputError("failed to persist snapshot", err)
		}
	}

	if req.OutputWriter != nil {
		if err := uc.formatter.WriteAnalyze(response, req.OutputFormat, req.OutputWriter); err != nil {
			return nil, domain.NewOutputError("failed to write analysis report", err)
		}
	}

	return response, nil
}
