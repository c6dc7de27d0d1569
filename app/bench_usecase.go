package app

import (
	"context"
	"io"

	"github.com/ludo-technologies/refscan/domain"
)

// BenchmarkOutputWriter renders a benchmark result in one of the supported
// output formats
type BenchmarkOutputWriter interface {
	WriteBenchmark(result *domain.BenchmarkResult, format domain.OutputFormat, writer io.Writer) error
}

// BenchUseCase orchestrates the regression benchmark workflow
type BenchUseCase struct {
	service   domain.BenchService
	formatter BenchmarkOutputWriter
}

// NewBenchUseCase creates a new bench use case
func NewBenchUseCase(service domain.BenchService, formatter BenchmarkOutputWriter) *BenchUseCase {
	return &BenchUseCase{
		service:   service,
		formatter: formatter,
	}
}

// Execute times both variants and renders the verdict
func (uc *BenchUseCase) Execute(ctx context.Context, req domain.BenchmarkRequest, output io.Writer) (*domain.BenchmarkResult, error) {
	result, err := uc.service.Benchmark(ctx, req)
	if err != nil {
		return nil, err
	}

	if output != nil {
		format := req.OutputFormat
		if format == "" {
			format = domain.OutputFormatText
		}
		if err := uc.formatter.WriteBenchmark(result, format, output); err != nil {
			return nil, domain.NewOutputError("failed to write benchmark report", err)
		}
	}

	return result, nil
}
