package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/refscan/domain"
)

// OutputFormatterImpl renders analysis, comparison and benchmark results in
// the supported output formats. All formats iterate units in sorted key
// order so repeated runs over unchanged input are byte-identical.
type OutputFormatterImpl struct {
	sortBy domain.SortCriteria
}

// NewOutputFormatter creates a formatter that lists units in key order
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{sortBy: domain.SortByKey}
}

// NewOutputFormatterWithSort creates a formatter with a unit sort criteria
func NewOutputFormatterWithSort(sortBy domain.SortCriteria) *OutputFormatterImpl {
	return &OutputFormatterImpl{sortBy: sortBy}
}

// WriteJSON writes data as indented JSON to the writer
func WriteJSON(writer io.Writer, data any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data any) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// WriteAnalyze writes the analysis response in the specified format
func (f *OutputFormatterImpl) WriteAnalyze(response *domain.AnalyzeResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.writeAnalyzeCSV(response, writer)
	case domain.OutputFormatText:
		return f.writeAnalyzeText(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// WriteComparison writes the comparison result in the specified format
func (f *OutputFormatterImpl) WriteComparison(result *domain.ComparisonResult, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, result)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, result)
	case domain.OutputFormatCSV:
		return f.writeComparisonCSV(result, writer)
	case domain.OutputFormatText:
		return f.writeComparisonText(result, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// WriteBenchmark writes the benchmark result in the specified format
func (f *OutputFormatterImpl) WriteBenchmark(result *domain.BenchmarkResult, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, result)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, result)
	case domain.OutputFormatText:
		return f.writeBenchmarkText(result, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// writeAnalyzeText writes the analysis response as plain text
func (f *OutputFormatterImpl) writeAnalyzeText(response *domain.AnalyzeResponse, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== Refactoring Validation Report ===\n\n")
	fmt.Fprintf(writer, "Generated: %s\n", response.GeneratedAt)
	fmt.Fprintf(writer, "Version: %s\n\n", response.Version)

	summary := response.Summary
	fmt.Fprintf(writer, "Summary:\n")
	fmt.Fprintf(writer, "  Files analyzed: %d\n", summary.FilesAnalyzed)
	fmt.Fprintf(writer, "  Total units: %d\n", summary.TotalUnits)
	if summary.ParseErrors > 0 {
		fmt.Fprintf(writer, "  Parse errors: %d\n", summary.ParseErrors)
	}
	fmt.Fprintf(writer, "  Average cyclomatic: %.2f\n", summary.AverageCyclomatic)
	fmt.Fprintf(writer, "  Max cyclomatic: %d\n", summary.MaxCyclomatic)
	fmt.Fprintf(writer, "  Average cognitive: %.2f\n", summary.AverageCognitive)
	fmt.Fprintf(writer, "  Max cognitive: %d\n", summary.MaxCognitive)
	fmt.Fprintf(writer, "  Max nesting: %d\n", summary.MaxNesting)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "Threshold Violations:\n")
	fmt.Fprintf(writer, "  Over cyclomatic: %d\n", summary.UnitsOverCyclomatic)
	fmt.Fprintf(writer, "  Over cognitive: %d\n", summary.UnitsOverCognitive)
	fmt.Fprintf(writer, "  Over length: %d\n", summary.UnitsOverLength)
	fmt.Fprintf(writer, "  Over nesting: %d\n", summary.UnitsOverNesting)
	fmt.Fprintf(writer, "\n")

	if len(summary.Checks) > 0 {
		fmt.Fprintf(writer, "Project Checks:\n")
		for _, check := range summary.Checks {
			status := "PASS"
			if !check.Passed {
				status = "FAIL"
			}
			fmt.Fprintf(writer, "  %s: %.1f%% (required %.1f%%) [%s]\n",
				check.Metric, check.Value*100, check.Threshold*100, status)
		}
		fmt.Fprintf(writer, "\n")
	}

	if response.Snapshot != nil && len(response.Snapshot.Units) > 0 {
		fmt.Fprintf(writer, "Units:\n")
		for _, key := range response.Snapshot.KeysSortedBy(f.sortBy) {
			um := response.Snapshot.Units[key]
			if um.Status != domain.UnitStatusOK {
				fmt.Fprintf(writer, "  %s: %s (%s)\n", key, um.Status, um.Error)
				continue
			}
			m := um.Metrics
			fmt.Fprintf(writer, "  %s: cyclomatic=%d cognitive=%d length=%d nesting=%d\n",
				key, m.Cyclomatic, m.Cognitive, m.Length, m.Nesting)
		}
		fmt.Fprintf(writer, "\n")
	}

	if len(response.Findings) > 0 {
		fmt.Fprintf(writer, "Findings:\n")
		for _, finding := range response.Findings {
			fmt.Fprintf(writer, "  [%s] %s:%d %s: %s\n",
				finding.Severity, finding.Location.FilePath, finding.Location.StartLine,
				finding.Rule, finding.Message)
		}
		fmt.Fprintf(writer, "\n")
	}

	writeNotes(writer, response.Warnings, response.Errors)

	verdict := "PASSED"
	if !summary.Passed {
		verdict = "FAILED"
	}
	fmt.Fprintf(writer, "Result: %s\n", verdict)
	return nil
}

// writeAnalyzeCSV writes one row per unit plus metric columns
func (f *OutputFormatterImpl) writeAnalyzeCSV(response *domain.AnalyzeResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write([]string{"key", "file", "start_line", "end_line", "status", "cyclomatic", "cognitive", "length", "nesting"}); err != nil {
		return err
	}
	if response.Snapshot != nil {
		for _, key := range response.Snapshot.KeysSortedBy(f.sortBy) {
			um := response.Snapshot.Units[key]
			row := []string{
				key,
				um.Unit.FilePath,
				strconv.Itoa(um.Unit.StartLine),
				strconv.Itoa(um.Unit.EndLine),
				string(um.Status),
				strconv.Itoa(um.Metrics.Cyclomatic),
				strconv.Itoa(um.Metrics.Cognitive),
				strconv.Itoa(um.Metrics.Length),
				strconv.Itoa(um.Metrics.Nesting),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// writeComparisonText writes the comparison result as plain text
func (f *OutputFormatterImpl) writeComparisonText(result *domain.ComparisonResult, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== Snapshot Comparison ===\n\n")
	fmt.Fprintf(writer, "Generated: %s\n", result.GeneratedAt)
	fmt.Fprintf(writer, "Version: %s\n\n", result.Version)

	summary := result.Summary
	fmt.Fprintf(writer, "Summary:\n")
	fmt.Fprintf(writer, "  Compared units: %d\n", summary.ComparedUnits)
	fmt.Fprintf(writer, "  New units: %d\n", summary.NewUnits)
	fmt.Fprintf(writer, "  Removed units: %d\n", summary.RemovedUnits)
	fmt.Fprintf(writer, "  Improved units: %d\n", summary.ImprovedUnits)
	fmt.Fprintf(writer, "  Regressed units: %d\n", summary.RegressedUnits)
	fmt.Fprintf(writer, "\n")

	if len(result.Rollups) > 0 {
		fmt.Fprintf(writer, "Rollups (compared units only):\n")
		for _, rollup := range result.Rollups {
			fmt.Fprintf(writer, "  %s: mean %.2f -> %.2f, median %.1f -> %.1f, max %d -> %d\n",
				rollup.Metric,
				rollup.MeanBefore, rollup.MeanAfter,
				rollup.MedianBefore, rollup.MedianAfter,
				rollup.MaxBefore, rollup.MaxAfter)
		}
		fmt.Fprintf(writer, "\n")
	}

	fmt.Fprintf(writer, "Units:\n")
	for _, unit := range result.Units {
		switch unit.Classification {
		case domain.UnitCompared:
			fmt.Fprintf(writer, "  %s:\n", unit.Key)
			for _, d := range unit.Deltas {
				if d.PercentChange != nil {
					fmt.Fprintf(writer, "    %s: %d -> %d (%+.1f%%)\n", d.Metric, d.Before, d.After, *d.PercentChange)
				} else {
					fmt.Fprintf(writer, "    %s: %d -> %d\n", d.Metric, d.Before, d.After)
				}
			}
		default:
			fmt.Fprintf(writer, "  %s: %s\n", unit.Key, unit.Classification)
		}
	}
	fmt.Fprintf(writer, "\n")

	if result.Lint != nil {
		lint := result.Lint
		fmt.Fprintf(writer, "Lint Findings:\n")
		fmt.Fprintf(writer, "  Total: %d -> %d\n", lint.TotalBefore, lint.TotalAfter)
		fmt.Fprintf(writer, "  Fixed: %d\n", len(lint.Fixed))
		fmt.Fprintf(writer, "  Introduced: %d\n", len(lint.Introduced))
		for _, sd := range lint.BySeverity {
			fmt.Fprintf(writer, "  %s: %d -> %d (%+d)\n", sd.Severity, sd.Before, sd.After, sd.Change)
		}
		fmt.Fprintf(writer, "\n")
	}

	if len(result.Coverage) > 0 {
		fmt.Fprintf(writer, "Documentation Coverage:\n")
		for _, cov := range result.Coverage {
			if cov.Classification != domain.UnitCompared {
				fmt.Fprintf(writer, "  %s: %s\n", cov.Module, cov.Classification)
				continue
			}
			fmt.Fprintf(writer, "  %s: doc %.0f%% -> %.0f%%, types %.0f%% -> %.0f%%\n",
				cov.Module, cov.DocBefore*100, cov.DocAfter*100, cov.TypeBefore*100, cov.TypeAfter*100)
		}
		fmt.Fprintf(writer, "\n")
	}
	return nil
}

// writeComparisonCSV writes one row per unit and metric
func (f *OutputFormatterImpl) writeComparisonCSV(result *domain.ComparisonResult, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write([]string{"key", "classification", "metric", "before", "after", "delta", "percent_change"}); err != nil {
		return err
	}
	for _, unit := range result.Units {
		if unit.Classification != domain.UnitCompared {
			if err := w.Write([]string{unit.Key, string(unit.Classification), "", "", "", "", ""}); err != nil {
				return err
			}
			continue
		}
		for _, d := range unit.Deltas {
			pct := ""
			if d.PercentChange != nil {
				pct = strconv.FormatFloat(*d.PercentChange, 'f', 2, 64)
			}
			row := []string{
				unit.Key,
				string(unit.Classification),
				d.Metric,
				strconv.Itoa(d.Before),
				strconv.Itoa(d.After),
				strconv.Itoa(d.Delta),
				pct,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// writeBenchmarkText writes the benchmark result as plain text
func (f *OutputFormatterImpl) writeBenchmarkText(result *domain.BenchmarkResult, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== Performance Benchmark ===\n\n")
	fmt.Fprintf(writer, "Generated: %s\n", result.GeneratedAt)
	fmt.Fprintf(writer, "Version: %s\n", result.Version)
	fmt.Fprintf(writer, "Samples per variant: %d\n\n", result.SampleCount)

	writeTiming := func(label string, timing domain.VariantTiming) {
		fmt.Fprintf(writer, "%s:\n", label)
		fmt.Fprintf(writer, "  Median: %s\n", formatDuration(timing.Median))
		fmt.Fprintf(writer, "  Min: %s\n", formatDuration(timing.Min))
		fmt.Fprintf(writer, "  Max: %s\n", formatDuration(timing.Max))
		fmt.Fprintf(writer, "  Spread: %.1f%%\n", timing.Spread*100)
	}
	writeTiming("Before", result.Before)
	writeTiming("After", result.After)

	fmt.Fprintf(writer, "\nChange: %+.2f%%\n", result.PercentChange)
	fmt.Fprintf(writer, "Verdict: %s\n", result.Verdict)
	if result.Confidence != "" {
		fmt.Fprintf(writer, "Note: %s\n", result.Confidence)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	return d.Round(10 * time.Microsecond).String()
}

func writeNotes(writer io.Writer, warnings, errors []string) {
	if len(warnings) > 0 {
		fmt.Fprintf(writer, "Warnings:\n")
		for _, w := range warnings {
			fmt.Fprintf(writer, "  - %s\n", w)
		}
		fmt.Fprintf(writer, "\n")
	}
	if len(errors) > 0 {
		fmt.Fprintf(writer, "Errors:\n")
		for _, e := range errors {
			fmt.Fprintf(writer, "  - %s\n", e)
		}
		fmt.Fprintf(writer, "\n")
	}
}
