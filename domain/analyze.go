package domain

import (
	"context"
	"fmt"
	"io"
	"sort"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
)

// SortCriteria represents the criteria for sorting results
type SortCriteria string

const (
	SortByKey        SortCriteria = "key"
	SortByComplexity SortCriteria = "complexity"
	SortByCognitive  SortCriteria = "cognitive"
	SortByLength     SortCriteria = "length"
)

// UnitStatus describes the outcome of analyzing a single source unit
type UnitStatus string

const (
	// UnitStatusOK means the unit was analyzed successfully
	UnitStatusOK UnitStatus = "ok"

	// UnitStatusParseError means the unit could not be parsed and was
	// excluded from the snapshot
	UnitStatusParseError UnitStatus = "parse_error"

	// UnitStatusIncomplete means analysis of the unit timed out
	UnitStatusIncomplete UnitStatus = "incomplete"
)

// SourceUnit identifies one analyzable function or method.
// The key (qualified name + file path) is stable across runs and is the
// identity used when diffing snapshots.
type SourceUnit struct {
	Name      string `json:"name" yaml:"name"`
	FilePath  string `json:"file_path" yaml:"file_path"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
}

// Key returns the stable snapshot key for the unit
func (u SourceUnit) Key() string {
	return fmt.Sprintf("%s@%s", u.Name, u.FilePath)
}

// MetricsRecord holds the structural metrics for one source unit
type MetricsRecord struct {
	// McCabe cyclomatic complexity (always >= 1 for an analyzed unit)
	Cyclomatic int `json:"cyclomatic" yaml:"cyclomatic"`

	// Cognitive complexity with nesting-weighted increments
	Cognitive int `json:"cognitive" yaml:"cognitive"`

	// Logical length in non-blank, non-comment lines
	Length int `json:"length" yaml:"length"`

	// Maximum count of lexically enclosing control blocks
	Nesting int `json:"nesting" yaml:"nesting"`
}

// Value returns the named metric value. Known names are "cyclomatic",
// "cognitive", "length" and "nesting".
func (m MetricsRecord) Value(name string) (int, bool) {
	switch name {
	case MetricCyclomatic:
		return m.Cyclomatic, true
	case MetricCognitive:
		return m.Cognitive, true
	case MetricLength:
		return m.Length, true
	case MetricNesting:
		return m.Nesting, true
	}
	return 0, false
}

// Metric names shared by snapshots, comparisons and reports
const (
	MetricCyclomatic = "cyclomatic"
	MetricCognitive  = "cognitive"
	MetricLength     = "length"
	MetricNesting    = "nesting"
)

// MetricNames lists all per-unit metrics in report order
func MetricNames() []string {
	return []string{MetricCyclomatic, MetricCognitive, MetricLength, MetricNesting}
}

// UnitMetrics combines a source unit with its measured metrics
type UnitMetrics struct {
	Unit    SourceUnit    `json:"unit" yaml:"unit"`
	Metrics MetricsRecord `json:"metrics" yaml:"metrics"`
	Status  UnitStatus    `json:"status" yaml:"status"`

	// Error holds the parse or timeout diagnostic for non-ok units
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// SnapshotSchemaVersion is bumped whenever the persisted snapshot layout
// changes incompatibly
const SnapshotSchemaVersion = 1

// MetricSnapshot is an immutable capture of per-unit metrics and per-module
// documentation coverage for one source tree at one point in time.
// It must never be mutated after construction; the comparator and report
// generator may read it concurrently.
type MetricSnapshot struct {
	SchemaVersion int                    `json:"schema_version" yaml:"schema_version"`
	Units         map[string]UnitMetrics `json:"units" yaml:"units"`
	DocCoverage   []DocCoverageRecord    `json:"doc_coverage,omitempty" yaml:"doc_coverage,omitempty"`
	GeneratedAt   string                 `json:"generated_at" yaml:"generated_at"`
	Version       string                 `json:"version" yaml:"version"`
}

// SortedKeys returns all unit keys in lexical order so iteration order is
// deterministic regardless of analysis completion order
func (s *MetricSnapshot) SortedKeys() []string {
	keys := make([]string, 0, len(s.Units))
	for key := range s.Units {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// KeysSortedBy returns all unit keys ordered by the given criteria. Metric
// criteria sort descending so the worst offenders come first; ties and the
// key criteria fall back to lexical order.
func (s *MetricSnapshot) KeysSortedBy(criteria SortCriteria) []string {
	keys := s.SortedKeys()
	var metric string
	switch criteria {
	case SortByComplexity:
		metric = MetricCyclomatic
	case SortByCognitive:
		metric = MetricCognitive
	case SortByLength:
		metric = MetricLength
	default:
		return keys
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, _ := s.Units[keys[i]].Metrics.Value(metric)
		b, _ := s.Units[keys[j]].Metrics.Value(metric)
		return a > b
	})
	return keys
}

// CompletedUnits returns the number of units with status ok
func (s *MetricSnapshot) CompletedUnits() int {
	n := 0
	for _, um := range s.Units {
		if um.Status == UnitStatusOK {
			n++
		}
	}
	return n
}

// DocCoverageRecord holds documentation coverage for one module (file)
type DocCoverageRecord struct {
	Module string `json:"module" yaml:"module"`

	// Docstring coverage over public symbols
	PublicSymbols    int `json:"public_symbols" yaml:"public_symbols"`
	DocumentedPublic int `json:"documented_public" yaml:"documented_public"`

	// Type annotation coverage over parameters and returns
	TotalAnnotatable int `json:"total_annotatable" yaml:"total_annotatable"`
	Annotated        int `json:"annotated" yaml:"annotated"`
}

// DocCoverage returns the documented fraction of public symbols, or 1.0 when
// the module has no public symbols
func (r DocCoverageRecord) DocCoverage() float64 {
	if r.PublicSymbols == 0 {
		return 1.0
	}
	return float64(r.DocumentedPublic) / float64(r.PublicSymbols)
}

// TypeCoverage returns the annotated fraction of parameters and returns, or
// 1.0 when there is nothing to annotate
func (r DocCoverageRecord) TypeCoverage() float64 {
	if r.TotalAnnotatable == 0 {
		return 1.0
	}
	return float64(r.Annotated) / float64(r.TotalAnnotatable)
}

// AnalyzeRequest represents a request for snapshot analysis
type AnalyzeRequest struct {
	// Input files to analyze
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	SortBy       SortCriteria

	// Snapshot persistence (empty = don't persist)
	SnapshotPath string

	// Configuration
	ConfigPath string

	// Analysis options
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string
}

// ThresholdCheck records one metric checked against its configured threshold
type ThresholdCheck struct {
	Metric    string  `json:"metric" yaml:"metric"`
	Value     float64 `json:"value" yaml:"value"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Passed    bool    `json:"passed" yaml:"passed"`
}

// AnalyzeSummary represents aggregate statistics for one analysis run
type AnalyzeSummary struct {
	FilesAnalyzed int `json:"files_analyzed" yaml:"files_analyzed"`
	TotalUnits    int `json:"total_units" yaml:"total_units"`
	ParseErrors   int `json:"parse_errors" yaml:"parse_errors"`
	Incomplete    int `json:"incomplete" yaml:"incomplete"`

	AverageCyclomatic float64 `json:"average_cyclomatic" yaml:"average_cyclomatic"`
	MaxCyclomatic     int     `json:"max_cyclomatic" yaml:"max_cyclomatic"`
	AverageCognitive  float64 `json:"average_cognitive" yaml:"average_cognitive"`
	MaxCognitive      int     `json:"max_cognitive" yaml:"max_cognitive"`
	MaxNesting        int     `json:"max_nesting" yaml:"max_nesting"`

	// Units exceeding configured thresholds
	UnitsOverCyclomatic int `json:"units_over_cyclomatic" yaml:"units_over_cyclomatic"`
	UnitsOverCognitive  int `json:"units_over_cognitive" yaml:"units_over_cognitive"`
	UnitsOverLength     int `json:"units_over_length" yaml:"units_over_length"`
	UnitsOverNesting    int `json:"units_over_nesting" yaml:"units_over_nesting"`

	// Project-level threshold checks (doc and type coverage)
	Checks []ThresholdCheck `json:"checks,omitempty" yaml:"checks,omitempty"`

	// Passed is true when every per-unit and project-level check passed
	Passed bool `json:"passed" yaml:"passed"`
}

// AnalyzeResponse represents the complete result of one analysis run
type AnalyzeResponse struct {
	Snapshot *MetricSnapshot `json:"snapshot" yaml:"snapshot"`
	Findings []LintFinding   `json:"findings,omitempty" yaml:"findings,omitempty"`
	Summary  AnalyzeSummary  `json:"summary" yaml:"summary"`

	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// AnalyzeService defines the core business logic for snapshot analysis
type AnalyzeService interface {
	// Analyze measures all units in the requested files and assembles an
	// immutable snapshot plus lint findings
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)
}

// SnapshotStore persists snapshots so a later compare can run without
// re-analyzing source
type SnapshotStore interface {
	Save(path string, snapshot *MetricSnapshot) error
	Load(path string) (*MetricSnapshot, error)
}

// FileReader defines Python-specific file collection operations
type FileReader interface {
	CollectPythonFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	IsValidPythonFile(path string) bool
	FileExists(path string) (bool, error)
}
