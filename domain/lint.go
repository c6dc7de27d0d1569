package domain

import (
	"sort"
	"strconv"
)

// Severity represents the tier of a lint finding
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// severityRank orders severities for sorting, highest first
func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	}
	return 3
}

// Finding categories used by the built-in checkers
const (
	CategoryComplexity    = "complexity"
	CategoryDocumentation = "documentation"
	CategoryBugRisk       = "bugrisk"
	CategoryStyle         = "style"
)

// SourceLocation is the position of a finding in the source code
type SourceLocation struct {
	FilePath  string `json:"file_path" yaml:"file_path"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	StartCol  int    `json:"start_col" yaml:"start_col"`
}

// LintFinding represents one issue reported by one checker.
// Findings from different checkers at the same location are kept distinct.
type LintFinding struct {
	Rule     string         `json:"rule" yaml:"rule"`
	Severity Severity       `json:"severity" yaml:"severity"`
	Category string         `json:"category" yaml:"category"`
	UnitKey  string         `json:"unit_key" yaml:"unit_key"`
	Location SourceLocation `json:"location" yaml:"location"`
	Message  string         `json:"message" yaml:"message"`
}

// Signature identifies a finding across runs for fixed/new classification
func (f LintFinding) Signature() string {
	return f.Location.FilePath + ":" + strconv.Itoa(f.Location.StartLine) + ":" + f.Rule
}

// SortFindings orders findings by severity descending, then by location,
// then by rule id, so repeated runs over unchanged input produce an
// identical sequence
func SortFindings(findings []LintFinding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if severityRank(a.Severity) != severityRank(b.Severity) {
			return severityRank(a.Severity) < severityRank(b.Severity)
		}
		if a.Location.FilePath != b.Location.FilePath {
			return a.Location.FilePath < b.Location.FilePath
		}
		if a.Location.StartLine != b.Location.StartLine {
			return a.Location.StartLine < b.Location.StartLine
		}
		if a.Location.StartCol != b.Location.StartCol {
			return a.Location.StartCol < b.Location.StartCol
		}
		return a.Rule < b.Rule
	})
}

// GroupedFindings is a display view of findings bucketed by severity tier
// and by category. The underlying findings are shared, not copied.
type GroupedFindings struct {
	BySeverity map[Severity][]LintFinding `json:"by_severity" yaml:"by_severity"`
	ByCategory map[string][]LintFinding   `json:"by_category" yaml:"by_category"`
}

// GroupFindings builds severity and category views over a finding list
func GroupFindings(findings []LintFinding) GroupedFindings {
	grouped := GroupedFindings{
		BySeverity: make(map[Severity][]LintFinding),
		ByCategory: make(map[string][]LintFinding),
	}
	for _, f := range findings {
		grouped.BySeverity[f.Severity] = append(grouped.BySeverity[f.Severity], f)
		grouped.ByCategory[f.Category] = append(grouped.ByCategory[f.Category], f)
	}
	return grouped
}

// CountBySeverity returns finding counts per severity tier
func CountBySeverity(findings []LintFinding) map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
