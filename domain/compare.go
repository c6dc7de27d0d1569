package domain

// UnitClassification describes how a unit relates across two snapshots
type UnitClassification string

const (
	// UnitCompared means the unit exists in both snapshots
	UnitCompared UnitClassification = "compared"

	// UnitNew means the unit exists only in the after snapshot
	UnitNew UnitClassification = "new"

	// UnitRemoved means the unit exists only in the before snapshot.
	// Removed units are excluded from percent-change arithmetic.
	UnitRemoved UnitClassification = "removed"
)

// MetricDelta holds the before/after change of one metric on one unit.
// PercentChange is nil when the before value is zero (undefined denominator).
type MetricDelta struct {
	Metric        string   `json:"metric" yaml:"metric"`
	Before        int      `json:"before" yaml:"before"`
	After         int      `json:"after" yaml:"after"`
	Delta         int      `json:"delta" yaml:"delta"`
	PercentChange *float64 `json:"percent_change" yaml:"percent_change"`
}

// UnitDelta holds all metric deltas for one unit key.
// Units present in only one snapshot carry no deltas, only a classification;
// no unit is ever silently dropped from a comparison.
type UnitDelta struct {
	Key            string             `json:"key" yaml:"key"`
	Classification UnitClassification `json:"classification" yaml:"classification"`
	Deltas         []MetricDelta      `json:"deltas,omitempty" yaml:"deltas,omitempty"`
}

// Rollup holds project-level aggregates of one metric across all compared
// units, before and after, so aggregate improvement claims are reproducible
// from the per-unit deltas
type Rollup struct {
	Metric       string  `json:"metric" yaml:"metric"`
	MeanBefore   float64 `json:"mean_before" yaml:"mean_before"`
	MeanAfter    float64 `json:"mean_after" yaml:"mean_after"`
	MedianBefore float64 `json:"median_before" yaml:"median_before"`
	MedianAfter  float64 `json:"median_after" yaml:"median_after"`
	MaxBefore    int     `json:"max_before" yaml:"max_before"`
	MaxAfter     int     `json:"max_after" yaml:"max_after"`
}

// SeverityDelta holds the before/after finding counts for one severity tier
type SeverityDelta struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Before   int      `json:"before" yaml:"before"`
	After    int      `json:"after" yaml:"after"`
	Change   int      `json:"change" yaml:"change"`
}

// LintComparison summarizes finding changes between two runs
type LintComparison struct {
	TotalBefore int             `json:"total_before" yaml:"total_before"`
	TotalAfter  int             `json:"total_after" yaml:"total_after"`
	Fixed       []LintFinding   `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	Introduced  []LintFinding   `json:"introduced,omitempty" yaml:"introduced,omitempty"`
	BySeverity  []SeverityDelta `json:"by_severity" yaml:"by_severity"`
}

// NetImprovement is fixed minus introduced findings
func (lc *LintComparison) NetImprovement() int {
	return len(lc.Fixed) - len(lc.Introduced)
}

// DocCoverageDelta holds the before/after documentation coverage per module
type DocCoverageDelta struct {
	Module         string             `json:"module" yaml:"module"`
	DocBefore      float64            `json:"doc_before" yaml:"doc_before"`
	DocAfter       float64            `json:"doc_after" yaml:"doc_after"`
	TypeBefore     float64            `json:"type_before" yaml:"type_before"`
	TypeAfter      float64            `json:"type_after" yaml:"type_after"`
	Classification UnitClassification `json:"classification" yaml:"classification"`
}

// ComparisonSummary aggregates a comparison for quick reporting
type ComparisonSummary struct {
	ComparedUnits int `json:"compared_units" yaml:"compared_units"`
	NewUnits      int `json:"new_units" yaml:"new_units"`
	RemovedUnits  int `json:"removed_units" yaml:"removed_units"`

	// ImprovedUnits counts compared units whose cyclomatic complexity dropped
	ImprovedUnits  int `json:"improved_units" yaml:"improved_units"`
	RegressedUnits int `json:"regressed_units" yaml:"regressed_units"`
}

// ComparisonResult is the full diff of two metric snapshots
type ComparisonResult struct {
	Units    []UnitDelta        `json:"units" yaml:"units"`
	Rollups  []Rollup           `json:"rollups" yaml:"rollups"`
	Lint     *LintComparison    `json:"lint,omitempty" yaml:"lint,omitempty"`
	Coverage []DocCoverageDelta `json:"coverage,omitempty" yaml:"coverage,omitempty"`
	Summary  ComparisonSummary  `json:"summary" yaml:"summary"`

	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// CompareService defines the core business logic for snapshot comparison
type CompareService interface {
	// Compare diffs two immutable snapshots keyed by stable unit identity
	Compare(before, after *MetricSnapshot) (*ComparisonResult, error)
}
