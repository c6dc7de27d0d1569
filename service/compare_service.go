package service

import (
	"sort"
	"time"

	"github.com/ludo-technologies/refscan/domain"
	"github.com/ludo-technologies/refscan/internal/version"
)

// CompareServiceImpl implements domain.CompareService: it diffs two metric
// snapshots by stable unit identity. Neither input snapshot is mutated.
type CompareServiceImpl struct{}

// NewCompareService creates a new compare service
func NewCompareService() *CompareServiceImpl {
	return &CompareServiceImpl{}
}

// Compare diffs two immutable snapshots keyed by stable unit identity
func (s *CompareServiceImpl) Compare(before, after *domain.MetricSnapshot) (*domain.ComparisonResult, error) {
	if before == nil || after == nil {
		return nil, domain.NewValidationError("both snapshots are required for comparison")
	}

	result := &domain.ComparisonResult{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version.GetVersion(),
	}

	keys := unionKeys(before, after)
	var comparedKeys []string

	for _, key := range keys {
		beforeUnit, inBefore := before.Units[key]
		afterUnit, inAfter := after.Units[key]

		switch {
		case inBefore && inAfter:
			delta := domain.UnitDelta{
				Key:            key,
				Classification: domain.UnitCompared,
				Deltas:         metricDeltas(beforeUnit.Metrics, afterUnit.Metrics),
			}
			result.Units = append(result.Units, delta)
			comparedKeys = append(comparedKeys, key)
			result.Summary.ComparedUnits++

			switch {
			case afterUnit.Metrics.Cyclomatic < beforeUnit.Metrics.Cyclomatic:
				result.Summary.ImprovedUnits++
			case afterUnit.Metrics.Cyclomatic > beforeUnit.Metrics.Cyclomatic:
				result.Summary.RegressedUnits++
			}

		case inBefore:
			// Removed units carry no deltas and never contribute a
			// -100% percent change
			result.Units = append(result.Units, domain.UnitDelta{
				Key:            key,
				Classification: domain.UnitRemoved,
			})
			result.Summary.RemovedUnits++

		default:
			result.Units = append(result.Units, domain.UnitDelta{
				Key:            key,
				Classification: domain.UnitNew,
			})
			result.Summary.NewUnits++
		}
	}

	result.Rollups = rollups(before, after, comparedKeys)
	result.Coverage = coverageDeltas(before, after)

	return result, nil
}

// metricDeltas computes per-metric changes for one compared unit
func metricDeltas(before, after domain.MetricsRecord) []domain.MetricDelta {
	var deltas []domain.MetricDelta
	for _, metric := range domain.MetricNames() {
		b, _ := before.Value(metric)
		a, _ := after.Value(metric)

		delta := domain.MetricDelta{
			Metric: metric,
			Before: b,
			After:  a,
			Delta:  a - b,
		}
		// Percent change is undefined when the before value is zero
		if b != 0 {
			pct := float64(a-b) / float64(b) * 100
			delta.PercentChange = &pct
		}
		deltas = append(deltas, delta)
	}
	return deltas
}

// rollups aggregates each metric across all compared units
func rollups(before, after *domain.MetricSnapshot, comparedKeys []string) []domain.Rollup {
	var result []domain.Rollup

	for _, metric := range domain.MetricNames() {
		rollup := domain.Rollup{Metric: metric}

		beforeValues := make([]int, 0, len(comparedKeys))
		afterValues := make([]int, 0, len(comparedKeys))
		for _, key := range comparedKeys {
			b, _ := before.Units[key].Metrics.Value(metric)
			a, _ := after.Units[key].Metrics.Value(metric)
			beforeValues = append(beforeValues, b)
			afterValues = append(afterValues, a)
		}

		rollup.MeanBefore, rollup.MedianBefore, rollup.MaxBefore = aggregate(beforeValues)
		rollup.MeanAfter, rollup.MedianAfter, rollup.MaxAfter = aggregate(afterValues)
		result = append(result, rollup)
	}

	return result
}

// aggregate computes mean, median and max of integer samples
func aggregate(values []int) (mean, median float64, max int) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	sum := 0
	for _, v := range sorted {
		sum += v
	}
	mean = float64(sum) / float64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = float64(sorted[mid])
	} else {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	}

	max = sorted[len(sorted)-1]
	return mean, median, max
}

// coverageDeltas pairs per-module documentation coverage across snapshots
func coverageDeltas(before, after *domain.MetricSnapshot) []domain.DocCoverageDelta {
	beforeByModule := make(map[string]domain.DocCoverageRecord)
	for _, r := range before.DocCoverage {
		beforeByModule[r.Module] = r
	}
	afterByModule := make(map[string]domain.DocCoverageRecord)
	for _, r := range after.DocCoverage {
		afterByModule[r.Module] = r
	}

	modules := make(map[string]bool)
	for m := range beforeByModule {
		modules[m] = true
	}
	for m := range afterByModule {
		modules[m] = true
	}

	sorted := make([]string, 0, len(modules))
	for m := range modules {
		sorted = append(sorted, m)
	}
	sort.Strings(sorted)

	var deltas []domain.DocCoverageDelta
	for _, module := range sorted {
		b, inBefore := beforeByModule[module]
		a, inAfter := afterByModule[module]

		delta := domain.DocCoverageDelta{Module: module}
		switch {
		case inBefore && inAfter:
			delta.Classification = domain.UnitCompared
			delta.DocBefore = b.DocCoverage()
			delta.DocAfter = a.DocCoverage()
			delta.TypeBefore = b.TypeCoverage()
			delta.TypeAfter = a.TypeCoverage()
		case inBefore:
			delta.Classification = domain.UnitRemoved
			delta.DocBefore = b.DocCoverage()
			delta.TypeBefore = b.TypeCoverage()
		default:
			delta.Classification = domain.UnitNew
			delta.DocAfter = a.DocCoverage()
			delta.TypeAfter = a.TypeCoverage()
		}
		deltas = append(deltas, delta)
	}

	return deltas
}

// CompareLint classifies findings between two runs by location signature:
// findings present before but not after are fixed, the reverse are introduced
func CompareLint(before, after []domain.LintFinding) *domain.LintComparison {
	beforeSigs := make(map[string]bool, len(before))
	for _, f := range before {
		beforeSigs[f.Signature()] = true
	}
	afterSigs := make(map[string]bool, len(after))
	for _, f := range after {
		afterSigs[f.Signature()] = true
	}

	comparison := &domain.LintComparison{
		TotalBefore: len(before),
		TotalAfter:  len(after),
	}

	for _, f := range before {
		if !afterSigs[f.Signature()] {
			comparison.Fixed = append(comparison.Fixed, f)
		}
	}
	for _, f := range after {
		if !beforeSigs[f.Signature()] {
			comparison.Introduced = append(comparison.Introduced, f)
		}
	}
	domain.SortFindings(comparison.Fixed)
	domain.SortFindings(comparison.Introduced)

	beforeCounts := domain.CountBySeverity(before)
	afterCounts := domain.CountBySeverity(after)
	for _, severity := range []domain.Severity{domain.SeverityHigh, domain.SeverityMedium, domain.SeverityLow} {
		comparison.BySeverity = append(comparison.BySeverity, domain.SeverityDelta{
			Severity: severity,
			Before:   beforeCounts[severity],
			After:    afterCounts[severity],
			Change:   afterCounts[severity] - beforeCounts[severity],
		})
	}

	return comparison
}

// unionKeys returns the sorted union of unit keys across two snapshots
func unionKeys(before, after *domain.MetricSnapshot) []string {
	seen := make(map[string]bool, len(before.Units)+len(after.Units))
	for key := range before.Units {
		seen[key] = true
	}
	for key := range after.Units {
		seen[key] = true
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
