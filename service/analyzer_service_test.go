package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ludo-technologies/refscan/domain"
	"github.com/ludo-technologies/refscan/internal/analyzer"
	"github.com/ludo-technologies/refscan/internal/config"
	"github.com/ludo-technologies/refscan/internal/parser"
)

// dirReader is a minimal FileReader over one directory tree
type dirReader struct {
	root string
}

func (r *dirReader) CollectPythonFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(p, ".py") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func (r *dirReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (r *dirReader) IsValidPythonFile(path string) bool   { return strings.HasSuffix(path, ".py") }
func (r *dirReader) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func writeSource(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestAnalyzer(cfg *config.Config) *AnalyzerService {
	return NewAnalyzerService(cfg, &dirReader{}, &NoOpProgressManager{})
}

func TestAnalyzeProducesSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "calc.py", `def add(a: int, b: int) -> int:
    """Add two numbers."""
    return a + b


def branchy(x):
    if x > 0:
        return 1
    elif x < 0:
        return -1
    return 0
`)

	svc := newTestAnalyzer(config.DefaultConfig())
	resp, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Paths: []string{dir}, Recursive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Snapshot == nil {
		t.Fatal("expected a snapshot")
	}
	if resp.Snapshot.SchemaVersion != domain.SnapshotSchemaVersion {
		t.Errorf("schema version = %d", resp.Snapshot.SchemaVersion)
	}
	if len(resp.Snapshot.Units) != 2 {
		t.Fatalf("expected 2 units, got %d: %v", len(resp.Snapshot.Units), resp.Snapshot.SortedKeys())
	}

	var branchy domain.UnitMetrics
	found := false
	for key, um := range resp.Snapshot.Units {
		if strings.HasPrefix(key, "branchy@") {
			branchy = um
			found = true
		}
	}
	if !found {
		t.Fatal("branchy unit missing")
	}
	if branchy.Metrics.Cyclomatic != 3 {
		t.Errorf("branchy cyclomatic = %d, want 3", branchy.Metrics.Cyclomatic)
	}

	if resp.Summary.FilesAnalyzed != 1 || resp.Summary.TotalUnits != 2 {
		t.Errorf("summary = %+v", resp.Summary)
	}
	if resp.Summary.MaxCyclomatic != 3 {
		t.Errorf("max cyclomatic = %d, want 3", resp.Summary.MaxCyclomatic)
	}
}

func TestAnalyzeParseErrorBecomesWarning(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "good.py", "def ok():\n    pass\n")
	writeSource(t, dir, "broken.py", "def broken(:\n")

	svc := newTestAnalyzer(config.DefaultConfig())
	resp, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Paths: []string{dir}, Recursive: true})
	if err != nil {
		t.Fatalf("a parse error must not abort the run: %v", err)
	}

	if resp.Summary.ParseErrors != 1 {
		t.Errorf("parse errors = %d, want 1", resp.Summary.ParseErrors)
	}
	if len(resp.Warnings) == 0 {
		t.Error("expected a warning for the broken file")
	}
	for key := range resp.Snapshot.Units {
		if strings.Contains(key, "broken.py") {
			t.Errorf("unit from unparseable file leaked into snapshot: %s", key)
		}
	}
}

func TestAnalyzeNoPythonFiles(t *testing.T) {
	svc := newTestAnalyzer(config.DefaultConfig())
	_, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Paths: []string{t.TempDir()}, Recursive: true})
	if err == nil {
		t.Fatal("expected error when no Python files are found")
	}
}

func TestAnalyzeThresholdViolationsFailRun(t *testing.T) {
	dir := t.TempDir()
	// Deeply branched function that clears the default cyclomatic threshold
	var b strings.Builder
	b.WriteString("def tangled(x):\n")
	for i := 0; i < 12; i++ {
		b.WriteString("    if x > ")
		b.WriteString(string(rune('0' + i%10)))
		b.WriteString(":\n        x -= 1\n")
	}
	b.WriteString("    return x\n")
	writeSource(t, dir, "tangled.py", b.String())

	svc := newTestAnalyzer(config.DefaultConfig())
	resp, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Paths: []string{dir}, Recursive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Summary.UnitsOverCyclomatic != 1 {
		t.Errorf("units over cyclomatic = %d, want 1", resp.Summary.UnitsOverCyclomatic)
	}
	if resp.Summary.Passed {
		t.Error("run must fail when a unit exceeds the cyclomatic threshold")
	}
}

func TestAnalyzeFindingsFilteredBySeverity(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "mod.py", `def risky():
    try:
        pass
    except:
        pass


def undocumented_public():
    pass
`)

	cfg := config.DefaultConfig()
	cfg.Lint.MinSeverity = "high"
	svc := newTestAnalyzer(cfg)
	resp, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Paths: []string{dir}, Recursive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, f := range resp.Findings {
		if f.Severity != domain.SeverityHigh {
			t.Errorf("low-severity finding %s survived the min-severity filter", f.Rule)
		}
	}
	foundBareExcept := false
	for _, f := range resp.Findings {
		if f.Rule == "bare-except" {
			foundBareExcept = true
		}
	}
	if !foundBareExcept {
		t.Error("expected the bare-except finding to survive filtering")
	}
}

func TestAnalyzeCoverageChecks(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "doc.py", `def documented() -> None:
    """Does nothing."""
`)

	svc := newTestAnalyzer(config.DefaultConfig())
	resp, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Paths: []string{dir}, Recursive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Summary.Checks) != 2 {
		t.Fatalf("expected doc and type coverage checks, got %+v", resp.Summary.Checks)
	}
	for _, check := range resp.Summary.Checks {
		if !check.Passed {
			t.Errorf("check %s failed: value %.2f threshold %.2f", check.Metric, check.Value, check.Threshold)
		}
	}
}

// failingChecker always errors instead of producing findings
type failingChecker struct{}

func (c *failingChecker) Name() string { return "always-broken" }

func (c *failingChecker) Run(*parser.Node) ([]domain.LintFinding, error) {
	return nil, errors.New("rule table corrupt")
}

func TestAnalyzeCheckerFailureSkippedWithWarning(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "risky.py", `def risky():
    try:
        pass
    except:
        pass
`)

	cfg := config.DefaultConfig()
	svc := NewAnalyzerService(cfg, &dirReader{}, &NoOpProgressManager{})
	svc.checkers = append([]analyzer.Checker{&failingChecker{}}, analyzer.DefaultCheckers(cfg)...)

	resp, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Paths: []string{dir}, Recursive: true})
	if err != nil {
		t.Fatalf("a failing checker must not fail the run: %v", err)
	}

	if len(resp.Snapshot.Units) != 1 {
		t.Errorf("file metrics lost: %d units, want 1", len(resp.Snapshot.Units))
	}
	foundBareExcept := false
	for _, f := range resp.Findings {
		if f.Rule == "bare-except" {
			foundBareExcept = true
		}
	}
	if !foundBareExcept {
		t.Error("remaining checkers must still run after one fails")
	}
	warned := false
	for _, w := range resp.Warnings {
		if strings.Contains(w, "always-broken") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected a warning naming the broken checker, got %v", resp.Warnings)
	}
	if resp.Summary.ParseErrors != 0 {
		t.Errorf("checker failure must not count as a parse error, got %d", resp.Summary.ParseErrors)
	}
}

// failReader refuses to read one specific file
type failReader struct {
	dirReader
	failSuffix string
}

func (r *failReader) ReadFile(path string) ([]byte, error) {
	if strings.HasSuffix(path, r.failSuffix) {
		return nil, errors.New("permission denied")
	}
	return os.ReadFile(path)
}

func TestAnalyzeUnreadableFileNotCountedAsParseError(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "good.py", "def fine():\n    pass\n")
	writeSource(t, dir, "locked.py", "def hidden():\n    pass\n")

	reader := &failReader{failSuffix: "locked.py"}
	svc := NewAnalyzerService(config.DefaultConfig(), reader, &NoOpProgressManager{})

	resp, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Paths: []string{dir}, Recursive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Summary.ParseErrors != 0 {
		t.Errorf("unreadable file counted as parse error: %d", resp.Summary.ParseErrors)
	}
	if len(resp.Warnings) == 0 {
		t.Error("expected a warning for the unreadable file")
	}
	if len(resp.Snapshot.Units) != 1 {
		t.Errorf("readable file must still be analyzed: %d units", len(resp.Snapshot.Units))
	}
}

// slowReader delays every read past the per-file time budget
type slowReader struct {
	dirReader
	delay time.Duration
}

func (r *slowReader) ReadFile(path string) ([]byte, error) {
	time.Sleep(r.delay)
	return os.ReadFile(path)
}

func TestAnalyzeFileTimeoutMarksUnitIncomplete(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "slow.py", "def fine():\n    pass\n")

	cfg := config.DefaultConfig()
	cfg.Performance.UnitTimeoutSeconds = 1

	reader := &slowReader{delay: 1200 * time.Millisecond}
	svc := NewAnalyzerService(cfg, reader, &NoOpProgressManager{})

	resp, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Paths: []string{dir}, Recursive: true})
	if err != nil {
		t.Fatalf("a timed-out file must not fail the run: %v", err)
	}

	if resp.Summary.Incomplete != 1 {
		t.Errorf("incomplete count = %d, want 1", resp.Summary.Incomplete)
	}
	found := false
	for _, key := range resp.Snapshot.SortedKeys() {
		um := resp.Snapshot.Units[key]
		if um.Unit.FilePath == filepath.Join(dir, "slow.py") {
			found = true
			if um.Status != domain.UnitStatusIncomplete {
				t.Errorf("status = %s, want incomplete", um.Status)
			}
		}
	}
	if !found {
		t.Error("timed-out file missing from the snapshot")
	}
}

func TestAnalyzeDocCoverageBelowThresholdFails(t *testing.T) {
	dir := t.TempDir()
	var src strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&src, "def func_%d() -> None:\n", i)
		if i < 7 {
			src.WriteString("    \"\"\"Documented.\"\"\"\n")
		}
		src.WriteString("    pass\n\n")
	}
	writeSource(t, dir, "partly_documented.py", src.String())

	svc := newTestAnalyzer(config.DefaultConfig())
	resp, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Paths: []string{dir}, Recursive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var docCheck *domain.ThresholdCheck
	for i := range resp.Summary.Checks {
		if resp.Summary.Checks[i].Metric == "doc_coverage" {
			docCheck = &resp.Summary.Checks[i]
		}
	}
	if docCheck == nil {
		t.Fatalf("doc_coverage check missing: %+v", resp.Summary.Checks)
	}
	if docCheck.Value != 0.7 {
		t.Errorf("doc coverage = %.2f, want 0.70", docCheck.Value)
	}
	if docCheck.Passed {
		t.Errorf("70%% coverage must fail the %.2f threshold", docCheck.Threshold)
	}
	if resp.Summary.Passed {
		t.Error("run must fail when a coverage check fails")
	}
}

func TestAnalyzeDeterministicOrdering(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "zz.py", "def zebra():\n    pass\n")
	writeSource(t, dir, "aa.py", "def aardvark():\n    pass\n")

	svc := newTestAnalyzer(config.DefaultConfig())
	var firstKeys []string
	for i := 0; i < 3; i++ {
		resp, err := svc.Analyze(context.Background(), domain.AnalyzeRequest{Paths: []string{dir}, Recursive: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		keys := resp.Snapshot.SortedKeys()
		if i == 0 {
			firstKeys = keys
			continue
		}
		if len(keys) != len(firstKeys) {
			t.Fatalf("key count changed between runs")
		}
		for j := range keys {
			if keys[j] != firstKeys[j] {
				t.Fatalf("key order changed between runs: %v vs %v", keys, firstKeys)
			}
		}
	}
}
