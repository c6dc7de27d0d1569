package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/refscan/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCollectPythonFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.py", "pass\n")
	writeFile(t, dir, "pkg/util.py", "pass\n")
	writeFile(t, dir, "readme.md", "docs\n")

	files, err := NewFileHelper().CollectPythonFiles([]string{dir}, true, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
}

func TestCollectPythonFilesNonRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.py", "pass\n")
	writeFile(t, dir, "pkg/util.py", "pass\n")

	files, err := NewFileHelper().CollectPythonFiles([]string{dir}, false, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "main.py" {
		t.Fatalf("expected only main.py, got %v", files)
	}
}

func TestCollectPythonFilesExcludesDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/app.py", "pass\n")
	writeFile(t, dir, ".venv/lib/site.py", "pass\n")
	writeFile(t, dir, "__pycache__/app.cpython-312.py", "pass\n")

	files, err := NewFileHelper().CollectPythonFiles(
		[]string{dir}, true, nil, []string{".venv/", "__pycache__/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "app.py" {
		t.Fatalf("expected only src/app.py, got %v", files)
	}
}

func TestCollectPythonFilesGitignoreStylePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "pass\n")
	writeFile(t, dir, "generated_schema.py", "pass\n")
	writeFile(t, dir, "nested/generated_models.py", "pass\n")

	files, err := NewFileHelper().CollectPythonFiles(
		[]string{dir}, true, nil, []string{"**/generated_*.py", "generated_*.py"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "app.py" {
		t.Fatalf("expected only app.py, got %v", files)
	}
}

func TestCollectPythonFilesIncludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep_me.py", "pass\n")
	writeFile(t, dir, "other.py", "pass\n")

	files, err := NewFileHelper().CollectPythonFiles(
		[]string{dir}, true, []string{"keep_*.py"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "keep_me.py" {
		t.Fatalf("expected only keep_me.py, got %v", files)
	}
}

func TestCollectPythonFilesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "single.py", "pass\n")

	files, err := NewFileHelper().CollectPythonFiles([]string{path}, false, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Fatalf("expected %s, got %v", path, files)
	}
}

func TestCollectPythonFilesMissingPath(t *testing.T) {
	_, err := NewFileHelper().CollectPythonFiles([]string{"/no/such/path"}, true, nil, nil)
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestCollectPythonFilesSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zz.py", "pass\n")
	writeFile(t, dir, "aa.py", "pass\n")
	writeFile(t, dir, "mm.py", "pass\n")

	files, err := NewFileHelper().CollectPythonFiles([]string{dir}, true, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] > files[i] {
			t.Fatalf("files not sorted: %v", files)
		}
	}
}

func TestResolveFilePathsPassesThroughFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.py", "pass\n")
	b := writeFile(t, dir, "b.py", "pass\n")

	files, err := ResolveFilePaths(NewFileHelper(), []string{a, b}, true, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 || files[0] != a || files[1] != b {
		t.Fatalf("expected pass-through, got %v", files)
	}
}

func TestIsValidPythonFile(t *testing.T) {
	h := NewFileHelper()
	if !h.IsValidPythonFile("script.py") {
		t.Error("script.py should be valid")
	}
	if !h.IsValidPythonFile("SCRIPT.PY") {
		t.Error("extension check should be case-insensitive")
	}
	if h.IsValidPythonFile("script.pyc") {
		t.Error("compiled files are not source files")
	}
	if h.IsValidPythonFile("script.go") {
		t.Error("script.go should not be valid")
	}
}

// Stub services for use case orchestration tests.

type stubAnalyzeService struct {
	response *domain.AnalyzeResponse
	err      error
	lastReq  domain.AnalyzeRequest
}

func (s *stubAnalyzeService) Analyze(_ context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	s.lastReq = req
	return s.response, s.err
}

type stubStore struct {
	saved     map[string]*domain.MetricSnapshot
	snapshots map[string]*domain.MetricSnapshot
}

func newStubStore() *stubStore {
	return &stubStore{
		saved:     make(map[string]*domain.MetricSnapshot),
		snapshots: make(map[string]*domain.MetricSnapshot),
	}
}

func (s *stubStore) Save(path string, snapshot *domain.MetricSnapshot) error {
	s.saved[path] = snapshot
	return nil
}

func (s *stubStore) Load(path string) (*domain.MetricSnapshot, error) {
	snapshot, ok := s.snapshots[path]
	if !ok {
		return nil, domain.NewFileNotFoundError(path)
	}
	return snapshot, nil
}

type stubFormatter struct {
	analyzeCalls    int
	comparisonCalls int
	benchmarkCalls  int
}

func (f *stubFormatter) WriteAnalyze(_ *domain.AnalyzeResponse, _ domain.OutputFormat, _ io.Writer) error {
	f.analyzeCalls++
	return nil
}

func (f *stubFormatter) WriteComparison(_ *domain.ComparisonResult, _ domain.OutputFormat, _ io.Writer) error {
	f.comparisonCalls++
	return nil
}

func (f *stubFormatter) WriteBenchmark(_ *domain.BenchmarkResult, _ domain.OutputFormat, _ io.Writer) error {
	f.benchmarkCalls++
	return nil
}

type stubCompareService struct {
	result *domain.ComparisonResult
}

func (s *stubCompareService) Compare(_, _ *domain.MetricSnapshot) (*domain.ComparisonResult, error) {
	return s.result, nil
}

type stubBenchService struct {
	result *domain.BenchmarkResult
	err    error
}

func (s *stubBenchService) Benchmark(_ context.Context, _ domain.BenchmarkRequest) (*domain.BenchmarkResult, error) {
	return s.result, s.err
}

func emptySnapshot() *domain.MetricSnapshot {
	return &domain.MetricSnapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		Units:         map[string]domain.UnitMetrics{},
	}
}

func TestAnalyzeUseCasePersistsSnapshot(t *testing.T) {
	store := newStubStore()
	formatter := &stubFormatter{}
	svc := &stubAnalyzeService{response: &domain.AnalyzeResponse{Snapshot: emptySnapshot()}}
	uc := NewAnalyzeUseCase(svc, store, formatter)

	var buf bytes.Buffer
	_, err := uc.Execute(context.Background(), domain.AnalyzeRequest{
		Paths:        []string{"src"},
		SnapshotPath: "out/snapshot.json",
		OutputWriter: &buf,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := store.saved["out/snapshot.json"]; !ok {
		t.Error("snapshot was not persisted")
	}
	if formatter.analyzeCalls != 1 {
		t.Errorf("formatter called %d times, want 1", formatter.analyzeCalls)
	}
}

func TestAnalyzeUseCaseRequiresPaths(t *testing.T) {
	uc := NewAnalyzeUseCase(&stubAnalyzeService{}, newStubStore(), &stubFormatter{})
	if _, err := uc.Execute(context.Background(), domain.AnalyzeRequest{}); err == nil {
		t.Fatal("expected error for empty paths")
	}
}

func TestAnalyzeUseCasePropagatesServiceError(t *testing.T) {
	svc := &stubAnalyzeService{err: errors.New("boom")}
	uc := NewAnalyzeUseCase(svc, newStubStore(), &stubFormatter{})
	if _, err := uc.Execute(context.Background(), domain.AnalyzeRequest{Paths: []string{"x"}}); err == nil {
		t.Fatal("expected service error to propagate")
	}
}

func TestCompareUseCaseLoadsSnapshots(t *testing.T) {
	store := newStubStore()
	store.snapshots["before.json"] = emptySnapshot()
	store.snapshots["after.json"] = emptySnapshot()
	formatter := &stubFormatter{}
	uc := NewCompareUseCase(&stubAnalyzeService{}, &stubCompareService{result: &domain.ComparisonResult{}}, store, formatter, nil)

	var buf bytes.Buffer
	result, err := uc.Execute(context.Background(), CompareRequest{
		BeforeSnapshotPath: "before.json",
		AfterSnapshotPath:  "after.json",
		OutputWriter:       &buf,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || formatter.comparisonCalls != 1 {
		t.Error("comparison was not rendered")
	}
	// Persisted snapshots carry no findings, so no lint section
	if result.Lint != nil {
		t.Error("expected no lint comparison from persisted snapshots")
	}
}

func TestCompareUseCaseAnalyzesDirectories(t *testing.T) {
	svc := &stubAnalyzeService{response: &domain.AnalyzeResponse{
		Snapshot: emptySnapshot(),
		Findings: []domain.LintFinding{{Rule: "bare-except"}},
	}}
	lintCompare := func(before, after []domain.LintFinding) *domain.LintComparison {
		return &domain.LintComparison{TotalBefore: len(before), TotalAfter: len(after)}
	}
	uc := NewCompareUseCase(svc, &stubCompareService{result: &domain.ComparisonResult{}}, newStubStore(), &stubFormatter{}, lintCompare)

	result, err := uc.Execute(context.Background(), CompareRequest{
		BeforeDir: "old/src",
		AfterDir:  "new/src",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Lint == nil {
		t.Fatal("expected lint comparison when both sides were analyzed")
	}
	if result.Lint.TotalBefore != 1 || result.Lint.TotalAfter != 1 {
		t.Errorf("lint totals = %d/%d", result.Lint.TotalBefore, result.Lint.TotalAfter)
	}
}

func TestCompareUseCaseRejectsAmbiguousInput(t *testing.T) {
	uc := NewCompareUseCase(&stubAnalyzeService{}, &stubCompareService{}, newStubStore(), &stubFormatter{}, nil)
	_, err := uc.Execute(context.Background(), CompareRequest{
		BeforeSnapshotPath: "before.json",
		BeforeDir:          "src",
		AfterSnapshotPath:  "after.json",
	})
	if err == nil {
		t.Fatal("expected error when both a snapshot and a directory are given")
	}
}

func TestCompareUseCaseRequiresBothSides(t *testing.T) {
	store := newStubStore()
	store.snapshots["before.json"] = emptySnapshot()
	uc := NewCompareUseCase(&stubAnalyzeService{}, &stubCompareService{}, store, &stubFormatter{}, nil)
	_, err := uc.Execute(context.Background(), CompareRequest{BeforeSnapshotPath: "before.json"})
	if err == nil {
		t.Fatal("expected error when the after side is missing")
	}
}

func TestBenchUseCaseRendersResult(t *testing.T) {
	formatter := &stubFormatter{}
	svc := &stubBenchService{result: &domain.BenchmarkResult{Verdict: domain.BenchWithinThreshold}}
	uc := NewBenchUseCase(svc, formatter)

	var buf bytes.Buffer
	result, err := uc.Execute(context.Background(), domain.BenchmarkRequest{
		BeforeCommand: []string{"a"},
		AfterCommand:  []string{"b"},
	}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verdict != domain.BenchWithinThreshold {
		t.Errorf("verdict = %s", result.Verdict)
	}
	if formatter.benchmarkCalls != 1 {
		t.Errorf("formatter called %d times, want 1", formatter.benchmarkCalls)
	}
}

func TestBenchUseCasePropagatesError(t *testing.T) {
	svc := &stubBenchService{err: errors.New("no such binary")}
	uc := NewBenchUseCase(svc, &stubFormatter{})
	if _, err := uc.Execute(context.Background(), domain.BenchmarkRequest{}, nil); err == nil {
		t.Fatal("expected error to propagate")
	}
}
