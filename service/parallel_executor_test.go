package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ludo-technologies/refscan/domain"
	"github.com/ludo-technologies/refscan/internal/config"
	"github.com/schollz/progressbar/v3"
)

type countingTask struct {
	name    string
	enabled bool
	fail    error
	slow    time.Duration
	runs    *atomic.Int32
}

func (t *countingTask) Name() string    { return t.name }
func (t *countingTask) IsEnabled() bool { return t.enabled }

func (t *countingTask) Execute(ctx context.Context) (any, error) {
	if t.slow > 0 {
		select {
		case <-time.After(t.slow):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	t.runs.Add(1)
	return t.name, t.fail
}

func TestParallelExecutorRunsAllTasks(t *testing.T) {
	var runs atomic.Int32
	tasks := []domain.ExecutableTask{
		&countingTask{name: "a", enabled: true, runs: &runs},
		&countingTask{name: "b", enabled: true, runs: &runs},
		&countingTask{name: "c", enabled: true, runs: &runs},
	}

	executor := NewParallelExecutor()
	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs.Load() != 3 {
		t.Errorf("expected 3 tasks to run, got %d", runs.Load())
	}
}

func TestParallelExecutorSkipsDisabledTasks(t *testing.T) {
	var runs atomic.Int32
	tasks := []domain.ExecutableTask{
		&countingTask{name: "on", enabled: true, runs: &runs},
		&countingTask{name: "off", enabled: false, runs: &runs},
	}

	executor := NewParallelExecutor()
	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs.Load() != 1 {
		t.Errorf("expected only the enabled task to run, got %d", runs.Load())
	}
}

func TestParallelExecutorCollectsErrorsWithoutCancelling(t *testing.T) {
	var runs atomic.Int32
	tasks := []domain.ExecutableTask{
		&countingTask{name: "bad1", enabled: true, fail: errors.New("boom"), runs: &runs},
		&countingTask{name: "good", enabled: true, runs: &runs},
		&countingTask{name: "bad2", enabled: true, fail: errors.New("bang"), runs: &runs},
	}

	cfg := config.DefaultConfig()
	cfg.Performance.MaxGoroutines = 1
	executor := NewParallelExecutorFromConfig(&cfg.Performance)

	err := executor.Execute(context.Background(), tasks)
	if err == nil {
		t.Fatal("expected aggregated error")
	}

	var aggregated *AggregatedError
	if !errors.As(err, &aggregated) {
		t.Fatalf("expected AggregatedError, got %T", err)
	}
	if len(aggregated.Errors) != 2 {
		t.Errorf("expected 2 task errors, got %d", len(aggregated.Errors))
	}
	// One failing task must not stop the others
	if runs.Load() != 3 {
		t.Errorf("expected all 3 tasks to run, got %d", runs.Load())
	}
	if !strings.Contains(err.Error(), "bad1") || !strings.Contains(err.Error(), "bad2") {
		t.Errorf("aggregated error should name failing tasks: %v", err)
	}
}

func TestParallelExecutorTimeout(t *testing.T) {
	var runs atomic.Int32
	tasks := []domain.ExecutableTask{
		&countingTask{name: "slow", enabled: true, slow: 5 * time.Second, runs: &runs},
	}

	cfg := config.DefaultConfig()
	cfg.Performance.TimeoutSeconds = 1
	executor := NewParallelExecutorFromConfig(&cfg.Performance)
	executor.timeout = 50 * time.Millisecond

	err := executor.Execute(context.Background(), tasks)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestParallelExecutorNoEnabledTasks(t *testing.T) {
	var runs atomic.Int32
	tasks := []domain.ExecutableTask{
		&countingTask{name: "off", enabled: false, runs: &runs},
	}

	executor := NewParallelExecutor()
	if err := executor.Execute(context.Background(), tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs.Load() != 0 {
		t.Errorf("expected no tasks to run, got %d", runs.Load())
	}
}

func TestParallelExecutorFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Performance.MaxGoroutines = 3
	cfg.Performance.TimeoutSeconds = 10

	executor := NewParallelExecutorFromConfig(&cfg.Performance)
	if executor.maxConcurrency != 3 {
		t.Errorf("max concurrency = %d, want 3", executor.maxConcurrency)
	}
	if executor.timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", executor.timeout)
	}

	cfg.Performance.MaxGoroutines = 0
	executor = NewParallelExecutorFromConfig(&cfg.Performance)
	if executor.maxConcurrency <= 0 {
		t.Errorf("zero config must fall back to a positive worker count, got %d", executor.maxConcurrency)
	}
}

func TestTaskErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	taskErr := TaskError{TaskName: "parse", Err: cause}
	if !errors.Is(taskErr, cause) {
		t.Error("TaskError should unwrap to its cause")
	}
	if !strings.Contains(taskErr.Error(), "parse") {
		t.Errorf("TaskError should name the task: %v", taskErr)
	}
}

func TestProgressManagerTracksTasks(t *testing.T) {
	pm := &ProgressManagerImpl{writer: io.Discard}
	if !pm.IsInteractive() {
		t.Error("bar-backed progress manager must report interactive")
	}
	task := pm.StartTask("Analyzing files", 2)
	task.Increment(2)
	task.Complete()
	if len(pm.tasks) != 1 {
		t.Errorf("tracked tasks = %d, want 1", len(pm.tasks))
	}
	pm.Close()
	if pm.tasks != nil {
		t.Error("Close must release tracked tasks")
	}
}

func TestTaskProgressDescribeThrottled(t *testing.T) {
	bar := progressbar.NewOptions(10, progressbar.OptionSetWriter(io.Discard))
	tp := &TaskProgressImpl{bar: bar}

	tp.Describe("first file")
	stamp := tp.lastDescribe.Load()
	if stamp == 0 {
		t.Fatal("first describe must go through")
	}

	tp.Describe("second file")
	if tp.lastDescribe.Load() != stamp {
		t.Error("back-to-back describe must be dropped")
	}

	time.Sleep(describeInterval + 20*time.Millisecond)
	tp.Describe("third file")
	if tp.lastDescribe.Load() == stamp {
		t.Error("describe after the redraw interval must go through")
	}
}

func TestProgressManagerNoOpWhenDisabled(t *testing.T) {
	pm := NewProgressManager(false)
	if pm.IsInteractive() {
		t.Error("disabled progress manager must not be interactive")
	}
	task := pm.StartTask("working", 10)
	task.Increment(5)
	task.Describe("still working")
	task.Complete()
	pm.Close()
}

func TestIsInteractiveEnvironmentCI(t *testing.T) {
	t.Setenv("CI", "true")
	if IsInteractiveEnvironment() {
		t.Error("CI environment must not be interactive")
	}
}

func TestIsInteractiveEnvironmentDumbTerm(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("TERM", "dumb")
	if IsInteractiveEnvironment() {
		t.Error("TERM=dumb must not be interactive")
	}
}
