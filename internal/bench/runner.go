package bench

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// Runner executes one benchmark repetition and reports its wall-clock duration
type Runner interface {
	Run(ctx context.Context, argv []string) (time.Duration, error)
}

// ProcessRunner runs each repetition as a fresh child process so that
// interpreter startup and caches cannot leak between samples
type ProcessRunner struct {
	// Stdout and Stderr receive the command's output; nil discards it
	Stdout io.Writer
	Stderr io.Writer
}

// NewProcessRunner creates a runner that discards command output
func NewProcessRunner() *ProcessRunner {
	return &ProcessRunner{}
}

// Run executes argv once and returns the elapsed wall-clock time
func (r *ProcessRunner) Run(ctx context.Context, argv []string) (time.Duration, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		return 0, fmt.Errorf("command timed out after %s: %w", elapsed.Round(time.Millisecond), ctx.Err())
	}
	if err != nil {
		return 0, fmt.Errorf("command %q failed: %w", argv[0], err)
	}

	return elapsed, nil
}

// LookupExecutable verifies that the command's executable can be resolved
// before any timed run starts
func LookupExecutable(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return fmt.Errorf("executable not found: %w", err)
	}
	return nil
}
