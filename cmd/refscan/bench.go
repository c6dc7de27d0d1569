package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ludo-technologies/refscan/app"
	"github.com/ludo-technologies/refscan/domain"
	"github.com/ludo-technologies/refscan/service"
	"github.com/spf13/cobra"
)

var (
	benchFormat     string
	benchConfigPath string
	benchBefore     []string
	benchAfter      []string
	benchWorkload   string
	benchReps       int
)

func benchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time two command variants and classify the difference",
		Long: `Benchmark the before and after variants of a workload. Each variant runs in
a fresh process; one warmup run per variant is discarded, then the configured
number of repetitions is timed sequentially.

The verdict is based on medians. Too few samples or noisy measurements yield
"inconclusive" rather than a false all-clear.

Examples:
  refscan bench --before "python old.py" --after "python new.py"
  refscan bench --before "python old.py" --after "python new.py" --workload data.csv
  refscan bench --reps 10 --before "./v1" --after "./v2"`,
		RunE: runBench,
	}

	cmd.Flags().StringVarP(&benchFormat, "format", "f", "text",
		"Output format: text, json, yaml")
	cmd.Flags().StringVarP(&benchConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringSliceVar(&benchBefore, "before", nil,
		"Before command (repeat the flag for each argv element, or comma-separate)")
	cmd.Flags().StringSliceVar(&benchAfter, "after", nil,
		"After command (repeat the flag for each argv element, or comma-separate)")
	cmd.Flags().StringVarP(&benchWorkload, "workload", "w", "",
		"Workload identifier appended to both commands")
	cmd.Flags().IntVarP(&benchReps, "reps", "r", 0,
		"Timed repetitions per variant (overrides config)")

	return cmd
}

func runBench(cmd *cobra.Command, args []string) error {
	if len(benchBefore) == 0 || len(benchAfter) == 0 {
		return fmt.Errorf("both --before and --after commands are required")
	}

	cfg, err := loadConfigOrDefault(benchConfigPath, ".")
	if err != nil {
		return err
	}

	pm := service.NewProgressManager(domain.OutputFormat(benchFormat) == domain.OutputFormatText)
	defer pm.Close()

	svc := service.NewBenchService(cfg)
	svc.SetProgressManager(pm)
	uc := app.NewBenchUseCase(svc, service.NewOutputFormatter())

	result, err := uc.Execute(context.Background(), domain.BenchmarkRequest{
		BeforeCommand: benchBefore,
		AfterCommand:  benchAfter,
		Workload:      benchWorkload,
		Repetitions:   benchReps,
		OutputFormat:  domain.OutputFormat(benchFormat),
	}, os.Stdout)
	if err != nil {
		return err
	}

	if result.Regression {
		return fmt.Errorf("performance regression detected: after median is %.2f%% slower", result.PercentChange)
	}
	return nil
}
