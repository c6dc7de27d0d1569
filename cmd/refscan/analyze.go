package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ludo-technologies/refscan/app"
	"github.com/ludo-technologies/refscan/domain"
	"github.com/ludo-technologies/refscan/internal/config"
	"github.com/ludo-technologies/refscan/service"
	"github.com/spf13/cobra"
)

var (
	analyzeFormat     string
	analyzeConfigPath string
	analyzeSnapshot   string
	analyzeStrict     bool
	analyzeNoProgress bool
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Measure complexity, documentation and lint health of Python code",
		Long: `Analyze Python files and build a metric snapshot covering cyclomatic and
cognitive complexity, nesting depth, unit length, documentation coverage and
lint findings.

Examples:
  refscan analyze src/
  refscan analyze --snapshot before.json src/
  refscan analyze --format json src/
  refscan analyze --strict --config refscan.yaml src/`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text",
		"Output format: text, json, yaml, csv")
	cmd.Flags().StringVarP(&analyzeConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVarP(&analyzeSnapshot, "snapshot", "s", "",
		"Persist the metric snapshot to this path")
	cmd.Flags().BoolVar(&analyzeStrict, "strict", false,
		"Apply the strict threshold preset")
	cmd.Flags().BoolVar(&analyzeNoProgress, "no-progress", false,
		"Disable the progress bar")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no paths specified")
	}

	format := domain.OutputFormat(analyzeFormat)

	cfg, err := loadConfigOrDefault(analyzeConfigPath, args[0])
	if err != nil {
		return err
	}
	if analyzeStrict {
		cfg.ApplyStrictness(config.StrictnessStrict)
	}

	pm := service.NewProgressManager(!analyzeNoProgress && format == domain.OutputFormatText)
	defer pm.Close()

	analyzer := service.NewAnalyzerService(cfg, app.NewFileHelper(), pm)
	formatter := service.NewOutputFormatterWithSort(domain.SortCriteria(cfg.Output.SortBy))
	uc := app.NewAnalyzeUseCase(analyzer, service.NewSnapshotStore(), formatter)

	ctx := context.Background()
	if cfg.Performance.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Performance.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	response, err := uc.Execute(ctx, domain.AnalyzeRequest{
		Paths:           args,
		OutputFormat:    format,
		OutputWriter:    os.Stdout,
		SortBy:          domain.SortCriteria(cfg.Output.SortBy),
		SnapshotPath:    analyzeSnapshot,
		ConfigPath:      analyzeConfigPath,
		Recursive:       cfg.Analysis.Recursive,
		IncludePatterns: cfg.Analysis.IncludePatterns,
		ExcludePatterns: cfg.Analysis.ExcludePatterns,
	})
	if err != nil {
		return err
	}

	// Threshold failures are reported in the output; only strict mode
	// turns them into a non-zero exit
	if analyzeStrict && !response.Summary.Passed {
		return fmt.Errorf("quality thresholds violated")
	}
	return nil
}

// loadConfigOrDefault resolves the effective config for a command run
func loadConfigOrDefault(path, target string) (*config.Config, error) {
	loader := service.NewConfigurationLoader()
	if path == "" {
		return loader.LoadDefaultConfig(), nil
	}
	return loader.LoadConfig(path, target)
}
