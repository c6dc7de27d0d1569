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
	compareFormat     string
	compareConfigPath string
	compareBeforeDir  string
	compareAfterDir   string
)

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [before-snapshot] [after-snapshot]",
		Short: "Diff two metric snapshots",
		Long: `Compare the metric snapshots of a codebase before and after a refactoring.
Units are matched by their stable key; new and removed units are reported
without deltas so no unit silently disappears from the comparison.

Either pass two persisted snapshot files, or analyze two source trees on the
fly with --before-dir and --after-dir.

Examples:
  refscan compare before.json after.json
  refscan compare --before-dir old/src --after-dir new/src
  refscan compare --format json before.json after.json`,
		RunE: runCompare,
	}

	cmd.Flags().StringVarP(&compareFormat, "format", "f", "text",
		"Output format: text, json, yaml, csv")
	cmd.Flags().StringVarP(&compareConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&compareBeforeDir, "before-dir", "",
		"Analyze this directory as the before side")
	cmd.Flags().StringVar(&compareAfterDir, "after-dir", "",
		"Analyze this directory as the after side")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	req := app.CompareRequest{
		BeforeDir:    compareBeforeDir,
		AfterDir:     compareAfterDir,
		OutputFormat: domain.OutputFormat(compareFormat),
		OutputWriter: os.Stdout,
	}

	switch len(args) {
	case 0:
		if compareBeforeDir == "" || compareAfterDir == "" {
			return fmt.Errorf("pass two snapshot files or both --before-dir and --after-dir")
		}
	case 2:
		req.BeforeSnapshotPath = args[0]
		req.AfterSnapshotPath = args[1]
	default:
		return fmt.Errorf("expected exactly two snapshot files, got %d arguments", len(args))
	}

	target := compareBeforeDir
	if target == "" && len(args) == 2 {
		target = "."
	}
	cfg, err := loadConfigOrDefault(compareConfigPath, target)
	if err != nil {
		return err
	}

	pm := service.NewProgressManager(req.OutputFormat == domain.OutputFormatText)
	defer pm.Close()

	analyzer := service.NewAnalyzerService(cfg, app.NewFileHelper(), pm)
	uc := app.NewCompareUseCase(
		analyzer,
		service.NewCompareService(),
		service.NewSnapshotStore(),
		service.NewOutputFormatter(),
		service.CompareLint,
	)

	result, err := uc.Execute(context.Background(), req)
	if err != nil {
		return err
	}

	if result.Summary.RegressedUnits > 0 {
		fmt.Fprintf(os.Stderr, "%d unit(s) regressed in cyclomatic complexity\n", result.Summary.RegressedUnits)
	}
	return nil
}
