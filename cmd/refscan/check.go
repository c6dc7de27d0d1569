package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/refscan/app"
	"github.com/ludo-technologies/refscan/domain"
	"github.com/ludo-technologies/refscan/service"
	"github.com/spf13/cobra"
)

// CheckExitError carries a process exit code out of the check command
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

var (
	checkMaxCyclomatic int
	checkMaxCognitive  int
	checkConfigPath    string
	checkJSON          bool
	checkQuiet         bool
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Fast quality gate for CI/CD pipelines",
		Long: `Run the analysis and exit with a code suited for CI/CD gating.

Exit codes:
  0 - All checks pass
  1 - Quality threshold(s) violated
  2 - Analysis error (file not found, parse failure, bad config)

Examples:
  refscan check src/
  refscan check --max-cyclomatic 8 src/
  refscan check --json src/`,
		RunE:          runCheck,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().IntVar(&checkMaxCyclomatic, "max-cyclomatic", 0,
		"Maximum allowed cyclomatic complexity per unit (overrides config)")
	cmd.Flags().IntVar(&checkMaxCognitive, "max-cognitive", 0,
		"Maximum allowed cognitive complexity per unit (overrides config)")
	cmd.Flags().StringVarP(&checkConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().BoolVar(&checkJSON, "json", false,
		"Output results as JSON")
	cmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false,
		"Suppress the report, use the exit code only")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &CheckExitError{Code: 2, Message: "no paths specified"}
	}

	cfg, err := loadConfigOrDefault(checkConfigPath, args[0])
	if err != nil {
		return &CheckExitError{Code: 2, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}
	if checkMaxCyclomatic > 0 {
		cfg.Complexity.CyclomaticThreshold = checkMaxCyclomatic
	}
	if checkMaxCognitive > 0 {
		cfg.Complexity.CognitiveThreshold = checkMaxCognitive
	}

	format := domain.OutputFormatText
	if checkJSON {
		format = domain.OutputFormatJSON
	}
	var output io.Writer = os.Stdout
	if checkQuiet {
		output = nil
	}

	analyzer := service.NewAnalyzerService(cfg, app.NewFileHelper(), &service.NoOpProgressManager{})
	uc := app.NewAnalyzeUseCase(analyzer, service.NewSnapshotStore(), service.NewOutputFormatter())

	response, err := uc.Execute(context.Background(), domain.AnalyzeRequest{
		Paths:           args,
		OutputFormat:    format,
		OutputWriter:    output,
		Recursive:       cfg.Analysis.Recursive,
		IncludePatterns: cfg.Analysis.IncludePatterns,
		ExcludePatterns: cfg.Analysis.ExcludePatterns,
	})
	if err != nil {
		return &CheckExitError{Code: 2, Message: err.Error()}
	}

	if !response.Summary.Passed {
		return &CheckExitError{Code: 1}
	}
	return nil
}
