package main

import (
	"fmt"
	"os"

	"github.com/ludo-technologies/refscan/internal/version"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "refscan",
		Short: "refscan - refactoring validation for Python code",
		Long: `refscan validates Python refactorings with evidence instead of intuition.
It measures complexity and documentation coverage, runs lightweight lint
checks, diffs metric snapshots taken before and after a change, and times
both variants to catch performance regressions.`,
		Version: version.GetVersion(),
	}

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(benchCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*CheckExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Println(version.GetFullVersion())
			} else {
				fmt.Printf("refscan version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
