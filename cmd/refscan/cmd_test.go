package main

import (
	"testing"
)

func TestAnalyzeCmd_FlagsExist(t *testing.T) {
	cmd := analyzeCmd()

	expectedFlags := []string{"format", "config", "snapshot", "strict", "no-progress"}
	for _, flagName := range expectedFlags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
}

func TestAnalyzeCmd_ShortFlags(t *testing.T) {
	cmd := analyzeCmd()

	shortFlags := map[string]string{
		"f": "format",
		"c": "config",
		"s": "snapshot",
	}
	for short, long := range shortFlags {
		if cmd.Flags().ShorthandLookup(short) == nil {
			t.Errorf("Missing short flag -%s for --%s", short, long)
		}
	}
}

func TestAnalyzeCmd_DefaultFormat(t *testing.T) {
	cmd := analyzeCmd()
	formatFlag := cmd.Flags().Lookup("format")
	if formatFlag == nil {
		t.Fatal("format flag not found")
	}
	if formatFlag.DefValue != "text" {
		t.Errorf("Expected default format 'text', got %q", formatFlag.DefValue)
	}
}

func TestAnalyzeCmd_NoPathsError(t *testing.T) {
	cmd := analyzeCmd()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected error when no paths specified")
	}
}

func TestCompareCmd_FlagsExist(t *testing.T) {
	cmd := compareCmd()

	expectedFlags := []string{"format", "config", "before-dir", "after-dir"}
	for _, flagName := range expectedFlags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
}

func TestCompareCmd_NoInputError(t *testing.T) {
	cmd := compareCmd()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected error when neither snapshots nor directories are given")
	}
}

func TestCompareCmd_WrongArgCount(t *testing.T) {
	cmd := compareCmd()
	cmd.SetArgs([]string{"only-one.json"})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for a single snapshot argument")
	}
}

func TestBenchCmd_FlagsExist(t *testing.T) {
	cmd := benchCmd()

	expectedFlags := []string{"format", "config", "before", "after", "workload", "reps"}
	for _, flagName := range expectedFlags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
}

func TestBenchCmd_MissingCommandsError(t *testing.T) {
	cmd := benchCmd()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected error when --before and --after are missing")
	}
}

func TestCheckCmd_FlagsExist(t *testing.T) {
	cmd := checkCmd()

	expectedFlags := []string{"max-cyclomatic", "max-cognitive", "config", "json", "quiet"}
	for _, flagName := range expectedFlags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
}

func TestCheckCmd_NoPathsExitCode(t *testing.T) {
	cmd := checkCmd()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("Expected error when no paths specified")
	}
	exitErr, ok := err.(*CheckExitError)
	if !ok {
		t.Fatalf("Expected CheckExitError, got %T", err)
	}
	if exitErr.Code != 2 {
		t.Errorf("Expected exit code 2, got %d", exitErr.Code)
	}
}

func TestCheckExitError_Error(t *testing.T) {
	err := &CheckExitError{Code: 1, Message: "threshold violated"}
	if err.Error() != "threshold violated" {
		t.Errorf("Unexpected error string: %q", err.Error())
	}
}

func TestVersionCmd_FlagsExist(t *testing.T) {
	cmd := versionCmd()
	if cmd.Flags().Lookup("verbose") == nil {
		t.Error("Missing expected flag: --verbose")
	}
	if cmd.Flags().ShorthandLookup("v") == nil {
		t.Error("Missing short flag -v for --verbose")
	}
}
