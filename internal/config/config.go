package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default complexity thresholds based on McCabe and cognitive complexity standards
const (
	// DefaultCyclomaticThreshold defines the maximum acceptable cyclomatic complexity
	// Functions above 10 decision points are flagged for refactoring
	DefaultCyclomaticThreshold = 10

	// DefaultCognitiveThreshold defines the maximum acceptable cognitive complexity
	DefaultCognitiveThreshold = 15

	// DefaultMaxLength defines the maximum acceptable function length in code lines
	DefaultMaxLength = 30

	// DefaultMaxNesting defines the maximum acceptable nesting depth
	DefaultMaxNesting = 3
)

// Default documentation coverage thresholds
const (
	// DefaultMinDocCoverage is the minimum fraction of public symbols with docstrings
	DefaultMinDocCoverage = 0.80

	// DefaultMinTypeCoverage is the minimum fraction of annotatable sites with annotations
	DefaultMinTypeCoverage = 0.90
)

// Default benchmark settings
const (
	// DefaultBenchRepetitions is the number of timed repetitions per variant
	DefaultBenchRepetitions = 5

	// DefaultBenchMinSamples is the minimum sample count for a conclusive verdict
	DefaultBenchMinSamples = 5

	// DefaultRegressionThreshold is the relative slowdown treated as a regression
	DefaultRegressionThreshold = 0.10

	// DefaultNoiseCutoff is the maximum sample spread before a run is inconclusive
	DefaultNoiseCutoff = 0.20

	// DefaultBenchTimeoutSeconds bounds a single benchmark repetition
	DefaultBenchTimeoutSeconds = 120
)

// Default performance settings
const (
	// DefaultMaxGoroutines is the worker pool size for parallel file analysis
	// 0 means use the number of logical CPUs
	DefaultMaxGoroutines = 0

	// DefaultAnalysisTimeoutSeconds bounds a whole analysis run
	DefaultAnalysisTimeoutSeconds = 300

	// DefaultUnitTimeoutSeconds bounds the analysis of a single file
	DefaultUnitTimeoutSeconds = 30
)

// Config represents the main configuration structure
type Config struct {
	// Complexity holds complexity threshold configuration
	Complexity ComplexityConfig `json:"complexity" mapstructure:"complexity" yaml:"complexity"`

	// Documentation holds documentation coverage configuration
	Documentation DocumentationConfig `json:"documentation" mapstructure:"documentation" yaml:"documentation"`

	// Lint holds lint rule configuration
	Lint LintConfig `json:"lint" mapstructure:"lint" yaml:"lint"`

	// Benchmark holds performance benchmark configuration
	Benchmark BenchmarkConfig `json:"benchmark" mapstructure:"benchmark" yaml:"benchmark"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Analysis holds general analysis configuration
	Analysis AnalysisConfig `json:"analysis,omitempty" mapstructure:"analysis" yaml:"analysis"`

	// Performance holds execution tuning configuration
	Performance PerformanceConfig `json:"performance,omitempty" mapstructure:"performance" yaml:"performance"`
}

// ComplexityConfig holds thresholds for per-function complexity metrics
type ComplexityConfig struct {
	// CyclomaticThreshold is the maximum allowed cyclomatic complexity
	CyclomaticThreshold int `json:"cyclomaticThreshold" mapstructure:"cyclomatic_threshold" yaml:"cyclomatic_threshold"`

	// CognitiveThreshold is the maximum allowed cognitive complexity
	CognitiveThreshold int `json:"cognitiveThreshold" mapstructure:"cognitive_threshold" yaml:"cognitive_threshold"`

	// MaxLength is the maximum allowed function length in code lines
	MaxLength int `json:"maxLength" mapstructure:"max_length" yaml:"max_length"`

	// MaxNesting is the maximum allowed nesting depth
	MaxNesting int `json:"maxNesting" mapstructure:"max_nesting" yaml:"max_nesting"`

	// Enabled controls whether complexity analysis is performed
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
}

// DocumentationConfig holds thresholds for documentation coverage
type DocumentationConfig struct {
	// MinDocCoverage is the minimum docstring coverage over public symbols (0.0-1.0)
	MinDocCoverage float64 `json:"minDocCoverage" mapstructure:"min_doc_coverage" yaml:"min_doc_coverage"`

	// MinTypeCoverage is the minimum type annotation coverage (0.0-1.0)
	MinTypeCoverage float64 `json:"minTypeCoverage" mapstructure:"min_type_coverage" yaml:"min_type_coverage"`

	// Enabled controls whether documentation analysis is performed
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
}

// LintConfig holds lint rule configuration
type LintConfig struct {
	// Enabled controls whether lint checking is performed
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// DisabledRules lists rule names that should not run
	DisabledRules []string `json:"disabled_rules" mapstructure:"disabled_rules" yaml:"disabled_rules"`

	// MinSeverity is the minimum severity level to report
	MinSeverity string `json:"min_severity" mapstructure:"min_severity" yaml:"min_severity"`
}

// BenchmarkConfig holds performance benchmark configuration
type BenchmarkConfig struct {
	// Repetitions is the number of timed runs per variant
	Repetitions int `json:"repetitions" mapstructure:"repetitions" yaml:"repetitions"`

	// MinSamples is the minimum sample count required for a conclusive verdict
	MinSamples int `json:"min_samples" mapstructure:"min_samples" yaml:"min_samples"`

	// RegressionThreshold is the relative slowdown treated as a regression (0.10 = 10%)
	RegressionThreshold float64 `json:"regression_threshold" mapstructure:"regression_threshold" yaml:"regression_threshold"`

	// NoiseCutoff is the maximum (max-min)/median spread before a run is inconclusive
	NoiseCutoff float64 `json:"noise_cutoff" mapstructure:"noise_cutoff" yaml:"noise_cutoff"`

	// TimeoutSeconds bounds a single repetition; 0 means no limit
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`

	// Warmup controls whether an untimed warmup run precedes the timed repetitions
	Warmup bool `json:"warmup" mapstructure:"warmup" yaml:"warmup"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// ShowDetails controls whether to show per-unit breakdown
	ShowDetails bool `json:"show_details" mapstructure:"show_details" yaml:"show_details"`

	// SortBy specifies how to sort results: key, complexity, cognitive, length
	SortBy string `json:"sort_by" mapstructure:"sort_by" yaml:"sort_by"`

	// Directory specifies the output directory for snapshots and reports
	// (empty = ".refscan" under the current working directory)
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`
}

// AnalysisConfig holds general analysis configuration
type AnalysisConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// Recursive controls whether to analyze directories recursively
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive"`

	// FollowSymlinks controls whether to follow symbolic links
	FollowSymlinks bool `json:"follow_symlinks" mapstructure:"follow_symlinks" yaml:"follow_symlinks"`
}

// PerformanceConfig holds execution tuning configuration
type PerformanceConfig struct {
	// MaxGoroutines is the worker pool size; 0 means use the CPU count
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds a whole analysis run; 0 means no limit
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`

	// UnitTimeoutSeconds bounds the analysis of a single file; a file that
	// exceeds it is recorded as incomplete without failing the run. 0 means
	// no limit.
	UnitTimeoutSeconds int `json:"unit_timeout_seconds" mapstructure:"unit_timeout_seconds" yaml:"unit_timeout_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Complexity: ComplexityConfig{
			CyclomaticThreshold: DefaultCyclomaticThreshold,
			CognitiveThreshold:  DefaultCognitiveThreshold,
			MaxLength:           DefaultMaxLength,
			MaxNesting:          DefaultMaxNesting,
			Enabled:             true,
		},
		Documentation: DocumentationConfig{
			MinDocCoverage:  DefaultMinDocCoverage,
			MinTypeCoverage: DefaultMinTypeCoverage,
			Enabled:         true,
		},
		Lint: LintConfig{
			Enabled:       true,
			DisabledRules: []string{},
			MinSeverity:   "low",
		},
		Benchmark: BenchmarkConfig{
			Repetitions:         DefaultBenchRepetitions,
			MinSamples:          DefaultBenchMinSamples,
			RegressionThreshold: DefaultRegressionThreshold,
			NoiseCutoff:         DefaultNoiseCutoff,
			TimeoutSeconds:      DefaultBenchTimeoutSeconds,
			Warmup:              true,
		},
		Output: OutputConfig{
			Format:      "text",
			ShowDetails: false,
			SortBy:      "complexity",
		},
		Analysis: AnalysisConfig{
			IncludePatterns: []string{"**/*.py"},
			ExcludePatterns: []string{
				// Virtual environments and caches
				".venv",
				"venv",
				"__pycache__",
				".mypy_cache",
				".pytest_cache",
				".tox",
				// Package builds
				"build",
				"dist",
				"*.egg-info",
				// Version control
				".git",
			},
			Recursive:      true,
			FollowSymlinks: false,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:      DefaultMaxGoroutines,
			TimeoutSeconds:     DefaultAnalysisTimeoutSeconds,
			UnitTimeoutSeconds: DefaultUnitTimeoutSeconds,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context.
// If no config path is specified, one is discovered relative to the target.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// Create a new viper instance to avoid race conditions
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common locations.
// targetPath is the path being analyzed (a Python file or directory).
func findDefaultConfig(targetPath string) string {
	candidates := []string{
		"refscan.yaml",
		"refscan.yml",
		".refscan.yaml",
		".refscan.yml",
		"refscan.json",
		".refscan.json",
	}

	// If targetPath is provided, search from there upward
	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			// Search from target directory up to the filesystem root
			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	// Fallback to current directory
	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "refscan"), candidates); config != "" {
			return config
		}
	}

	// Check ~/.config/refscan/ (XDG default), then the home directory itself
	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", "refscan")
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}

		if config := searchConfigInDirectory(home, candidates); config != "" {
			return config
		}
	}

	// Check REFSCAN_CONFIG environment variable as fallback
	if envConfig := os.Getenv("REFSCAN_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Complexity.CyclomaticThreshold < 1 {
		return fmt.Errorf("complexity.cyclomatic_threshold must be >= 1, got %d", c.Complexity.CyclomaticThreshold)
	}

	if c.Complexity.CognitiveThreshold < 1 {
		return fmt.Errorf("complexity.cognitive_threshold must be >= 1, got %d", c.Complexity.CognitiveThreshold)
	}

	if c.Complexity.MaxLength < 1 {
		return fmt.Errorf("complexity.max_length must be >= 1, got %d", c.Complexity.MaxLength)
	}

	if c.Complexity.MaxNesting < 1 {
		return fmt.Errorf("complexity.max_nesting must be >= 1, got %d", c.Complexity.MaxNesting)
	}

	if c.Documentation.MinDocCoverage < 0 || c.Documentation.MinDocCoverage > 1 {
		return fmt.Errorf("documentation.min_doc_coverage must be between 0.0 and 1.0, got %g", c.Documentation.MinDocCoverage)
	}

	if c.Documentation.MinTypeCoverage < 0 || c.Documentation.MinTypeCoverage > 1 {
		return fmt.Errorf("documentation.min_type_coverage must be between 0.0 and 1.0, got %g", c.Documentation.MinTypeCoverage)
	}

	validSeverities := map[string]bool{
		"high":   true,
		"medium": true,
		"low":    true,
	}
	if !validSeverities[c.Lint.MinSeverity] {
		return fmt.Errorf("invalid lint.min_severity '%s', must be one of: high, medium, low", c.Lint.MinSeverity)
	}

	if err := c.validateBenchmarkConfig(); err != nil {
		return err
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"csv":  true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv", c.Output.Format)
	}

	validSortBy := map[string]bool{
		"key":        true,
		"complexity": true,
		"cognitive":  true,
		"length":     true,
	}
	if !validSortBy[c.Output.SortBy] {
		return fmt.Errorf("invalid output.sort_by '%s', must be one of: key, complexity, cognitive, length", c.Output.SortBy)
	}

	if len(c.Analysis.IncludePatterns) == 0 {
		return fmt.Errorf("analysis.include_patterns cannot be empty")
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}

	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	if c.Performance.UnitTimeoutSeconds < 0 {
		return fmt.Errorf("performance.unit_timeout_seconds must be >= 0, got %d", c.Performance.UnitTimeoutSeconds)
	}

	return nil
}

// validateBenchmarkConfig validates the benchmark configuration
func (c *Config) validateBenchmarkConfig() error {
	if c.Benchmark.Repetitions < 1 {
		return fmt.Errorf("benchmark.repetitions must be >= 1, got %d", c.Benchmark.Repetitions)
	}

	if c.Benchmark.MinSamples < 1 {
		return fmt.Errorf("benchmark.min_samples must be >= 1, got %d", c.Benchmark.MinSamples)
	}

	if c.Benchmark.RegressionThreshold <= 0 {
		return fmt.Errorf("benchmark.regression_threshold must be > 0, got %g", c.Benchmark.RegressionThreshold)
	}

	if c.Benchmark.NoiseCutoff <= 0 {
		return fmt.Errorf("benchmark.noise_cutoff must be > 0, got %g", c.Benchmark.NoiseCutoff)
	}

	if c.Benchmark.TimeoutSeconds < 0 {
		return fmt.Errorf("benchmark.timeout_seconds must be >= 0, got %d", c.Benchmark.TimeoutSeconds)
	}

	return nil
}

// ExceedsCyclomatic checks if a cyclomatic complexity exceeds the threshold
func (c *ComplexityConfig) ExceedsCyclomatic(complexity int) bool {
	return complexity > c.CyclomaticThreshold
}

// ExceedsCognitive checks if a cognitive complexity exceeds the threshold
func (c *ComplexityConfig) ExceedsCognitive(complexity int) bool {
	return complexity > c.CognitiveThreshold
}

// RuleEnabled reports whether a lint rule should run
func (c *LintConfig) RuleEnabled(name string) bool {
	if !c.Enabled {
		return false
	}
	for _, disabled := range c.DisabledRules {
		if disabled == name {
			return false
		}
	}
	return true
}

// MinSeverityLevel returns the minimum severity level as an integer for comparison
func (c *LintConfig) MinSeverityLevel() int {
	switch c.MinSeverity {
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	default:
		return 1
	}
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("complexity", config.Complexity)
	v.Set("documentation", config.Documentation)
	v.Set("lint", config.Lint)
	v.Set("benchmark", config.Benchmark)
	v.Set("output", config.Output)
	v.Set("analysis", config.Analysis)
	v.Set("performance", config.Performance)

	return v.WriteConfig()
}
