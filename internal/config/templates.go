package config

import (
	"fmt"
	"strconv"
)

// Strictness represents the analysis strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// StrictnessPreset holds threshold values for different strictness levels
type StrictnessPreset struct {
	CyclomaticThreshold int
	CognitiveThreshold  int
	MaxLength           int
	MaxNesting          int
	MinDocCoverage      float64
	MinTypeCoverage     float64
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			CyclomaticThreshold: 15,
			CognitiveThreshold:  25,
			MaxLength:           50,
			MaxNesting:          4,
			MinDocCoverage:      0.60,
			MinTypeCoverage:     0.70,
		},
		StrictnessStandard: {
			CyclomaticThreshold: DefaultCyclomaticThreshold,
			CognitiveThreshold:  DefaultCognitiveThreshold,
			MaxLength:           DefaultMaxLength,
			MaxNesting:          DefaultMaxNesting,
			MinDocCoverage:      DefaultMinDocCoverage,
			MinTypeCoverage:     DefaultMinTypeCoverage,
		},
		StrictnessStrict: {
			CyclomaticThreshold: 7,
			CognitiveThreshold:  10,
			MaxLength:           20,
			MaxNesting:          2,
			MinDocCoverage:      0.95,
			MinTypeCoverage:     1.00,
		},
	}
}

// ApplyStrictness overrides the threshold fields with a strictness preset
func (c *Config) ApplyStrictness(level Strictness) {
	preset, ok := GetStrictnessPresets()[level]
	if !ok {
		return
	}
	c.Complexity.CyclomaticThreshold = preset.CyclomaticThreshold
	c.Complexity.CognitiveThreshold = preset.CognitiveThreshold
	c.Complexity.MaxLength = preset.MaxLength
	c.Complexity.MaxNesting = preset.MaxNesting
	c.Documentation.MinDocCoverage = preset.MinDocCoverage
	c.Documentation.MinTypeCoverage = preset.MinTypeCoverage
}

// GetConfigTemplate returns the documented config template as YAML
func GetConfigTemplate(strictness Strictness) string {
	preset, ok := GetStrictnessPresets()[strictness]
	if !ok {
		preset = GetStrictnessPresets()[StrictnessStandard]
	}

	return `# refscan configuration
# Documentation: https://github.com/ludo-technologies/refscan

# ==============================================================================
# COMPLEXITY THRESHOLDS
# ==============================================================================
# Per-function limits checked by "refscan analyze" and "refscan check"
complexity:
  enabled: true

  # Maximum cyclomatic complexity (decision points + 1)
  cyclomatic_threshold: ` + strconv.Itoa(preset.CyclomaticThreshold) + `

  # Maximum cognitive complexity (nesting-weighted)
  cognitive_threshold: ` + strconv.Itoa(preset.CognitiveThreshold) + `

  # Maximum function length in code lines (blank lines and comments excluded)
  max_length: ` + strconv.Itoa(preset.MaxLength) + `

  # Maximum nesting depth of control structures
  max_nesting: ` + strconv.Itoa(preset.MaxNesting) + `

# ==============================================================================
# DOCUMENTATION COVERAGE
# ==============================================================================
documentation:
  enabled: true

  # Minimum fraction of public functions/classes with docstrings
  min_doc_coverage: ` + formatFloat(preset.MinDocCoverage) + `

  # Minimum fraction of parameters and return types with annotations
  min_type_coverage: ` + formatFloat(preset.MinTypeCoverage) + `

# ==============================================================================
# LINT RULES
# ==============================================================================
lint:
  enabled: true

  # Minimum severity to report: high, medium, low
  min_severity: low

  # Rule names to skip, e.g. [missing-annotations]
  disabled_rules: []

# ==============================================================================
# PERFORMANCE BENCHMARKS
# ==============================================================================
benchmark:
  # Timed repetitions per variant
  repetitions: 5

  # Minimum samples required for a conclusive verdict
  min_samples: 5

  # Relative slowdown treated as a regression (0.10 = 10%)
  regression_threshold: 0.10

  # Maximum sample spread (max-min)/median before a run is inconclusive
  noise_cutoff: 0.20

  # Timeout per repetition in seconds (0 = no limit)
  timeout_seconds: 120

  # Run one untimed warmup before the timed repetitions
  warmup: true

# ==============================================================================
# OUTPUT SETTINGS
# ==============================================================================
output:
  # Output format: text, json, yaml, csv
  format: text

  # Show per-unit breakdown
  show_details: false

  # Sort results by: key, complexity, cognitive, length
  sort_by: complexity

# ==============================================================================
# ANALYSIS SCOPE
# ==============================================================================
analysis:
  include_patterns:
    - "**/*.py"
  exclude_patterns:
    - ".venv"
    - "venv"
    - "__pycache__"
    - ".git"
    - "build"
    - "dist"
  recursive: true

# ==============================================================================
# EXECUTION
# ==============================================================================
performance:
  # Parallel workers (0 = number of CPUs)
  max_goroutines: 0

  # Timeout for a whole analysis run in seconds (0 = no limit)
  timeout_seconds: 300

  # Timeout for a single file in seconds; timed-out files are
  # recorded as incomplete (0 = no limit)
  unit_timeout_seconds: 30
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# refscan configuration (minimal)
# See full options: https://github.com/ludo-technologies/refscan

complexity:
  enabled: true
  cyclomatic_threshold: 10
  cognitive_threshold: 15

documentation:
  enabled: true
  min_doc_coverage: 0.80

analysis:
  include_patterns: ["**/*.py"]
  exclude_patterns: [".venv", "__pycache__", ".git"]
`
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
