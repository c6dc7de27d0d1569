package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/refscan/domain"
	"github.com/ludo-technologies/refscan/internal/config"
	"github.com/ludo-technologies/refscan/internal/parser"
)

// Checker is a single lint rule run over a parsed module
type Checker interface {
	// Name returns the stable rule name used in reports and signatures
	Name() string

	// Run inspects the module AST and returns any findings
	Run(ast *parser.Node) ([]domain.LintFinding, error)
}

// DefaultCheckers returns all checkers enabled by the configuration
func DefaultCheckers(cfg *config.Config) []Checker {
	all := []Checker{
		&MaxComplexityChecker{Threshold: cfg.Complexity.CyclomaticThreshold},
		&MaxCognitiveChecker{Threshold: cfg.Complexity.CognitiveThreshold},
		&MaxLengthChecker{Threshold: cfg.Complexity.MaxLength},
		&MaxNestingChecker{Threshold: cfg.Complexity.MaxNesting},
		&MissingDocstringChecker{},
		&MissingAnnotationsChecker{},
		&BareExceptChecker{},
		&MutableDefaultChecker{},
	}

	var enabled []Checker
	for _, checker := range all {
		if cfg.Lint.RuleEnabled(checker.Name()) {
			enabled = append(enabled, checker)
		}
	}
	return enabled
}

// unitKey builds the stable unit identifier for a definition node
func unitKey(n *parser.Node) string {
	unit := domain.SourceUnit{Name: n.Name, FilePath: n.Location.File}
	return unit.Key()
}

// location converts a parser location to a finding location
func location(n *parser.Node) domain.SourceLocation {
	return domain.SourceLocation{
		FilePath:  n.Location.File,
		StartLine: n.Location.StartLine,
		StartCol:  n.Location.StartCol,
	}
}

// MaxComplexityChecker flags functions whose cyclomatic complexity exceeds
// the configured threshold
type MaxComplexityChecker struct {
	Threshold int
}

func (c *MaxComplexityChecker) Name() string { return "max-complexity" }

func (c *MaxComplexityChecker) Run(ast *parser.Node) ([]domain.LintFinding, error) {
	var findings []domain.LintFinding
	for _, fn := range ast.Functions() {
		complexity := CalculateCyclomaticComplexity(fn)
		if complexity > c.Threshold {
			findings = append(findings, domain.LintFinding{
				Rule:     c.Name(),
				Severity: domain.SeverityMedium,
				Category: domain.CategoryComplexity,
				UnitKey:  unitKey(fn),
				Location: location(fn),
				Message:  fmt.Sprintf("function '%s' has cyclomatic complexity %d (max %d)", fn.Name, complexity, c.Threshold),
			})
		}
	}
	return findings, nil
}

// MaxCognitiveChecker flags functions whose cognitive complexity exceeds
// the configured threshold
type MaxCognitiveChecker struct {
	Threshold int
}

func (c *MaxCognitiveChecker) Name() string { return "max-cognitive" }

func (c *MaxCognitiveChecker) Run(ast *parser.Node) ([]domain.LintFinding, error) {
	var findings []domain.LintFinding
	for _, fn := range ast.Functions() {
		complexity := CalculateCognitiveComplexity(fn)
		if complexity > c.Threshold {
			findings = append(findings, domain.LintFinding{
				Rule:     c.Name(),
				Severity: domain.SeverityMedium,
				Category: domain.CategoryComplexity,
				UnitKey:  unitKey(fn),
				Location: location(fn),
				Message:  fmt.Sprintf("function '%s' has cognitive complexity %d (max %d)", fn.Name, complexity, c.Threshold),
			})
		}
	}
	return findings, nil
}

// MaxLengthChecker flags functions longer than the configured number of
// code lines
type MaxLengthChecker struct {
	Threshold int
}

func (c *MaxLengthChecker) Name() string { return "max-length" }

func (c *MaxLengthChecker) Run(ast *parser.Node) ([]domain.LintFinding, error) {
	var findings []domain.LintFinding
	for _, fn := range ast.Functions() {
		if fn.CodeLines > c.Threshold {
			findings = append(findings, domain.LintFinding{
				Rule:     c.Name(),
				Severity: domain.SeverityMedium,
				Category: domain.CategoryComplexity,
				UnitKey:  unitKey(fn),
				Location: location(fn),
				Message:  fmt.Sprintf("function '%s' is %d code lines long (max %d)", fn.Name, fn.CodeLines, c.Threshold),
			})
		}
	}
	return findings, nil
}

// MaxNestingChecker flags functions nested deeper than the configured limit
type MaxNestingChecker struct {
	Threshold int
}

func (c *MaxNestingChecker) Name() string { return "max-nesting" }

func (c *MaxNestingChecker) Run(ast *parser.Node) ([]domain.LintFinding, error) {
	var findings []domain.LintFinding
	for _, fn := range ast.Functions() {
		depth := CalculateNestingDepth(fn)
		if depth > c.Threshold {
			findings = append(findings, domain.LintFinding{
				Rule:     c.Name(),
				Severity: domain.SeverityMedium,
				Category: domain.CategoryComplexity,
				UnitKey:  unitKey(fn),
				Location: location(fn),
				Message:  fmt.Sprintf("function '%s' has nesting depth %d (max %d)", fn.Name, depth, c.Threshold),
			})
		}
	}
	return findings, nil
}

// MissingDocstringChecker flags public functions and classes without docstrings
type MissingDocstringChecker struct{}

func (c *MissingDocstringChecker) Name() string { return "missing-docstring" }

func (c *MissingDocstringChecker) Run(ast *parser.Node) ([]domain.LintFinding, error) {
	var findings []domain.LintFinding

	report := func(n *parser.Node, kind string) {
		findings = append(findings, domain.LintFinding{
			Rule:     c.Name(),
			Severity: domain.SeverityLow,
			Category: domain.CategoryDocumentation,
			UnitKey:  unitKey(n),
			Location: location(n),
			Message:  fmt.Sprintf("public %s '%s' has no docstring", kind, n.Name),
		})
	}

	for _, class := range ast.Classes() {
		if class.IsPublic() && !class.HasDocstring {
			report(class, "class")
		}
	}
	for _, fn := range ast.Functions() {
		if fn.IsPublic() && !fn.HasDocstring {
			report(fn, "function")
		}
	}

	return findings, nil
}

// MissingAnnotationsChecker flags functions with unannotated parameters or
// a missing return type annotation
type MissingAnnotationsChecker struct{}

func (c *MissingAnnotationsChecker) Name() string { return "missing-annotations" }

func (c *MissingAnnotationsChecker) Run(ast *parser.Node) ([]domain.LintFinding, error) {
	var findings []domain.LintFinding

	for _, fn := range ast.Functions() {
		missing := 0
		for _, param := range fn.Params {
			if implicitParams[param.Name] {
				continue
			}
			if !param.Annotated {
				missing++
			}
		}
		if !fn.HasReturnType {
			missing++
		}

		if missing > 0 {
			findings = append(findings, domain.LintFinding{
				Rule:     c.Name(),
				Severity: domain.SeverityLow,
				Category: domain.CategoryDocumentation,
				UnitKey:  unitKey(fn),
				Location: location(fn),
				Message:  fmt.Sprintf("function '%s' is missing %d type annotation(s)", fn.Name, missing),
			})
		}
	}

	return findings, nil
}

// BareExceptChecker flags except clauses without an exception type
type BareExceptChecker struct{}

func (c *BareExceptChecker) Name() string { return "bare-except" }

func (c *BareExceptChecker) Run(ast *parser.Node) ([]domain.LintFinding, error) {
	var findings []domain.LintFinding

	for _, fn := range ast.Functions() {
		walkOwnBody(fn, func(n *parser.Node) {
			if n.Type == parser.NodeExceptClause && n.BareExcept {
				findings = append(findings, domain.LintFinding{
					Rule:     c.Name(),
					Severity: domain.SeverityHigh,
					Category: domain.CategoryBugRisk,
					UnitKey:  unitKey(fn),
					Location: location(n),
					Message:  "bare except swallows all exceptions including KeyboardInterrupt",
				})
			}
		})
	}

	return findings, nil
}

// mutableDefaultKinds are grammar node types that create a fresh mutable
// object shared across calls when used as a default value
var mutableDefaultKinds = map[string]bool{
	"list":                     true,
	"dictionary":               true,
	"set":                      true,
	"list_comprehension":       true,
	"dictionary_comprehension": true,
	"set_comprehension":        true,
}

// MutableDefaultChecker flags mutable default parameter values
type MutableDefaultChecker struct{}

func (c *MutableDefaultChecker) Name() string { return "mutable-default" }

func (c *MutableDefaultChecker) Run(ast *parser.Node) ([]domain.LintFinding, error) {
	var findings []domain.LintFinding

	for _, fn := range ast.Functions() {
		for _, param := range fn.Params {
			if param.HasDefault && mutableDefaultKinds[param.DefaultKind] {
				findings = append(findings, domain.LintFinding{
					Rule:     c.Name(),
					Severity: domain.SeverityHigh,
					Category: domain.CategoryBugRisk,
					UnitKey:  unitKey(fn),
					Location: location(fn),
					Message:  fmt.Sprintf("parameter '%s' of '%s' has a mutable default value", param.Name, fn.Name),
				})
			}
		}
	}

	return findings, nil
}
