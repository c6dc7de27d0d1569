package analyzer

import (
	"github.com/ludo-technologies/refscan/internal/parser"
)

// CalculateCyclomaticComplexity computes the McCabe cyclomatic complexity of a
// function body: 1 plus the number of decision points. Bodies of nested
// functions and classes are measured as their own units and excluded here.
func CalculateCyclomaticComplexity(fn *parser.Node) int {
	complexity := 1

	walkOwnBody(fn, func(n *parser.Node) {
		switch n.Type {
		case parser.NodeIfStatement,
			parser.NodeElifClause,
			parser.NodeForStatement,
			parser.NodeWhileStatement,
			parser.NodeExceptClause,
			parser.NodeWithStatement,
			parser.NodeAssertStatement,
			parser.NodeBooleanOperator,
			parser.NodeComprehensionIf,
			parser.NodeCaseClause:
			complexity++
		}
	})

	return complexity
}

// CalculateCognitiveComplexity computes a nesting-weighted complexity score.
// Control structures cost 1 plus their nesting depth; continuation branches
// (elif, else) and boolean operators cost a flat 1.
func CalculateCognitiveComplexity(fn *parser.Node) int {
	total := 0
	for _, child := range fn.Children {
		total += cognitiveCost(child, 0)
	}
	return total
}

// cognitiveCost scores a subtree at the given nesting level
func cognitiveCost(n *parser.Node, nesting int) int {
	if n == nil {
		return 0
	}

	// Nested definitions are separate units
	if n.Type == parser.NodeFunctionDef || n.Type == parser.NodeClassDef {
		return 0
	}

	cost := 0
	childNesting := nesting

	switch n.Type {
	case parser.NodeIfStatement,
		parser.NodeForStatement,
		parser.NodeWhileStatement,
		parser.NodeExceptClause,
		parser.NodeConditionalExpr:
		cost = 1 + nesting
		childNesting = nesting + 1
	case parser.NodeElifClause, parser.NodeElseClause:
		// Continuation of an existing branch: flat increment, and the
		// contents stay at the branch body's nesting level
		cost = 1
	case parser.NodeCaseClause:
		cost = 1
		childNesting = nesting + 1
	case parser.NodeBooleanOperator,
		parser.NodeComprehensionIf:
		cost = 1
	}

	for _, child := range n.Children {
		cost += cognitiveCost(child, childNesting)
	}
	return cost
}

// CalculateNestingDepth computes the maximum depth of nested control
// structures in a function body. A flat body has depth 0.
func CalculateNestingDepth(fn *parser.Node) int {
	max := 0
	for _, child := range fn.Children {
		if d := nestingDepth(child, 0); d > max {
			max = d
		}
	}
	return max
}

// nestingDepth returns the maximum nesting depth within a subtree
func nestingDepth(n *parser.Node, depth int) int {
	if n == nil {
		return depth
	}

	if n.Type == parser.NodeFunctionDef || n.Type == parser.NodeClassDef {
		return depth
	}

	current := depth
	switch n.Type {
	// elif and else clauses are children of the if statement that already
	// incremented the depth, so they add nothing themselves
	case parser.NodeIfStatement,
		parser.NodeForStatement,
		parser.NodeWhileStatement,
		parser.NodeWithStatement,
		parser.NodeTryStatement:
		current = depth + 1
	}

	max := current
	for _, child := range n.Children {
		if d := nestingDepth(child, current); d > max {
			max = d
		}
	}
	return max
}

// walkOwnBody visits every node in a function body except the bodies of
// nested function and class definitions
func walkOwnBody(fn *parser.Node, visit func(*parser.Node)) {
	for _, child := range fn.Children {
		child.Walk(func(n *parser.Node) bool {
			if n.Type == parser.NodeFunctionDef || n.Type == parser.NodeClassDef {
				return false
			}
			visit(n)
			return true
		})
	}
}
