package parser

import (
	"fmt"
	"strings"
)

// NodeType represents the type of AST node
type NodeType string

// Python AST node types
const (
	// Module structure
	NodeModule NodeType = "Module"

	// Definitions
	NodeFunctionDef NodeType = "FunctionDef"
	NodeClassDef    NodeType = "ClassDef"

	// Control flow statements
	NodeIfStatement    NodeType = "IfStatement"
	NodeElifClause     NodeType = "ElifClause"
	NodeElseClause     NodeType = "ElseClause"
	NodeForStatement   NodeType = "ForStatement"
	NodeWhileStatement NodeType = "WhileStatement"
	NodeMatchStatement NodeType = "MatchStatement"
	NodeCaseClause     NodeType = "CaseClause"

	// Exception handling
	NodeTryStatement  NodeType = "TryStatement"
	NodeExceptClause  NodeType = "ExceptClause"
	NodeFinallyClause NodeType = "FinallyClause"

	// Other compound statements
	NodeWithStatement   NodeType = "WithStatement"
	NodeAssertStatement NodeType = "AssertStatement"

	// Simple statements
	NodeReturnStatement   NodeType = "ReturnStatement"
	NodeRaiseStatement    NodeType = "RaiseStatement"
	NodeBreakStatement    NodeType = "BreakStatement"
	NodeContinueStatement NodeType = "ContinueStatement"
	NodePassStatement     NodeType = "PassStatement"
	NodeExpressionStmt    NodeType = "ExpressionStatement"

	// Expressions that contribute to complexity
	NodeBooleanOperator NodeType = "BooleanOperator"
	NodeConditionalExpr NodeType = "ConditionalExpression"
	NodeComprehensionIf NodeType = "ComprehensionIf"

	// Literals relevant to lint rules
	NodeStringLiteral NodeType = "StringLiteral"
)

// Location represents the position of a node in the source code
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// String returns a string representation of the location
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// Param represents a function parameter
type Param struct {
	// Name is the parameter name without annotation or default
	Name string

	// Annotated reports whether the parameter carries a type annotation
	Annotated bool

	// HasDefault reports whether the parameter has a default value
	HasDefault bool

	// DefaultKind is the grammar node type of the default value
	// (e.g. "list", "dictionary", "set", "call"), empty when HasDefault is false
	DefaultKind string
}

// Node represents an AST node
type Node struct {
	Type     NodeType
	Name     string
	Location Location
	Children []*Node
	Parent   *Node

	// Function and class fields
	Params         []Param // Function parameters
	Body           []*Node // Compound statement body (subset of Children)
	HasReturnType  bool    // Function has a return type annotation
	HasDocstring   bool    // First body statement is a string literal
	DocstringLines int     // Line span of the docstring, 0 if absent
	CodeLines      int     // Non-blank, non-comment lines in the body
	IsAsync        bool    // Async function
	Decorators     []string

	// Exception handling fields
	BareExcept bool // Except clause without an exception type
}

// NewNode creates a new AST node
func NewNode(nodeType NodeType) *Node {
	return &Node{
		Type:     nodeType,
		Children: []*Node{},
	}
}

// AddChild adds a child node
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Walk traverses the AST depth-first and calls the visitor function for each node.
// If the visitor returns false, traversal of that branch is stopped.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}

	if !visitor(n) {
		return
	}

	for _, child := range n.Children {
		child.Walk(visitor)
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(%s) at %s", n.Type, n.Name, n.Location)
	}
	return fmt.Sprintf("%s at %s", n.Type, n.Location)
}

// IsFunction returns true if the node is a function definition
func (n *Node) IsFunction() bool {
	return n.Type == NodeFunctionDef
}

// IsClass returns true if the node is a class definition
func (n *Node) IsClass() bool {
	return n.Type == NodeClassDef
}

// IsPublic reports whether the definition is public by Python convention.
// Dunder names like __init__ count as public, single-underscore names do not.
func (n *Node) IsPublic() bool {
	name := n.Name
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return true
	}
	return !strings.HasPrefix(name, "_")
}

// Functions returns all function definitions in the subtree, including
// methods and nested functions, in source order.
func (n *Node) Functions() []*Node {
	var funcs []*Node
	n.Walk(func(node *Node) bool {
		if node.IsFunction() {
			funcs = append(funcs, node)
		}
		return true
	})
	return funcs
}

// Classes returns all class definitions in the subtree in source order.
func (n *Node) Classes() []*Node {
	var classes []*Node
	n.Walk(func(node *Node) bool {
		if node.IsClass() {
			classes = append(classes, node)
		}
		return true
	})
	return classes
}
