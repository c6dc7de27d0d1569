package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ASTBuilder builds our internal AST from the tree-sitter CST
type ASTBuilder struct {
	filename string
	source   []byte
	lines    []string

	// scope tracks enclosing class/function names for qualified unit names
	scope []string
}

// NewASTBuilder creates a new AST builder
func NewASTBuilder(filename string, source []byte) *ASTBuilder {
	return &ASTBuilder{
		filename: filename,
		source:   source,
		lines:    strings.Split(string(source), "\n"),
	}
}

// Build builds the AST from a tree-sitter node
func (b *ASTBuilder) Build(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}
	return b.buildNode(tsNode)
}

// buildNode converts a tree-sitter node to our internal AST node
func (b *ASTBuilder) buildNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "module":
		return b.buildModule(tsNode)
	case "function_definition":
		return b.buildFunctionDefinition(tsNode, nil)
	case "class_definition":
		return b.buildClassDefinition(tsNode)
	case "decorated_definition":
		return b.buildDecoratedDefinition(tsNode)
	case "if_statement":
		return b.buildCompound(tsNode, NodeIfStatement)
	case "elif_clause":
		return b.buildCompound(tsNode, NodeElifClause)
	case "else_clause":
		return b.buildCompound(tsNode, NodeElseClause)
	case "for_statement":
		return b.buildCompound(tsNode, NodeForStatement)
	case "while_statement":
		return b.buildCompound(tsNode, NodeWhileStatement)
	case "match_statement":
		return b.buildCompound(tsNode, NodeMatchStatement)
	case "case_clause":
		return b.buildCompound(tsNode, NodeCaseClause)
	case "try_statement":
		return b.buildCompound(tsNode, NodeTryStatement)
	case "except_clause":
		return b.buildExceptClause(tsNode)
	case "finally_clause":
		return b.buildCompound(tsNode, NodeFinallyClause)
	case "with_statement":
		return b.buildCompound(tsNode, NodeWithStatement)
	case "assert_statement":
		return b.buildCompound(tsNode, NodeAssertStatement)
	case "return_statement":
		return b.buildCompound(tsNode, NodeReturnStatement)
	case "raise_statement":
		return b.buildCompound(tsNode, NodeRaiseStatement)
	case "break_statement":
		return b.buildLeaf(tsNode, NodeBreakStatement)
	case "continue_statement":
		return b.buildLeaf(tsNode, NodeContinueStatement)
	case "pass_statement":
		return b.buildLeaf(tsNode, NodePassStatement)
	case "expression_statement":
		return b.buildCompound(tsNode, NodeExpressionStmt)
	case "boolean_operator":
		return b.buildCompound(tsNode, NodeBooleanOperator)
	case "conditional_expression":
		return b.buildCompound(tsNode, NodeConditionalExpr)
	case "if_clause":
		// Filter condition inside a comprehension
		return b.buildCompound(tsNode, NodeComprehensionIf)
	case "string":
		return b.buildLeaf(tsNode, NodeStringLiteral)
	default:
		return b.buildGenericNode(tsNode)
	}
}

// buildModule builds the root module node
func (b *ASTBuilder) buildModule(tsNode *sitter.Node) *Node {
	node := NewNode(NodeModule)
	node.Location = b.getLocation(tsNode)

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && !b.isTrivia(child) {
			childNode := b.buildNode(child)
			if childNode != nil {
				node.AddChild(childNode)
				node.Body = append(node.Body, childNode)
			}
		}
	}

	return node
}

// buildFunctionDefinition builds a function definition node.
// decorators, when non-nil, come from an enclosing decorated_definition.
func (b *ASTBuilder) buildFunctionDefinition(tsNode *sitter.Node, decorators []string) *Node {
	node := NewNode(NodeFunctionDef)
	node.Location = b.getLocation(tsNode)
	node.Decorators = decorators

	// Extract function name, qualified by enclosing classes and functions
	var localName string
	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		localName = nameNode.Content(b.source)
	}
	node.Name = b.qualify(localName)

	// async def
	if tsNode.ChildCount() > 0 {
		first := tsNode.Child(0)
		if first != nil && first.Type() == "async" {
			node.IsAsync = true
		}
	}

	// Extract parameters
	if paramsNode := b.getChildByFieldName(tsNode, "parameters"); paramsNode != nil {
		node.Params = b.buildParameters(paramsNode)
	}

	// Extract return type annotation
	if b.getChildByFieldName(tsNode, "return_type") != nil {
		node.HasReturnType = true
	}

	// Extract body
	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		b.scope = append(b.scope, localName)
		b.buildBlock(bodyNode, node)
		b.scope = b.scope[:len(b.scope)-1]

		b.extractDocstring(bodyNode, node)
		node.CodeLines = b.countCodeLines(bodyNode, node)
	}

	return node
}

// buildClassDefinition builds a class definition node
func (b *ASTBuilder) buildClassDefinition(tsNode *sitter.Node) *Node {
	node := NewNode(NodeClassDef)
	node.Location = b.getLocation(tsNode)

	var localName string
	if nameNode := b.getChildByFieldName(tsNode, "name"); nameNode != nil {
		localName = nameNode.Content(b.source)
	}
	node.Name = b.qualify(localName)

	if bodyNode := b.getChildByFieldName(tsNode, "body"); bodyNode != nil {
		b.scope = append(b.scope, localName)
		b.buildBlock(bodyNode, node)
		b.scope = b.scope[:len(b.scope)-1]

		b.extractDocstring(bodyNode, node)
	}

	return node
}

// buildDecoratedDefinition unwraps a decorated definition, attaching
// decorator names to the inner function or class
func (b *ASTBuilder) buildDecoratedDefinition(tsNode *sitter.Node) *Node {
	var decorators []string
	var definition *sitter.Node

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "decorator":
			name := strings.TrimPrefix(child.Content(b.source), "@")
			decorators = append(decorators, strings.TrimSpace(name))
		case "function_definition":
			definition = child
		case "class_definition":
			definition = child
		}
	}

	if definition == nil {
		return b.buildGenericNode(tsNode)
	}

	if definition.Type() == "class_definition" {
		node := b.buildClassDefinition(definition)
		node.Decorators = decorators
		return node
	}
	return b.buildFunctionDefinition(definition, decorators)
}

// buildExceptClause builds an except clause, flagging bare excepts
func (b *ASTBuilder) buildExceptClause(tsNode *sitter.Node) *Node {
	node := NewNode(NodeExceptClause)
	node.Location = b.getLocation(tsNode)

	// A bare except has no expression between "except" and the block
	node.BareExcept = true
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		if child.Type() != "block" && child.Type() != "comment" {
			node.BareExcept = false
		}
		if child.Type() == "block" {
			b.buildBlock(child, node)
		} else if childNode := b.buildNode(child); childNode != nil {
			node.AddChild(childNode)
		}
	}

	return node
}

// buildCompound builds a node of the given type with all named children attached
func (b *ASTBuilder) buildCompound(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || !child.IsNamed() || b.isTrivia(child) {
			continue
		}
		if child.Type() == "block" {
			b.buildBlock(child, node)
			continue
		}
		if childNode := b.buildNode(child); childNode != nil {
			node.AddChild(childNode)
		}
	}

	return node
}

// buildLeaf builds a node with no children of interest
func (b *ASTBuilder) buildLeaf(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)
	return node
}

// buildGenericNode builds a generic node for grammar types without a dedicated mapping
func (b *ASTBuilder) buildGenericNode(tsNode *sitter.Node) *Node {
	node := NewNode(NodeType(tsNode.Type()))
	node.Location = b.getLocation(tsNode)

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && child.IsNamed() && !b.isTrivia(child) {
			childNode := b.buildNode(child)
			if childNode != nil {
				node.AddChild(childNode)
			}
		}
	}

	return node
}

// buildBlock attaches the statements of a block to the parent node,
// recording them in both Children and Body
func (b *ASTBuilder) buildBlock(blockNode *sitter.Node, parent *Node) {
	for i := 0; i < int(blockNode.ChildCount()); i++ {
		child := blockNode.Child(i)
		if child == nil || !child.IsNamed() || b.isTrivia(child) {
			continue
		}
		childNode := b.buildNode(child)
		if childNode != nil {
			parent.AddChild(childNode)
			parent.Body = append(parent.Body, childNode)
		}
	}
}

// buildParameters builds the parameter list from a parameters node
func (b *ASTBuilder) buildParameters(tsNode *sitter.Node) []Param {
	var params []Param

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || !child.IsNamed() || b.isTrivia(child) {
			continue
		}

		switch child.Type() {
		case "identifier":
			params = append(params, Param{Name: child.Content(b.source)})

		case "typed_parameter":
			param := Param{Annotated: true}
			for j := 0; j < int(child.ChildCount()); j++ {
				inner := child.Child(j)
				if inner != nil && (inner.Type() == "identifier" ||
					inner.Type() == "list_splat_pattern" ||
					inner.Type() == "dictionary_splat_pattern") {
					param.Name = strings.TrimLeft(inner.Content(b.source), "*")
					break
				}
			}
			params = append(params, param)

		case "default_parameter":
			param := Param{HasDefault: true}
			if nameNode := b.getChildByFieldName(child, "name"); nameNode != nil {
				param.Name = nameNode.Content(b.source)
			}
			if valueNode := b.getChildByFieldName(child, "value"); valueNode != nil {
				param.DefaultKind = valueNode.Type()
			}
			params = append(params, param)

		case "typed_default_parameter":
			param := Param{Annotated: true, HasDefault: true}
			if nameNode := b.getChildByFieldName(child, "name"); nameNode != nil {
				param.Name = nameNode.Content(b.source)
			}
			if valueNode := b.getChildByFieldName(child, "value"); valueNode != nil {
				param.DefaultKind = valueNode.Type()
			}
			params = append(params, param)

		case "list_splat_pattern", "dictionary_splat_pattern":
			params = append(params, Param{
				Name: strings.TrimLeft(child.Content(b.source), "*"),
			})

		case "keyword_separator", "positional_separator":
			// Bare * and / markers carry no parameter
		}
	}

	return params
}

// extractDocstring records docstring presence on a function or class node.
// A docstring is a string literal as the first statement of the body.
func (b *ASTBuilder) extractDocstring(bodyNode *sitter.Node, node *Node) {
	for i := 0; i < int(bodyNode.ChildCount()); i++ {
		child := bodyNode.Child(i)
		if child == nil || !child.IsNamed() || b.isTrivia(child) {
			continue
		}
		if child.Type() == "expression_statement" && child.ChildCount() > 0 {
			first := child.Child(0)
			if first != nil && first.Type() == "string" {
				node.HasDocstring = true
				node.DocstringLines = int(first.EndPoint().Row) - int(first.StartPoint().Row) + 1
			}
		}
		return
	}
}

// countCodeLines counts non-blank, non-comment lines in the body,
// excluding the docstring
func (b *ASTBuilder) countCodeLines(bodyNode *sitter.Node, node *Node) int {
	startLine := int(bodyNode.StartPoint().Row)
	endLine := int(bodyNode.EndPoint().Row)

	count := 0
	for i := startLine; i <= endLine && i < len(b.lines); i++ {
		trimmed := strings.TrimSpace(b.lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		count++
	}

	count -= node.DocstringLines
	if count < 0 {
		count = 0
	}
	return count
}

// qualify joins a local name with the enclosing scope
func (b *ASTBuilder) qualify(name string) string {
	if len(b.scope) == 0 {
		return name
	}
	return strings.Join(b.scope, ".") + "." + name
}

// Helper methods

// getLocation extracts location information from a tree-sitter node
func (b *ASTBuilder) getLocation(tsNode *sitter.Node) Location {
	return Location{
		File:      b.filename,
		StartLine: int(tsNode.StartPoint().Row) + 1,
		StartCol:  int(tsNode.StartPoint().Column),
		EndLine:   int(tsNode.EndPoint().Row) + 1,
		EndCol:    int(tsNode.EndPoint().Column),
	}
}

// getChildByFieldName gets a child node by field name
func (b *ASTBuilder) getChildByFieldName(tsNode *sitter.Node, fieldName string) *sitter.Node {
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child != nil && tsNode.FieldNameForChild(i) == fieldName {
			return child
		}
	}
	return nil
}

// isTrivia checks if a node is trivia (comments, empty nodes)
func (b *ASTBuilder) isTrivia(tsNode *sitter.Node) bool {
	nodeType := tsNode.Type()
	return nodeType == "comment" || nodeType == ""
}
