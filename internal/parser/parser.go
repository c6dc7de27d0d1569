package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser wraps the tree-sitter parser for Python
type Parser struct {
	parser   *sitter.Parser
	language *sitter.Language
}

// NewParser creates a new Python parser
func NewParser() *Parser {
	parser := sitter.NewParser()
	lang := python.GetLanguage()
	parser.SetLanguage(lang)

	return &Parser{
		parser:   parser,
		language: lang,
	}
}

// ParseFile parses a Python file. The context bounds the tree-sitter parse;
// cancellation or timeout is returned as the context's error.
func (p *Parser) ParseFile(ctx context.Context, filename string, source []byte) (*Node, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to parse file %s", filename)
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode == nil {
		return nil, fmt.Errorf("no root node in parse tree for %s", filename)
	}

	if rootNode.HasError() {
		return nil, fmt.Errorf("syntax errors in %s", filename)
	}

	// Build our internal AST from the tree-sitter CST
	builder := NewASTBuilder(filename, source)
	return builder.Build(rootNode), nil
}

// Parse parses Python source code
func (p *Parser) Parse(source []byte) (*Node, error) {
	return p.ParseFile(context.Background(), "<input>", source)
}

// ParseString parses Python source code from a string
func (p *Parser) ParseString(source string) (*Node, error) {
	return p.Parse([]byte(source))
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ParseSource parses a Python file with a throwaway parser instance
func ParseSource(filename string, source []byte) (*Node, error) {
	return ParseSourceCtx(context.Background(), filename, source)
}

// ParseSourceCtx parses a Python file with a throwaway parser instance,
// bounded by the context
func ParseSourceCtx(ctx context.Context, filename string, source []byte) (*Node, error) {
	parser := NewParser()
	defer parser.Close()

	return parser.ParseFile(ctx, filename, source)
}
