// Package parser provides tree-sitter based parsing for the supported
// languages, a parse cache keyed by file modification time, and a Manager
// that combines the two.
package parser

import (
	"bytes"
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// Parser wraps a single tree-sitter parser. It is not safe for concurrent
// use; the Manager pools one per goroutine.
type Parser struct {
	parser *sitter.Parser
	lang   Language
}

// ParseResult contains the parsed tree and metadata.
//
// The tree is immutable once parsing completes, but the tree-sitter binding
// memoizes node wrappers per tree, so a single result must only be walked by
// one goroutine at a time.
type ParseResult struct {
	// Tree is the complete tree-sitter parse tree.
	Tree *sitter.Tree
	// Root is the root node of the tree.
	Root *sitter.Node
	// Source is the source code that was parsed.
	Source []byte
	// FilePath is the path to the source file (empty for in-memory parsing).
	FilePath string
	// Language is the language of the source.
	Language Language
}

// NewParser creates a parser for the given language.
// Returns an UnsupportedLanguageError if the language has no grammar.
func NewParser(lang Language) (*Parser, error) {
	grammar, ok := grammars[lang]
	if !ok {
		return nil, &UnsupportedLanguageError{Language: string(lang)}
	}
	g := grammar()
	if g == nil {
		return nil, &UnsupportedLanguageError{Language: string(lang)}
	}

	p := sitter.NewParser()
	p.SetLanguage(g)
	return &Parser{parser: p, lang: lang}, nil
}

// Parse parses source code. Malformed input yields a tree with error nodes,
// not an error; an error is only returned when the engine gives up, e.g. on
// context cancellation.
func (p *Parser) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{Message: err.Error()}
	}

	return &ParseResult{
		Tree:     tree,
		Root:     tree.RootNode(),
		Source:   source,
		Language: p.lang,
	}, nil
}

// Language returns the language this parser is configured for.
func (p *Parser) Language() Language {
	return p.lang
}

// Close releases parser resources.
// After calling Close, the parser should not be used.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Close releases the parse tree. Results held by a Cache must not be
// closed while the cache can still return them.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
		r.Tree = nil
		r.Root = nil
	}
}

// HasErrors reports whether the tree contains syntax errors.
func (r *ParseResult) HasErrors() bool {
	if r.Root == nil {
		return false
	}
	return r.Root.HasError()
}

// LineCount returns the number of lines in the source. A trailing newline
// does not start a new line.
func (r *ParseResult) LineCount() int {
	return CountLines(r.Source)
}

// CountLines counts lines the way a line iterator would.
func CountLines(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := bytes.Count(src, []byte{'\n'})
	if src[len(src)-1] != '\n' {
		n++
	}
	return n
}

// WalkNodes traverses the tree depth-first, calling the visitor for each
// node. If the visitor returns false, the node's children are skipped.
func (r *ParseResult) WalkNodes(visitor func(*sitter.Node) bool) {
	if r.Root == nil {
		return
	}
	walkNode(r.Root, visitor)
}

func walkNode(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil {
			walkNode(child, visitor)
		}
	}
}

// NodeText returns the source text for a node.
func (r *ParseResult) NodeText(node *sitter.Node) string {
	if node == nil || r.Source == nil {
		return ""
	}
	return node.Content(r.Source)
}

// Line returns the 1-based line a node starts on.
func Line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// EndLine returns the 1-based line a node ends on. A node ending at
// column 0 ends on the previous line.
func EndLine(node *sitter.Node) int {
	end := node.EndPoint()
	if end.Column == 0 && end.Row > node.StartPoint().Row {
		return int(end.Row)
	}
	return int(end.Row) + 1
}
