package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/parser"
)

// Rule describes how one node kind becomes a symbol.
type Rule struct {
	// Kind is the symbol kind recorded for the node. Callable rules record
	// Function, or Method when nested in a container.
	Kind model.SymbolKind
	// NameField is the field holding the declared name. Defaults to "name".
	NameField string
	// Callable marks function-like declarations; they get a signature.
	Callable bool
	// AlwaysMethod records a callable as Method regardless of nesting.
	AlwaysMethod bool
	// ContainerOnly marks containers that are not symbols themselves,
	// such as Rust impl blocks. Class, interface and trait symbols are
	// containers implicitly.
	ContainerOnly bool
	// OuterOnly skips the node when it appears inside a function body.
	OuterOnly bool
	// Classify overrides Kind and Callable from the node's shape. inFunction
	// reports whether the node sits inside a function body. Returning
	// ok=false skips the node.
	Classify func(node *sitter.Node, inFunction bool) (kind model.SymbolKind, callable bool, ok bool)
}

func (r Rule) nameField() string {
	if r.NameField == "" {
		return "name"
	}
	return r.NameField
}

// Rules is the extraction table for one language.
type Rules struct {
	// Symbols maps node kinds to symbol rules.
	Symbols map[string]Rule
	// Imports lists node kinds recorded as raw import statements.
	Imports map[string]bool
	// Functions lists node kinds that open a function body. Import
	// extraction does not descend into them.
	Functions map[string]bool
	// Comments lists comment node kinds.
	Comments map[string]bool
	// Wrappers are nodes whose preceding comment documents their first
	// declaration, such as export statements or Go type blocks.
	Wrappers map[string]bool
	// Transparent node kinds may sit between a comment and the declaration
	// it documents (attributes, decorators).
	Transparent map[string]bool
	// DocComment normalizes a comment's text. Returning ok=false means the
	// comment is not documentation and ends the block.
	DocComment func(text string) (doc string, ok bool)
	// Docstring reads a documentation string from the declaration body.
	Docstring func(node *sitter.Node, src []byte) string
	// SignatureSuffix is trimmed from the end of signatures.
	SignatureSuffix string
}

var registry = map[parser.Language]*Rules{
	parser.Go:         goRules,
	parser.Python:     pythonRules,
	parser.Rust:       rustRules,
	parser.JavaScript: javascriptRules,
	parser.TypeScript: typescriptRules,
	parser.TSX:        typescriptRules,
}

// RulesFor returns the extraction table for lang, or nil if the language
// has none.
func RulesFor(lang parser.Language) *Rules {
	return registry[lang]
}

// isContainer reports whether callables nested in a symbol of kind k are
// methods.
func isContainer(k model.SymbolKind) bool {
	switch k {
	case model.Class, model.Interface, model.Trait:
		return true
	}
	return false
}

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}
