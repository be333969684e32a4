// Package extract turns parse trees into symbol and import facts using a
// static rule table per language.
package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/parser"
)

// scope is what the nearest enclosing declaration is.
type scope int

const (
	scopeTop scope = iota
	scopeContainer
	scopeFunction
)

// Extract returns the symbols and imports of a parsed file. Languages
// without rules yield nothing.
func Extract(result *parser.ParseResult) ([]model.Symbol, []model.Import) {
	rules := RulesFor(result.Language)
	if rules == nil || result.Root == nil {
		return nil, nil
	}

	w := &walker{rules: rules, src: result.Source, file: result.FilePath}
	w.symbols(result.Root, scopeTop, false)
	w.imports(result.Root)
	return w.syms, w.imps
}

// Summarize extracts a FileSummary from a parsed file.
func Summarize(result *parser.ParseResult) *model.FileSummary {
	symbols, imports := Extract(result)
	if symbols == nil {
		symbols = []model.Symbol{}
	}
	if imports == nil {
		imports = []model.Import{}
	}
	return &model.FileSummary{
		Path:      result.FilePath,
		Language:  string(result.Language),
		LineCount: result.LineCount(),
		Symbols:   symbols,
		Imports:   imports,
	}
}

type walker struct {
	rules *Rules
	src   []byte
	file  string
	syms  []model.Symbol
	imps  []model.Import
}

func (w *walker) text(n *sitter.Node) string {
	return n.Content(w.src)
}

// symbols walks every node, including function bodies.
func (w *walker) symbols(node *sitter.Node, sc scope, inFunction bool) {
	childScope, childInFunction := sc, inFunction
	if !node.IsNamed() {
		return
	}

	if rule, ok := w.rules.Symbols[node.Type()]; ok {
		kind, callable, keep := rule.Kind, rule.Callable, true
		if rule.Classify != nil {
			kind, callable, keep = rule.Classify(node, inFunction)
		}
		if rule.OuterOnly && inFunction {
			keep = false
		}

		switch {
		case rule.ContainerOnly:
			childScope = scopeContainer
		case keep && callable:
			if rule.AlwaysMethod || sc == scopeContainer {
				kind = model.Method
			}
			w.record(node, rule, kind, true)
			childScope, childInFunction = scopeFunction, true
		case keep:
			w.record(node, rule, kind, false)
			if isContainer(kind) {
				childScope = scopeContainer
			}
		}
	} else if w.rules.Functions[node.Type()] {
		childScope, childInFunction = scopeFunction, true
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil {
			w.symbols(child, childScope, childInFunction)
		}
	}
}

// record appends a symbol unless the declaration is anonymous.
func (w *walker) record(node *sitter.Node, rule Rule, kind model.SymbolKind, callable bool) {
	nameNode := node.ChildByFieldName(rule.nameField())
	if nameNode == nil || strings.Contains(nameNode.Type(), "pattern") {
		return
	}
	name := strings.Trim(w.text(nameNode), "\"'`")
	if name == "" {
		return
	}

	sym := model.Symbol{
		Name:       name,
		Kind:       kind,
		Line:       parser.Line(node),
		EndLine:    parser.EndLine(node),
		DocComment: w.docComment(node),
	}
	if callable {
		sym.Signature = w.signature(node)
	}
	w.syms = append(w.syms, sym)
}

// imports records import statements without entering function bodies.
func (w *walker) imports(node *sitter.Node) {
	if !node.IsNamed() {
		return
	}
	if w.rules.Imports[node.Type()] {
		w.imps = append(w.imps, model.Import{
			File: w.file,
			Text: strings.TrimSpace(w.text(node)),
			Line: parser.Line(node),
		})
		return
	}
	if w.rules.Functions[node.Type()] {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil {
			w.imports(child)
		}
	}
}

// declarationParents hold declarators whose keyword belongs in a signature.
var declarationParents = map[string]bool{
	"lexical_declaration":  true,
	"variable_declaration": true,
}

// signature is the declaration header: everything before the body, with
// whitespace collapsed.
func (w *walker) signature(node *sitter.Node) string {
	start := node.StartByte()
	if p := node.Parent(); p != nil && declarationParents[p.Type()] {
		if first := p.NamedChild(0); first != nil && first.StartByte() == node.StartByte() {
			start = p.StartByte()
		}
	}

	end := node.EndByte()
	body := node.ChildByFieldName("body")
	if body == nil {
		if value := node.ChildByFieldName("value"); value != nil {
			body = value.ChildByFieldName("body")
		}
	}
	if body != nil {
		end = body.StartByte()
	}
	if end <= start || int(end) > len(w.src) {
		return ""
	}

	sig := strings.Join(strings.Fields(string(w.src[start:end])), " ")
	sig = strings.TrimSuffix(sig, ";")
	if w.rules.SignatureSuffix != "" {
		sig = strings.TrimSuffix(sig, w.rules.SignatureSuffix)
	}
	return strings.TrimSpace(sig)
}
