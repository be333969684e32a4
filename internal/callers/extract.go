// Package callers finds call sites in parse trees and indexes them by the
// invoked name.
//
// The invoked name is the rightmost identifier of the callee, so obj.Save()
// and store.Save() both count as calls to Save. No type information is
// used to tell them apart. A call to the name of the innermost enclosing
// function or method is a self-recursive call and is not recorded.
package callers

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/parser"
)

// Rules describes call syntax for one language.
type Rules struct {
	// Calls maps call node kinds to the field holding the callee.
	Calls map[string]string
	// Members maps member-access node kinds to the field holding the
	// rightmost name.
	Members map[string]string
	// Identifiers are node kinds whose text is a name.
	Identifiers map[string]bool
	// Functions maps named function and method node kinds to the field
	// holding their name.
	Functions map[string]string
}

var goRules = &Rules{
	Calls:       map[string]string{"call_expression": "function"},
	Members:     map[string]string{"selector_expression": "field"},
	Identifiers: set("identifier", "field_identifier"),
	Functions: map[string]string{
		"function_declaration": "name",
		"method_declaration":   "name",
	},
}

var pythonRules = &Rules{
	Calls:       map[string]string{"call": "function"},
	Members:     map[string]string{"attribute": "attribute"},
	Identifiers: set("identifier"),
	Functions:   map[string]string{"function_definition": "name"},
}

var rustRules = &Rules{
	Calls: map[string]string{
		"call_expression":        "function",
		"method_call_expression": "name",
	},
	Members: map[string]string{
		"field_expression":  "field",
		"scoped_identifier": "name",
		"generic_function":  "function",
	},
	Identifiers: set("identifier", "field_identifier"),
	Functions:   map[string]string{"function_item": "name"},
}

var jsRules = &Rules{
	Calls:       map[string]string{"call_expression": "function"},
	Members:     map[string]string{"member_expression": "property"},
	Identifiers: set("identifier", "property_identifier", "private_property_identifier"),
	Functions: map[string]string{
		"function_declaration":           "name",
		"generator_function_declaration": "name",
		"function_expression":            "name",
		"method_definition":              "name",
	},
}

var registry = map[parser.Language]*Rules{
	parser.Go:         goRules,
	parser.Python:     pythonRules,
	parser.Rust:       rustRules,
	parser.JavaScript: jsRules,
	parser.TypeScript: jsRules,
	parser.TSX:        jsRules,
}

// RulesFor returns the call rules for lang, or nil.
func RulesFor(lang parser.Language) *Rules {
	return registry[lang]
}

// Extract returns the call sites in a parsed file in document order,
// leaving out self-recursive calls.
func Extract(result *parser.ParseResult) []model.CallSite {
	rules := RulesFor(result.Language)
	if rules == nil || result.Root == nil {
		return nil
	}

	var sites []model.CallSite
	var visit func(n *sitter.Node, enclosing string)
	visit = func(n *sitter.Node, enclosing string) {
		if field, ok := rules.Functions[n.Type()]; ok {
			// Anonymous functions keep the name of the function around them.
			if name := result.NodeText(n.ChildByFieldName(field)); name != "" {
				enclosing = name
			}
		}
		if field, ok := rules.Calls[n.Type()]; ok && n.IsNamed() {
			name := rules.invokedName(n.ChildByFieldName(field))
			if text := result.NodeText(name); text != "" && text != enclosing {
				sites = append(sites, model.CallSite{
					CallerFile:  result.FilePath,
					CallerLine:  parser.Line(name),
					InvokedName: text,
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil {
				visit(child, enclosing)
			}
		}
	}
	visit(result.Root, "")
	return sites
}

// invokedName resolves a callee to its rightmost identifier node. Callees
// that are neither identifiers nor member accesses resolve to nil.
func (r *Rules) invokedName(callee *sitter.Node) *sitter.Node {
	for callee != nil {
		if r.Identifiers[callee.Type()] {
			return callee
		}
		field, ok := r.Members[callee.Type()]
		if !ok {
			return nil
		}
		callee = callee.ChildByFieldName(field)
	}
	return nil
}

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}
