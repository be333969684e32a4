package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/ctx/internal/model"
)

var javascriptSymbols = map[string]Rule{
	"function_declaration":           {Kind: model.Function, Callable: true},
	"generator_function_declaration": {Kind: model.Function, Callable: true},
	"class_declaration":              {Kind: model.Class},
	"class":                          {Kind: model.Class},
	"method_definition":              {Kind: model.Method, Callable: true, AlwaysMethod: true},
	"variable_declarator":            {Kind: model.Variable, Classify: classifyDeclarator},
	"field_definition":               {Kind: model.Method, NameField: "property", Classify: classifyField},
}

var javascriptRules = &Rules{
	Symbols:    javascriptSymbols,
	Imports:    set("import_statement"),
	Functions:  jsFunctions,
	Comments:   set("comment"),
	Wrappers:   set("export_statement", "lexical_declaration", "variable_declaration"),
	DocComment: slashComment,
}

var typescriptRules = &Rules{
	Symbols: merge(javascriptSymbols, map[string]Rule{
		"abstract_class_declaration": {Kind: model.Class},
		"interface_declaration":      {Kind: model.Interface},
		"method_signature":           {Kind: model.Method, Callable: true, AlwaysMethod: true},
		"abstract_method_signature":  {Kind: model.Method, Callable: true, AlwaysMethod: true},
		"function_signature":         {Kind: model.Function, Callable: true},
		"type_alias_declaration":     {Kind: model.TypeAlias},
		"enum_declaration":           {Kind: model.Enum},
		"internal_module":            {Kind: model.Module},
		"module":                     {Kind: model.Module},
		"public_field_definition":    {Kind: model.Method, Classify: classifyField},
	}),
	Imports:    set("import_statement", "import_alias"),
	Functions:  jsFunctions,
	Comments:   set("comment"),
	Wrappers:   set("export_statement", "lexical_declaration", "variable_declaration", "ambient_declaration"),
	DocComment: slashComment,
}

var jsFunctions = set(
	"function_declaration", "generator_function_declaration", "method_definition",
	"function_expression", "function", "generator_function", "arrow_function",
)

// isFunctionValue reports whether an initializer is a function literal.
func isFunctionValue(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	}
	return false
}

// classifyDeclarator makes `const f = () => {}` a function and
// `const C = class {}` a class. Plain values are only kept outside
// function bodies.
func classifyDeclarator(node *sitter.Node, inFunction bool) (model.SymbolKind, bool, bool) {
	value := node.ChildByFieldName("value")
	switch {
	case isFunctionValue(value):
		return model.Function, true, true
	case value != nil && value.Type() == "class":
		return model.Class, false, true
	case inFunction:
		return "", false, false
	}
	return model.Variable, false, true
}

// classifyField keeps class fields initialized with a function.
func classifyField(node *sitter.Node, _ bool) (model.SymbolKind, bool, bool) {
	if isFunctionValue(node.ChildByFieldName("value")) {
		return model.Method, true, true
	}
	return "", false, false
}

func merge(base, extra map[string]Rule) map[string]Rule {
	out := make(map[string]Rule, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
