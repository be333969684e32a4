package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/ctx/internal/model"
)

var goRules = &Rules{
	Symbols: map[string]Rule{
		"function_declaration": {Kind: model.Function, Callable: true},
		"method_declaration":   {Kind: model.Method, Callable: true, AlwaysMethod: true},
		// Interface members; method_spec is the name used by older grammars.
		"method_elem": {Kind: model.Method, Callable: true, AlwaysMethod: true},
		"method_spec": {Kind: model.Method, Callable: true, AlwaysMethod: true},
		"type_spec":   {Kind: model.TypeAlias, Classify: classifyGoType},
		"type_alias":  {Kind: model.TypeAlias},
		"const_spec":  {Kind: model.Constant, OuterOnly: true},
		"var_spec":    {Kind: model.Variable, OuterOnly: true},
	},
	Imports:    set("import_declaration"),
	Functions:  set("function_declaration", "method_declaration", "func_literal"),
	Comments:   set("comment"),
	Wrappers:   set("type_declaration", "const_declaration", "var_declaration"),
	DocComment: slashComment,
}

// classifyGoType picks struct or interface from the type_spec's type.
func classifyGoType(node *sitter.Node, _ bool) (model.SymbolKind, bool, bool) {
	t := node.ChildByFieldName("type")
	if t == nil {
		return model.TypeAlias, false, true
	}
	switch t.Type() {
	case "struct_type":
		return model.Struct, false, true
	case "interface_type":
		return model.Interface, false, true
	}
	return model.TypeAlias, false, true
}
