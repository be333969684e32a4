package extract

import (
	"strings"

	"github.com/hargabyte/ctx/internal/model"
)

var rustRules = &Rules{
	Symbols: map[string]Rule{
		"function_item":           {Kind: model.Function, Callable: true},
		"function_signature_item": {Kind: model.Function, Callable: true},
		"struct_item":             {Kind: model.Struct},
		"union_item":              {Kind: model.Struct},
		"enum_item":               {Kind: model.Enum},
		"trait_item":              {Kind: model.Trait},
		"impl_item":               {ContainerOnly: true},
		"const_item":              {Kind: model.Constant},
		"static_item":             {Kind: model.Variable},
		"type_item":               {Kind: model.TypeAlias},
		"mod_item":                {Kind: model.Module},
	},
	Imports:     set("use_declaration", "extern_crate_declaration"),
	Functions:   set("function_item", "closure_expression"),
	Comments:    set("line_comment", "block_comment"),
	Transparent: set("attribute_item"),
	DocComment:  rustDocComment,
}

// rustDocComment accepts outer and inner doc comments only.
func rustDocComment(text string) (string, bool) {
	switch {
	case strings.HasPrefix(text, "////"):
		return "", false
	case strings.HasPrefix(text, "///"), strings.HasPrefix(text, "//!"):
		return strings.TrimSpace(text[3:]), true
	case strings.HasPrefix(text, "/**"), strings.HasPrefix(text, "/*!"):
		return cleanBlockComment(text), true
	}
	return "", false
}
