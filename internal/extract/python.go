package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/ctx/internal/model"
)

var pythonRules = &Rules{
	Symbols: map[string]Rule{
		"function_definition": {Kind: model.Function, Callable: true},
		"class_definition":    {Kind: model.Class},
	},
	Imports:         set("import_statement", "import_from_statement", "future_import_statement"),
	Functions:       set("function_definition", "lambda"),
	Comments:        set("comment"),
	Wrappers:        set("decorated_definition"),
	Transparent:     set("decorator"),
	DocComment:      hashComment,
	Docstring:       pythonDocstring,
	SignatureSuffix: ":",
}

func hashComment(text string) (string, bool) {
	if !strings.HasPrefix(text, "#") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimLeft(text, "#")), true
}

// pythonDocstring returns the string literal that opens a function or
// class body.
func pythonDocstring(node *sitter.Node, src []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Type() != "string" {
		return ""
	}
	return cleanDocstring(str.Content(src))
}

func cleanDocstring(text string) string {
	text = strings.TrimLeft(text, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			text = text[len(q) : len(text)-len(q)]
			break
		}
	}
	return joinTrimmed(strings.Split(text, "\n"))
}
