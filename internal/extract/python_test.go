package extract

import (
	"strings"
	"testing"

	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/parser"
)

const pythonSource = `import os
from typing import List

# Computes a value.
def helper(x):
    def inner(y):
        return y
    return inner(x)


class Greeter:
    """Greets people.

    More detail.
    """

    def __init__(self, name):
        self.name = name

    @staticmethod
    def hello(name: str) -> str:
        import json
        return "hi " + name
`

func TestPythonSymbols(t *testing.T) {
	result := parseCode(t, parser.Python, pythonSource)
	defer result.Close()

	symbols, _ := Extract(result)
	assertSymbols(t, symbols, []wantSymbol{
		{"helper", model.Function, 5},
		{"inner", model.Function, 6},
		{"Greeter", model.Class, 11},
		{"__init__", model.Method, 17},
		{"hello", model.Method, 21},
	})

	greeter := findSymbol(t, symbols, "Greeter")
	if !strings.HasPrefix(greeter.DocComment, "Greets people.") {
		t.Errorf("expected docstring, got %q", greeter.DocComment)
	}
	if greeter.Signature != "" {
		t.Errorf("classes carry no signature, got %q", greeter.Signature)
	}

	hello := findSymbol(t, symbols, "hello")
	if hello.Signature != "def hello(name: str) -> str" {
		t.Errorf("unexpected signature %q", hello.Signature)
	}

	helper := findSymbol(t, symbols, "helper")
	if helper.DocComment != "Computes a value." {
		t.Errorf("expected comment doc, got %q", helper.DocComment)
	}
}

func TestPythonImportsSkipFunctionBodies(t *testing.T) {
	result := parseCode(t, parser.Python, pythonSource)
	defer result.Close()

	_, imports := Extract(result)
	if len(imports) != 2 {
		t.Fatalf("expected 2 imports, got %d: %+v", len(imports), imports)
	}
	if imports[0].Text != "import os" || imports[1].Text != "from typing import List" {
		t.Errorf("unexpected imports %+v", imports)
	}
}

func TestCleanDocstring(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"""One line."""`, "One line."},
		{`'''Single quotes.'''`, "Single quotes."},
		{"\"\"\"\n    Indented.\n    Second.\n    \"\"\"", "Indented.\nSecond."},
		{`r"""Raw."""`, "Raw."},
		{`"short"`, "short"},
	}
	for _, tt := range tests {
		if got := cleanDocstring(tt.in); got != tt.want {
			t.Errorf("cleanDocstring(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
