package parser

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported programming language.
// The empty Language means the file is not parsed.
type Language string

const (
	// None marks files without a supported grammar.
	None Language = ""
	// Go represents the Go programming language.
	Go Language = "go"
	// Python represents the Python programming language.
	Python Language = "python"
	// Rust represents the Rust programming language.
	Rust Language = "rust"
	// JavaScript represents JavaScript, including JSX.
	JavaScript Language = "javascript"
	// TypeScript represents TypeScript without JSX.
	TypeScript Language = "typescript"
	// TSX represents TypeScript with JSX.
	TSX Language = "tsx"
)

// Extensions maps a lowercase file extension to its language.
var Extensions = map[string]Language{
	".go":  Go,
	".py":  Python,
	".pyi": Python,
	".rs":  Rust,
	".js":  JavaScript,
	".jsx": JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".ts":  TypeScript,
	".mts": TypeScript,
	".cts": TypeScript,
	".tsx": TSX,
}

// grammars returns the tree-sitter grammar for each language.
var grammars = map[Language]func() *sitter.Language{
	Go:         golang.GetLanguage,
	Python:     python.GetLanguage,
	Rust:       rust.GetLanguage,
	JavaScript: javascript.GetLanguage,
	TypeScript: typescript.GetLanguage,
	TSX:        tsx.GetLanguage,
}

// Languages returns every supported language in a stable order.
func Languages() []Language {
	langs := make([]Language, 0, len(grammars))
	for lang := range grammars {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Family groups dialects under their base language, so TSX files count
// as TypeScript when matching a prompt.
func (l Language) Family() Language {
	if l == TSX {
		return TypeScript
	}
	return l
}

// Supported reports whether l has a grammar.
func (l Language) Supported() bool {
	_, ok := grammars[l]
	return ok
}

// ParseLanguage converts a configured language name to a Language.
// Returns None for unknown names.
func ParseLanguage(name string) Language {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "go", "golang":
		return Go
	case "python", "py":
		return Python
	case "rust", "rs":
		return Rust
	case "javascript", "js", "jsx":
		return JavaScript
	case "typescript", "ts":
		return TypeScript
	case "tsx":
		return TSX
	default:
		return None
	}
}

// LanguageFromExtension returns the language for a file extension.
// Returns None if the extension is not recognized.
func LanguageFromExtension(ext string) Language {
	return Extensions[strings.ToLower(ext)]
}

// LanguageFromPath classifies a file by its extension.
func LanguageFromPath(path string) Language {
	return LanguageFromExtension(filepath.Ext(path))
}

// SupportedExtensions returns all file extensions supported for parsing.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(Extensions))
	for ext := range Extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
