// Package model defines the fact types shared by the ctx packages.
//
// All types are plain data with json and yaml tags so any renderer can
// consume them without knowing how they were produced.
package model

// SymbolKind is the syntactic kind of a declaration.
type SymbolKind string

const (
	Function  SymbolKind = "function"
	Method    SymbolKind = "method"
	Class     SymbolKind = "class"
	Struct    SymbolKind = "struct"
	Enum      SymbolKind = "enum"
	Interface SymbolKind = "interface"
	Trait     SymbolKind = "trait"
	TypeAlias SymbolKind = "type"
	Constant  SymbolKind = "const"
	Module    SymbolKind = "module"
	Variable  SymbolKind = "variable"
)

// IsCallable reports whether symbols of this kind can be invoked.
func (k SymbolKind) IsCallable() bool {
	return k == Function || k == Method
}

// Symbol is a named declaration site in a file.
type Symbol struct {
	Name       string     `json:"name" yaml:"name"`
	Kind       SymbolKind `json:"kind" yaml:"kind"`
	Line       int        `json:"line" yaml:"line"`
	EndLine    int        `json:"end_line" yaml:"end_line"`
	Signature  string     `json:"signature,omitempty" yaml:"signature,omitempty"`
	DocComment string     `json:"doc_comment,omitempty" yaml:"doc_comment,omitempty"`
}

// Contains reports whether line falls inside the symbol's declaration.
func (s Symbol) Contains(line int) bool {
	end := s.EndLine
	if end < s.Line {
		end = s.Line
	}
	return line >= s.Line && line <= end
}

// Import is a raw import statement. It is never resolved to a path.
type Import struct {
	File string `json:"file" yaml:"file"`
	Text string `json:"text" yaml:"text"`
	Line int    `json:"line" yaml:"line"`
}

// CallSite records one invocation of a name.
type CallSite struct {
	CallerFile  string `json:"caller_file" yaml:"caller_file"`
	CallerLine  int    `json:"caller_line" yaml:"caller_line"`
	InvokedName string `json:"invoked_name" yaml:"invoked_name"`
}

// FileSummary holds the facts extracted from one file.
type FileSummary struct {
	Path      string   `json:"path" yaml:"path"`
	Language  string   `json:"language" yaml:"language"`
	LineCount int      `json:"line_count" yaml:"line_count"`
	Symbols   []Symbol `json:"symbols" yaml:"symbols"`
	Imports   []Import `json:"imports" yaml:"imports"`
}

// RelevanceScore is the ranking of a candidate file against a prompt.
type RelevanceScore struct {
	Path     string   `json:"path" yaml:"path"`
	Language string   `json:"language,omitempty" yaml:"language,omitempty"`
	Score    float64  `json:"score" yaml:"score"`
	Reasons  []string `json:"reasons" yaml:"reasons"`
}
