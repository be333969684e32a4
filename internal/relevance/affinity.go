package relevance

import (
	"path/filepath"
	"sort"

	"github.com/hargabyte/ctx/internal/parser"
)

// languageHints maps prompt words to the languages they imply. Bare "go"
// is left out: it is far more often an English verb than a language name.
var languageHints = map[string][]parser.Language{
	"golang":     {parser.Go},
	"goroutine":  {parser.Go},
	"goroutines": {parser.Go},
	"gofmt":      {parser.Go},
	"gomod":      {parser.Go},

	"python":   {parser.Python},
	"py":       {parser.Python},
	"pip":      {parser.Python},
	"pytest":   {parser.Python},
	"django":   {parser.Python},
	"flask":    {parser.Python},
	"fastapi":  {parser.Python},
	"asyncio":  {parser.Python},
	"pydantic": {parser.Python},
	"numpy":    {parser.Python},
	"pandas":   {parser.Python},

	"rust":   {parser.Rust},
	"cargo":  {parser.Rust},
	"crate":  {parser.Rust},
	"crates": {parser.Rust},
	"trait":  {parser.Rust},
	"traits": {parser.Rust},
	"impl":   {parser.Rust},
	"rustc":  {parser.Rust},
	"tokio":  {parser.Rust},
	"serde":  {parser.Rust},
	"clippy": {parser.Rust},

	"javascript": {parser.JavaScript},
	"js":         {parser.JavaScript},
	"jsx":        {parser.JavaScript},
	"node":       {parser.JavaScript},
	"nodejs":     {parser.JavaScript},
	"npm":        {parser.JavaScript, parser.TypeScript},
	"yarn":       {parser.JavaScript, parser.TypeScript},
	"react":      {parser.JavaScript, parser.TypeScript},
	"eslint":     {parser.JavaScript, parser.TypeScript},

	"typescript": {parser.TypeScript},
	"ts":         {parser.TypeScript},
	"tsx":        {parser.TypeScript},
	"tsc":        {parser.TypeScript},
	"angular":    {parser.TypeScript},
	"deno":       {parser.TypeScript},
}

// ImpliedLanguages returns the language families a prompt refers to, either
// by naming a language or a construct specific to it, or by mentioning a
// file with that language's extension.
func ImpliedLanguages(prompt string) []parser.Language {
	found := make(map[parser.Language]bool)
	for _, w := range tokens(prompt) {
		for _, lang := range languageHints[w] {
			found[lang] = true
		}
	}
	for _, f := range ExtractMentionedFiles(prompt) {
		if lang := parser.LanguageFromExtension(filepath.Ext(f)); lang != parser.None {
			found[lang.Family()] = true
		}
	}

	langs := make([]parser.Language, 0, len(found))
	for lang := range found {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}
