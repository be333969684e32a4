// Package context assembles the prompt context handed to an agent: a
// header, recently active files, files named in the prompt, the most
// relevant files with their symbols, and the prompt keywords, ranked in
// that order and cut off at the token budget.
package context

import (
	"fmt"
	"strings"

	"github.com/hargabyte/ctx/internal/activity"
	"github.com/hargabyte/ctx/internal/budget"
	"github.com/hargabyte/ctx/internal/index"
	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/project"
	"github.com/hargabyte/ctx/internal/relevance"
)

// Options configures context assembly.
type Options struct {
	Budget    int
	Estimator budget.Estimator

	MaxRecent    int // recently active files (default: 3)
	MaxMentioned int // files named in the prompt (default: 5)
	MaxFiles     int // relevant files (default: 5)
	MaxSymbols   int // symbol lines across all files (default: 20)
	MaxKeywords  int // keywords in the summary line (default: 10)

	Project project.Info
	// Git is nil outside a repository.
	Git *activity.Status
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		Budget:       2000,
		Estimator:    budget.DefaultEstimator,
		MaxRecent:    3,
		MaxMentioned: 5,
		MaxFiles:     5,
		MaxSymbols:   20,
		MaxKeywords:  10,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Budget <= 0 {
		o.Budget = d.Budget
	}
	if o.Estimator == nil {
		o.Estimator = d.Estimator
	}
	if o.MaxRecent == 0 {
		o.MaxRecent = d.MaxRecent
	}
	if o.MaxMentioned == 0 {
		o.MaxMentioned = d.MaxMentioned
	}
	if o.MaxFiles == 0 {
		o.MaxFiles = d.MaxFiles
	}
	if o.MaxSymbols == 0 {
		o.MaxSymbols = d.MaxSymbols
	}
	if o.MaxKeywords == 0 {
		o.MaxKeywords = d.MaxKeywords
	}
	return o
}

// Result is an assembled context and how it was derived.
type Result struct {
	Intent    *Intent                `yaml:"intent" json:"intent"`
	Keywords  []string               `yaml:"keywords" json:"keywords"`
	Mentioned []string               `yaml:"mentioned_files" json:"mentioned_files"`
	Relevant  []model.RelevanceScore `yaml:"relevant_files" json:"relevant_files"`
	Lines     []string               `yaml:"lines" json:"lines"`

	TokensUsed   int `yaml:"tokens_used" json:"tokens_used"`
	TokensBudget int `yaml:"tokens_budget" json:"tokens_budget"`
	// Excluded counts ranked lines that did not fit.
	Excluded int `yaml:"excluded" json:"excluded"`
}

// Text returns the context lines joined by newlines.
func (r *Result) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Build ranks everything known about prompt and packs it under the budget.
// act may be nil.
func Build(idx *index.Index, prompt string, act *activity.Facts, opts Options) *Result {
	opts = opts.withDefaults()

	p := relevance.AnalyzePrompt(prompt)
	res := &Result{
		Intent:    ExtractIntent(prompt),
		Keywords:  nonNil(p.Keywords),
		Mentioned: nonNil(p.Mentioned),
	}

	var ra relevance.Activity
	if act != nil {
		ra = act
	}
	res.Relevant = []model.RelevanceScore{}
	if opts.MaxFiles > 0 {
		res.Relevant = relevance.Score(prompt, idx.Candidates(), ra, relevance.Options{
			DropZero: true,
			Limit:    opts.MaxFiles,
		})
	}

	lines := []string{Header(opts.Project, opts.Git)}
	lines = append(lines, recentLines(act, opts.MaxRecent)...)
	for _, f := range limit(res.Mentioned, opts.MaxMentioned) {
		lines = append(lines, fmt.Sprintf("[MENTIONED: %s]", f))
	}
	for _, rs := range res.Relevant {
		lines = append(lines, fmt.Sprintf("[RELEVANT: %s (%s)]", rs.Path, strings.Join(rs.Reasons, ", ")))
	}
	lines = append(lines, symbolLines(idx, res.Intent.EntityMentions, res.Relevant, opts.MaxSymbols)...)
	if kw := limit(res.Keywords, opts.MaxKeywords); len(kw) > 0 {
		lines = append(lines, fmt.Sprintf("[KEYWORDS: %s]", strings.Join(kw, ", ")))
	}

	ctx := budget.Assemble(lines, opts.Budget, opts.Estimator)
	res.Lines = ctx.Lines
	res.TokensUsed = ctx.Used
	res.TokensBudget = ctx.Budget
	res.Excluded = ctx.Dropped
	return res
}

// Header renders the [CTX: ...] line.
func Header(info project.Info, git *activity.Status) string {
	name := info.Name
	if name == "" {
		name = "unknown"
	}
	kind := info.Type
	if kind == "" {
		kind = "unknown"
	}
	vcs := "no-git"
	if git != nil {
		vcs = "branch=" + git.Branch
		if git.Dirty {
			vcs += "*"
		}
	}
	return fmt.Sprintf("[CTX: project=%s type=%s %s]", name, kind, vcs)
}

func recentLines(act *activity.Facts, n int) []string {
	if n < 0 {
		return nil
	}
	var out []string
	for _, a := range act.Recent(n) {
		unit := "commits"
		if a.Commits == 1 {
			unit = "commit"
		}
		out = append(out, fmt.Sprintf("[RECENT: %s (%d %s)]", a.Path, a.Commits, unit))
	}
	return out
}

// SymbolLine renders a symbol as "path:line kind name".
func SymbolLine(path string, sym model.Symbol) string {
	return fmt.Sprintf("%s:%d %s %s", path, sym.Line, sym.Kind, sym.Name)
}

// symbolLines lists definitions of identifiers named in the prompt first,
// then the symbols of each relevant file in rank order.
func symbolLines(idx *index.Index, mentions []string, relevant []model.RelevanceScore, n int) []string {
	if n < 0 {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	add := func(line string) bool {
		if len(out) == n {
			return false
		}
		if !seen[line] {
			seen[line] = true
			out = append(out, line)
		}
		return true
	}

	for _, name := range mentions {
		for _, loc := range idx.FindSymbol(name) {
			if !add(SymbolLine(loc.Path, loc.Symbol)) {
				return out
			}
		}
	}
	for _, rs := range relevant {
		sum := idx.Summary(rs.Path)
		if sum == nil {
			continue
		}
		for _, sym := range sum.Symbols {
			if !add(SymbolLine(rs.Path, sym)) {
				return out
			}
		}
	}
	return out
}

func limit(s []string, n int) []string {
	if n < 0 {
		return nil
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
