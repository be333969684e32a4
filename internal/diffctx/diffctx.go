package diffctx

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hargabyte/ctx/internal/activity"
	"github.com/hargabyte/ctx/internal/model"
)

// Facts is the part of the index a diff is resolved against.
type Facts interface {
	Summary(path string) *model.FileSummary
	CallersOf(name string) []model.CallSite
}

// Options selects what git diff compares.
type Options struct {
	// Ref is compared against the working tree. Defaults to HEAD.
	Ref string
	// Staged compares the index against HEAD instead.
	Staged bool
}

// FunctionChange is a function or method overlapping a changed line.
type FunctionChange struct {
	Name      string `yaml:"name" json:"name"`
	Kind      string `yaml:"kind" json:"kind"`
	Line      int    `yaml:"line" json:"line"`
	EndLine   int    `yaml:"end_line" json:"end_line"`
	Signature string `yaml:"signature,omitempty" json:"signature,omitempty"`
}

// FileContext is a changed file with the functions it modifies.
type FileContext struct {
	ChangedFile `yaml:",inline"`
	Functions   []FunctionChange `yaml:"functions_modified" json:"functions_modified"`
}

// AffectedCaller lists the call sites of one modified function.
type AffectedCaller struct {
	Function   string   `yaml:"function" json:"function"`
	CalledFrom []string `yaml:"called_from" json:"called_from"`
}

// Result is the diff context for a change set.
type Result struct {
	Ref     string           `yaml:"ref" json:"ref"`
	Files   []FileContext    `yaml:"files_changed" json:"files_changed"`
	Callers []AffectedCaller `yaml:"callers_affected" json:"callers_affected"`
}

// GitDiff runs git diff in root according to opts.
func GitDiff(ctx context.Context, root string, opts Options) ([]byte, error) {
	args := []string{"diff", "--no-color", "--no-ext-diff", "--find-renames"}
	switch {
	case opts.Staged:
		args = append(args, "--cached")
	case opts.Ref != "":
		args = append(args, opts.Ref)
	default:
		args = append(args, "HEAD")
	}
	out, err := activity.Git(ctx, root, args...)
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	return out, nil
}

// RefName labels opts for display.
func RefName(opts Options) string {
	switch {
	case opts.Staged:
		return "staged"
	case opts.Ref != "":
		return opts.Ref
	default:
		return "HEAD"
	}
}

// Analyze resolves changed lines to modified functions and their callers.
// Calls made from inside the modified function itself are not reported as
// affected callers.
func Analyze(ref string, changes []ChangedFile, facts Facts) *Result {
	res := &Result{
		Ref:     ref,
		Files:   make([]FileContext, 0, len(changes)),
		Callers: []AffectedCaller{},
	}

	type modified struct {
		file string
		sym  model.Symbol
	}
	var mods []modified
	for _, cf := range changes {
		fc := FileContext{ChangedFile: cf, Functions: []FunctionChange{}}
		if cf.Status != StatusDeleted {
			if sum := facts.Summary(cf.Path); sum != nil {
				for _, sym := range ModifiedSymbols(sum, cf.Lines) {
					fc.Functions = append(fc.Functions, FunctionChange{
						Name:      sym.Name,
						Kind:      string(sym.Kind),
						Line:      sym.Line,
						EndLine:   sym.EndLine,
						Signature: sym.Signature,
					})
					mods = append(mods, modified{file: cf.Path, sym: sym})
				}
			}
		}
		res.Files = append(res.Files, fc)
	}

	seen := make(map[string]bool)
	for _, m := range mods {
		if seen[m.sym.Name] {
			continue
		}
		seen[m.sym.Name] = true

		var from []string
		for _, site := range facts.CallersOf(m.sym.Name) {
			if site.CallerFile == m.file && m.sym.Contains(site.CallerLine) {
				continue
			}
			from = append(from, site.CallerFile+":"+strconv.Itoa(site.CallerLine))
		}
		if len(from) > 0 {
			res.Callers = append(res.Callers, AffectedCaller{Function: m.sym.Name, CalledFrom: from})
		}
	}
	return res
}

// ModifiedSymbols returns the callable symbols whose line range contains
// one of lines, in declaration order. lines must be sorted.
func ModifiedSymbols(sum *model.FileSummary, lines []int) []model.Symbol {
	var out []model.Symbol
	for _, sym := range sum.Symbols {
		if !sym.Kind.IsCallable() {
			continue
		}
		for _, l := range lines {
			if l > max(sym.EndLine, sym.Line) {
				break
			}
			if sym.Contains(l) {
				out = append(out, sym)
				break
			}
		}
	}
	return out
}
