// Package related finds the files connected to a target file: what it
// imports, what imports it, what changes with it and what tests it.
// Import matching is textual; nothing is resolved semantically.
package related

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/hargabyte/ctx/internal/activity"
	"github.com/hargabyte/ctx/internal/index"
	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/parser"
)

// DefaultCoChangeLimit caps the co-changed list.
const DefaultCoChangeLimit = 10

// File is one related file and why it is related. Path is empty for an
// import that does not resolve to a file in the index.
type File struct {
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
}

// Result groups the files related to Source.
type Result struct {
	Source     string `json:"source" yaml:"source"`
	Imports    []File `json:"imports" yaml:"imports"`
	ImportedBy []File `json:"imported_by" yaml:"imported_by"`
	CoChanged  []File `json:"co_changed" yaml:"co_changed"`
	TestFiles  []File `json:"test_files" yaml:"test_files"`
}

// Options tunes Find.
type Options struct {
	// CoChangeLimit caps co-changed files. Zero means DefaultCoChangeLimit.
	CoChangeLimit int
}

// Find collects the files related to target, a path relative to the
// index root. act may be nil.
func Find(idx *index.Index, target string, act *activity.Facts, opts Options) (*Result, error) {
	entry, ok := idx.File(target)
	if !ok {
		return nil, fmt.Errorf("%s: %w", target, ErrNotIndexed)
	}
	limit := opts.CoChangeLimit
	if limit <= 0 {
		limit = DefaultCoChangeLimit
	}

	res := &Result{
		Source:     target,
		Imports:    []File{},
		ImportedBy: []File{},
		CoChanged:  []File{},
		TestFiles:  []File{},
	}

	if sum := idx.Summary(target); sum != nil {
		for _, imp := range sum.Imports {
			res.Imports = append(res.Imports, File{
				Path:   resolveImport(idx, target, entry.Language, imp.Text),
				Reason: imp.Text,
			})
		}
	}

	res.ImportedBy = importedBy(idx, target)

	for _, pair := range act.CoChanged(target) {
		if len(res.CoChanged) == limit {
			break
		}
		res.CoChanged = append(res.CoChanged, File{
			Path:   pair.Path,
			Reason: fmt.Sprintf("%d commits together", pair.Count),
		})
	}

	res.TestFiles = testFiles(idx, target)
	return res, nil
}

// importedBy lists files with an import whose text mentions the target's
// stem. Only the first matching import of each file is reported.
func importedBy(idx *index.Index, target string) []File {
	out := []File{}
	stem := stemOf(target)
	if stem == "" {
		return out
	}
	for _, p := range idx.Paths() {
		if p == target {
			continue
		}
		if imp, ok := firstMention(idx.Summary(p).Imports, stem); ok {
			out = append(out, File{Path: p, Reason: imp.Text})
		}
	}
	return out
}

func firstMention(imports []model.Import, stem string) (model.Import, bool) {
	for _, imp := range imports {
		if strings.Contains(imp.Text, stem) {
			return imp, true
		}
	}
	return model.Import{}, false
}

// testFiles lists files named as tests of the target, and files under a
// test directory whose path mentions the target's stem.
func testFiles(idx *index.Index, target string) []File {
	out := []File{}
	stem := stemOf(target)
	if stem == "" || IsTestFile(target, parser.LanguageFromPath(target)) {
		return out
	}
	stems := testStems(stem)
	for _, f := range idx.Files {
		if f.Path == target {
			continue
		}
		named := slices.Contains(stems, stemOf(f.Path))
		underTests := (inDir(f.Path, "tests") || inDir(f.Path, "test")) &&
			strings.Contains(path.Base(f.Path), stem)
		if named || underTests {
			out = append(out, File{Path: f.Path, Reason: "test file"})
		}
	}
	return out
}
