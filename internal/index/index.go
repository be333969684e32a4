// Package index builds the fact index of a repository: a summary of every
// parseable file and the caller index over all of them.
package index

import (
	"sort"

	"github.com/hargabyte/ctx/internal/callers"
	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/relevance"
	"github.com/hargabyte/ctx/internal/walker"
)

// ErrRootNotFound is returned by Build when the root cannot be resolved.
var ErrRootNotFound = walker.ErrRootNotFound

// FileError is a per-file failure. The file is left out of the index and
// the build carries on.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e *FileError) Unwrap() error { return e.Err }

// Stats counts where each file's facts came from.
type Stats struct {
	Files     int `json:"files" yaml:"files"`
	Parsed    int `json:"parsed" yaml:"parsed"`
	CacheHits int `json:"cache_hits" yaml:"cache_hits"`
	StoreHits int `json:"store_hits" yaml:"store_hits"`
	Errors    int `json:"errors" yaml:"errors"`
}

// Index is the read-only result of a build.
type Index struct {
	Root string
	// Files holds every walked file, parseable or not, sorted by path.
	Files []walker.Entry
	// Summaries holds facts for parseable files, keyed by relative path.
	Summaries map[string]*model.FileSummary
	Callers   *callers.Index
	Errors    []*FileError
	Stats     Stats
}

// Summary returns the summary of a relative path, or nil.
func (x *Index) Summary(path string) *model.FileSummary {
	return x.Summaries[path]
}

// CallersOf returns every call site invoking name.
func (x *Index) CallersOf(name string) []model.CallSite {
	return x.Callers.CallersOf(name)
}

// Paths returns the relative paths of summarized files in sorted order.
func (x *Index) Paths() []string {
	paths := make([]string, 0, len(x.Summaries))
	for p := range x.Summaries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Candidates returns every walked file as a relevance candidate.
func (x *Index) Candidates() []relevance.Candidate {
	out := make([]relevance.Candidate, len(x.Files))
	for i, f := range x.Files {
		out[i] = relevance.Candidate{Path: f.Path, Language: f.Language}
	}
	return out
}

// File returns the walked entry for a relative path.
func (x *Index) File(path string) (walker.Entry, bool) {
	i := sort.Search(len(x.Files), func(i int) bool { return x.Files[i].Path >= path })
	if i < len(x.Files) && x.Files[i].Path == path {
		return x.Files[i], true
	}
	return walker.Entry{}, false
}

// FindSymbol returns the symbols named name across the index, in path
// order.
func (x *Index) FindSymbol(name string) []Located {
	var out []Located
	for _, p := range x.Paths() {
		for _, sym := range x.Summaries[p].Symbols {
			if sym.Name == name {
				out = append(out, Located{Path: p, Symbol: sym})
			}
		}
	}
	return out
}

// Located is a symbol and the file declaring it.
type Located struct {
	Path         string `json:"path" yaml:"path"`
	model.Symbol `yaml:",inline"`
}
