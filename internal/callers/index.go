package callers

import (
	"sort"

	"github.com/hargabyte/ctx/internal/model"
)

// Index maps invoked names to their call sites. Sites for a name are kept
// in discovery order; callers should not rely on that order beyond
// deterministic output.
//
// An Index is built once the parse phase completes and is not safe for
// concurrent mutation.
type Index struct {
	byName map[string][]model.CallSite
	byFile map[string][]model.CallSite
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		byName: make(map[string][]model.CallSite),
		byFile: make(map[string][]model.CallSite),
	}
}

// Build indexes the call sites of each file, visiting files in path order.
func Build(files map[string][]model.CallSite) *Index {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	idx := NewIndex()
	for _, p := range paths {
		idx.Add(p, files[p])
	}
	return idx
}

// Add records the call sites of file, replacing any it already had.
func (x *Index) Add(file string, sites []model.CallSite) {
	if _, ok := x.byFile[file]; ok {
		x.Remove(file)
	}
	x.byFile[file] = sites
	for _, s := range sites {
		x.byName[s.InvokedName] = append(x.byName[s.InvokedName], s)
	}
}

// Remove drops every call site recorded for file.
func (x *Index) Remove(file string) {
	sites, ok := x.byFile[file]
	if !ok {
		return
	}
	delete(x.byFile, file)

	touched := make(map[string]bool)
	for _, s := range sites {
		touched[s.InvokedName] = true
	}
	for name := range touched {
		kept := x.byName[name][:0:0]
		for _, s := range x.byName[name] {
			if s.CallerFile != file {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(x.byName, name)
		} else {
			x.byName[name] = kept
		}
	}
}

// CallersOf returns the call sites invoking name.
func (x *Index) CallersOf(name string) []model.CallSite {
	sites := x.byName[name]
	out := make([]model.CallSite, len(sites))
	copy(out, sites)
	return out
}

// CallsFrom returns the call sites found in file.
func (x *Index) CallsFrom(file string) []model.CallSite {
	sites := x.byFile[file]
	out := make([]model.CallSite, len(sites))
	copy(out, sites)
	return out
}

// Names returns every invoked name in sorted order.
func (x *Index) Names() []string {
	names := make([]string, 0, len(x.byName))
	for n := range x.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of call sites.
func (x *Index) Len() int {
	n := 0
	for _, sites := range x.byFile {
		n += len(sites)
	}
	return n
}
