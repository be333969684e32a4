package context

import (
	"path"
	"strings"

	"github.com/hargabyte/ctx/internal/budget"
	"github.com/hargabyte/ctx/internal/extract"
	"github.com/hargabyte/ctx/internal/index"
)

// MapResult is a budgeted skeleton of the repository.
type MapResult struct {
	Path  string `yaml:"path,omitempty" json:"path,omitempty"`
	Files int    `yaml:"files" json:"files"`
	budget.Context `yaml:",inline"`
}

// Text returns the map lines.
func (m *MapResult) Text() string { return m.Context.Text() }

// Map renders the skeleton of every summarized file under dir, in path
// order: the file path, then its declarations indented below it. Files
// without symbols are left out. An empty dir maps the whole index.
func Map(idx *index.Index, dir string, limit int, est budget.Estimator) *MapResult {
	prefix := strings.Trim(path.Clean("/"+dir), "/")

	a := budget.NewAssembler(limit, est)
	files := 0
	for _, p := range idx.Paths() {
		if prefix != "" && p != prefix && !strings.HasPrefix(p, prefix+"/") {
			continue
		}
		sum := idx.Summary(p)
		if len(sum.Symbols) == 0 {
			continue
		}
		files++
		a.Add(p + ":")
		for _, line := range extract.Skeleton(sum) {
			a.Add("  " + line)
		}
	}
	return &MapResult{Path: prefix, Files: files, Context: *a.Context()}
}
