// Package diffctx maps a unified diff onto the fact index: which functions
// a change touches and who calls them.
package diffctx

import (
	"fmt"
	"sort"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// File status codes, as in git diff --name-status.
const (
	StatusAdded    = "A"
	StatusModified = "M"
	StatusDeleted  = "D"
	StatusRenamed  = "R"
)

// ChangedFile is one file of a parsed diff.
type ChangedFile struct {
	Path       string `yaml:"path" json:"path"`
	OldPath    string `yaml:"old_path,omitempty" json:"old_path,omitempty"`
	Status     string `yaml:"status" json:"status"`
	Insertions int    `yaml:"insertions" json:"insertions"`
	Deletions  int    `yaml:"deletions" json:"deletions"`
	// Lines are the new-side line numbers the change touches: every added
	// line plus the line a pure deletion sits before.
	Lines []int `yaml:"lines,omitempty" json:"lines,omitempty"`
}

// Parse reads a multi-file unified diff.
func Parse(diffText []byte) ([]ChangedFile, error) {
	if len(strings.TrimSpace(string(diffText))) == 0 {
		return []ChangedFile{}, nil
	}
	fileDiffs, err := godiff.ParseMultiFileDiff(diffText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	files := make([]ChangedFile, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		files = append(files, parseFileDiff(fd))
	}
	return files, nil
}

func parseFileDiff(fd *godiff.FileDiff) ChangedFile {
	oldPath, newPath := cleanPath(fd.OrigName), cleanPath(fd.NewName)
	cf := ChangedFile{Path: newPath, Status: StatusModified}
	switch {
	case oldPath == "/dev/null" || oldPath == "":
		cf.Status = StatusAdded
	case newPath == "/dev/null" || newPath == "":
		cf.Status = StatusDeleted
		cf.Path = oldPath
	case oldPath != newPath:
		cf.Status = StatusRenamed
		cf.OldPath = oldPath
	}

	touched := make(map[int]bool)
	for _, h := range fd.Hunks {
		newLine := int(h.NewStartLine)
		for _, line := range strings.Split(strings.TrimSuffix(string(h.Body), "\n"), "\n") {
			if line == "" {
				newLine++
				continue
			}
			switch line[0] {
			case '+':
				cf.Insertions++
				touched[newLine] = true
				newLine++
			case '-':
				cf.Deletions++
				if cf.Status != StatusDeleted {
					touched[max(newLine, 1)] = true
				}
			case ' ':
				newLine++
			}
		}
	}

	cf.Lines = make([]int, 0, len(touched))
	for l := range touched {
		cf.Lines = append(cf.Lines, l)
	}
	sort.Ints(cf.Lines)
	return cf
}

// cleanPath strips git's a/ and b/ prefixes.
func cleanPath(p string) string {
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}
