// Package exclude detects dependency and build directories that should be
// left out of a scan.
package exclude

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
)

// rule recognises one kind of dependency directory. A directory matches
// when its name equals Name (any name if empty) and either Sibling exists
// next to it or Inside exists within it.
type rule struct {
	Name    string
	Sibling string
	Inside  []string
	Reason  string
}

var rules = []rule{
	{Name: "target", Sibling: "Cargo.toml", Reason: "Rust build artifacts (Cargo.toml detected)"},
	{Name: "node_modules", Sibling: "package.json", Reason: "Node.js dependencies (package.json detected)"},
	{Name: "vendor", Inside: []string{"modules.txt"}, Reason: "Go vendored dependencies (vendor/modules.txt detected)"},
	{Name: "vendor", Inside: []string{"autoload.php"}, Reason: "PHP Composer dependencies (vendor/autoload.php detected)"},
	{Inside: []string{"pyvenv.cfg"}, Reason: "Python virtual environment (pyvenv.cfg detected)"},
	{Name: "dist", Sibling: "package.json", Reason: "JavaScript build output (package.json detected)"},
}

// Result lists the detected directories, relative to the scanned root with
// forward slashes.
type Result struct {
	Dirs    []string
	Reasons map[string]string
}

// Detect walks root and reports dependency directories at any depth, so a
// nested project's node_modules is found as well as the top-level one.
// Detection only relies on files that must exist for the directory to be
// what it looks like.
func Detect(root string) *Result {
	res := &Result{Dirs: []string{}, Reasons: make(map[string]string)}

	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.Name() == ".git" {
			return filepath.SkipDir
		}

		for _, r := range rules {
			if r.matches(p, d.Name()) {
				res.Dirs = append(res.Dirs, rel)
				res.Reasons[rel] = r.Reason
				return filepath.SkipDir
			}
		}
		return nil
	})

	sort.Strings(res.Dirs)
	return res
}

func (r rule) matches(dir, name string) bool {
	if r.Name != "" && r.Name != name {
		return false
	}
	if r.Sibling != "" && !isFile(filepath.Join(filepath.Dir(dir), r.Sibling)) {
		return false
	}
	for _, f := range r.Inside {
		if !isFile(filepath.Join(dir, f)) {
			return false
		}
	}
	return r.Sibling != "" || len(r.Inside) > 0
}

// Excludes reports whether rel lies in a detected directory.
func (r *Result) Excludes(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, d := range r.Dirs {
		if rel == d || (len(rel) > len(d) && rel[:len(d)] == d && rel[len(d)] == '/') {
			return true
		}
	}
	return false
}

// Patterns renders the directories as root-anchored gitignore lines.
func (r *Result) Patterns() []string {
	out := make([]string, len(r.Dirs))
	for i, d := range r.Dirs {
		out[i] = "/" + path.Clean(d) + "/"
	}
	return out
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
