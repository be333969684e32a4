// Package walker enumerates the files of a repository in a stable order,
// honoring ignore files and skipping dependency and build directories.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/hargabyte/ctx/internal/exclude"
	"github.com/hargabyte/ctx/internal/parser"
)

// ErrRootNotFound is returned when the scan root does not exist or is not
// a directory.
var ErrRootNotFound = errors.New("repository root not found")

// IgnoreFiles are read from the root, in order, when present.
var IgnoreFiles = []string{".gitignore", ".ctxignore"}

// DefaultIgnores apply even when the repository has no ignore files.
var DefaultIgnores = []string{
	// version control
	".git", ".svn", ".hg", ".bzr",
	// dependencies
	"node_modules", "bower_components", ".pnpm",
	// build output
	"target", "build", "dist", "out", "_build", ".next", ".nuxt", ".output",
	"__pycache__", "*.pyc", ".pytest_cache", ".mypy_cache", ".ruff_cache",
	"*.egg-info", ".eggs", ".tox",
	// editors
	".idea", ".vscode", ".vs", "*.swp", "*.swo", "*~",
	".project", ".classpath", ".settings",
	// os
	".DS_Store", "Thumbs.db", "desktop.ini",
	// package manager caches
	".npm", ".yarn", ".pnpm-store", ".cache",
	// secrets
	".env", ".env.local", ".env.*.local", "*.pem", "*.key",
	// coverage
	"coverage", ".coverage", "htmlcov", ".nyc_output",
	// logs and scratch
	"*.log", "logs", "tmp", "temp", ".tmp", ".temp",
	// ctx state
	".ctx",
}

// Entry is one file produced by a walk.
type Entry struct {
	// Path is relative to the root, with forward slashes.
	Path     string
	AbsPath  string
	ModTime  time.Time
	Size     int64
	Language parser.Language
}

// Diagnostic records a file or directory the walk could not read.
type Diagnostic struct {
	Path string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Path, d.Err)
}

// Options configures a Walker.
type Options struct {
	// Languages restricts parseable files to these languages. Empty means
	// every supported language.
	Languages []parser.Language
	// SourceOnly drops files without a supported language.
	SourceOnly bool
	// Exclude holds extra gitignore-style patterns.
	Exclude []string
	// MaxFileSize skips larger files. Zero disables the limit.
	MaxFileSize int64
	// NoAutoExclude disables detection of dependency directories.
	NoAutoExclude bool
	Logger        *slog.Logger
}

// Walker walks one repository root.
type Walker struct {
	root     string
	opts     Options
	langs    map[parser.Language]bool
	matchers []*ignore.GitIgnore
	auto     *exclude.Result
	logger   *slog.Logger
	diags    []Diagnostic
}

// New prepares a walk of root. Ignore files are read once here.
func New(root string, opts Options) (*Walker, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotFound, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	w := &Walker{
		root:   abs,
		opts:   opts,
		logger: opts.Logger,
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	if len(opts.Languages) > 0 {
		w.langs = make(map[parser.Language]bool, len(opts.Languages))
		for _, l := range opts.Languages {
			w.langs[l] = true
		}
	}

	lines := append(slices.Clone(DefaultIgnores), opts.Exclude...)
	if !opts.NoAutoExclude {
		w.auto = exclude.Detect(abs)
		for _, d := range w.auto.Dirs {
			w.logger.Debug("auto-excluding directory", "dir", d, "reason", w.auto.Reasons[d])
		}
		lines = append(lines, w.auto.Patterns()...)
	}
	w.matchers = append(w.matchers, ignore.CompileIgnoreLines(lines...))

	for _, name := range IgnoreFiles {
		p := filepath.Join(abs, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		gi, err := ignore.CompileIgnoreFile(p)
		if err != nil {
			w.logger.Warn("failed to read ignore file", "path", p, "error", err)
			continue
		}
		w.matchers = append(w.matchers, gi)
	}
	return w, nil
}

// Root returns the absolute root directory.
func (w *Walker) Root() string { return w.root }

// Files returns the walk as a sequence in lexical path order. Each range
// over the sequence walks the tree again, so it reflects the current
// state of the disk. Unreadable entries are skipped and recorded as
// diagnostics.
func (w *Walker) Files() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		w.diags = nil
		_ = filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				w.diagnose(p, err)
				if d != nil && d.IsDir() && p != w.root {
					return filepath.SkipDir
				}
				return nil
			}
			if p == w.root {
				return nil
			}

			rel, err := filepath.Rel(w.root, p)
			if err != nil {
				w.diagnose(p, err)
				return nil
			}
			rel = filepath.ToSlash(rel)
			name := d.Name()

			if d.IsDir() {
				if isHidden(name) || w.Ignored(rel+"/") {
					return filepath.SkipDir
				}
				return nil
			}
			if isHidden(name) || !d.Type().IsRegular() || w.Ignored(rel) {
				return nil
			}

			lang := parser.LanguageFromPath(name)
			if !w.wants(lang) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				w.diagnose(p, err)
				return nil
			}
			if w.opts.MaxFileSize > 0 && info.Size() > w.opts.MaxFileSize {
				w.logger.Debug("skipping large file", "path", rel, "size", info.Size())
				return nil
			}

			if !yield(Entry{
				Path:     rel,
				AbsPath:  p,
				ModTime:  info.ModTime(),
				Size:     info.Size(),
				Language: lang,
			}) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// Collect walks the tree once and returns every entry.
func (w *Walker) Collect() []Entry {
	return slices.Collect(w.Files())
}

// Diagnostics returns the problems met by the most recent walk.
func (w *Walker) Diagnostics() []Diagnostic {
	return slices.Clone(w.diags)
}

// Ignored reports whether a root-relative path is excluded by the default
// ignores, the ignore files, configured patterns or auto-detection. A
// trailing slash marks a directory.
func (w *Walker) Ignored(rel string) bool {
	rel = filepath.ToSlash(rel)
	trimmed := strings.TrimSuffix(rel, "/")
	if w.auto != nil && w.auto.Excludes(trimmed) {
		return true
	}
	for _, m := range w.matchers {
		if m.MatchesPath(trimmed) || (trimmed != rel && m.MatchesPath(rel)) {
			return true
		}
	}
	return false
}

func (w *Walker) wants(lang parser.Language) bool {
	if lang == parser.None {
		return !w.opts.SourceOnly
	}
	if w.langs == nil {
		return true
	}
	return w.langs[lang] || w.langs[lang.Family()]
}

func (w *Walker) diagnose(p string, err error) {
	rel, relErr := filepath.Rel(w.root, p)
	if relErr != nil {
		rel = p
	}
	w.diags = append(w.diags, Diagnostic{Path: filepath.ToSlash(rel), Err: err})
	w.logger.Warn("skipping unreadable path", "path", rel, "error", err)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
