package related

import (
	"errors"
	"path"
	"strings"

	"github.com/hargabyte/ctx/internal/index"
	"github.com/hargabyte/ctx/internal/parser"
)

// ErrNotIndexed is returned when the target file was not walked.
var ErrNotIndexed = errors.New("file not in index")

var jsSuffixes = []string{"", ".js", ".ts", ".jsx", ".tsx", "/index.js", "/index.ts"}

// resolveImport maps raw import text to an indexed file using the naming
// conventions of each language, or returns "".
func resolveImport(idx *index.Index, from string, lang parser.Language, text string) string {
	dir := path.Dir(from)
	var candidates []string

	switch lang.Family() {
	case parser.Rust:
		spec := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(text, "use ")), ";")
		if i := strings.IndexAny(spec, "{*"); i >= 0 {
			spec = strings.TrimSuffix(spec[:i], "::")
		}
		if strings.HasPrefix(text, "mod ") {
			spec = strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(text, "mod ")), ";")
		}
		parts := strings.Split(spec, "::")
		name := parts[len(parts)-1]
		if name == "" {
			return ""
		}
		candidates = []string{path.Join(dir, name+".rs"), path.Join(dir, name, "mod.rs")}
		if len(parts) > 1 {
			parent := parts[len(parts)-2]
			candidates = append(candidates, path.Join(dir, parent+".rs"), path.Join(dir, parent, "mod.rs"))
		}

	case parser.Python:
		mod := text
		switch {
		case strings.HasPrefix(text, "from "):
			mod = strings.TrimPrefix(text, "from ")
		case strings.HasPrefix(text, "import "):
			mod = strings.TrimPrefix(text, "import ")
		}
		mod, _, _ = strings.Cut(strings.TrimSpace(mod), " ")
		mod = strings.TrimSuffix(mod, ",")
		if mod == "" {
			return ""
		}
		base := dir
		if strings.HasPrefix(mod, ".") {
			trimmed := strings.TrimLeft(mod, ".")
			for range len(mod) - len(trimmed) - 1 {
				base = path.Dir(base)
			}
			mod = trimmed
		} else {
			base = ""
		}
		rel := strings.ReplaceAll(mod, ".", "/")
		candidates = []string{path.Join(base, rel+".py"), path.Join(base, rel, "__init__.py")}

	case parser.JavaScript, parser.TypeScript:
		spec := quoted(text)
		if !strings.HasPrefix(spec, ".") {
			return ""
		}
		for _, suffix := range jsSuffixes {
			candidates = append(candidates, path.Join(dir, spec)+suffix)
		}

	default:
		return ""
	}

	for _, c := range candidates {
		if c == from {
			continue
		}
		if _, ok := idx.File(c); ok {
			return c
		}
	}
	return ""
}

// quoted returns the first single- or double-quoted string in text.
func quoted(text string) string {
	start := strings.IndexAny(text, `'"`)
	if start < 0 {
		return ""
	}
	q := text[start]
	rest := text[start+1:]
	end := strings.IndexByte(rest, q)
	if end < 0 {
		return ""
	}
	return rest[:end]
}
