package related

import (
	"path"
	"strings"

	"github.com/hargabyte/ctx/internal/parser"
)

// IsTestFile checks if a file path indicates a test file.
func IsTestFile(filePath string, lang parser.Language) bool {
	base := path.Base(filePath)
	switch lang.Family() {
	case parser.Go:
		return strings.HasSuffix(base, "_test.go")
	case parser.TypeScript, parser.JavaScript:
		// *.test.ts, *.spec.ts, *.test.js, *.spec.js and __tests__/
		stem := strings.TrimSuffix(base, path.Ext(base))
		return strings.HasSuffix(stem, ".test") ||
			strings.HasSuffix(stem, ".spec") ||
			inDir(filePath, "__tests__")
	case parser.Python:
		return strings.HasPrefix(base, "test_") ||
			strings.HasSuffix(base, "_test.py") ||
			inDir(filePath, "tests")
	case parser.Rust:
		return inDir(filePath, "tests") ||
			strings.HasSuffix(base, "_test.rs")
	default:
		return false
	}
}

// inDir reports whether one of the parent directories of p is named dir.
func inDir(p, dir string) bool {
	parts := strings.Split(path.Dir(p), "/")
	for _, part := range parts {
		if part == dir {
			return true
		}
	}
	return false
}

// testStems are the file stems a test of stem is expected to have.
func testStems(stem string) []string {
	return []string{
		stem + "_test",
		"test_" + stem,
		stem + ".test",
		stem + ".spec",
		stem + "_spec",
	}
}

// stemOf strips the directory and the last extension.
func stemOf(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
