package extract

import (
	"fmt"
	"strings"

	"github.com/hargabyte/ctx/internal/model"
)

// Skeleton renders a file's declarations without bodies, one per line.
// Methods are indented under the declaration that contains them.
func Skeleton(summary *model.FileSummary) []string {
	lines := make([]string, 0, len(summary.Symbols))
	for _, sym := range summary.Symbols {
		lines = append(lines, SkeletonLine(sym))
	}
	return lines
}

// SkeletonLine renders one symbol as its signature, or kind and name when
// it has none.
func SkeletonLine(sym model.Symbol) string {
	indent := ""
	if sym.Kind == model.Method {
		indent = "  "
	}
	if sym.Signature != "" {
		return indent + sym.Signature
	}
	return fmt.Sprintf("%s%s %s", indent, sym.Kind, sym.Name)
}

// FirstLine returns the first line of a doc comment.
func FirstLine(doc string) string {
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		return doc[:i]
	}
	return doc
}
