package extract

import (
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hargabyte/ctx/internal/parser"
)

// docComment returns the documentation attached to a declaration: a
// docstring if the language has one, otherwise the contiguous comment block
// directly above it. A blank line between the block and the declaration
// detaches it.
func (w *walker) docComment(node *sitter.Node) string {
	if w.rules.Docstring != nil {
		if doc := w.rules.Docstring(node, w.src); doc != "" {
			return doc
		}
	}
	if w.rules.DocComment == nil {
		return ""
	}

	anchor := node
	for {
		next := parser.Line(anchor)
		prev := anchor.PrevNamedSibling()
		for prev != nil && w.rules.Transparent[prev.Type()] {
			if parser.EndLine(prev) < next-1 {
				return ""
			}
			next = parser.Line(prev)
			prev = prev.PrevNamedSibling()
		}

		if prev == nil {
			parent := anchor.Parent()
			if parent != nil && w.rules.Wrappers[parent.Type()] {
				anchor = parent
				continue
			}
			return ""
		}
		return w.commentBlock(prev, next)
	}
}

// commentBlock collects comments upward from last, which must end on the
// line before next.
func (w *walker) commentBlock(last *sitter.Node, next int) string {
	var lines []string
	for c := last; c != nil && w.rules.Comments[c.Type()]; c = c.PrevNamedSibling() {
		if parser.EndLine(c) < next-1 || trailing(c) {
			break
		}
		doc, ok := w.rules.DocComment(w.text(c))
		if !ok {
			break
		}
		lines = append(lines, doc)
		next = parser.Line(c)
	}
	slices.Reverse(lines)
	return joinTrimmed(lines)
}

// trailing reports whether a comment shares its line with preceding code.
func trailing(c *sitter.Node) bool {
	prev := c.PrevSibling()
	return prev != nil && parser.EndLine(prev) == parser.Line(c) && prev.EndPoint().Column > 0
}

// slashComment accepts // and /* */ comments.
func slashComment(text string) (string, bool) {
	switch {
	case strings.HasPrefix(text, "//"):
		return strings.TrimSpace(strings.TrimLeft(text, "/")), true
	case strings.HasPrefix(text, "/*"):
		return cleanBlockComment(text), true
	}
	return "", false
}

func cleanBlockComment(text string) string {
	text = strings.TrimSuffix(text, "*/")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimLeft(text, "*!")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(strings.TrimSpace(l), "*")
	}
	return joinTrimmed(lines)
}

// joinTrimmed trims each line and drops blank lines at either end.
func joinTrimmed(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, strings.TrimSpace(l))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
