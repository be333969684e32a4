package context

import (
	"strings"
	"testing"

	"github.com/hargabyte/ctx/internal/budget"
)

func TestMap(t *testing.T) {
	idx := buildIndex(t)
	m := Map(idx, "", 10000, nil)

	if m.Files != 2 || len(m.Lines) != 5 {
		t.Fatalf("unexpected map (%d files):\n%s", m.Files, m.Text())
	}
	if m.Lines[0] != "src/lexer.go:" || m.Lines[2] != "src/parser.go:" {
		t.Errorf("expected file headers in path order, got %q and %q", m.Lines[0], m.Lines[2])
	}
	for i, name := range map[int]string{1: "Lex", 3: "ParseInput", 4: "helper"} {
		if !strings.HasPrefix(m.Lines[i], "  ") || !strings.Contains(m.Lines[i], name) {
			t.Errorf("line %d = %q, want an indented %s declaration", i, m.Lines[i], name)
		}
	}
}

func TestMapSubdirAndBudget(t *testing.T) {
	idx := buildIndex(t)
	if m := Map(idx, "docs/", 10000, nil); m.Files != 0 || len(m.Lines) != 0 {
		t.Errorf("docs has no symbols, got %v", m.Lines)
	}
	if m := Map(idx, "./src", 10000, nil); m.Files != 2 {
		t.Errorf("expected src to map 2 files, got %d", m.Files)
	}

	full := Map(idx, "src", 10000, nil)
	est := budget.DefaultEstimator
	limit := est.Estimate(full.Lines[0]) + est.Estimate(full.Lines[1])
	m := Map(idx, "src", limit, est)
	if len(m.Lines) != 2 || m.Dropped != 3 || m.Used > limit {
		t.Errorf("expected 2 lines within %d tokens, got %v (dropped %d)", limit, m.Lines, m.Dropped)
	}
}
