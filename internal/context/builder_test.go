package context

import (
	gocontext "context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hargabyte/ctx/internal/activity"
	"github.com/hargabyte/ctx/internal/budget"
	"github.com/hargabyte/ctx/internal/index"
	"github.com/hargabyte/ctx/internal/project"
	"github.com/hargabyte/ctx/internal/relevance"
)

const prompt = "fix the parser bug in src/parser.go when calling ParseInput"

func buildIndex(t *testing.T) *index.Index {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/parser.go": "package src\n\n// ParseInput reads input.\nfunc ParseInput(s string) int {\n\treturn len(s)\n}\n\nfunc helper() {}\n",
		"src/lexer.go":  "package src\n\nfunc Lex() {}\n",
		"docs/notes.md": "# notes\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	eng, err := index.New(index.Options{})
	if err != nil {
		t.Fatal(err)
	}
	idx, err := eng.Build(gocontext.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestBuild(t *testing.T) {
	idx := buildIndex(t)
	res := Build(idx, prompt, nil, Options{
		Budget:  10000,
		Project: project.Info{Name: "demo", Type: "go"},
	})

	keywords := relevance.ExtractKeywords(prompt)
	if len(keywords) > 10 {
		keywords = keywords[:10]
	}
	if len(res.Lines) != 8 {
		t.Fatalf("expected 8 lines, got %d:\n%s", len(res.Lines), res.Text())
	}

	want := map[int]string{
		0: "[CTX: project=demo type=go no-git]",
		1: "[MENTIONED: src/parser.go]",
		4: "src/parser.go:4 function ParseInput",
		5: "src/parser.go:8 function helper",
		6: "src/lexer.go:3 function Lex",
		7: "[KEYWORDS: " + strings.Join(keywords, ", ") + "]",
	}
	for i, line := range want {
		if res.Lines[i] != line {
			t.Errorf("line %d = %q, want %q", i, res.Lines[i], line)
		}
	}
	if !strings.HasPrefix(res.Lines[2], "[RELEVANT: src/parser.go (") ||
		!strings.HasPrefix(res.Lines[3], "[RELEVANT: src/lexer.go (") {
		t.Errorf("unexpected relevant lines:\n%s\n%s", res.Lines[2], res.Lines[3])
	}

	if len(res.Relevant) != 2 {
		t.Errorf("zero-score files should be dropped, got %+v", res.Relevant)
	}
	if res.Intent.Pattern != "fix_bug" || !reflect.DeepEqual(res.Intent.EntityMentions, []string{"ParseInput"}) {
		t.Errorf("unexpected intent %+v", res.Intent)
	}
	if res.Excluded != 0 || res.TokensUsed > res.TokensBudget {
		t.Errorf("unexpected accounting used=%d budget=%d excluded=%d", res.TokensUsed, res.TokensBudget, res.Excluded)
	}
}

func TestBuildRespectsBudget(t *testing.T) {
	idx := buildIndex(t)
	full := Build(idx, prompt, nil, Options{Budget: 10000})

	est := budget.DefaultEstimator
	limit := est.Estimate(full.Lines[0]) + est.Estimate(full.Lines[1]) + 1
	res := Build(idx, prompt, nil, Options{Budget: limit})

	if !reflect.DeepEqual(res.Lines, full.Lines[:2]) {
		t.Errorf("expected the first two ranked lines, got %v", res.Lines)
	}
	if res.Excluded != len(full.Lines)-2 {
		t.Errorf("expected %d excluded lines, got %d", len(full.Lines)-2, res.Excluded)
	}
	if res.TokensUsed > limit || res.TokensBudget != limit {
		t.Errorf("budget exceeded: used %d of %d", res.TokensUsed, limit)
	}
}

func TestBuildRecentAndLimits(t *testing.T) {
	idx := buildIndex(t)
	act := activity.FromCommits([]activity.Commit{
		{Hash: "b", Files: []string{"src/lexer.go"}},
		{Hash: "a", Files: []string{"src/lexer.go", "docs/notes.md"}},
	}, 0)

	res := Build(idx, prompt, act, Options{Budget: 10000, MaxRecent: 1, MaxSymbols: 1, MaxKeywords: -1})
	if res.Lines[1] != "[RECENT: src/lexer.go (2 commits)]" {
		t.Errorf("unexpected recent line %q", res.Lines[1])
	}
	var symbols, keywords int
	for _, l := range res.Lines {
		if strings.HasPrefix(l, "src/") {
			symbols++
		}
		if strings.HasPrefix(l, "[KEYWORDS:") {
			keywords++
		}
	}
	if symbols != 1 || keywords != 0 {
		t.Errorf("expected 1 symbol line and no keywords, got %d and %d:\n%s", symbols, keywords, res.Text())
	}
}

func TestHeader(t *testing.T) {
	tests := []struct {
		info project.Info
		git  *activity.Status
		want string
	}{
		{project.Info{Name: "demo", Type: "go"}, &activity.Status{Branch: "main", Dirty: true}, "[CTX: project=demo type=go branch=main*]"},
		{project.Info{Name: "demo"}, &activity.Status{Branch: "dev"}, "[CTX: project=demo type=unknown branch=dev]"},
		{project.Info{}, nil, "[CTX: project=unknown type=unknown no-git]"},
	}
	for _, tt := range tests {
		if got := Header(tt.info, tt.git); got != tt.want {
			t.Errorf("Header() = %q, want %q", got, tt.want)
		}
	}
}

func TestExtractIntent(t *testing.T) {
	tests := []struct {
		prompt   string
		pattern  string
		verb     string
		mentions []string
	}{
		{"Fix the crash in handleLogin", "fix_bug", "fix", []string{"handleLogin"}},
		{"add retries to HttpClient and retry_policy", "add_feature", "add", []string{"HttpClient", "retry_policy"}},
		{"why is src/main_loop.go slow", "modify", "", nil},
		{"refactor, please", "refactor", "refactor", nil},
	}
	for _, tt := range tests {
		got := ExtractIntent(tt.prompt)
		if got.Pattern != tt.pattern || got.ActionVerb != tt.verb || !reflect.DeepEqual(got.EntityMentions, tt.mentions) {
			t.Errorf("ExtractIntent(%q) = %+v", tt.prompt, got)
		}
	}
}
