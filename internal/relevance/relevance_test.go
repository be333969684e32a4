package relevance

import (
	"math"
	"testing"

	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/parser"
)

type commits map[string]int

func (c commits) Commits(path string) int { return c[path] }

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		prompt string
		want   []string
	}{
		{"fix the parser bug", []string{"fix", "parser", "bug"}},
		{"Fix THE Parser, parser bug!", []string{"fix", "parser", "bug"}},
		{"go to it", nil},
		{"update parse_file in the cache", []string{"update", "parse_file", "cache"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			got := ExtractKeywords(tt.prompt)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("keyword %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestExtractKeywordsExcludesStopWords(t *testing.T) {
	for _, kw := range ExtractKeywords("fix the parser bug") {
		if IsStopWord(kw) {
			t.Errorf("stop word %q survived extraction", kw)
		}
	}
}

func TestExtractMentionedFiles(t *testing.T) {
	got := ExtractMentionedFiles("look at `src/main.rs` and config.yaml, not version 1.2 or foo.bar")
	want := []string{"src/main.rs", "config.yaml"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestImpliedLanguages(t *testing.T) {
	tests := []struct {
		prompt string
		want   []parser.Language
	}{
		{"add a cargo feature", []parser.Language{parser.Rust}},
		{"fix the pytest fixture", []parser.Language{parser.Python}},
		{"edit app.tsx", []parser.Language{parser.TypeScript}},
		{"go fix it", nil},
		{"react hooks", []parser.Language{parser.JavaScript, parser.TypeScript}},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			got := ImpliedLanguages(tt.prompt)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestScoreFactors(t *testing.T) {
	tests := []struct {
		name      string
		prompt    string
		candidate Candidate
		activity  Activity
		want      float64
	}{
		{
			name:      "nothing matches",
			prompt:    "update the readme",
			candidate: Candidate{Path: "src/lib.rs", Language: parser.Rust},
			want:      0,
		},
		{
			name:      "path and basename both count",
			prompt:    "look at src/cache.go please",
			candidate: Candidate{Path: "src/cache.go", Language: parser.Go},
			// +10 path, +5 basename, +1 "src", +1 "cache", +2 mentioned .go file
			want: 19,
		},
		{
			name:      "basename only",
			prompt:    "what does cache.go do",
			candidate: Candidate{Path: "internal/cache.go", Language: parser.Go},
			// +5 basename, +1 "cache", +2 mentioned .go file
			want: 8,
		},
		{
			name:      "keywords counted once each",
			prompt:    "parser parser cache",
			candidate: Candidate{Path: "parser/cache/parser.go"},
			want:      2,
		},
		{
			name:      "recency capped",
			prompt:    "anything",
			candidate: Candidate{Path: "a.py", Language: parser.Python},
			activity:  commits{"a.py": 12},
			want:      MaxRecencyBonus,
		},
		{
			name:      "recency per commit",
			prompt:    "anything",
			candidate: Candidate{Path: "a.py", Language: parser.Python},
			activity:  commits{"a.py": 3},
			want:      1.5,
		},
		{
			name:      "affinity through family",
			prompt:    "typescript types",
			candidate: Candidate{Path: "ui/App.tsx", Language: parser.TSX},
			want:      AffinityBonus,
		},
		{
			name:      "unsupported language gets no affinity",
			prompt:    "rust docs",
			candidate: Candidate{Path: "README.md"},
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreOne(AnalyzePrompt(tt.prompt), tt.candidate, tt.activity)
			if math.Abs(got.Score-tt.want) > 1e-9 {
				t.Errorf("expected score %v, got %v (reasons %v)", tt.want, got.Score, got.Reasons)
			}
			if got.Score == 0 && len(got.Reasons) != 0 {
				t.Errorf("zero score should have no reasons, got %v", got.Reasons)
			}
		})
	}
}

func TestScoreReasons(t *testing.T) {
	got := ScoreOne(AnalyzePrompt("fix the parser bug in rust"),
		Candidate{Path: "src/parser.rs", Language: parser.Rust}, commits{"src/parser.rs": 1})

	want := []string{"keywords: parser", "1 recent commit", "language: rust"}
	if len(got.Reasons) != len(want) {
		t.Fatalf("expected reasons %v, got %v", want, got.Reasons)
	}
	for i := range want {
		if got.Reasons[i] != want[i] {
			t.Errorf("reason %d: expected %q, got %q", i, want[i], got.Reasons[i])
		}
	}
}

func TestScoreOrderIndependent(t *testing.T) {
	prompt := "fix the cache parser in src/parser/cache.rs"
	act := commits{"src/parser/cache.rs": 2, "src/lib.rs": 7}
	forward := []Candidate{
		{Path: "src/parser/cache.rs", Language: parser.Rust},
		{Path: "src/lib.rs", Language: parser.Rust},
		{Path: "docs/cache.md"},
		{Path: "web/parser.ts", Language: parser.TypeScript},
	}
	reversed := make([]Candidate, len(forward))
	for i, c := range forward {
		reversed[len(forward)-1-i] = c
	}

	byPath := func(scores []model.RelevanceScore) map[string]float64 {
		m := make(map[string]float64)
		for _, s := range scores {
			m[s.Path] = s.Score
		}
		return m
	}

	a := Score(prompt, forward, act, Options{})
	b := Score(prompt, reversed, act, Options{})
	am, bm := byPath(a), byPath(b)
	for path, score := range am {
		if bm[path] != score {
			t.Errorf("%s: score %v changed to %v after permuting input", path, score, bm[path])
		}
	}
	for i := range a {
		if a[i].Path != b[i].Path {
			t.Errorf("rank %d differs: %s vs %s", i, a[i].Path, b[i].Path)
		}
	}
}

func TestScoreTieBreak(t *testing.T) {
	candidates := []Candidate{
		{Path: "zz/b.go"},
		{Path: "a.go"},
		{Path: "aa/b.go"},
		{Path: "b.go"},
	}
	got := Score("unrelated words", candidates, nil, Options{})
	want := []string{"a.go", "b.go", "aa/b.go", "zz/b.go"}
	for i := range want {
		if got[i].Path != want[i] {
			t.Errorf("rank %d: expected %s, got %s", i, want[i], got[i].Path)
		}
	}
}

func TestScoreZeroFiltering(t *testing.T) {
	candidates := []Candidate{{Path: "cache.go"}, {Path: "other.go"}}

	kept := Score("cache", candidates, nil, Options{})
	if len(kept) != 2 {
		t.Errorf("zero scores should be kept by default, got %d results", len(kept))
	}

	dropped := Score("cache", candidates, nil, Options{DropZero: true})
	if len(dropped) != 1 || dropped[0].Path != "cache.go" {
		t.Errorf("expected only cache.go, got %+v", dropped)
	}

	limited := Score("cache", candidates, nil, Options{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("expected limit to cap results, got %d", len(limited))
	}
}
