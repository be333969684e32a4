package diffctx

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hargabyte/ctx/internal/model"
)

const sampleDiff = `diff --git a/src/calc.go b/src/calc.go
index 1111111..2222222 100644
--- a/src/calc.go
+++ b/src/calc.go
@@ -3,5 +3,6 @@ package calc
 func Add(a, b int) int {
-	return a + b
+	sum := a + b
+	return sum
 }
 func Sub(a, b int) int {
 	return a - b
diff --git a/new.py b/new.py
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/new.py
@@ -0,0 +1,2 @@
+def f():
+    pass
diff --git a/old.rs b/old.rs
deleted file mode 100644
index 4444444..0000000
--- a/old.rs
+++ /dev/null
@@ -1 +0,0 @@
-fn main() {}
`

type fakeFacts struct {
	summaries map[string]*model.FileSummary
	calls     map[string][]model.CallSite
}

func (f fakeFacts) Summary(path string) *model.FileSummary { return f.summaries[path] }
func (f fakeFacts) CallersOf(name string) []model.CallSite { return f.calls[name] }

func TestParse(t *testing.T) {
	files, err := Parse([]byte(sampleDiff))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}

	calc := files[0]
	if calc.Path != "src/calc.go" || calc.Status != StatusModified {
		t.Errorf("unexpected file %+v", calc)
	}
	if calc.Insertions != 2 || calc.Deletions != 1 {
		t.Errorf("expected +2 -1, got +%d -%d", calc.Insertions, calc.Deletions)
	}
	if len(calc.Lines) != 2 || calc.Lines[0] != 4 || calc.Lines[1] != 5 {
		t.Errorf("expected lines [4 5], got %v", calc.Lines)
	}

	added := files[1]
	if added.Path != "new.py" || added.Status != StatusAdded || len(added.Lines) != 2 {
		t.Errorf("unexpected added file %+v", added)
	}

	deleted := files[2]
	if deleted.Path != "old.rs" || deleted.Status != StatusDeleted || deleted.Deletions != 1 || len(deleted.Lines) != 0 {
		t.Errorf("unexpected deleted file %+v", deleted)
	}
}

func TestParseEmpty(t *testing.T) {
	files, err := Parse([]byte("  \n"))
	if err != nil || len(files) != 0 {
		t.Errorf("expected no files, got %v, %v", files, err)
	}
}

func TestAnalyze(t *testing.T) {
	files, err := Parse([]byte(sampleDiff))
	if err != nil {
		t.Fatal(err)
	}
	facts := fakeFacts{
		summaries: map[string]*model.FileSummary{
			"src/calc.go": {
				Path: "src/calc.go",
				Symbols: []model.Symbol{
					{Name: "Add", Kind: model.Function, Line: 3, EndLine: 5, Signature: "func Add(a, b int) int"},
					{Name: "Sub", Kind: model.Function, Line: 7, EndLine: 9},
					{Name: "Limit", Kind: model.Constant, Line: 4, EndLine: 4},
				},
			},
		},
		calls: map[string][]model.CallSite{
			"Add": {
				{CallerFile: "main.go", CallerLine: 10, InvokedName: "Add"},
				{CallerFile: "src/calc.go", CallerLine: 4, InvokedName: "Add"},
				{CallerFile: "src/calc.go", CallerLine: 8, InvokedName: "Add"},
			},
		},
	}

	res := Analyze("HEAD", files, facts)
	if res.Ref != "HEAD" || len(res.Files) != 3 {
		t.Fatalf("unexpected result %+v", res)
	}

	fns := res.Files[0].Functions
	if len(fns) != 1 || fns[0].Name != "Add" || fns[0].Signature != "func Add(a, b int) int" {
		t.Errorf("expected only Add to be modified, got %+v", fns)
	}
	if len(res.Files[1].Functions) != 0 || len(res.Files[2].Functions) != 0 {
		t.Error("files without summaries should have no functions")
	}

	if len(res.Callers) != 1 {
		t.Fatalf("expected 1 affected caller group, got %+v", res.Callers)
	}
	got := strings.Join(res.Callers[0].CalledFrom, ",")
	if got != "main.go:10,src/calc.go:8" {
		t.Errorf("unexpected callers %s", got)
	}
}

func TestModifiedSymbols(t *testing.T) {
	sum := &model.FileSummary{Symbols: []model.Symbol{
		{Name: "A", Kind: model.Function, Line: 1, EndLine: 3},
		{Name: "B", Kind: model.Method, Line: 5, EndLine: 10},
		{Name: "C", Kind: model.Function, Line: 12, EndLine: 12},
	}}

	tests := []struct {
		lines []int
		want  string
	}{
		{[]int{2}, "A"},
		{[]int{4, 11}, ""},
		{[]int{3, 5, 12}, "A,B,C"},
		{nil, ""},
	}
	for _, tt := range tests {
		var names []string
		for _, s := range ModifiedSymbols(sum, tt.lines) {
			names = append(names, s.Name)
		}
		if got := strings.Join(names, ","); got != tt.want {
			t.Errorf("lines %v: expected %q, got %q", tt.lines, tt.want, got)
		}
	}
}

func TestGitDiff(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-c", "user.name=Test", "-c", "user.email=test@example.com"}, args...)...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	path := filepath.Join(dir, "calc.py")
	if err := os.WriteFile(path, []byte("def add(a, b):\n    return a + b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	run("init", "-q")
	run("add", ".")
	run("commit", "-q", "-m", "init")
	if err := os.WriteFile(path, []byte("def add(a, b):\n    return b + a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := GitDiff(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("GitDiff failed: %v", err)
	}
	files, err := Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Path != "calc.py" || len(files[0].Lines) != 1 || files[0].Lines[0] != 2 {
		t.Errorf("unexpected diff %+v", files)
	}

	if RefName(Options{Staged: true}) != "staged" || RefName(Options{}) != "HEAD" {
		t.Error("unexpected ref names")
	}
}
