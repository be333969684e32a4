package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hargabyte/ctx/internal/config"
	"github.com/hargabyte/ctx/internal/index"
)

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(root))
	files := map[string]string{
		"go.mod":      "module example.com/tally\n",
		"tally.go":    "package tally\n\nfunc Count(xs []int) int {\n\treturn len(xs)\n}\n",
		"cmd/main.go": "package main\n\nfunc main() {\n\ttally.Count(nil)\n}\n",
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
	return root
}

func TestOpenAndIndex(t *testing.T) {
	root := setupProject(t)
	ws, err := Open(Options{Root: root, Config: config.DefaultConfig()})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer ws.Close()

	if ws.Project.Name != "tally" || ws.Project.Type != "go" {
		t.Errorf("unexpected project %+v", ws.Project)
	}
	if ws.Store() != nil {
		t.Error("store should be closed by default")
	}

	idx, err := ws.Index(context.Background())
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if got := idx.CallersOf("Count"); len(got) != 1 || got[0].CallerFile != "cmd/main.go" {
		t.Errorf("unexpected callers %+v", got)
	}

	again, err := ws.Index(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if again.Stats.Parsed != 0 {
		t.Errorf("second build should be served from cache, got %+v", again.Stats)
	}
}

func TestOpenPersist(t *testing.T) {
	root := setupProject(t)
	ws, err := Open(Options{Root: root, Config: config.DefaultConfig(), Persist: true})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := ws.Index(context.Background()); err != nil {
		t.Fatal(err)
	}
	stats, err := ws.Store().GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Files != 2 {
		t.Errorf("expected 2 stored files, got %d", stats.Files)
	}
	if err := ws.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, ".ctx", "cache.db")); err != nil {
		t.Errorf("store file missing: %v", err)
	}
}

func TestOpenMissingRoot(t *testing.T) {
	_, err := Open(Options{Root: filepath.Join(t.TempDir(), "nope")})
	if !errors.Is(err, index.ErrRootNotFound) {
		t.Errorf("expected ErrRootNotFound, got %v", err)
	}
}

func TestNoGitHistory(t *testing.T) {
	root := setupProject(t)
	ws, err := Open(Options{Root: root, Config: config.DefaultConfig()})
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	if act := ws.Activity(context.Background()); act != nil {
		t.Errorf("expected no activity outside a repository, got %+v", act)
	}
	if st := ws.Status(context.Background()); st != nil {
		t.Errorf("expected no status outside a repository, got %+v", st)
	}
}

func TestContextOptions(t *testing.T) {
	root := setupProject(t)
	cfg := config.DefaultConfig()
	cfg.Context.MaxFiles = 2
	ws, err := Open(Options{Root: root, Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	opts, err := ws.ContextOptions(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Budget != cfg.Context.Budget || opts.MaxFiles != 2 || opts.Project.Name != "tally" {
		t.Errorf("unexpected options %+v", opts)
	}

	opts, err = ws.ContextOptions(context.Background(), 500)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Budget != 500 {
		t.Errorf("expected budget override 500, got %d", opts.Budget)
	}

	cfg.Context.Estimator = "bogus"
	if _, err := ws.ContextOptions(context.Background(), 0); err == nil {
		t.Error("expected an error for an unknown estimator")
	}
}

func TestRel(t *testing.T) {
	root := setupProject(t)
	ws, err := Open(Options{Root: root, Config: config.DefaultConfig()})
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	tests := []struct {
		in, want string
	}{
		{"cmd/main.go", "cmd/main.go"},
		{"./cmd/../tally.go", "tally.go"},
		{filepath.Join(ws.Root, "cmd", "main.go"), "cmd/main.go"},
	}
	for _, tt := range tests {
		if got := ws.Rel(tt.in); got != tt.want {
			t.Errorf("Rel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilesMatchesIndex(t *testing.T) {
	root := setupProject(t)
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("todo\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Scan.Exclude = []string{"cmd/"}
	ws, err := Open(Options{Root: root, Config: cfg})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer ws.Close()

	files, err := ws.Files()
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	var got []string
	for _, f := range files {
		got = append(got, f.Path)
	}
	want := []string{"go.mod", "notes.txt", "tally.go"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	idx, err := ws.Index(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(idx.Files) != len(files) {
		t.Errorf("index walked %d files, Files returned %d", len(idx.Files), len(files))
	}
}
