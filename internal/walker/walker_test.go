package walker

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hargabyte/ctx/internal/parser"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func setupRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/main.go", "package main\n")
	writeFile(t, root, "src/util.py", "def f(): pass\n")
	writeFile(t, root, "web/app.tsx", "export const A = 1\n")
	writeFile(t, root, "README.md", "# demo\n")
	writeFile(t, root, "node_modules/dep/index.js", "x()\n")
	writeFile(t, root, "build/out.go", "package out\n")
	writeFile(t, root, ".hidden/secret.go", "package h\n")
	writeFile(t, root, ".env", "KEY=1\n")
	writeFile(t, root, "gen/api.gen.go", "package gen\n")
	writeFile(t, root, "gen/keep.go", "package gen\n")
	writeFile(t, root, "private/notes.txt", "x\n")
	writeFile(t, root, ".gitignore", "*.gen.go\n")
	writeFile(t, root, ".ctxignore", "private/\n")
	return root
}

func paths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestWalkHonorsIgnores(t *testing.T) {
	root := setupRepo(t)
	w, err := New(root, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := paths(w.Collect())
	want := []string{"README.md", "gen/keep.go", "src/main.go", "src/util.py", "web/app.tsx"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}
	if d := w.Diagnostics(); len(d) != 0 {
		t.Errorf("unexpected diagnostics %v", d)
	}
}

func TestWalkEntryFacts(t *testing.T) {
	root := setupRepo(t)
	w, err := New(root, Options{SourceOnly: true})
	if err != nil {
		t.Fatal(err)
	}

	for _, e := range w.Collect() {
		if e.Language == parser.None {
			t.Errorf("%s: SourceOnly walk yielded unsupported file", e.Path)
		}
		info, err := os.Stat(e.AbsPath)
		if err != nil {
			t.Fatalf("%s: %v", e.Path, err)
		}
		if e.Size != info.Size() || !e.ModTime.Equal(info.ModTime()) {
			t.Errorf("%s: entry facts do not match stat", e.Path)
		}
	}
}

func TestWalkLanguageFilter(t *testing.T) {
	root := setupRepo(t)
	w, err := New(root, Options{Languages: []parser.Language{parser.TypeScript}, SourceOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	got := paths(w.Collect())
	if len(got) != 1 || got[0] != "web/app.tsx" {
		t.Errorf("typescript filter should include tsx through its family, got %v", got)
	}
}

func TestWalkExtraExcludesAndSize(t *testing.T) {
	root := setupRepo(t)
	writeFile(t, root, "src/big.go", strings.Repeat("x", 2048))

	w, err := New(root, Options{Exclude: []string{"*.py"}, MaxFileSize: 1024})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range paths(w.Collect()) {
		if p == "src/util.py" || p == "src/big.go" {
			t.Errorf("%s should have been skipped", p)
		}
	}
}

func TestWalkAutoExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "print(1)\n")
	writeFile(t, root, "env-3.12/pyvenv.cfg", "home = /usr\n")
	writeFile(t, root, "env-3.12/lib/site.py", "x = 1\n")

	w, err := New(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := paths(w.Collect()); len(got) != 1 || got[0] != "main.py" {
		t.Errorf("expected virtualenv to be excluded, got %v", got)
	}

	w, err = New(root, Options{NoAutoExclude: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := paths(w.Collect()); len(got) != 3 {
		t.Errorf("expected auto-exclusion to be disabled, got %v", got)
	}
}

func TestWalkVendorNeedsMarker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "vendor/patch.go", "package vendor\n")

	w, err := New(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := paths(w.Collect()); strings.Join(got, ",") != "main.go,vendor/patch.go" {
		t.Errorf("a vendor directory without a marker should be walked, got %v", got)
	}

	writeFile(t, root, "vendor/modules.txt", "# example.com/x v1.0.0\n")
	w, err = New(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := paths(w.Collect()); len(got) != 1 || got[0] != "main.go" {
		t.Errorf("expected Go vendored dependencies to be excluded, got %v", got)
	}
}

func TestWalkSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")
	if err := os.Symlink(filepath.Join(root, "a.go"), filepath.Join(root, "link.go")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	w, err := New(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := paths(w.Collect()); len(got) != 1 || got[0] != "a.go" {
		t.Errorf("expected symlink to be skipped, got %v", got)
	}
}

func TestWalkIsRestartable(t *testing.T) {
	root := setupRepo(t)
	w, err := New(root, Options{})
	if err != nil {
		t.Fatal(err)
	}

	first := paths(w.Collect())
	writeFile(t, root, "src/added.go", "package main\n")
	second := paths(w.Collect())
	if len(second) != len(first)+1 {
		t.Errorf("second walk should see the new file: %v then %v", first, second)
	}

	n := 0
	for range w.Files() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("expected early break after 2 entries, got %d", n)
	}
}

func TestNewRootNotFound(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), Options{})
	if !errors.Is(err, ErrRootNotFound) {
		t.Errorf("expected ErrRootNotFound, got %v", err)
	}

	file := filepath.Join(t.TempDir(), "f.go")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(file, Options{}); !errors.Is(err, ErrRootNotFound) {
		t.Errorf("expected ErrRootNotFound for a file root, got %v", err)
	}
}

func TestIgnored(t *testing.T) {
	root := setupRepo(t)
	w, err := New(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		path string
		want bool
	}{
		{"node_modules/", true},
		{"pkg/node_modules/x.js", true},
		{"src/app.log", true},
		{"gen/api.gen.go", true},
		{"private/", true},
		{"src/main.go", false},
	}
	for _, tt := range tests {
		if got := w.Ignored(tt.path); got != tt.want {
			t.Errorf("Ignored(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}
