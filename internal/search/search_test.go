package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hargabyte/ctx/internal/walker"
)

func entries(t *testing.T, files map[string]string) []walker.Entry {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	w, err := walker.New(dir, walker.Options{})
	if err != nil {
		t.Fatalf("walker.New failed: %v", err)
	}
	return w.Collect()
}

func TestTextFindsMatchesWithContext(t *testing.T) {
	files := entries(t, map[string]string{
		"a.go": "package a\n\n// TODO: tidy\nfunc A() {}\n",
		"b.py": "x = 1\r\ny = 2\r\n# todo later\r\n",
	})

	got, err := Text(context.Background(), files, "todo", Options{Context: 1})
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %+v", got)
	}

	a := got[0]
	if a.Path != "a.go" || a.Line != 3 || a.Column != 4 || a.Text != "// TODO: tidy" {
		t.Errorf("unexpected first match %+v", a)
	}
	if len(a.Context) != 2 || a.Context[0] != "2: " || a.Context[1] != "4: func A() {}" {
		t.Errorf("unexpected context %q", a.Context)
	}

	b := got[1]
	if b.Path != "b.py" || b.Line != 3 || b.Text != "# todo later" {
		t.Errorf("unexpected second match %+v", b)
	}
	if len(b.Context) != 1 || b.Context[0] != "2: y = 2" {
		t.Errorf("context should stop at the last line, got %q", b.Context)
	}
}

func TestTextOptions(t *testing.T) {
	files := entries(t, map[string]string{
		"a.txt": "hit\nhit\nhit\n",
		"b.bin": "hit\x00\x01",
	})

	tests := []struct {
		name    string
		opts    Options
		matches int
		context int
	}{
		{"no context", Options{}, 3, 0},
		{"limit", Options{Limit: 2, Context: 2}, 2, 2},
		{"negative context", Options{Context: -1, Workers: 1}, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text(context.Background(), files, "HIT", tt.opts)
			if err != nil {
				t.Fatalf("Text failed: %v", err)
			}
			if len(got) != tt.matches {
				t.Fatalf("expected %d matches, got %+v", tt.matches, got)
			}
			for _, m := range got {
				if m.Path != "a.txt" {
					t.Errorf("binary file matched: %+v", m)
				}
			}
			if len(got[0].Context) != tt.context {
				t.Errorf("expected %d context lines, got %q", tt.context, got[0].Context)
			}
		})
	}
}

func TestTextEmptyQuery(t *testing.T) {
	if _, err := Text(context.Background(), nil, "  ", Options{}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestTextCancelled(t *testing.T) {
	files := entries(t, map[string]string{"a.txt": "hit\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Text(ctx, files, "hit", Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
