package exclude

import (
	"os"
	"path/filepath"
	"testing"
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

func mkdir(t *testing.T, root, rel string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, rel), 0755); err != nil {
		t.Fatal(err)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		want  []string
	}{
		{
			name:  "empty",
			setup: func(t *testing.T, root string) {},
			want:  []string{},
		},
		{
			name: "rust target",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "Cargo.toml", "[package]\nname = \"x\"\n")
				mkdir(t, root, "target/debug")
			},
			want: []string{"target"},
		},
		{
			name: "target without Cargo.toml",
			setup: func(t *testing.T, root string) {
				mkdir(t, root, "target")
			},
			want: []string{},
		},
		{
			name: "node modules",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "package.json", "{}")
				mkdir(t, root, "node_modules/left-pad")
			},
			want: []string{"node_modules"},
		},
		{
			name: "go vendor",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "vendor/modules.txt", "# example.com/x v1.0.0\n")
			},
			want: []string{"vendor"},
		},
		{
			name: "vendor matched once for go and php",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "vendor/modules.txt", "#")
				writeFile(t, root, "vendor/autoload.php", "<?php")
			},
			want: []string{"vendor"},
		},
		{
			name: "custom venv",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "my-venv/pyvenv.cfg", "home = /usr/bin\n")
			},
			want: []string{"my-venv"},
		},
		{
			name: "nested projects",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "tools/gen/Cargo.toml", "[package]")
				mkdir(t, root, "tools/gen/target")
				writeFile(t, root, "web/package.json", "{}")
				mkdir(t, root, "web/node_modules")
				writeFile(t, root, "src/main.rs", "fn main() {}")
			},
			want: []string{"tools/gen/target", "web/node_modules"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.setup(t, root)

			res := Detect(root)
			if len(res.Dirs) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, res.Dirs)
			}
			for i, d := range tt.want {
				if res.Dirs[i] != d {
					t.Errorf("dir %d: expected %s, got %s", i, d, res.Dirs[i])
				}
				if res.Reasons[d] == "" {
					t.Errorf("missing reason for %s", d)
				}
			}
		})
	}
}

func TestResultExcludes(t *testing.T) {
	res := &Result{Dirs: []string{"web/node_modules", "target"}}

	tests := []struct {
		path string
		want bool
	}{
		{"target", true},
		{"target/debug/app", true},
		{"targets/x.rs", false},
		{"web/node_modules/react/index.js", true},
		{"web/src/app.js", false},
	}
	for _, tt := range tests {
		if got := res.Excludes(tt.path); got != tt.want {
			t.Errorf("Excludes(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}

	patterns := res.Patterns()
	if patterns[0] != "/web/node_modules/" || patterns[1] != "/target/" {
		t.Errorf("unexpected patterns %v", patterns)
	}
}
