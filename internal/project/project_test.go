package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "workdir")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  Info
	}{
		{
			name:  "cargo",
			files: map[string]string{"Cargo.toml": "[package]\nname = \"ripper\"\nversion = \"0.1.0\"\n"},
			want:  Info{Name: "ripper", Type: "rust"},
		},
		{
			name:  "package json",
			files: map[string]string{"package.json": `{"name": "web-app", "version": "1.0.0"}`},
			want:  Info{Name: "web-app", Type: "javascript"},
		},
		{
			name:  "pyproject",
			files: map[string]string{"pyproject.toml": "[project]\nname = \"snake\"\n"},
			want:  Info{Name: "snake", Type: "python"},
		},
		{
			name:  "requirements only",
			files: map[string]string{"requirements.txt": "requests\n"},
			want:  Info{Name: "workdir", Type: "python"},
		},
		{
			name:  "go module",
			files: map[string]string{"go.mod": "module github.com/acme/widget\n\ngo 1.22\n"},
			want:  Info{Name: "widget", Type: "go"},
		},
		{
			name:  "cargo wins over makefile",
			files: map[string]string{"Makefile": "all:\n", "Cargo.toml": "[package]\nname = \"both\"\n"},
			want:  Info{Name: "both", Type: "rust"},
		},
		{
			name:  "cmake",
			files: map[string]string{"CMakeLists.txt": "project(x)\n"},
			want:  Info{Name: "workdir", Type: "cpp"},
		},
		{
			name:  "malformed manifest falls back to dir name",
			files: map[string]string{"Cargo.toml": "[package\nname = "},
			want:  Info{Name: "workdir", Type: "rust"},
		},
		{
			name:  "nothing",
			files: map[string]string{"README.md": "# hi\n"},
			want:  Info{Name: "workdir"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeFiles(t, tt.files)
			if got := Detect(root); got != tt.want {
				t.Errorf("Detect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
