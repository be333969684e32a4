// Package project identifies the kind and name of the project at a root
// from its manifest files.
package project

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
)

// Info describes a project root.
type Info struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// indicators are checked in order; the first file present decides the type.
var indicators = []struct {
	file string
	kind string
}{
	{"Cargo.toml", "rust"},
	{"package.json", "javascript"},
	{"pyproject.toml", "python"},
	{"setup.py", "python"},
	{"requirements.txt", "python"},
	{"go.mod", "go"},
	{"pom.xml", "java"},
	{"build.gradle", "java"},
	{"CMakeLists.txt", "cpp"},
	{"Makefile", "make"},
}

// Detect returns the type and name of the project at root. Unreadable or
// malformed manifests are ignored.
func Detect(root string) Info {
	return Info{Name: DetectName(root), Type: DetectType(root)}
}

// DetectType returns the project type, or "" when no indicator file exists.
func DetectType(root string) string {
	for _, ind := range indicators {
		if _, err := os.Stat(filepath.Join(root, ind.file)); err == nil {
			return ind.kind
		}
	}
	return ""
}

// DetectName returns the name declared by the first manifest that has
// one, falling back to the directory name.
func DetectName(root string) string {
	for _, fn := range []func(string) string{cargoName, packageJSONName, pyprojectName, goModName} {
		if name := fn(root); name != "" {
			return name
		}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}

func cargoName(root string) string {
	var manifest struct {
		Package struct {
			Name string `toml:"name"`
		} `toml:"package"`
	}
	if _, err := toml.DecodeFile(filepath.Join(root, "Cargo.toml"), &manifest); err != nil {
		return ""
	}
	return manifest.Package.Name
}

func pyprojectName(root string) string {
	var manifest struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
	}
	if _, err := toml.DecodeFile(filepath.Join(root, "pyproject.toml"), &manifest); err != nil {
		return ""
	}
	return manifest.Project.Name
}

func packageJSONName(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return ""
	}
	var manifest struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return ""
	}
	return manifest.Name
}

// goModName returns the last element of the module path.
func goModName(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	mod := modfile.ModulePath(data)
	if mod == "" {
		return ""
	}
	return path.Base(mod)
}
