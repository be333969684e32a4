package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/extract"
	"github.com/hargabyte/ctx/internal/model"
	"github.com/hargabyte/ctx/internal/parser"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <path>...",
	Short: "Show the symbols and imports of files",
	Long: `Summarize files: language, line count, declared symbols with their
line ranges, signatures and doc comments, and import statements.

Paths are relative to --root. A directory stands for the supported files
under it, down to --depth levels of subdirectories (0 = only its own
files, negative = no limit). Use --skeleton for signatures only.`,
	Example: `  ctx summarize src/parser.rs
  ctx summarize --depth 0 internal/index
  ctx summarize --skeleton internal/index/engine.go internal/index/index.go`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: runSummarize,
}

var (
	summarizeSkeleton bool
	summarizeDepth    int
)

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().BoolVar(&summarizeSkeleton, "skeleton", false, "Show declarations without bodies")
	summarizeCmd.Flags().IntVar(&summarizeDepth, "depth", 1, "Subdirectory levels to include for directory arguments (-1 = all)")
}

// summaries renders as one block per file in text form.
type summaries []*model.FileSummary

func (ss summaries) Text() string {
	var sb strings.Builder
	for i, sum := range ss {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s (%s, %d lines)\n", sum.Path, sum.Language, sum.LineCount)
		for _, imp := range sum.Imports {
			fmt.Fprintf(&sb, "  %d import %s\n", imp.Line, imp.Text)
		}
		for _, sym := range sum.Symbols {
			fmt.Fprintf(&sb, "  %d-%d %s %s\n", sym.Line, sym.EndLine, sym.Kind, sym.Name)
		}
	}
	return sb.String()
}

// skeletons maps paths to their skeleton lines.
type skeletons []skeleton

type skeleton struct {
	Path  string   `yaml:"path" json:"path"`
	Lines []string `yaml:"lines" json:"lines"`
}

func (ss skeletons) Text() string {
	var sb strings.Builder
	for _, s := range ss {
		sb.WriteString(s.Path + ":\n")
		for _, line := range s.Lines {
			sb.WriteString("  " + line + "\n")
		}
	}
	return sb.String()
}

func runSummarize(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	idx, err := s.ws.Index(cmd.Context())
	if err != nil {
		return err
	}

	out := summaries{}
	seen := make(map[string]bool)
	add := func(sum *model.FileSummary) {
		if !seen[sum.Path] {
			seen[sum.Path] = true
			out = append(out, sum)
		}
	}
	for _, arg := range args {
		rel := s.ws.Rel(arg)
		if info, err := os.Stat(filepath.Join(s.ws.Root, filepath.FromSlash(rel))); err == nil && info.IsDir() {
			for _, p := range pathsUnder(idx.Paths(), rel, summarizeDepth) {
				add(idx.Summary(p))
			}
			continue
		}
		sum := idx.Summary(rel)
		if sum == nil {
			entry, ok := idx.File(rel)
			if !ok {
				return &ExitError{Code: ExitNotFound, Err: fmt.Errorf("file not found: %s", arg)}
			}
			return &ExitError{Code: ExitNotFound, Err: &parser.UnsupportedLanguageError{Language: languageOf(entry.Path)}}
		}
		add(sum)
	}

	if summarizeSkeleton {
		sk := make(skeletons, len(out))
		for i, sum := range out {
			sk[i] = skeleton{Path: sum.Path, Lines: extract.Skeleton(sum)}
		}
		return s.write(cmd, sk)
	}
	return s.write(cmd, out)
}

// pathsUnder keeps the paths inside dir that sit at most depth
// directories below it. A negative depth keeps every level.
func pathsUnder(paths []string, dir string, depth int) []string {
	var out []string
	for _, p := range paths {
		rest := p
		if dir != "." {
			var ok bool
			if rest, ok = strings.CutPrefix(p, dir+"/"); !ok {
				continue
			}
		}
		if depth < 0 || strings.Count(rest, "/") <= depth {
			out = append(out, p)
		}
	}
	return out
}

// languageOf names a file's language for error messages.
func languageOf(path string) string {
	if lang := parser.LanguageFromPath(path); lang != parser.None {
		return string(lang)
	}
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i:]
	}
	return path
}
