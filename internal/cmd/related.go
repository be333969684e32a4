package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/output"
	"github.com/hargabyte/ctx/internal/related"
)

var relatedCmd = &cobra.Command{
	Use:   "related <file>",
	Short: "Find files related to a file",
	Long: `Find the files connected to <file>:

  imports      files its import statements resolve to
  imported_by  files whose imports name it
  co_changed   files committed together with it, most often first
  test_files   tests found by naming convention or under tests/

Import matching is textual. Co-changes need a git repository.`,
	Example: `  ctx related src/parser.py
  ctx related --limit 3 internal/index/engine.go`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runRelated,
}

var relatedLimit int

func init() {
	rootCmd.AddCommand(relatedCmd)
	relatedCmd.Flags().IntVar(&relatedLimit, "limit", related.DefaultCoChangeLimit, "Maximum co-changed files")
}

// relatedText renders a related.Result as grouped lines.
type relatedText struct {
	*related.Result
}

func (r relatedText) Text() string {
	var sb strings.Builder
	sb.WriteString(r.Source + "\n")
	groups := []struct {
		name  string
		files []related.File
	}{
		{"imports", r.Imports},
		{"imported_by", r.ImportedBy},
		{"co_changed", r.CoChanged},
		{"test_files", r.TestFiles},
	}
	for _, g := range groups {
		for _, f := range g.files {
			p := f.Path
			if p == "" {
				p = "?"
			}
			fmt.Fprintf(&sb, "  %s %s (%s)\n", g.name, p, f.Reason)
		}
	}
	return sb.String()
}

func runRelated(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	idx, err := s.ws.Index(ctx)
	if err != nil {
		return err
	}
	res, err := related.Find(idx, s.ws.Rel(args[0]), s.ws.Activity(ctx), related.Options{CoChangeLimit: relatedLimit})
	if err != nil {
		return err
	}
	if s.format == output.FormatText {
		return s.write(cmd, relatedText{res})
	}
	return s.write(cmd, res)
}
