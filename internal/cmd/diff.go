package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/diffctx"
	"github.com/hargabyte/ctx/internal/output"
)

var diffContextCmd = &cobra.Command{
	Use:   "diff-context [ref]",
	Short: "Show the functions a diff modifies and their callers",
	Long: `Map a change set onto the index.

By default the working tree is compared against HEAD (or [ref]). --staged
compares the index against HEAD instead, and --diff reads a unified diff
from a file, or from stdin with "-", without running git.

For every changed file the result lists the functions and methods whose
line range overlaps a changed line, then every call site of those
functions outside their own bodies.`,
	Example: `  ctx diff-context
  ctx diff-context --staged
  ctx diff-context main
  git diff HEAD~3 | ctx diff-context --diff -`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runDiffContext,
}

var (
	diffStaged bool
	diffFile   string
)

func init() {
	rootCmd.AddCommand(diffContextCmd)
	diffContextCmd.Flags().BoolVar(&diffStaged, "staged", false, "Diff staged changes against HEAD")
	diffContextCmd.Flags().StringVar(&diffFile, "diff", "", "Read a unified diff from a file (- for stdin)")
}

// diffText renders a diff context as lines.
type diffText struct {
	*diffctx.Result
}

func (d diffText) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ref %s\n", d.Ref)
	for _, f := range d.Files {
		fmt.Fprintf(&sb, "%s %s +%d -%d\n", f.Status, f.Path, f.Insertions, f.Deletions)
		for _, fn := range f.Functions {
			fmt.Fprintf(&sb, "  %s %s (%d-%d)\n", fn.Kind, fn.Name, fn.Line, fn.EndLine)
		}
	}
	for _, c := range d.Callers {
		fmt.Fprintf(&sb, "callers of %s: %s\n", c.Function, strings.Join(c.CalledFrom, ", "))
	}
	return sb.String()
}

func runDiffContext(cmd *cobra.Command, args []string) error {
	if diffFile != "" && (diffStaged || len(args) > 0) {
		return usageError(fmt.Errorf("--diff cannot be combined with --staged or a ref"))
	}
	opts := diffctx.Options{Staged: diffStaged}
	if len(args) == 1 {
		if diffStaged {
			return usageError(fmt.Errorf("--staged cannot be combined with a ref"))
		}
		opts.Ref = args[0]
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	var (
		raw []byte
		ref = diffctx.RefName(opts)
	)
	if diffFile != "" {
		raw, err = readInput(diffFile)
		if err != nil {
			return err
		}
		ref = diffFile
	} else {
		raw, err = diffctx.GitDiff(ctx, s.ws.Root, opts)
		if err != nil {
			return &ExitError{Code: ExitGit, Err: err}
		}
	}

	changes, err := diffctx.Parse(raw)
	if err != nil {
		return usageError(err)
	}
	idx, err := s.ws.Index(ctx)
	if err != nil {
		return err
	}
	res := diffctx.Analyze(ref, changes, idx)
	s.logger.Debug("diff analyzed", "ref", ref, "files", len(res.Files), "callers", len(res.Callers))
	if s.format == output.FormatText {
		return s.write(cmd, diffText{res})
	}
	return s.write(cmd, res)
}
