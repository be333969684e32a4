package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/output"
	"github.com/hargabyte/ctx/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search file contents for text",
	Long: `Search every walked file for <text>, ignoring case. Binary files are
skipped. Each match reports its path, line, column and the lines around
it (-C, default 2).

The same ignore rules apply as for indexing, so vendored and generated
trees stay out of the results.`,
	Example: `  ctx search "TODO"
  ctx search -C 0 --limit 20 --format text parseConfig`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runSearch,
}

var (
	searchContext int
	searchLimit   int
)

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchContext, "context", "C", search.DefaultContext, "Lines of context around each match")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum matches (0 = no limit)")
}

// searchText renders matches as path:line:text with indented context.
type searchText []search.Match

func (ms searchText) Text() string {
	var sb strings.Builder
	for _, m := range ms {
		fmt.Fprintf(&sb, "%s:%d:%s\n", m.Path, m.Line, m.Text)
		for _, c := range m.Context {
			sb.WriteString("    " + c + "\n")
		}
	}
	return sb.String()
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	files, err := s.ws.Files()
	if err != nil {
		return err
	}
	matches, err := search.Text(cmd.Context(), files, args[0], search.Options{
		Context: searchContext,
		Limit:   searchLimit,
		Workers: s.ws.Config.Scan.Workers,
		Logger:  s.logger,
	})
	if errors.Is(err, search.ErrEmptyQuery) {
		return usageError(err)
	}
	if err != nil {
		return err
	}
	if matches == nil {
		matches = []search.Match{}
	}
	s.logger.Debug("search finished", "files", len(files), "matches", len(matches))
	if s.format == output.FormatText {
		return s.write(cmd, searchText(matches))
	}
	return s.write(cmd, matches)
}
