package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/index"
	"github.com/hargabyte/ctx/internal/model"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols <name>",
	Short: "Find where symbols are declared",
	Long: `Find declarations by name across the repository.

Matching is exact unless --prefix is given. --kind restricts matches to
one kind: function, method, class, struct, enum, trait, interface, type,
const, module or variable.`,
	Example: `  ctx symbols ParseInput
  ctx symbols --prefix --kind method Parse`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runSymbols,
}

var (
	symbolsKind   string
	symbolsPrefix bool
)

func init() {
	rootCmd.AddCommand(symbolsCmd)
	symbolsCmd.Flags().StringVar(&symbolsKind, "kind", "", "Only symbols of this kind")
	symbolsCmd.Flags().BoolVar(&symbolsPrefix, "prefix", false, "Match names by prefix")
}

// symbolsResult is the output of ctx symbols.
type symbolsResult struct {
	Query   string          `yaml:"query" json:"query"`
	Matches []index.Located `yaml:"matches" json:"matches"`
	Count   int             `yaml:"count" json:"count"`
}

func (r *symbolsResult) Text() string {
	var sb strings.Builder
	for _, m := range r.Matches {
		fmt.Fprintf(&sb, "%s:%d %s %s\n", m.Path, m.Line, m.Kind, m.Name)
	}
	return sb.String()
}

func runSymbols(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	idx, err := s.ws.Index(cmd.Context())
	if err != nil {
		return err
	}

	query := args[0]
	matches := []index.Located{}
	for _, p := range idx.Paths() {
		for _, sym := range idx.Summary(p).Symbols {
			if symbolsKind != "" && sym.Kind != model.SymbolKind(symbolsKind) {
				continue
			}
			if sym.Name == query || (symbolsPrefix && strings.HasPrefix(sym.Name, query)) {
				matches = append(matches, index.Located{Path: p, Symbol: sym})
			}
		}
	}
	return s.write(cmd, &symbolsResult{Query: query, Matches: matches, Count: len(matches)})
}
