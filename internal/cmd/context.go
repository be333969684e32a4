package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	ctxcontext "github.com/hargabyte/ctx/internal/context"
)

var contextCmd = &cobra.Command{
	Use:   "context <prompt>",
	Short: "Assemble prompt context within a token budget",
	Long: `Assemble the context an agent needs for a task prompt.

The context is a ranked list of lines cut off at the token budget:

  [CTX: project=<name> type=<type> branch=<branch>]
  [RECENT: <path> (<n> commits)]       files touched in recent commits
  [MENTIONED: <path>]                  files named in the prompt
  [RELEVANT: <path> (<reasons>)]       highest scoring files
  <path>:<line> <kind> <name>          symbols of those files
  [KEYWORDS: <keywords>]

Lines are taken in that order until the next one would exceed the budget.
Use --format text to get the lines alone.`,
	Example: `  ctx context "fix the parser bug in src/parser.go"
  ctx context --budget 500 --format text "add retries to the http client"`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: runContext,
}

var (
	contextBudget   int
	contextMaxFiles int
)

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.Flags().IntVar(&contextBudget, "budget", 0, "Token budget (default: context.budget from config)")
	contextCmd.Flags().IntVar(&contextMaxFiles, "max-files", 0, "Maximum relevant files (default: context.max_files from config)")
}

func runContext(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return usageError(errEmptyPrompt)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	opts, err := s.ws.ContextOptions(ctx, contextBudget)
	if err != nil {
		return usageError(err)
	}
	if contextMaxFiles > 0 {
		opts.MaxFiles = contextMaxFiles
	}

	idx, err := s.ws.Index(ctx)
	if err != nil {
		return err
	}
	res := ctxcontext.Build(idx, prompt, s.ws.Activity(ctx), opts)
	s.logger.Debug("context assembled",
		"lines", len(res.Lines),
		"tokens_used", res.TokensUsed,
		"tokens_budget", res.TokensBudget,
		"excluded", res.Excluded)
	return s.write(cmd, res)
}
