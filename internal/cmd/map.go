package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/budget"
	ctxcontext "github.com/hargabyte/ctx/internal/context"
)

var mapCmd = &cobra.Command{
	Use:   "map [path]",
	Short: "Show a skeleton of the repository",
	Long: `Show every declaration in the repository, or under [path], without
bodies: each file followed by its signatures, methods indented under
their types. Files without declarations are skipped.

The map stops at the first line that would exceed the token budget.`,
	Example: `  ctx map
  ctx map internal/ --budget 1500 --format text`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runMap,
}

var mapBudget int

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().IntVar(&mapBudget, "budget", 0, "Token budget (default: context.budget from config)")
}

func runMap(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	est, err := budget.ParseEstimator(s.ws.Config.Context.Estimator)
	if err != nil {
		return usageError(err)
	}
	limit := s.ws.Config.Context.Budget
	if mapBudget > 0 {
		limit = mapBudget
	}
	dir := ""
	if len(args) == 1 {
		dir = s.ws.Rel(args[0])
	}

	idx, err := s.ws.Index(cmd.Context())
	if err != nil {
		return err
	}
	return s.write(cmd, ctxcontext.Map(idx, dir, limit, est))
}
