package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/model"
)

var callersCmd = &cobra.Command{
	Use:   "callers <name>",
	Short: "List the call sites of a function or method",
	Long: `List every call site whose invoked name is exactly <name>.

The invoked name of a call is its rightmost identifier, so obj.Save(),
pkg.Save() and Save() are all callers of Save. Matching is by name only:
calls to different functions sharing a name are all reported.`,
	Example: `  ctx callers ParseInput
  ctx callers --format text render`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runCallers,
}

func init() {
	rootCmd.AddCommand(callersCmd)
}

// callersResult is the output of ctx callers.
type callersResult struct {
	Name    string           `yaml:"name" json:"name"`
	Callers []model.CallSite `yaml:"callers" json:"callers"`
	Count   int              `yaml:"count" json:"count"`
}

func (r *callersResult) Text() string {
	var sb strings.Builder
	for _, c := range r.Callers {
		fmt.Fprintf(&sb, "%s:%d\n", c.CallerFile, c.CallerLine)
	}
	return sb.String()
}

func runCallers(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	idx, err := s.ws.Index(cmd.Context())
	if err != nil {
		return err
	}
	sites := idx.CallersOf(args[0])
	if sites == nil {
		sites = []model.CallSite{}
	}
	return s.write(cmd, &callersResult{Name: args[0], Callers: sites, Count: len(sites)})
}
