// Package cmd contains all CLI commands for ctx.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hargabyte/ctx/internal/parser"
)

var (
	// Version is the current version of ctx
	Version = "0.1.0"

	// Global flags
	verbose      bool
	quiet        bool
	configPath   string
	forAgents    bool
	outputFormat string
	rootDir      string
	persist      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ctx",
	Short: "Code context for AI agents",
	Long: `ctx indexes a repository with tree-sitter and answers the questions an
agent asks before touching code: which files matter for a prompt, what a
file declares, who calls a function and what a diff affects.

Every command walks the repository (honoring .gitignore and .ctxignore),
parses supported files (Go, Python, Rust, JavaScript, TypeScript) and
works from the resulting facts. Nothing is written to disk unless the
summary store is enabled with --persist or cache.persist in
.ctx/config.yaml.

Output Format:
  Commands output YAML by default. Use --format json for JSON or
  --format text for plain lines.

Exit codes:
  1  invalid arguments or configuration
  2  file not found or not parseable
  3  git failure
  4  IO or serialization failure

Examples:
  ctx context "fix the parser bug in src/parser.rs"
  ctx summarize src/main.go
  ctx callers ParseInput
  ctx related src/parser.py
  ctx diff-context --staged
  ctx map internal/ --budget 1500
  ctx search -C 1 parseConfig
  ctx status

See 'ctx <command> --help' for command-specific options.`,
	Version: Version,
	Args:    usageArgs(cobra.NoArgs),
	RunE:    runRoot,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return exitCode(err)
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .ctx/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Output format (yaml|json|text, default: from config)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Repository root")
	rootCmd.PersistentFlags().BoolVar(&persist, "persist", false, "Use the summary store in .ctx/cache.db")
	rootCmd.Flags().BoolVar(&forAgents, "for-agents", false, "Output machine-readable capability discovery JSON")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
}

func runRoot(cmd *cobra.Command, args []string) error {
	if forAgents {
		if err := outputAgentHelp(cmd.OutOrStdout(), cmd); err != nil {
			return ioError(err)
		}
		return nil
	}
	return cmd.Help()
}

// CommandInfo represents a command for agent discovery
type CommandInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// FlagInfo represents a command flag for agent discovery
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// outputAgentHelp writes machine-readable JSON describing all commands
func outputAgentHelp(w io.Writer, cmd *cobra.Command) error {
	root := buildCommandInfo(cmd.Root())

	var global []FlagInfo
	cmd.Root().PersistentFlags().VisitAll(func(f *pflag.Flag) {
		global = append(global, flagInfo(f))
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"version":      Version,
		"commands":     root.Subcommands,
		"global_flags": global,
		"extensions":   parser.SupportedExtensions(),
		"exit_codes": map[string]string{
			"1": "invalid arguments or configuration",
			"2": "file not found or not parseable",
			"3": "git failure",
			"4": "IO or serialization failure",
		},
	})
}

// buildCommandInfo recursively builds command information for agent discovery
func buildCommandInfo(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:        cmd.Name(),
		Description: cmd.Short,
		Usage:       cmd.UseLine(),
	}

	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, flagInfo(f))
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden && sub.Name() != "help" && sub.Name() != "completion" {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}

	if cmd.Example != "" {
		for _, line := range strings.Split(cmd.Example, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				info.Examples = append(info.Examples, trimmed)
			}
		}
	}
	return info
}

func flagInfo(f *pflag.Flag) FlagInfo {
	return FlagInfo{
		Name:        f.Name,
		Shorthand:   f.Shorthand,
		Description: f.Usage,
		Type:        f.Value.Type(),
		Default:     f.DefValue,
	}
}

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin
