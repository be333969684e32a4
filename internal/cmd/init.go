package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .ctx/config.yaml with the defaults",
	Long: `Create the .ctx directory and a config.yaml holding the default
settings in the repository root.

With --persist the summary store .ctx/cache.db is created and filled, so
later commands run with --persist start from stored facts.`,
	Example: `  ctx init
  ctx init --force
  ctx init --persist`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := filepath.Join(rootDir, config.ConfigDirName, config.ConfigFileName)

	_, err := os.Stat(configFile)
	switch {
	case err == nil && !initForce:
		fmt.Fprintf(out, "Already initialized at %s\n", configFile)
	case err == nil || os.IsNotExist(err):
		if err == nil {
			if err := os.Remove(configFile); err != nil {
				return ioError(fmt.Errorf("removing existing config: %w", err))
			}
		}
		path, err := config.SaveDefault(rootDir)
		if err != nil {
			return ioError(err)
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
	default:
		return ioError(fmt.Errorf("checking config path: %w", err))
	}

	if !persist {
		return nil
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	idx, err := s.ws.Index(cmd.Context())
	if err != nil {
		return err
	}
	stats, err := s.ws.Store().GetStats()
	if err != nil {
		return ioError(err)
	}
	fmt.Fprintf(out, "Stored %d files (%d symbols, %d imports, %d call sites) in %s\n",
		stats.Files, stats.Symbols, stats.Imports, stats.CallSites, s.ws.Store().Path())
	if n := len(idx.Errors); n > 0 {
		fmt.Fprintf(out, "Skipped %d unreadable files\n", n)
	}
	return nil
}
