package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the summary store",
	Long: `Inspect or clear the summary store (.ctx/cache.db by default).

The store is written by commands run with --persist, or with
cache.persist enabled in .ctx/config.yaml.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count stored files, symbols, imports and call sites",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runCacheStats,
}

var cacheFilesCmd = &cobra.Command{
	Use:   "files",
	Short: "List stored files with their modification times",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runCacheFiles,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored summary",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheFilesCmd, cacheClearCmd)
}

type cacheStatsResult struct {
	Path        string `yaml:"path" json:"path"`
	cache.Stats `yaml:",inline"`
}

// withCache opens the store of the configured root.
func withCache(fn func(c *cache.Cache) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return ioError(err)
	}
	c, err := cache.Open(cfg.CacheDir(abs))
	if err != nil {
		return ioError(err)
	}
	defer c.Close()
	return fn(c)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := resolveFormat(cfg)
	if err != nil {
		return err
	}
	return withCache(func(c *cache.Cache) error {
		stats, err := c.GetStats()
		if err != nil {
			return ioError(err)
		}
		return writeTo(cmd.OutOrStdout(), format, &cacheStatsResult{Path: c.Path(), Stats: *stats})
	})
}

func runCacheFiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := resolveFormat(cfg)
	if err != nil {
		return err
	}
	return withCache(func(c *cache.Cache) error {
		entries, err := c.GetAllFileEntries()
		if err != nil {
			return ioError(err)
		}
		if entries == nil {
			entries = []cache.FileEntry{}
		}
		return writeTo(cmd.OutOrStdout(), format, entries)
	})
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	return withCache(func(c *cache.Cache) error {
		if err := c.Clear(); err != nil {
			return ioError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", c.Path())
		return nil
	})
}
