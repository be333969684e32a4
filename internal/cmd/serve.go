package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/config"
	"github.com/hargabyte/ctx/internal/logging"
	"github.com/hargabyte/ctx/internal/mcp"
	"github.com/hargabyte/ctx/internal/workspace"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

Agents query the index through MCP tools instead of spawning CLI
commands. The server keeps its parse cache between calls, so only files
changed since the previous call are parsed again.

stdout carries the protocol. Logs go to .ctx/logs/serve.log.

Available Tools:
  ctx_context       Prompt context within a token budget
  ctx_callers       Call sites of a function or method
  ctx_symbols       Symbols of a file, or declarations of a name
  ctx_related       Imports, importers, co-changes and tests of a file
  ctx_diff_context  Functions a diff modifies and their callers
  ctx_map           Repository skeleton (not enabled by default)`,
	Example: `  ctx serve
  ctx serve --tools context,callers,map
  ctx serve --timeout 30m
  ctx serve --list-tools`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runServe,
}

var (
	serveTools     string
	serveTimeout   string
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: all but map)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "0", "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListTools {
		out := cmd.OutOrStdout()
		for _, schema := range mcp.GetToolSchemas(mcp.AllTools) {
			fmt.Fprintf(out, "  %-17s %s\n", schema.Name, schema.Description)
		}
		fmt.Fprintf(out, "\nDefault set: %s\n", strings.Join(mcp.DefaultTools, ", "))
		return nil
	}

	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return usageError(fmt.Errorf("invalid timeout: %w", err))
	}
	tools := parseToolList(serveTools)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return ioError(err)
	}
	logPath := filepath.Join(abs, config.ConfigDirName, "logs", "serve.log")
	if cfg.Log.File != "" {
		logPath = cfg.Log.File
	}
	logger, logFile, err := logging.NewFile(logPath, logging.LevelFromVerbosity(verbose, quiet, cfg.Log.Level))
	if err != nil {
		return ioError(err)
	}
	defer logFile.Close()

	ws, err := workspace.Open(workspace.Options{Root: abs, Config: cfg, Persist: persist, Logger: logger})
	if err != nil {
		return err
	}
	server, err := mcp.New(mcp.Config{Workspace: ws, Tools: tools, Timeout: timeout, Logger: logger})
	if err != nil {
		ws.Close()
		return usageError(err)
	}
	defer server.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down on signal")
		server.Close()
		os.Exit(0)
	}()

	// stdout is for the MCP protocol
	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "ctx serve: starting MCP server\n")
	fmt.Fprintf(errOut, "ctx serve: tools: %v\n", server.ListTools())
	fmt.Fprintf(errOut, "ctx serve: log: %s\n", logPath)
	if timeout > 0 {
		fmt.Fprintf(errOut, "ctx serve: timeout: %v\n", timeout)
	}
	return server.ServeStdio()
}

// parseToolList splits a comma-separated tool list, accepting names
// without the ctx_ prefix.
func parseToolList(s string) []string {
	var tools []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tools = append(tools, normalizeToolName(t))
		}
	}
	return tools
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
