package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctx/internal/mcp"
)

var (
	callList bool
	callPipe bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Call an MCP tool from the command line",
	Long: `Call any ctx MCP tool with JSON arguments, without starting a server.

Modes:
  ctx call --list                          List all tools and parameters
  ctx call <tool> '{"key":"value"}'        Call a tool with JSON args
  ctx call --pipe                          Read JSON lines from stdin

Tool names accept shorthand: "callers" is equivalent to "ctx_callers".
In pipe mode the index is built once and reused by every request.`,
	Example: `  ctx call --list
  ctx call callers '{"name":"ParseInput"}'
  ctx call context '{"prompt":"fix the parser bug","budget":800}'
  echo '{"tool":"ctx_symbols","args":{"path":"src/lib.rs"}}' | ctx call --pipe`,
	Args: usageArgs(cobra.MaximumNArgs(2)),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callList, "list", false, "List all available tools and their parameters")
	callCmd.Flags().BoolVar(&callPipe, "pipe", false, "Read JSON lines from stdin (pipe mode)")
}

func runCall(cmd *cobra.Command, args []string) error {
	if callList {
		return runCallList(cmd)
	}
	if len(args) == 0 && !callPipe {
		return usageError(fmt.Errorf("tool name required (run 'ctx call --list' to see available tools)"))
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	srv, err := mcp.New(mcp.Config{Workspace: s.ws, Tools: mcp.AllTools, Logger: s.logger})
	if err != nil {
		s.Close()
		return err
	}
	// the server owns the workspace now
	defer s.close()
	defer srv.Close()

	if callPipe {
		return runCallPipe(cmd, srv)
	}
	return runCallSingle(cmd, srv, args)
}

func runCallList(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := resolveFormat(cfg)
	if err != nil {
		return err
	}
	return writeTo(cmd.OutOrStdout(), format, mcp.GetToolSchemas(mcp.AllTools))
}

func runCallSingle(cmd *cobra.Command, srv *mcp.Server, args []string) error {
	toolName := normalizeToolName(args[0])

	toolArgs := make(map[string]interface{})
	if len(args) >= 2 {
		if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
			return usageError(fmt.Errorf("invalid JSON args: %w", err))
		}
	}

	result, err := srv.CallTool(toolName, toolArgs)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

// pipeRequest is the JSON format for pipe mode input.
type pipeRequest struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// pipeResponse is the JSON format for pipe mode output.
type pipeResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runCallPipe(cmd *cobra.Command, srv *mcp.Server) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	scanner := bufio.NewScanner(stdin)
	// Allow larger lines (1MB)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var resp pipeResponse
		var req pipeRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			resp.Error = fmt.Sprintf("invalid JSON: %v", err)
		} else {
			if req.Args == nil {
				req.Args = make(map[string]interface{})
			}
			result, err := srv.CallTool(normalizeToolName(req.Tool), req.Args)
			switch {
			case err != nil:
				resp.Error = err.Error()
			case json.Valid([]byte(result)):
				resp.Result = json.RawMessage(result)
			default:
				b, _ := json.Marshal(result)
				resp.Result = b
			}
		}
		if err := enc.Encode(resp); err != nil {
			return ioError(err)
		}
	}
	if err := scanner.Err(); err != nil {
		return ioError(err)
	}
	return nil
}

// normalizeToolName converts shorthand names to full tool names.
// "callers" -> "ctx_callers", "ctx_callers" -> "ctx_callers"
func normalizeToolName(name string) string {
	if !strings.HasPrefix(name, "ctx_") {
		return "ctx_" + name
	}
	return name
}
