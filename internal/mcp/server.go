// Package mcp provides an MCP (Model Context Protocol) server for ctx.
// This allows AI agents to query the fact index through MCP tools instead of CLI commands.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hargabyte/ctx/internal/budget"
	ctxcontext "github.com/hargabyte/ctx/internal/context"
	"github.com/hargabyte/ctx/internal/diffctx"
	"github.com/hargabyte/ctx/internal/related"
	"github.com/hargabyte/ctx/internal/workspace"
)

// Server wraps the MCP server with ctx-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	ws           *workspace.Workspace
	logger       *slog.Logger
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Workspace *workspace.Workspace
	Tools     []string      // Which tools to expose (empty = defaults)
	Timeout   time.Duration // Inactivity timeout (0 = no timeout)
	Logger    *slog.Logger
}

// DefaultTools is the default set of tools to expose
var DefaultTools = []string{"ctx_context", "ctx_callers", "ctx_symbols", "ctx_related", "ctx_diff_context"}

// AllTools lists all available tools
var AllTools = []string{"ctx_context", "ctx_callers", "ctx_symbols", "ctx_related", "ctx_diff_context", "ctx_map"}

// ErrNoWorkspace is returned by New without a workspace.
var ErrNoWorkspace = errors.New("mcp server needs a workspace")

// New creates a new MCP server over an opened workspace. The server owns
// the workspace from then on and closes it in Close.
func New(cfg Config) (*Server, error) {
	if cfg.Workspace == nil {
		return nil, ErrNoWorkspace
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		mcpServer: server.NewMCPServer(
			"ctx",
			"1.0.0",
			server.WithToolCapabilities(false),
		),
		ws:           cfg.Workspace,
		logger:       logger,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}
	for _, name := range toolsToRegister {
		if err := s.registerTool(name); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", name, err)
		}
		s.tools[name] = true
	}
	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	schema, ok := toolSchemaRegistry[name]
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}
	s.mcpServer.AddTool(newTool(schema), s.handler(name))
	return nil
}

// newTool builds the protocol definition of a tool from its schema.
func newTool(schema ToolSchema) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(schema.Description)}
	for _, p := range schema.Parameters {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		switch p.Type {
		case "number":
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		default:
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}
	return mcp.NewTool(schema.Name, opts...)
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := s.call(ctx, name, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}
	s.logger.Info("serving mcp on stdio", "root", s.ws.Root, "tools", s.ListTools())
	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			s.logger.Info("shutting down after inactivity", "timeout", s.timeout)
			fmt.Fprintf(os.Stderr, "ctx serve: timeout after %v of inactivity\n", s.timeout)
			s.Close()
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close closes the server and its workspace
func (s *Server) Close() error {
	return s.ws.Close()
}

// ListTools returns the registered tools in sorted order
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
// Registered tools are built from these entries.
var toolSchemaRegistry = map[string]ToolSchema{
	"ctx_context": {
		Name:        "ctx_context",
		Description: "Assemble the context for a task prompt within a token budget: mentioned files, relevant files with reasons, their symbols and the prompt keywords.",
		Parameters: []ParameterSchema{
			{Name: "prompt", Type: "string", Description: "Natural language task description", Required: true},
			{Name: "budget", Type: "number", Description: "Token budget (default: from config)"},
		},
	},
	"ctx_callers": {
		Name:        "ctx_callers",
		Description: "List every call site whose invoked name exactly matches a function or method name.",
		Parameters: []ParameterSchema{
			{Name: "name", Type: "string", Description: "Function or method name", Required: true},
		},
	},
	"ctx_symbols": {
		Name:        "ctx_symbols",
		Description: "Show the symbols and imports of a file, or find where a symbol is declared.",
		Parameters: []ParameterSchema{
			{Name: "path", Type: "string", Description: "File path relative to the project root"},
			{Name: "name", Type: "string", Description: "Symbol name to look up across the project"},
		},
	},
	"ctx_related": {
		Name:        "ctx_related",
		Description: "Find files related to a file: its imports, importers, co-changed files and tests.",
		Parameters: []ParameterSchema{
			{Name: "file", Type: "string", Description: "File path relative to the project root", Required: true},
			{Name: "limit", Type: "number", Description: "Maximum co-changed files (default: 10)"},
		},
	},
	"ctx_diff_context": {
		Name:        "ctx_diff_context",
		Description: "Map uncommitted or staged changes to the functions they modify and the callers affected.",
		Parameters: []ParameterSchema{
			{Name: "ref", Type: "string", Description: "Git ref to diff the working tree against (default: HEAD)"},
			{Name: "staged", Type: "boolean", Description: "Diff staged changes instead"},
		},
	},
	"ctx_map": {
		Name:        "ctx_map",
		Description: "Project skeleton: declarations of every file without bodies, within a token budget.",
		Parameters: []ParameterSchema{
			{Name: "path", Type: "string", Description: "Subdirectory to map (default: project root)"},
			{Name: "budget", Type: "number", Description: "Token budget (default: from config)"},
		},
	},
}

// GetToolSchemas returns schemas for the named tools, in the given order.
func GetToolSchemas(names []string) []ToolSchema {
	schemas := make([]ToolSchema, 0, len(names))
	for _, name := range names {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the result string or an error.
func (s *Server) CallTool(name string, args map[string]interface{}) (string, error) {
	return s.call(context.Background(), name, args)
}

func (s *Server) call(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()
	if !registered {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	s.updateActivity()
	start := time.Now()
	out, err := s.dispatch(ctx, name, args)
	if err != nil {
		s.logger.Warn("tool call failed", "tool", name, "error", err)
		return "", err
	}
	s.logger.Debug("tool call", "tool", name, "duration", time.Since(start), "bytes", len(out))
	return out, nil
}

func (s *Server) dispatch(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	switch name {
	case "ctx_context":
		prompt, _ := args["prompt"].(string)
		if prompt == "" {
			return "", fmt.Errorf("prompt parameter is required")
		}
		return s.executeContext(ctx, prompt, intArg(args, "budget"))

	case "ctx_callers":
		name, _ := args["name"].(string)
		if name == "" {
			return "", fmt.Errorf("name parameter is required")
		}
		return s.executeCallers(ctx, name)

	case "ctx_symbols":
		path, _ := args["path"].(string)
		symbol, _ := args["name"].(string)
		if path == "" && symbol == "" {
			return "", fmt.Errorf("path or name parameter is required")
		}
		return s.executeSymbols(ctx, path, symbol)

	case "ctx_related":
		file, _ := args["file"].(string)
		if file == "" {
			return "", fmt.Errorf("file parameter is required")
		}
		return s.executeRelated(ctx, file, intArg(args, "limit"))

	case "ctx_diff_context":
		ref, _ := args["ref"].(string)
		staged, _ := args["staged"].(bool)
		return s.executeDiffContext(ctx, diffctx.Options{Ref: ref, Staged: staged})

	case "ctx_map":
		path, _ := args["path"].(string)
		return s.executeMap(ctx, path, intArg(args, "budget"))

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, name string) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func (s *Server) executeContext(ctx context.Context, prompt string, tokens int) (string, error) {
	idx, err := s.ws.Index(ctx)
	if err != nil {
		return "", err
	}
	opts, err := s.ws.ContextOptions(ctx, tokens)
	if err != nil {
		return "", err
	}
	res := ctxcontext.Build(idx, prompt, s.ws.Activity(ctx), opts)
	return res.Text(), nil
}

func (s *Server) executeCallers(ctx context.Context, name string) (string, error) {
	idx, err := s.ws.Index(ctx)
	if err != nil {
		return "", err
	}
	sites := idx.CallersOf(name)
	return toJSON(map[string]interface{}{
		"name":    name,
		"callers": sites,
		"count":   len(sites),
	})
}

func (s *Server) executeSymbols(ctx context.Context, path, name string) (string, error) {
	idx, err := s.ws.Index(ctx)
	if err != nil {
		return "", err
	}
	if path != "" {
		rel := s.ws.Rel(path)
		sum := idx.Summary(rel)
		if sum == nil {
			if _, ok := idx.File(rel); !ok {
				return "", fmt.Errorf("file not found: %s", path)
			}
			return "", fmt.Errorf("no parser for %s", path)
		}
		return toJSON(sum)
	}
	found := idx.FindSymbol(name)
	return toJSON(map[string]interface{}{
		"name":    name,
		"matches": found,
		"count":   len(found),
	})
}

func (s *Server) executeRelated(ctx context.Context, file string, limit int) (string, error) {
	idx, err := s.ws.Index(ctx)
	if err != nil {
		return "", err
	}
	res, err := related.Find(idx, s.ws.Rel(file), s.ws.Activity(ctx), related.Options{CoChangeLimit: limit})
	if err != nil {
		return "", err
	}
	return toJSON(res)
}

func (s *Server) executeDiffContext(ctx context.Context, opts diffctx.Options) (string, error) {
	out, err := diffctx.GitDiff(ctx, s.ws.Root, opts)
	if err != nil {
		return "", err
	}
	changes, err := diffctx.Parse(out)
	if err != nil {
		return "", err
	}
	idx, err := s.ws.Index(ctx)
	if err != nil {
		return "", err
	}
	return toJSON(diffctx.Analyze(diffctx.RefName(opts), changes, idx))
}

func (s *Server) executeMap(ctx context.Context, path string, tokens int) (string, error) {
	idx, err := s.ws.Index(ctx)
	if err != nil {
		return "", err
	}
	est, err := budget.ParseEstimator(s.ws.Config.Context.Estimator)
	if err != nil {
		return "", err
	}
	if tokens <= 0 {
		tokens = s.ws.Config.Context.Budget
	}
	dir := ""
	if path != "" {
		dir = s.ws.Rel(path)
	}
	return ctxcontext.Map(idx, dir, tokens, est).Text(), nil
}

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
