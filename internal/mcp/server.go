// Package mcp exposes the ingestion engine's query surface as an MCP
// (Model Context Protocol) server, so shells and agents can query coverage
// data through tools instead of CLI commands.
package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/covquery/cvq/internal/detail"
	"github.com/covquery/cvq/internal/ingest"
	"github.com/covquery/cvq/internal/output"
)

// Server wraps the MCP server around one initialized engine.
type Server struct {
	mcpServer *server.MCPServer
	engine    *ingest.Engine
	tools     map[string]bool
}

// Config holds server configuration.
type Config struct {
	Tools []string // which tools to expose (empty = all)
}

// AllTools lists all available tools.
var AllTools = []string{"cvq_module", "cvq_instance", "cvq_node", "cvq_list", "cvq_summary"}

// toolSchema describes one tool for discovery and tests. These mirror the
// mcp.NewTool() definitions in the register*Tool() functions.
type toolSchema struct {
	Name        string
	Description string
	Required    []string
}

var toolSchemaRegistry = map[string]toolSchema{
	"cvq_module": {
		Name:        "cvq_module",
		Description: "Look up one module's detail section by exact name.",
		Required:    []string{"name"},
	},
	"cvq_instance": {
		Name:        "cvq_instance",
		Description: "Look up one module instance's detail section by exact slash-separated path.",
		Required:    []string{"path"},
	},
	"cvq_node": {
		Name:        "cvq_node",
		Description: "Look up a node in the design hierarchy by dot-separated path.",
		Required:    []string{"path"},
	},
	"cvq_list": {
		Name:        "cvq_list",
		Description: "Enumerate indexed module names or instance paths.",
	},
	"cvq_summary": {
		Name:        "cvq_summary",
		Description: "Report ingestion counts, timings, and per-family availability.",
	},
}

// New creates an MCP server over an engine that Initialize already built.
func New(engine *ingest.Engine, cfg Config) (*Server, error) {
	mcpServer := server.NewMCPServer(
		"cvq",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer: mcpServer,
		engine:    engine,
		tools:     make(map[string]bool),
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}
	for _, name := range toolsToRegister {
		if err := s.registerTool(name); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", name, err)
		}
		s.tools[name] = true
	}

	return s, nil
}

// ServeStdio starts the server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTool(name string) error {
	switch name {
	case "cvq_module":
		s.registerModuleTool()
	case "cvq_instance":
		s.registerInstanceTool()
	case "cvq_node":
		s.registerNodeTool()
	case "cvq_list":
		s.registerListTool()
	case "cvq_summary":
		s.registerSummaryTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
	return nil
}

func (s *Server) registerModuleTool() {
	tool := mcp.NewTool("cvq_module",
		mcp.WithDescription(toolSchemaRegistry["cvq_module"].Description),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Exact module name (case-sensitive, no wildcards)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleModule)
}

func (s *Server) registerInstanceTool() {
	tool := mcp.NewTool("cvq_instance",
		mcp.WithDescription(toolSchemaRegistry["cvq_instance"].Description),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Exact slash-separated instance path, e.g. top/cpu/core0"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleInstance)
}

func (s *Server) registerNodeTool() {
	tool := mcp.NewTool("cvq_node",
		mcp.WithDescription(toolSchemaRegistry["cvq_node"].Description),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Dot-separated hierarchy path, e.g. tb.dut_inst"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleNode)
}

func (s *Server) registerListTool() {
	tool := mcp.NewTool("cvq_list",
		mcp.WithDescription(toolSchemaRegistry["cvq_list"].Description),
		mcp.WithString("kind",
			mcp.Description("What to list: modules (default) or instances"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleList)
}

func (s *Server) registerSummaryTool() {
	tool := mcp.NewTool("cvq_summary",
		mcp.WithDescription(toolSchemaRegistry["cvq_summary"].Description),
	)
	s.mcpServer.AddTool(tool, s.handleSummary)
}

func (s *Server) handleModule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	d, err := s.engine.ModuleDetail(name)
	if err != nil {
		return lookupError(err), nil
	}
	var buf bytes.Buffer
	output.WriteDetail(&buf, d)
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handleInstance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}

	d, err := s.engine.InstanceDetail(path)
	if err != nil {
		return lookupError(err), nil
	}
	var buf bytes.Buffer
	output.WriteDetail(&buf, d)
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handleNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required"), nil
	}

	n, err := s.engine.FindHierarchyNode(path)
	if err != nil {
		return lookupError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", n.Path, n.Metrics)), nil
}

func (s *Server) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind, _ := args["kind"].(string)
	if kind == "" {
		kind = "modules"
	}

	var seq func(func(string) bool)
	var err error
	switch kind {
	case "modules":
		seq, err = s.engine.AvailableModules()
	case "instances":
		seq, err = s.engine.AvailableInstances()
	default:
		return mcp.NewToolResultError(fmt.Sprintf("kind must be modules or instances, got %q", kind)), nil
	}
	if err != nil {
		return lookupError(err), nil
	}

	var b strings.Builder
	for key := range seq {
		b.WriteString(key)
		b.WriteByte('\n')
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	output.WriteSummary(&buf, s.engine.DataSummary())
	buf.WriteByte('\n')
	output.WriteStats(&buf, s.engine.PerfStats())
	return mcp.NewToolResultText(buf.String()), nil
}

// lookupError keeps misses and degraded families as tool-level errors; only
// genuine faults (corrupt sections) surface with their full context.
func lookupError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, detail.ErrNotFound), errors.Is(err, ingest.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, ingest.ErrUnavailable):
		return mcp.NewToolResultError("report family unavailable")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}
