// Package tools is the reference ToolExecutor (engine.ToolExecutor, §4.11)
// implementation: MCPBridge runs a declared tool's body in-process when the
// engine needs a result (via engine.RunToolBody), and separately exposes the
// very same tools over MCP (github.com/modelcontextprotocol/go-sdk) so an
// external AI client can discover and call them directly, with each tool's
// input schema rendered from its @param-annotated registry.ParamSchema via
// github.com/google/jsonschema-go (§4.8).
//
// These are two faces of one registry, not two features: a `vibe` call
// either drives a tool through the engine's own awaiting_tool suspension (in
// which case MCPBridge.Execute runs it) or an external agent calls it over
// MCP directly — both paths execute the identical tool body.
package tools

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vibelang-org/vibe/ast"
	"github.com/vibelang-org/vibe/engine"
	"github.com/vibelang-org/vibe/registry"
	"github.com/vibelang-org/vibe/values"
)

// toolStmtOf unwraps a top-level statement to its *ast.ToolStmt, looking
// through `export` the same way InitialState does for FunctionStmt.
func toolStmtOf(stmt ast.Stmt) (*ast.ToolStmt, bool) {
	switch st := stmt.(type) {
	case *ast.ToolStmt:
		return st, true
	case *ast.ExportStmt:
		if ts, ok := st.Decl.(*ast.ToolStmt); ok {
			return ts, true
		}
	}
	return nil, false
}

// MCPBridge binds a running program's tool registry to both the engine's
// ToolExecutor seam and an MCP server. It is scoped to a single
// engine.RuntimeState — tool bodies run against that state's Registry,
// TSModules, and SourceModules (RunToolBody shares them by reference), so a
// fresh MCPBridge is expected per running interaction.
type MCPBridge struct {
	state *engine.RuntimeState
}

// NewMCPBridge binds a bridge to state. state's Registry must already
// contain every tool declaration the program has executed (a tool registers
// itself when its declaring statement executes — see the ExecToolDecl
// handler — unlike functions, which are collected at state construction).
func NewMCPBridge(state *engine.RuntimeState) *MCPBridge {
	return &MCPBridge{state: state}
}

// Execute implements engine.ToolExecutor by running the tool's declared
// body to completion (engine.RunToolBody) — the in-process path a `vibe`
// interaction takes when it drives a tool call through the engine's own
// awaiting_tool suspension rather than an external MCP client.
func (b *MCPBridge) Execute(ctx context.Context, tool *registry.ToolDescriptor, args map[string]*values.Value) (*values.Value, error) {
	if tool.Decl == nil {
		return nil, fmt.Errorf("tools: %q has no body to execute", tool.Name)
	}
	return engine.RunToolBody(b.state, tool.Decl, args)
}

// Server builds an MCP server exposing every tool currently registered on
// the bound state's Registry. name/version identify this server to
// connecting MCP clients.
func (b *MCPBridge) Server(name, version string) *mcpsdk.Server {
	srv := mcpsdk.NewServer(&mcpsdk.Implementation{Name: name, Version: version}, nil)
	for _, toolName := range b.registeredToolNames() {
		td, ok := b.state.Registry.LookupTool(toolName)
		if !ok {
			continue
		}
		b.registerMCPTool(srv, td)
	}
	return srv
}

// registeredToolNames snapshots the registry's current tool names; Registry
// exposes no direct enumeration method, so the bridge walks the program's
// top-level tool_stmts instead, which is also how the registry itself was
// populated.
func (b *MCPBridge) registeredToolNames() []string {
	var names []string
	for _, stmt := range b.state.Program.Statements {
		if ts, ok := toolStmtOf(stmt); ok {
			names = append(names, ts.Name)
		}
	}
	return names
}

func (b *MCPBridge) registerMCPTool(srv *mcpsdk.Server, td *registry.ToolDescriptor) {
	mcpTool := &mcpsdk.Tool{
		Name:        td.Name,
		Description: td.Description,
		InputSchema: buildInputSchema(td),
	}
	mcpsdk.AddTool(srv, mcpTool, func(ctx context.Context, req *mcpsdk.CallToolRequest, rawArgs map[string]any) (*mcpsdk.CallToolResult, any, error) {
		args := make(map[string]*values.Value, len(rawArgs))
		for k, v := range rawArgs {
			args[k] = AnyToValue(v)
		}
		result, err := b.Execute(ctx, td, args)
		if err != nil {
			return &mcpsdk.CallToolResult{
				IsError: true,
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
			}, nil, nil
		}
		text := values.ToDisplayString(result)
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
		}, ValueToAny(result), nil
	})
}
