package main

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"

	"github.com/vibelang-org/vibe/engine"
	"github.com/vibelang-org/vibe/programs"
	"github.com/vibelang-org/vibe/tools"
	"github.com/vibelang-org/vibe/version"
)

var mcpServeCommand = &cli.Command{
	Name:  "mcp-serve",
	Usage: "Exposes a program's tool declarations to an MCP client over stdio",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "program",
			Aliases: []string{"p"},
			Usage:   "Program whose `tool` declarations to expose (see `vibe list`)",
			Value:   "weather-tool",
		},
	},
	Action: mcpServeAction,
}

// mcpServeAction runs program just far enough to register its top-level
// tool declarations (RunUntilPause stops at the program's first suspension,
// by which point every tool_stmt it led with has already executed and
// registered itself — see the tool_stmt handler), then serves those same
// tools to an MCP client over stdio. A program with nothing left to suspend
// on before its tools are declared completes outright, which is fine: the
// bridge only needs the Registry state RunUntilPause leaves behind.
func mcpServeAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("program")
	p, ok := programs.All[name]
	if !ok {
		return fmt.Errorf("vibe: no program named %q (see `vibe list`)", name)
	}

	state := engine.InitialState(p.Build(), engine.Options{})
	state = engine.RunUntilPause(state)
	if state.Status == engine.StatusError {
		return fmt.Errorf("vibe: %w", state.Error)
	}

	bridge := tools.NewMCPBridge(state)
	srv := bridge.Server("vibe-"+name, version.Version())

	return srv.Run(ctx, &mcpsdk.StdioTransport{})
}
