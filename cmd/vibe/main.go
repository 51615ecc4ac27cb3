// Command vibe runs the AI-native scripting language's execution engine:
// `vibe run` drives one of the built-in programs to completion on the
// terminal, `vibe serve` exposes the same engine over HTTP/WS, and
// `vibe mcp-serve` exposes a program's declared tools to an external MCP
// client. The language's own lexer/parser is an external collaborator this
// module never builds (see package programs); every program vibe can load
// is one of that package's fixed, hand-authored entries.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/vibelang-org/vibe/version"
)

func main() {
	app := &cli.Command{
		Name:  "vibe",
		Usage: "Runs programs written in the vibe scripting language",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a vibe.yaml project config file",
				Value: "vibe.yaml",
			},
		},
		Commands: []*cli.Command{
			runCommand,
			listCommand,
			serveCommand,
			mcpServeCommand,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Println(version.Version())
			return cli.ShowAppHelp(cmd)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
