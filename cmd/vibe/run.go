package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/vibelang-org/vibe/engine"
	"github.com/vibelang-org/vibe/programs"
	"github.com/vibelang-org/vibe/runner"
	"github.com/vibelang-org/vibe/tools"
	"github.com/vibelang-org/vibe/values"
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Runs one of the built-in programs to completion",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "program",
			Aliases: []string{"p"},
			Usage:   "Program to run (see `vibe list`)",
			Value:   "greeting",
		},
	},
	Action: runAction,
}

var listCommand = &cli.Command{
	Name:   "list",
	Usage:  "Lists the programs `vibe run` can load",
	Action: listAction,
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	names := make([]string, 0, len(programs.All))
	for name := range programs.All {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-16s %s\n", name, programs.All[name].Description)
	}
	return nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("program")
	p, ok := programs.All[name]
	if !ok {
		return fmt.Errorf("vibe: no program named %q (see `vibe list`)", name)
	}

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("vibe: load config: %w", err)
	}

	state := engine.InitialState(p.Build(), engine.Options{LogAIInteractions: cfg.LogAIInteractions})

	collaborators, closers, err := newCollaborators(ctx, state, cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Printf("vibe: close collaborator: %v", err)
			}
		}
	}()

	driver := runner.New(state, collaborators)
	return driveToTerminal(ctx, driver)
}

// driveToTerminal advances driver as far as its collaborators allow, then
// resolves whatever is left, purely CLI concerns the runner package
// deliberately leaves to the embedder: interactive `ask` prompts and
// tool-call approval.
func driveToTerminal(ctx context.Context, driver *runner.Driver) error {
	bridge := tools.NewMCPBridge(driver.State)
	stdin := bufio.NewReader(os.Stdin)

	for {
		state, err := driver.Advance(ctx)
		if err != nil {
			return fmt.Errorf("vibe: %w", err)
		}

		switch state.Status {
		case engine.StatusCompleted:
			fmt.Println(values.ToDisplayString(state.LastResult))
			return nil
		case engine.StatusError:
			return state.Error
		case engine.StatusAwaitingUser:
			fmt.Print("> ")
			line, _ := stdin.ReadString('\n')
			if _, err := engine.ResumeWithUserInput(state, strings.TrimRight(line, "\n")); err != nil {
				return fmt.Errorf("vibe: %w", err)
			}
		case engine.StatusAwaitingTool:
			if err := resolveToolInProcess(ctx, state, bridge); err != nil {
				return fmt.Errorf("vibe: %w", err)
			}
		default:
			fmt.Printf("vibe: paused in state %s, nothing left to drive it\n", state.Status)
			return nil
		}
	}
}

// resolveToolInProcess runs a requested tool round through the same
// in-process MCPBridge a `vibe` interaction would use if no external MCP
// client had already claimed the round.
func resolveToolInProcess(ctx context.Context, state *engine.RuntimeState, bridge *tools.MCPBridge) error {
	pending := state.PendingTool
	td, ok := state.Registry.LookupTool(pending.Name)
	if !ok {
		_, err := engine.ResumeWithToolResult(state, nil, fmt.Sprintf("tool %q not registered", pending.Name))
		return err
	}
	result, execErr := bridge.Execute(ctx, td, pending.Args)
	if execErr != nil {
		_, err := engine.ResumeWithToolResult(state, nil, execErr.Error())
		return err
	}
	_, err := engine.ResumeWithToolResult(state, result, "")
	return err
}
