// Package main provides the ftm-mcp binary: the editor's tools served to
// AI agents over MCP on stdio.
package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/timemachine/pkg/config"
	gmcp "github.com/ormasoftchile/timemachine/pkg/mcp"
	"github.com/ormasoftchile/timemachine/pkg/workspace"
)

var version = "dev"

// Args represents command-line arguments
type Args struct {
	Config   string `arg:"--config" help:"Path to config file"`
	EnvFile  string `arg:"--env-file" help:"Load environment variables from this file instead of ./.env"`
	GameDir  string `arg:"--game-dir" help:"Directory holding the game's files"`
	CacheDir string `arg:"--cache-dir" help:"Directory for presets, backups and the trace"`
}

func main() {
	var args Args
	arg.MustParse(&args)

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(workspace.ExitCode(err))
	}
}

func run(args Args) error {
	overrides := map[string]any{}
	if args.GameDir != "" {
		overrides["game.dir"] = args.GameDir
	}
	if args.CacheDir != "" {
		overrides["cache.dir"] = args.CacheDir
	}
	ws, err := workspace.Open(config.LoadOptions{
		ConfigFile: args.Config,
		EnvFile:    args.EnvFile,
		Overrides:  overrides,
	})
	if err != nil {
		return err
	}
	defer ws.Close()

	s := gmcp.NewServer(version, &gmcp.Handlers{
		Load:    ws.LoadSession,
		Presets: ws.Presets,
		Markers: ws.Markers,
		Log:     ws.Log.WithComponent("mcp"),
	})
	// stdout carries the protocol; logs go to stderr.
	return server.ServeStdio(s)
}
