// Package main provides the ftm-tui binary: the interactive editor on its
// own, without the rest of the ftm command tree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"

	"github.com/ormasoftchile/timemachine/pkg/config"
	"github.com/ormasoftchile/timemachine/pkg/tui"
	"github.com/ormasoftchile/timemachine/pkg/workspace"
)

var version = "dev"

// Args represents command-line arguments
type Args struct {
	Config   string `arg:"--config" help:"Path to config file"`
	EnvFile  string `arg:"--env-file" help:"Load environment variables from this file instead of ./.env"`
	GameDir  string `arg:"--game-dir" help:"Directory holding the game's files"`
	CacheDir string `arg:"--cache-dir" help:"Directory for presets, backups and the trace"`
	LogLevel string `arg:"--log-level" help:"Log level: debug, info, warn or error"`
	NoTrace  bool   `arg:"--no-trace" help:"Do not append to the audit trail"`
}

// Version satisfies go-arg's --version flag.
func (Args) Version() string { return "ftm-tui " + version }

// loadOptions turns the arguments into configuration overrides.
func (a Args) loadOptions() config.LoadOptions {
	overrides := map[string]any{}
	if a.GameDir != "" {
		overrides["game.dir"] = a.GameDir
	}
	if a.CacheDir != "" {
		overrides["cache.dir"] = a.CacheDir
	}
	if a.LogLevel != "" {
		overrides["logging.level"] = a.LogLevel
	}
	if a.NoTrace {
		overrides["trace.enabled"] = false
	}
	return config.LoadOptions{ConfigFile: a.Config, EnvFile: a.EnvFile, Overrides: overrides}
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
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ws, err := workspace.Open(args.loadOptions())
	if err != nil {
		return err
	}
	defer ws.Close()

	s, err := ws.LoadSession(ctx)
	if err != nil {
		return err
	}
	return tui.Run(ctx, tui.Config{Session: s, Log: ws.Log})
}
