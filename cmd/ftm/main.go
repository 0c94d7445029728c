// Package main provides the ftm binary: a command-line editor for the
// game's save and ini files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/timemachine/pkg/config"
	"github.com/ormasoftchile/timemachine/pkg/safewrite"
	"github.com/ormasoftchile/timemachine/pkg/session"
	"github.com/ormasoftchile/timemachine/pkg/workspace"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer closeApp()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return workspace.ExitCode(err)
	}
	return 0
}

var (
	flagConfig   string
	flagEnvFile  string
	flagGameDir  string
	flagCacheDir string
	flagLogLevel string
	flagNoTrace  bool
)

var rootCmd = &cobra.Command{
	Use:          "ftm",
	Short:        "Flowey's Time Machine",
	Long:         "ftm edits the game's save file and the persistent ini file. Every write is backed up first and restored on failure.",
	SilenceUsage: true,
}

var current *workspace.Workspace

// getApp loads configuration and builds the shared collaborators once per
// process.
func getApp() (*workspace.Workspace, error) {
	if current != nil {
		return current, nil
	}
	overrides := map[string]any{}
	if flagGameDir != "" {
		overrides["game.dir"] = flagGameDir
	}
	if flagCacheDir != "" {
		overrides["cache.dir"] = flagCacheDir
	}
	if flagLogLevel != "" {
		overrides["logging.level"] = flagLogLevel
	}
	if flagNoTrace {
		overrides["trace.enabled"] = false
	}
	ws, err := workspace.Open(config.LoadOptions{
		ConfigFile: flagConfig,
		EnvFile:    flagEnvFile,
		Overrides:  overrides,
	})
	if err != nil {
		return nil, err
	}
	current = ws
	return current, nil
}

func closeApp() {
	if current == nil {
		return
	}
	_ = current.Close()
	current = nil
}

// openSession is the common prologue of commands that work on the game
// files.
func openSession(cmd *cobra.Command) (*workspace.Workspace, *session.Session, error) {
	a, err := getApp()
	if err != nil {
		return nil, nil, err
	}
	s, err := a.LoadSession(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	for _, w := range s.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "  ⚠ %s\n", w)
	}
	return a, s, nil
}

// reportWrites prints one line per completed write.
func reportWrites(cmd *cobra.Command, ops []*safewrite.Operation) {
	for _, op := range ops {
		if op != nil && op.Outcome == safewrite.OutcomeCommitted {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ wrote %s\n", op.Path)
		}
	}
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ftm %s (build: %s)\n", version, commit)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default: timemachine.yaml in . or the user config dir)")
	pf.StringVar(&flagEnvFile, "env-file", "", "Load environment variables from this file instead of ./.env")
	pf.StringVar(&flagGameDir, "game-dir", "", "Directory holding the game's files (overrides FTM_GAME_DIR)")
	pf.StringVar(&flagCacheDir, "cache-dir", "", "Directory for presets, backups and the trace (overrides FTM_CACHE_DIR)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.BoolVar(&flagNoTrace, "no-trace", false, "Do not append to the audit trail")

	rootCmd.AddCommand(versionCmd)
}
