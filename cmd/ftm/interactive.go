package main

import (
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/timemachine/pkg/shell"
	"github.com/ormasoftchile/timemachine/pkg/tui"
)

// --- shell ---

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Edit the game files in an interactive prompt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, s, err := openSession(cmd)
		if err != nil {
			return err
		}
		sh := shell.New(s, a.Presets, a.Markers)
		sh.SetOutput(cmd.OutOrStdout())
		return sh.Run(cmd.Context())
	},
}

// --- tui ---

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Edit the game files in a full-screen terminal UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, s, err := openSession(cmd)
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), tui.Config{Session: s, Log: a.Log})
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(tuiCmd)
}
