package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/timemachine/pkg/markers"
	"github.com/ormasoftchile/timemachine/pkg/workspace"
)

var markerCmd = &cobra.Command{
	Use:     "marker",
	Aliases: []string{"markers"},
	Short:   "Show, create or delete the system_information marker files",
}

var markerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which marker files exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		ms, err := a.Markers.Status()
		if err != nil {
			return err
		}
		for _, m := range ms {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", markerIcon(m), m.Name)
		}
		return nil
	},
}

var markerCreateCmd = &cobra.Command{
	Use:   "create <number>",
	Short: "Create a marker file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, n, err := markerArg(args[0])
		if err != nil {
			return err
		}
		if err := a.Markers.Create(n); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ created %s\n", markers.Name(n))
		return nil
	},
}

var markerDeleteCmd = &cobra.Command{
	Use:   "delete <number>",
	Short: "Delete a marker file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, n, err := markerArg(args[0])
		if err != nil {
			return err
		}
		if err := a.Markers.Delete(n); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ deleted %s\n", markers.Name(n))
		return nil
	},
}

func markerArg(s string) (*workspace.Workspace, int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, 0, fmt.Errorf("marker number: %w", err)
	}
	a, err := getApp()
	if err != nil {
		return nil, 0, err
	}
	return a, n, nil
}

func markerIcon(m markers.Marker) string {
	if m.Exists {
		return "●"
	}
	return "○"
}

func init() {
	markerCmd.AddCommand(markerStatusCmd)
	markerCmd.AddCommand(markerCreateCmd)
	markerCmd.AddCommand(markerDeleteCmd)
	rootCmd.AddCommand(markerCmd)
}
