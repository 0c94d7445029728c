package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/timemachine/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report changes the game makes to its files",
	Long: `Watch the ini and save files and print a line whenever their content
changes, followed by any unknown values the new content holds. Stops on
Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	w, err := watch.New(a.Config.IniPath(), a.Config.SavePath())
	if err != nil {
		return err
	}
	w.Log = a.Log

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "watching %s\n", a.Config.Game.Dir)
	for ev := range w.Run(cmd.Context()) {
		fmt.Fprintf(out, "%s  %s %s\n", ev.Time.Format(time.TimeOnly), statusIcon(ev.Op), filepath.Base(ev.Path))
		if ev.Op == watch.OpRemoved {
			continue
		}
		s, err := a.LoadSession(cmd.Context())
		if err != nil {
			fmt.Fprintf(out, "          ! %v\n", err)
			continue
		}
		for _, u := range s.Warnings {
			fmt.Fprintf(out, "          ⚠ %s\n", u)
		}
	}
	return nil
}

func statusIcon(op watch.Op) string {
	switch op {
	case watch.OpCreated:
		return "+"
	case watch.OpChanged:
		return "~"
	case watch.OpRemoved:
		return "-"
	default:
		return "?"
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
