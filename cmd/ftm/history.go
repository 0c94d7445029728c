package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/timemachine/pkg/trace"
)

var (
	historyRun   string
	historyType  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the audit trail of saves, presets and markers",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	path := a.Config.TracePath()
	if path == "" {
		return errors.New("tracing is disabled")
	}
	events, err := trace.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(cmd.OutOrStdout(), "no history yet")
			return nil
		}
		return err
	}

	var kept []trace.Event
	for _, e := range events {
		if historyRun != "" && !strings.HasPrefix(e.RunID, historyRun) {
			continue
		}
		if historyType != "" && string(e.Type) != historyType {
			continue
		}
		kept = append(kept, e)
	}
	if historyLimit > 0 && len(kept) > historyLimit {
		kept = kept[len(kept)-historyLimit:]
	}
	writeHistory(cmd.OutOrStdout(), kept)
	return nil
}

// writeHistory prints one line per event: time, short run id, type and the
// event's data in key order.
func writeHistory(w io.Writer, events []trace.Event) {
	for _, e := range events {
		run := e.RunID
		if len(run) > 8 {
			run = run[:8]
		}
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Data[k]))
		}
		fmt.Fprintf(w, "%s  %-8s  %-13s  %s\n",
			e.Timestamp.Local().Format(time.DateTime), run, e.Type, strings.Join(parts, " "))
	}
}

func init() {
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Only events of this run ID (prefix)")
	historyCmd.Flags().StringVar(&historyType, "type", "", "Only events of this type, e.g. save_complete")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Show at most this many of the latest events (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
