package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/timemachine/pkg/preset"
)

var presetCmd = &cobra.Command{
	Use:     "preset",
	Aliases: []string{"presets"},
	Short:   "Manage saved snapshots of the game files",
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		names, err := a.Presets.List()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", n)
		}
		return nil
	},
}

var presetLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Replace the game files with a preset",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, s, err := openSession(cmd)
		if err != nil {
			return err
		}
		p, err := a.Presets.Get(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := s.ApplyPreset(p); err != nil {
			return err
		}
		ops, err := s.SaveAll(cmd.Context())
		reportWrites(cmd, ops)
		return err
	},
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Snapshot the game files as a preset",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, s, err := openSession(cmd)
		if err != nil {
			return err
		}
		name := strings.Join(args, " ")
		if err := a.Presets.Put(cmd.Context(), s.Snapshot(name)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ saved preset %q\n", name)
		return nil
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a preset",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		name := strings.Join(args, " ")
		if err := a.Presets.Delete(cmd.Context(), name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ deleted preset %q\n", name)
		return nil
	},
}

var presetResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace all presets with the built-in ones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		if err := a.Presets.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ presets reset")
		return nil
	},
}

var presetExportOut string

var presetExportCmd = &cobra.Command{
	Use:   "export [name...]",
	Short: "Write presets as a preset file",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if presetExportOut != "" {
			f, err := os.Create(presetExportOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", presetExportOut, err)
			}
			defer f.Close()
			w = f
		}
		return a.Presets.Export(w, args...)
	},
}

var presetImportOverwrite bool

var presetImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge presets from a preset file (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()
			r = f
		}
		names, err := a.Presets.Import(cmd.Context(), r, presetImportOverwrite)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ imported %q\n", n)
		}
		return nil
	},
}

var presetValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a preset file against its schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		f, errs := preset.ValidateBytes(data)
		if len(errs) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed: %d error(s)\n\n", len(errs))
			for i, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
				if e.Path != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "     at: %s\n", e.Path)
				}
			}
			return fmt.Errorf("validation failed with %d error(s)", len(errs))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%d presets)\n", args[0], len(f.Presets))
		return nil
	},
}

var presetSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Export the preset file JSON Schema to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := preset.GenerateJSONSchema()
		if err != nil {
			return fmt.Errorf("generate schema: %w", err)
		}
		// Pretty-print the JSON
		var out json.RawMessage = data
		formatted, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(formatted))
		return nil
	},
}

func init() {
	presetExportCmd.Flags().StringVarP(&presetExportOut, "out", "o", "", "Write to this file instead of stdout")
	presetImportCmd.Flags().BoolVar(&presetImportOverwrite, "overwrite", false, "Replace presets with the same name")

	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetLoadCmd)
	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetDeleteCmd)
	presetCmd.AddCommand(presetResetCmd)
	presetCmd.AddCommand(presetExportCmd)
	presetCmd.AddCommand(presetImportCmd)
	presetCmd.AddCommand(presetValidateCmd)
	presetCmd.AddCommand(presetSchemaCmd)
	rootCmd.AddCommand(presetCmd)
}
