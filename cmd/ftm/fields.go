package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/timemachine/pkg/query"
	"github.com/ormasoftchile/timemachine/pkg/safewrite"
	"github.com/ormasoftchile/timemachine/pkg/session"
	"github.com/ormasoftchile/timemachine/pkg/shell"
)

// --- show ---

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [field...]",
	Short: "List save fields with their values",
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	_, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	fields := s.Fields()
	if len(args) > 0 {
		fields = nil
		for _, name := range args {
			fv, err := s.Field(name)
			if err != nil {
				return err
			}
			fields = append(fields, fv)
		}
	}
	if !showJSON {
		shell.FormatFields(cmd.OutOrStdout(), fields)
		return nil
	}

	type fieldOut struct {
		Line    int    `json:"line"`
		Kind    string `json:"kind"`
		Raw     string `json:"raw"`
		Display string `json:"display"`
		Unknown bool   `json:"unknown,omitempty"`
	}
	out := make(map[string]fieldOut, len(fields))
	for _, fv := range fields {
		out[fv.Field.Name] = fieldOut{fv.Field.Line(), fv.Field.Kind.String(), fv.Raw, fv.Display, fv.Unknown}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// --- get ---

var getCmd = &cobra.Command{
	Use:   "get <field>",
	Short: "Print one save field",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	_, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	fv, err := s.Field(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), fv.Raw)
	if fv.Display != fv.Raw {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", fv.Display)
	}
	return nil
}

// --- set ---

var setDryRun bool

var setCmd = &cobra.Command{
	Use:   "set <field> <value> [<field> <value>...]",
	Short: "Change save fields and write the save file",
	Long: `Change one or more save fields and write the save file.

Select fields (weapon, armor, inventory, cell, location and boss states)
only accept values from their option table. Setting a weapon or armor also
updates its AT or DF.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return errors.New("expected field/value pairs")
		}
		return nil
	},
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	_, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	for i := 0; i < len(args); i += 2 {
		if err := s.SetField(args[i], args[i+1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", args[i], args[i+1])
	}
	if setDryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "dry run: nothing written")
		return nil
	}
	op, err := s.SaveRecord(cmd.Context())
	if err != nil {
		return err
	}
	reportWrites(cmd, []*safewrite.Operation{op})
	return nil
}

// --- info ---

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize the save: name, LOVE, location, plot and fun",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	_, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	name, _ := s.Save.Get("name")
	love, _ := s.Save.Get("love")
	rows := [][2]string{{"name", name}, {"love", love}}
	if room, label, err := s.Location(); err == nil {
		rows = append(rows, [2]string{"location", fmt.Sprintf("%d (%s)", room, label)})
	}
	if n, p, ok := s.Plot(); ok {
		rows = append(rows, [2]string{"plot", fmt.Sprintf("%d (%s)", n, p.Name)})
	}
	if n, ev, ok := s.FunEvent(); ok {
		rows = append(rows, [2]string{"fun", fmt.Sprintf("%d (%s)", n, ev.Name)})
	}
	rows = append(rows, [2]string{"warnings", strconv.Itoa(len(s.Warnings))})
	shell.FormatRows(cmd.OutOrStdout(), rows)
	return nil
}

// --- eval ---

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression over save fields and ini values",
	Long: `Evaluate an expression over the loaded files. Save fields are variables
(gold, weapon, have_cell, ...), ini values are under ini.<section>.<key>,
line(n) returns raw line n and label(field) returns an option label.`,
	Example: `  ftm eval 'gold > 100 && weapon == 13'
  ftm eval 'ini.General.Name'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func runEval(cmd *cobra.Command, args []string) error {
	_, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	out, err := query.Eval(s, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// --- persistent ---

var persistentCmd = &cobra.Command{
	Use:   "persistent [<key> <value>]",
	Short: "Show or change values that survive a reset",
	Long: `Show the persistent ini values, or change one and write the ini file.
Keys: ` + strings.Join(session.PersistentKeys, ", ") + `.
A non-zero fun value is mirrored into the save file.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return errors.New("expected a key and a value")
		}
		return nil
	},
	RunE: runPersistent,
}

func runPersistent(cmd *cobra.Command, args []string) error {
	_, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	form := s.Persistent()
	if len(args) == 0 {
		rows := make([][2]string, 0, len(session.PersistentKeys))
		for _, k := range session.PersistentKeys {
			rows = append(rows, [2]string{k, form.Get(k)})
		}
		shell.FormatRows(cmd.OutOrStdout(), rows)
		return nil
	}
	if err := form.Set(args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	if err := s.ApplyPersistent(form); err != nil {
		return err
	}
	if form.FunSet && form.Fun != 0 {
		ops, err := s.SaveAll(cmd.Context())
		reportWrites(cmd, ops)
		return err
	}
	op, err := s.SaveIni(cmd.Context())
	reportWrites(cmd, []*safewrite.Operation{op})
	return err
}

// --- ini ---

var iniCmd = &cobra.Command{
	Use:   "ini",
	Short: "Raw access to the ini file",
}

var iniShowCmd = &cobra.Command{
	Use:   "show [section]",
	Short: "Print the ini file, or one section",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, err := openSession(cmd)
		if err != nil {
			return err
		}
		sections := s.Ini.Sections()
		if len(args) == 1 {
			if !s.Ini.HasSection(args[0]) {
				return fmt.Errorf("no section %q", args[0])
			}
			sections = args
		}
		for _, name := range sections {
			entries, _ := s.Ini.Section(name)
			fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n", name)
			rows := make([][2]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, [2]string{e.Key, e.Value})
			}
			shell.FormatRows(cmd.OutOrStdout(), rows)
		}
		return nil
	},
}

var iniGetCmd = &cobra.Command{
	Use:   "get <section> <key>",
	Short: "Print one ini value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, err := openSession(cmd)
		if err != nil {
			return err
		}
		v, ok := s.Ini.Get(args[0], args[1])
		if !ok {
			return fmt.Errorf("no key %s.%s", args[0], args[1])
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var iniSetCmd = &cobra.Command{
	Use:   "set <section> <key> <value>",
	Short: "Change one ini value and write the ini file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, s, err := openSession(cmd)
		if err != nil {
			return err
		}
		if err := s.Ini.Set(args[0], args[1], args[2]); err != nil {
			return err
		}
		op, err := s.SaveIni(cmd.Context())
		reportWrites(cmd, []*safewrite.Operation{op})
		return err
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	setCmd.Flags().BoolVar(&setDryRun, "dry-run", false, "Validate the changes without writing")

	iniCmd.AddCommand(iniShowCmd)
	iniCmd.AddCommand(iniGetCmd)
	iniCmd.AddCommand(iniSetCmd)

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(persistentCmd)
	rootCmd.AddCommand(iniCmd)
}
