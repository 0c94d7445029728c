package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ormasoftchile/timemachine/pkg/ini"
	"github.com/ormasoftchile/timemachine/pkg/query"
	"github.com/ormasoftchile/timemachine/pkg/safewrite"
	"github.com/ormasoftchile/timemachine/pkg/session"
)

// handleShow lists all fields, or the named ones.
func (sh *Shell) handleShow(names []string) error {
	if len(names) == 0 {
		FormatFields(sh.output, sh.sess.Fields())
		return nil
	}
	var fields []session.FieldValue
	for _, n := range names {
		fv, err := sh.sess.Field(n)
		if err != nil {
			return err
		}
		fields = append(fields, fv)
	}
	FormatFields(sh.output, fields)
	return nil
}

func (sh *Shell) handleGet(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: get <field>")
	}
	fv, err := sh.sess.Field(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.output, "%s\n", fv.Raw)
	if fv.Display != fv.Raw {
		fmt.Fprintf(sh.output, "  %s\n", fv.Display)
	}
	return nil
}

// handleSet stores a value; the rest of the line is the value so names may
// contain spaces.
func (sh *Shell) handleSet(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: set <field> <value>")
	}
	value := strings.Join(args[1:], " ")
	if err := sh.sess.SetField(args[0], value); err != nil {
		return err
	}
	sh.dirty["save"] = true
	fmt.Fprintf(sh.output, "  %s = %s\n", args[0], value)
	return nil
}

func (sh *Shell) handleIni(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: ini show|get <section> <key>|set <section> <key> <value>")
	}
	switch args[0] {
	case "show":
		fmt.Fprint(sh.output, ini.Serialize(sh.sess.Ini))
	case "get":
		if len(args) != 3 {
			return errors.New("usage: ini get <section> <key>")
		}
		v, ok := sh.sess.Ini.Get(args[1], args[2])
		if !ok {
			return fmt.Errorf("%s.%s is not set", args[1], args[2])
		}
		fmt.Fprintf(sh.output, "%s\n", v)
	case "set":
		if len(args) < 4 {
			return errors.New("usage: ini set <section> <key> <value>")
		}
		if err := sh.sess.Ini.Set(args[1], args[2], strings.Join(args[3:], " ")); err != nil {
			return err
		}
		sh.dirty["ini"] = true
	default:
		return fmt.Errorf("unknown ini subcommand %q", args[0])
	}
	return nil
}

// handlePersistent shows the persistent form, or changes one of its values
// with "persistent <key> <value>".
func (sh *Shell) handlePersistent(args []string) error {
	form := sh.sess.Persistent()
	if len(args) == 0 {
		var rows [][2]string
		for _, k := range session.PersistentKeys {
			v := form.Get(k)
			if k == "room" {
				v = fmt.Sprintf("%s (%s)", v, sh.sess.Tables().Rooms.Label(form.Room))
			}
			rows = append(rows, [2]string{k, v})
		}
		FormatRows(sh.output, rows)
		return nil
	}
	if len(args) < 2 {
		return errors.New("usage: persistent <key> <value>")
	}
	if err := form.Set(args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	if err := sh.sess.ApplyPersistent(form); err != nil {
		return err
	}
	sh.dirty["ini"] = true
	if form.FunSet {
		sh.dirty["save"] = true
	}
	return nil
}

func (sh *Shell) handleEval(src string) error {
	if src == "" {
		return errors.New("usage: eval <expression>")
	}
	out, err := query.Eval(sh.sess, src)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.output, "%v\n", out)
	return nil
}

func (sh *Shell) handleWarnings() {
	if len(sh.sess.Warnings) == 0 {
		fmt.Fprintf(sh.output, "No unknown values.\n")
		return
	}
	for _, w := range sh.sess.Warnings {
		fmt.Fprintf(sh.output, "  %v\n", w)
	}
}

func (sh *Shell) handlePlot() {
	n, p, ok := sh.sess.Plot()
	if !ok {
		fmt.Fprintf(sh.output, "plot %d: not available\n", n)
		return
	}
	fmt.Fprintf(sh.output, "plot %d: %s\n  %s\n", n, p.Name, p.Description)
}

func (sh *Shell) handleFun() {
	n, ev, ok := sh.sess.FunEvent()
	if !ok {
		fmt.Fprintf(sh.output, "fun value not set or not available\n")
		return
	}
	FormatRows(sh.output, [][2]string{
		{"value", strconv.Itoa(n)},
		{"event", ev.Name},
		{"description", ev.Description},
		{"chance", ev.Chance},
		{"condition", ev.Condition},
	})
}

func (sh *Shell) handlePreset(ctx context.Context, args []string) error {
	if sh.presets == nil {
		return errors.New("presets are not available")
	}
	if len(args) == 0 {
		return errors.New("usage: preset list|load|save|delete|reset [name]")
	}
	name := strings.Join(args[1:], " ")
	needName := func() error {
		if name == "" {
			return fmt.Errorf("usage: preset %s <name>", args[0])
		}
		return nil
	}
	switch args[0] {
	case "list":
		names, err := sh.presets.List()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintf(sh.output, "  %s\n", n)
		}
	case "load":
		if err := needName(); err != nil {
			return err
		}
		p, err := sh.presets.Get(name)
		if err != nil {
			return err
		}
		if err := sh.sess.ApplyPreset(p); err != nil {
			return err
		}
		sh.dirty["ini"], sh.dirty["save"] = true, true
		fmt.Fprintf(sh.output, "Loaded preset %q.\n", name)
	case "save":
		if err := needName(); err != nil {
			return err
		}
		if err := sh.presets.Put(ctx, sh.sess.Snapshot(name)); err != nil {
			return err
		}
		fmt.Fprintf(sh.output, "Saved preset %q.\n", name)
	case "delete":
		if err := needName(); err != nil {
			return err
		}
		if err := sh.presets.Delete(ctx, name); err != nil {
			return err
		}
		fmt.Fprintf(sh.output, "Deleted preset %q.\n", name)
	case "reset":
		if err := sh.presets.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintf(sh.output, "Presets reset to defaults.\n")
	default:
		return fmt.Errorf("unknown preset subcommand %q", args[0])
	}
	return nil
}

func (sh *Shell) handleMarker(args []string) error {
	if sh.markers == nil {
		return errors.New("markers are not available")
	}
	if len(args) == 0 || args[0] == "status" {
		status, err := sh.markers.Status()
		if err != nil {
			return err
		}
		for _, m := range status {
			state := "absent"
			if m.Exists {
				state = "present"
			}
			fmt.Fprintf(sh.output, "  %s  %s\n", m.Name, state)
		}
		return nil
	}
	if len(args) != 2 {
		return errors.New("usage: marker status|create <n>|delete <n>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("marker number: %w", err)
	}
	switch args[0] {
	case "create":
		return sh.markers.Create(n)
	case "delete":
		return sh.markers.Delete(n)
	}
	return fmt.Errorf("unknown marker subcommand %q", args[0])
}

// handleSave writes the ini file, the save file, or both (default).
func (sh *Shell) handleSave(ctx context.Context, args []string) error {
	which := "all"
	if len(args) > 0 {
		which = args[0]
	}
	var ops []*safewrite.Operation
	var err error
	switch which {
	case "ini":
		var op *safewrite.Operation
		op, err = sh.sess.SaveIni(ctx)
		ops = append(ops, op)
	case "save":
		var op *safewrite.Operation
		op, err = sh.sess.SaveRecord(ctx)
		ops = append(ops, op)
	case "all":
		ops, err = sh.sess.SaveAll(ctx)
	default:
		return fmt.Errorf("usage: save [ini|save|all]")
	}
	for _, op := range ops {
		fmt.Fprintf(sh.output, "  %s: %s\n", op.Path, op.Outcome)
		if op.Outcome == safewrite.OutcomeCommitted {
			switch op.Path {
			case sh.sess.IniPath():
				sh.dirty["ini"] = false
			case sh.sess.SavePath():
				sh.dirty["save"] = false
			}
		}
	}
	return err
}

// handleHelp prints available commands.
func (sh *Shell) handleHelp() {
	fmt.Fprintf(sh.output, `Commands:
  show [field...]              List save fields (alias: ls)
  get <field>                  Print one save field
  set <field> <value>          Change a save field
  ini show                     Print the ini file
  ini get <section> <key>      Print one ini value
  ini set <section> <key> <v>  Change an ini value
  persistent [key value]       Show or change name, room, kills, love,
                               trapped, battle, deaths, fun
  eval <expression>            Evaluate an expression over the fields
  warnings                     List unknown select values
  plot                         Describe the plot value
  fun                          Describe the fun value
  preset list|load|save|delete|reset [name]
  marker status|create <n>|delete <n>
  save [ini|save|all]          Write files with a backup
  help                         Show this help (alias: ?)
  quit                         Exit (alias: q)
`)
}
