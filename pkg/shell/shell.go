// Package shell implements the interactive editing REPL.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ormasoftchile/timemachine/pkg/markers"
	"github.com/ormasoftchile/timemachine/pkg/preset"
	"github.com/ormasoftchile/timemachine/pkg/savefile"
	"github.com/ormasoftchile/timemachine/pkg/session"
)

// errQuit ends the loop.
var errQuit = errors.New("quit")

// Shell provides an interactive REPL over one edit session.
type Shell struct {
	sess    *session.Session
	presets *preset.Store
	markers *markers.Store
	output  io.Writer
	rl      *readline.Instance
	// dirty tracks unsaved edits per file: "ini" and "save".
	dirty map[string]bool
}

// New creates a shell. presets and marks may be nil, which disables the
// matching commands.
func New(sess *session.Session, presets *preset.Store, marks *markers.Store) *Shell {
	return &Shell{
		sess:    sess,
		presets: presets,
		markers: marks,
		output:  os.Stdout,
		dirty:   map[string]bool{},
	}
}

// SetOutput redirects command output.
func (sh *Shell) SetOutput(w io.Writer) { sh.output = w }

var commands = []string{"show", "ini show", "ini get", "ini set", "persistent",
	"eval", "warnings", "plot", "fun", "preset list", "preset load", "preset save",
	"preset delete", "preset reset", "marker status", "marker create", "marker delete",
	"save", "help", "quit"}

// Run starts the interactive REPL loop.
func (sh *Shell) Run(ctx context.Context) error {
	var completer = readline.NewPrefixCompleter()
	for _, cmd := range commands {
		completer.Children = append(completer.Children, readline.PcItem(cmd))
	}
	fields := make([]readline.PrefixCompleterInterface, 0, len(savefile.Fields))
	for _, f := range savefile.Fields {
		fields = append(fields, readline.PcItem(f.Name))
	}
	completer.Children = append(completer.Children,
		readline.PcItem("get", fields...), readline.PcItem("set", fields...))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          sh.buildPrompt(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	sh.rl = rl
	defer rl.Close()

	fmt.Fprintf(sh.output, "timemachine shell: %s, %d save lines\n", sh.sess.SavePath(), sh.sess.Save.Len())
	if n := len(sh.sess.Warnings); n > 0 {
		fmt.Fprintf(sh.output, "%d unknown values; type 'warnings' to list them.\n", n)
	}
	fmt.Fprintf(sh.output, "Type 'help' for available commands.\n\n")

	for {
		rl.SetPrompt(sh.buildPrompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}
		if err := sh.Exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(sh.output, "Error: %v\n", err)
		}
	}
}

// Exec runs a single command line.
func (sh *Shell) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	parts := strings.Fields(line)
	cmd := parts[0]

	switch cmd {
	case "show", "ls":
		return sh.handleShow(parts[1:])
	case "get", "g":
		return sh.handleGet(parts[1:])
	case "set", "s":
		return sh.handleSet(parts[1:])
	case "ini":
		return sh.handleIni(parts[1:])
	case "persistent", "form":
		return sh.handlePersistent(parts[1:])
	case "eval", "e":
		return sh.handleEval(strings.TrimSpace(strings.TrimPrefix(line, cmd)))
	case "warnings", "w":
		sh.handleWarnings()
	case "plot":
		sh.handlePlot()
	case "fun":
		sh.handleFun()
	case "preset":
		return sh.handlePreset(ctx, parts[1:])
	case "marker":
		return sh.handleMarker(parts[1:])
	case "save":
		return sh.handleSave(ctx, parts[1:])
	case "help", "?":
		sh.handleHelp()
	case "quit", "q", "exit":
		if sh.dirty["ini"] || sh.dirty["save"] {
			fmt.Fprintf(sh.output, "Unsaved changes discarded.\n")
		}
		fmt.Fprintf(sh.output, "Bye.\n")
		return errQuit
	default:
		fmt.Fprintf(sh.output, "Unknown command: %q. Type 'help' for available commands.\n", cmd)
	}
	return nil
}

// buildPrompt creates the prompt string: ftm[name LV n | *]>
func (sh *Shell) buildPrompt() string {
	name, _ := sh.sess.Save.Get("name")
	love, _ := sh.sess.Save.Get("love")
	mark := ""
	if sh.dirty["ini"] || sh.dirty["save"] {
		mark = " | *"
	}
	return fmt.Sprintf("ftm[%s LV%s%s]> ", name, love, mark)
}
