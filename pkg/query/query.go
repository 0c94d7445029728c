// Package query evaluates expressions over a session's save fields and ini
// values, e.g. `gold > 100 && weapon == 13` or `ini.General.Name`.
package query

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/ormasoftchile/timemachine/pkg/savefile"
	"github.com/ormasoftchile/timemachine/pkg/session"
)

// Env builds the expression environment. Number and select fields are
// ints when they parse, flags are bools and everything else is a string.
// Functions: line(n) returns raw 1-based line n, label(name) returns a
// field's display text.
func Env(s *session.Session) map[string]any {
	env := make(map[string]any, len(savefile.Fields)+3)
	for _, fv := range s.Fields() {
		switch fv.Field.Kind {
		case savefile.KindNumber, savefile.KindSelect:
			if n, err := savefile.ParseInt(fv.Raw); err == nil {
				env[fv.Field.Name] = n
				continue
			}
			env[fv.Field.Name] = fv.Raw
		case savefile.KindFlag:
			env[fv.Field.Name] = fv.Display == "on"
		default:
			env[fv.Field.Name] = fv.Raw
		}
	}

	sections := map[string]any{}
	for _, name := range s.Ini.Sections() {
		entries, _ := s.Ini.Section(name)
		values := make(map[string]any, len(entries))
		for _, e := range entries {
			values[e.Key] = e.Value
		}
		sections[name] = values
	}
	env["ini"] = sections

	env["line"] = func(n int) string {
		v, err := s.Save.Line(n - 1)
		if err != nil {
			return ""
		}
		return v
	}
	env["label"] = func(name string) string {
		fv, err := s.Field(name)
		if err != nil {
			return ""
		}
		return fv.Display
	}
	return env
}

// Eval compiles and runs src against the session.
func Eval(s *session.Session, src string) (any, error) {
	env := Env(s)
	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", src, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("eval expression %q: %w", src, err)
	}
	return out, nil
}

// Match evaluates a boolean condition against the session.
func Match(s *session.Session, src string) (bool, error) {
	env := Env(s)
	program, err := expr.Compile(src, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compile condition %q: %w", src, err)
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("eval condition %q: %w", src, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not return bool (got %T: %v)", src, output, output)
	}
	return result, nil
}
