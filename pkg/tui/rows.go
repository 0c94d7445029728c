package tui

import (
	"strconv"

	"github.com/ormasoftchile/timemachine/pkg/savefile"
	"github.com/ormasoftchile/timemachine/pkg/session"
)

// pane selects which set of values the list shows.
type pane int

const (
	paneSave pane = iota
	paneIni
)

func (p pane) String() string {
	if p == paneIni {
		return "ini"
	}
	return "save"
}

// row is one editable value in the list.
type row struct {
	key     string
	label   string
	value   string
	hint    string
	unknown bool
	line    int // 1-based save line, 0 for ini rows
	kind    savefile.Kind
}

var iniLabels = map[string]string{
	"name":    "Name",
	"room":    "Room",
	"kills":   "Kills",
	"love":    "LOVE",
	"trapped": "Trapped (Omega Flowey)",
	"battle":  "Battle started",
	"deaths":  "Deaths",
	"fun":     "Fun",
}

func saveRows(s *session.Session) []row {
	fields := s.Fields()
	rows := make([]row, 0, len(fields))
	for _, fv := range fields {
		r := row{
			key:     fv.Field.Name,
			label:   fv.Field.Label,
			value:   fv.Raw,
			unknown: fv.Unknown,
			line:    fv.Field.Line(),
			kind:    fv.Field.Kind,
		}
		if fv.Display != fv.Raw && !fv.Unknown {
			r.hint = fv.Display
		}
		switch fv.Field.Name {
		case "plot":
			if _, p, ok := s.Plot(); ok {
				r.hint = p.Name
			}
		case "fun":
			if n, err := savefile.ParseInt(fv.Raw); err == nil && n != 0 {
				if ev, ok := s.Tables().Fun.Event(n); ok {
					r.hint = ev.Name
				}
			}
		}
		rows = append(rows, r)
	}
	return rows
}

func iniRows(s *session.Session) []row {
	form := s.Persistent()
	rows := make([]row, 0, len(session.PersistentKeys))
	for _, k := range session.PersistentKeys {
		r := row{key: k, label: iniLabels[k], value: form.Get(k), kind: savefile.KindNumber}
		switch k {
		case "name":
			r.kind = savefile.KindText
		case "trapped", "battle":
			r.kind = savefile.KindFlag
		case "room":
			r.hint = s.Tables().Rooms.Label(form.Room)
			if r.hint == r.value {
				r.hint = ""
			}
		case "fun":
			if form.FunSet {
				if ev, ok := s.Tables().Fun.Event(form.Fun); ok {
					r.hint = ev.Name
				}
			}
		}
		rows = append(rows, r)
	}
	return rows
}

// nextOption returns the option after (delta > 0) or before cur, wrapping
// at either end. values must be sorted.
func nextOption(values []int, cur, delta int) int {
	if len(values) == 0 {
		return cur
	}
	if delta > 0 {
		for _, v := range values {
			if v > cur {
				return v
			}
		}
		return values[0]
	}
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] < cur {
			return values[i]
		}
	}
	return values[len(values)-1]
}

// stepValue computes the value + or - moves a row to.
func stepValue(s *session.Session, r row, delta int) (string, bool) {
	switch r.kind {
	case savefile.KindText:
		return "", false
	case savefile.KindFlag:
		on := r.value == "true" || r.hint == "on"
		return strconv.FormatBool(!on), true
	case savefile.KindSelect:
		opts, ok := s.Options(r.key)
		if !ok {
			return "", false
		}
		n, _ := savefile.ParseInt(r.value)
		return strconv.Itoa(nextOption(opts.Values(), n, delta)), true
	}
	n, err := savefile.ParseInt(r.value)
	if err != nil {
		n = 0
	}
	return strconv.Itoa(n + delta), true
}
