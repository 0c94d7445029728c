package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ormasoftchile/timemachine/pkg/gamedata"
	"github.com/ormasoftchile/timemachine/pkg/savefile"
)

// ini sections and keys the editor knows about.
const (
	SectionGeneral = "General"
	SectionFlowey  = "FFFFF"

	keyName    = "Name"
	keyRoom    = "Room"
	keyKills   = "Kills"
	keyLove    = "Love"
	keyFun     = "Fun"
	keyFunOld  = "fun"
	keyTrapped = "F"
	keyBattle  = "P"
	keyDeaths  = "D"
)

// PersistentForm is the editable view of the ini file: data that survives
// a reset of the save file.
type PersistentForm struct {
	Name  string `json:"name"`
	Room  int    `json:"room"`
	Kills int    `json:"kills"`
	Love  int    `json:"love"`
	// Omega Flowey state.
	Trapped    bool `json:"trapped"`
	BattleInit bool `json:"battle_init"`
	Deaths     int  `json:"deaths"`
	// Fun is only written when FunSet is true.
	Fun    int  `json:"fun"`
	FunSet bool `json:"fun_set"`
}

func (s *Session) iniInt(section, key string) int {
	v, ok := s.Ini.Get(section, key)
	if !ok {
		return 0
	}
	n, err := savefile.ParseInt(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

// Persistent reads the form from the ini document. Missing or unparsable
// values read as zero.
func (s *Session) Persistent() PersistentForm {
	f := PersistentForm{
		Room:  s.iniInt(SectionGeneral, keyRoom),
		Kills: s.iniInt(SectionGeneral, keyKills),
		Love:  s.iniInt(SectionGeneral, keyLove),
	}
	f.Name, _ = s.Ini.Get(SectionGeneral, keyName)
	if s.Ini.HasSection(SectionFlowey) {
		f.Trapped = s.iniInt(SectionFlowey, keyTrapped) == 1
		f.BattleInit = s.iniInt(SectionFlowey, keyBattle) == 1
		f.Deaths = s.iniInt(SectionFlowey, keyDeaths)
	}
	if _, ok := s.Ini.Get(SectionGeneral, keyFun); ok {
		f.Fun, f.FunSet = s.iniInt(SectionGeneral, keyFun), true
	} else if _, ok := s.Ini.Get(SectionGeneral, keyFunOld); ok {
		f.Fun, f.FunSet = s.iniInt(SectionGeneral, keyFunOld), true
	}
	return f
}

// ApplyPersistent writes the form into the ini document.
//
// The Omega Flowey section is created only when something in it is turned
// on; when it exists, cleared flags are written as "0". A non-zero fun value
// is written as General.Fun, replacing the lower-case key older files use,
// and mirrored into the save record.
func (s *Session) ApplyPersistent(f PersistentForm) error {
	set := func(section, key, value string) error {
		return s.Ini.Set(section, key, value)
	}
	general := []struct{ key, value string }{
		{keyName, f.Name},
		{keyRoom, strconv.Itoa(f.Room)},
		{keyKills, strconv.Itoa(f.Kills)},
		{keyLove, strconv.Itoa(f.Love)},
	}
	for _, kv := range general {
		if err := set(SectionGeneral, kv.key, kv.value); err != nil {
			return err
		}
	}

	flag := func(key string, on bool) error {
		switch {
		case on:
			return set(SectionFlowey, key, "1")
		case s.Ini.HasSection(SectionFlowey):
			return set(SectionFlowey, key, "0")
		}
		return nil
	}
	if err := flag(keyTrapped, f.Trapped); err != nil {
		return err
	}
	if err := flag(keyBattle, f.BattleInit); err != nil {
		return err
	}
	if f.Deaths != 0 {
		if err := set(SectionFlowey, keyDeaths, strconv.Itoa(f.Deaths)); err != nil {
			return err
		}
	}

	if f.FunSet && f.Fun != 0 {
		if err := set(SectionGeneral, keyFun, strconv.Itoa(f.Fun)); err != nil {
			return err
		}
		s.Ini.Delete(SectionGeneral, keyFunOld)
		if s.Save.Len() > 35 {
			if err := s.Save.Set("fun", strconv.Itoa(f.Fun)); err != nil {
				return err
			}
		}
	}
	return nil
}

// FunEvent describes the event unlocked by the session's fun value.
func (s *Session) FunEvent() (int, gamedata.FunEvent, bool) {
	f := s.Persistent()
	if !f.FunSet {
		return 0, gamedata.FunEvent{}, false
	}
	ev, ok := s.opts.Tables.Fun.Event(f.Fun)
	return f.Fun, ev, ok
}

// PersistentKeys lists the form keys accepted by Get and Set, in display
// order.
var PersistentKeys = []string{"name", "room", "kills", "love", "trapped", "battle", "deaths", "fun"}

// Get returns the text of a form key. An unset fun value reads as "-".
func (f PersistentForm) Get(key string) string {
	switch key {
	case "name":
		return f.Name
	case "room":
		return strconv.Itoa(f.Room)
	case "kills":
		return strconv.Itoa(f.Kills)
	case "love":
		return strconv.Itoa(f.Love)
	case "trapped":
		return strconv.FormatBool(f.Trapped)
	case "battle":
		return strconv.FormatBool(f.BattleInit)
	case "deaths":
		return strconv.Itoa(f.Deaths)
	case "fun":
		if !f.FunSet {
			return "-"
		}
		return strconv.Itoa(f.Fun)
	}
	return ""
}

// Set parses value into the named form key.
func (f *PersistentForm) Set(key, value string) error {
	num := func(dst *int) error {
		n, err := savefile.ParseInt(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	flag := func(dst *bool) error {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: expected true or false, got %q", key, value)
		}
		*dst = b
		return nil
	}
	switch key {
	case "name":
		f.Name = value
		return nil
	case "room":
		return num(&f.Room)
	case "kills":
		return num(&f.Kills)
	case "love":
		return num(&f.Love)
	case "trapped":
		return flag(&f.Trapped)
	case "battle":
		return flag(&f.BattleInit)
	case "deaths":
		return num(&f.Deaths)
	case "fun":
		f.FunSet = true
		return num(&f.Fun)
	}
	return fmt.Errorf("unknown persistent key %q", key)
}
