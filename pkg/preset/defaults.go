package preset

import (
	"strconv"

	"github.com/ormasoftchile/timemachine/pkg/savefile"
)

// Defaults returns the built-in presets a fresh store starts with.
func Defaults() *File {
	return &File{
		APIVersion: APIVersion,
		Presets: []Preset{
			newGame("New game", nil, nil),
			newGame("Ruins cleared", map[string]string{
				"love": "1", "exp": "0", "gold": "20", "inv1": "1", "cell1": "203",
				"cell2": "202", "toriel": "4", "plot": "9", "have_cell": "true", "location": "44",
			}, map[string]string{"Room": "44"}),
			newGame("Undyne's house", map[string]string{
				"love": "1", "gold": "200", "weapon": "25", "armor": "24", "weapon_at": "7",
				"armor_df": "10", "papyrus": "2", "undyne1": "2", "plot": "122", "have_cell": "true",
				"location": "128",
			}, map[string]string{"Room": "128"}),
		},
	}
}

// newGame builds a preset from a fresh-game record and ini with overrides.
// Override keys are save field names and General ini keys.
func newGame(name string, fields, general map[string]string) Preset {
	lines := make([]string, savefile.StandardLength)
	for i := range lines {
		lines[i] = "0"
	}
	rec := savefile.FromLines(lines)
	base := map[string]string{
		"name": "Frisk", "love": "1", "hp": "20", "attack": "10", "defense": "10",
		"weapon": "3", "armor": "4", "location": "4",
	}
	for k, v := range base {
		_ = rec.Set(k, v)
	}
	_ = rec.SetLine(3, "20") // max HP
	for k, v := range fields {
		_ = rec.Set(k, v)
	}

	room, _ := rec.Int("location")
	ini := []Entry{
		{Key: "Name", Value: "Frisk"},
		{Key: "Love", Value: "1"},
		{Key: "Room", Value: strconv.Itoa(room)},
		{Key: "Kills", Value: "0"},
		{Key: "Time", Value: "0"},
	}
	for i, e := range ini {
		if v, ok := general[e.Key]; ok {
			ini[i].Value = v
		}
	}
	return Preset{
		Name:  name,
		Ini:   []Section{{Name: "General", Values: ini}},
		Lines: rec.Lines(),
	}
}
