package gamedata

import (
	"fmt"
	"strconv"
	"strings"
)

// FunTable maps every covered fun value to its event. Values above Max
// resolve to the open-ended entry.
type FunTable struct {
	events map[int]FunEvent
	Max    int
}

// expandFun turns keys of the form "n", "a-b" and ">n" into one entry per
// value. An open ">n" key covers n itself and is recorded as the maximum.
func expandFun(raw map[string]FunEvent) (FunTable, error) {
	t := FunTable{events: make(map[int]FunEvent)}
	for key, ev := range raw {
		key = strings.TrimSpace(key)
		switch {
		case strings.HasPrefix(key, ">"):
			n, err := strconv.Atoi(key[1:])
			if err != nil {
				return FunTable{}, fmt.Errorf("fun key %q: %w", key, err)
			}
			t.events[n] = ev
			if n > t.Max {
				t.Max = n
			}
		case strings.Contains(key, "-"):
			lo, hi, _ := strings.Cut(key, "-")
			a, err := strconv.Atoi(lo)
			if err != nil {
				return FunTable{}, fmt.Errorf("fun key %q: %w", key, err)
			}
			b, err := strconv.Atoi(hi)
			if err != nil {
				return FunTable{}, fmt.Errorf("fun key %q: %w", key, err)
			}
			if b < a {
				return FunTable{}, fmt.Errorf("fun key %q: empty range", key)
			}
			for v := a; v <= b; v++ {
				t.events[v] = ev
			}
			if b > t.Max {
				t.Max = b
			}
		default:
			n, err := strconv.Atoi(key)
			if err != nil {
				return FunTable{}, fmt.Errorf("fun key %q: %w", key, err)
			}
			t.events[n] = ev
			if n > t.Max {
				t.Max = n
			}
		}
	}
	return t, nil
}

// Event returns the event for a fun value. Values above Max are clamped.
func (t FunTable) Event(v int) (FunEvent, bool) {
	if v > t.Max {
		v = t.Max
	}
	ev, ok := t.events[v]
	return ev, ok
}

// Len returns the number of covered values.
func (t FunTable) Len() int { return len(t.events) }
