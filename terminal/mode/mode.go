package mode

import (
	"maps"
	"slices"
)

// Mode is a settable terminal mode, addressed by SM/RM (ANSI) or
// DECSET/DECRST (DEC private).
type Mode struct {
	Name  string
	Value int
	// True if this is an ANSI mode
	ANSI    bool
	Default bool
}

func entry(name string, value int, ansi bool, def bool) Mode {
	return Mode{Name: name, Value: value, ANSI: ansi, Default: def}
}

var (
	// ansi modes
	LineFeed = entry("linefeed", 20, true, false) // LNM

	// DEC modes
	Wraparound = entry("wraparound", 7, false, true) // DECAWM

	entries = []Mode{
		LineFeed,
		Wraparound,
	}
)

// FromInt finds the mode addressed by value.
func FromInt(value int, ansi bool) (Mode, bool) {
	i := slices.IndexFunc(entries, func(m Mode) bool {
		return m.Value == value && m.ANSI == ansi
	})
	if i < 0 {
		return Mode{}, false
	}
	return entries[i], true
}

// State holds the current value of every known mode.
type State struct {
	values   map[Mode]bool
	defaults map[Mode]bool
}

// NewState returns a state with every mode at its default, except for the
// ones in overrides. Reset goes back to the same values.
func NewState(overrides map[Mode]bool) *State {
	defaults := make(map[Mode]bool, len(entries))
	for _, m := range entries {
		defaults[m] = m.Default
	}
	maps.Copy(defaults, overrides)
	s := &State{defaults: defaults}
	s.Reset()
	return s
}

func (s *State) Set(m Mode, value bool) {
	s.values[m] = value
}

func (s *State) Get(m Mode) bool {
	return s.values[m]
}

func (s *State) Reset() {
	s.values = maps.Clone(s.defaults)
}
