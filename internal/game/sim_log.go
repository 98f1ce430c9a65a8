package game

import (
	"fmt"
	"slices"
	"strings"
)

// SimLogEntry is one recorded event during a simulation run.
type SimLogEntry struct {
	Tick     int
	Agent    string  // label e.g. "R0", "P", or "--" for world events
	Kind     string  // "player", "rescuer", or "--"
	Category string  // mission, path, steer, move, world
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] R0   mission   pickup           picked up victim#3
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Agent, e.Category, e.Key, e.Value)
}

// SimLog collects structured events for tests and the headless report.
// Unlike ThoughtLog it is unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick movement entries
// are recorded as well.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Verbose reports whether per-tick entries are being kept.
func (sl *SimLog) Verbose() bool { return sl.verbose }

// Add records a new entry.
func (sl *SimLog) Add(tick int, agent, kind, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Agent:    agent,
		Kind:     kind,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, agent, kind, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, agent, kind, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// matches reports whether e has the given category and key. An empty
// argument matches anything.
func (e SimLogEntry) matches(category, key string) bool {
	return (category == "" || e.Category == category) && (key == "" || e.Key == key)
}

func (sl *SimLog) where(keep func(SimLogEntry) bool) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Filter returns entries with the given category and key ("" matches any).
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	return sl.where(func(e SimLogEntry) bool { return e.matches(category, key) })
}

func (sl *SimLog) FilterAgent(label string) []SimLogEntry {
	return sl.where(func(e SimLogEntry) bool { return e.Agent == label })
}

// FilterTickRange returns entries with fromTick <= Tick <= toTick.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	return sl.where(func(e SimLogEntry) bool { return e.Tick >= fromTick && e.Tick <= toTick })
}

func (sl *SimLog) CountCategory(category, key string) int {
	n := 0
	for _, e := range sl.entries {
		if e.matches(category, key) {
			n++
		}
	}
	return n
}

// FirstOf returns the earliest entry with the given category and key.
func (sl *SimLog) FirstOf(category, key string) (SimLogEntry, bool) {
	i := slices.IndexFunc(sl.entries, func(e SimLogEntry) bool { return e.matches(category, key) })
	if i < 0 {
		return SimLogEntry{}, false
	}
	return sl.entries[i], true
}

// LastOf returns the latest entry with the given category and key.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	for i := len(sl.entries) - 1; i >= 0; i-- {
		if sl.entries[i].matches(category, key) {
			return sl.entries[i], true
		}
	}
	return SimLogEntry{}, false
}

// HasEntry reports whether some entry matches category and key and has
// valueSubstr in its Value.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	return slices.ContainsFunc(sl.entries, func(e SimLogEntry) bool {
		return e.matches(category, key) && strings.Contains(e.Value, valueSubstr)
	})
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	return formatEntries(sl.entries)
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	return formatEntries(sl.FilterTickRange(fromTick, toTick))
}

func formatEntries(entries []SimLogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the simulation state.
func (sl *SimLog) Summary(s *Sim) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", s.CurrentTick())

	reg := s.Registry()
	free := len(reg.FreeVictims())
	carried := reg.Total() - reg.Rescued() - free
	fmt.Fprintf(&sb, "Victims: rescued=%d  carried=%d  free=%d  total=%d\n",
		reg.Rescued(), carried, free, reg.Total())

	states := map[MissionState]int{}
	for _, a := range s.Rescuers() {
		states[a.State()]++
	}
	sb.WriteString("Rescuers: ")
	for _, ms := range []MissionState{MissionSeekingVictim, MissionMovingToHospital, MissionIdle} {
		if n := states[ms]; n > 0 {
			fmt.Fprintf(&sb, "%s=%d  ", ms, n)
		}
	}
	sb.WriteByte('\n')

	for _, a := range s.all() {
		carry := "-"
		if a.IsCarrying() {
			carry = fmt.Sprintf("victim#%d", a.Carrying())
		}
		fmt.Fprintf(&sb, "%-3s %-10s target=%-11s carrying=%-9s pos=(%.0f,%.0f)\n",
			a.Label, a.State(), a.Target(), carry, a.Pos.X, a.Pos.Y)
	}
	return sb.String()
}
