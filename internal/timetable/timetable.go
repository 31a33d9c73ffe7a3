package timetable

import (
	"fmt"
	"sort"
	"time"
)

// Kind classifies a scheduled period.
type Kind string

const (
	Lecture   Kind = "Lecture"
	Practical Kind = "Practical"
	Project   Kind = "Project"
)

// Entry is one row of the weekly schedule. Times are minutes of day and
// the [Start, End) interval is half-open. Batch is empty for whole-class
// periods.
type Entry struct {
	Day       time.Weekday `json:"day"`
	Start     int          `json:"startTime"`
	End       int          `json:"endTime"`
	Subject   string       `json:"subject"`
	Batch     string       `json:"batch,omitempty"`
	Room      string       `json:"room,omitempty"`
	Faculty   string       `json:"faculty,omitempty"`
	Kind      Kind         `json:"kind"`
	ClassName string       `json:"className"`
}

// Slot groups every entry sharing the same day and time window. Parallel
// batch practicals land in one slot with several entries; Entries keeps
// first-seen order from the configured schedule.
type Slot struct {
	Day     time.Weekday `json:"day"`
	Start   int          `json:"startTime"`
	End     int          `json:"endTime"`
	Kind    Kind         `json:"kind"`
	Entries []Entry      `json:"entries"`
}

// TimeRange renders the slot window as "HH:MM - HH:MM" for display and for
// the session timing string.
func (s Slot) TimeRange() string {
	return fmt.Sprintf("%s - %s", formatMinutes(s.Start), formatMinutes(s.End))
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Index is the immutable weekly schedule. Construct once at startup and
// share freely; all methods are read-only and safe for concurrent use.
type Index struct {
	entries []Entry
}

// NewIndex copies the configured entries into an index.
func NewIndex(entries []Entry) *Index {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &Index{entries: cp}
}

// EntriesForDay returns the entries scheduled on the given weekday in
// configuration order.
func (ix *Index) EntriesForDay(day time.Weekday) []Entry {
	var out []Entry
	for _, e := range ix.entries {
		if e.Day == day {
			out = append(out, e)
		}
	}
	return out
}

// SlotsForDay groups the day's entries by time window and returns the slots
// sorted by start time.
func (ix *Index) SlotsForDay(day time.Weekday) []Slot {
	return sortByStart(group(ix.EntriesForDay(day)))
}

// Slots returns every slot of the week ordered by weekday then start time.
func (ix *Index) Slots() []Slot {
	slots := group(ix.entries)
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return dayIndex(slots[i].Day) < dayIndex(slots[j].Day)
		}
		return slots[i].Start < slots[j].Start
	})
	return slots
}

func group(entries []Entry) []Slot {
	type key struct {
		day        time.Weekday
		start, end int
	}
	index := map[key]int{}
	var slots []Slot
	for _, e := range entries {
		k := key{e.Day, e.Start, e.End}
		if i, ok := index[k]; ok {
			slots[i].Entries = append(slots[i].Entries, e)
			continue
		}
		index[k] = len(slots)
		slots = append(slots, Slot{
			Day:     e.Day,
			Start:   e.Start,
			End:     e.End,
			Kind:    e.Kind,
			Entries: []Entry{e},
		})
	}
	return slots
}

func sortByStart(slots []Slot) []Slot {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Start < slots[j].Start
	})
	return slots
}

// dayIndex maps Monday..Friday to 0..4. Weekend days sit outside the
// teaching week and map to -1 so every configured slot counts as "later".
func dayIndex(d time.Weekday) int {
	if d >= time.Monday && d <= time.Friday {
		return int(d - time.Monday)
	}
	return -1
}
