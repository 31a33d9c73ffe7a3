package timetable

import "time"

// Lunch is the fixed midday break, minutes of day, half-open.
type Lunch struct {
	Start int
	End   int
}

// Resolver answers "what is scheduled at this instant" against an immutable
// index. All methods are pure and safe to call from any number of
// goroutines.
type Resolver struct {
	index *Index
	lunch Lunch
}

// NewResolver builds a resolver over the given index and lunch break.
func NewResolver(index *Index, lunch Lunch) *Resolver {
	return &Resolver{index: index, lunch: lunch}
}

// CurrentSlot returns the slot whose window contains the instant, if any.
// Weekends have no slots.
func (r *Resolver) CurrentSlot(at time.Time) (Slot, bool) {
	if dayIndex(at.Weekday()) < 0 {
		return Slot{}, false
	}
	m := minuteOfDay(at)
	for _, slot := range r.index.SlotsForDay(at.Weekday()) {
		if m >= slot.Start && m < slot.End {
			return slot, true
		}
	}
	return Slot{}, false
}

// NextSlot returns the first slot starting strictly after the instant:
// today's remaining slots first, then the earliest slot of the next weekday
// that has any. The search does not wrap past Friday; on a weekend it
// yields the first slot of the configured week.
func (r *Resolver) NextSlot(at time.Time) (Slot, bool) {
	today := dayIndex(at.Weekday())
	m := minuteOfDay(at)

	if today >= 0 {
		for _, slot := range r.index.SlotsForDay(at.Weekday()) {
			if slot.Start > m {
				return slot, true
			}
		}
	}
	for _, slot := range r.index.Slots() {
		if dayIndex(slot.Day) > today {
			return slot, true
		}
	}
	return Slot{}, false
}

// IsLunch reports whether the instant falls inside the lunch break,
// regardless of weekday.
func (r *Resolver) IsLunch(at time.Time) bool {
	m := minuteOfDay(at)
	return m >= r.lunch.Start && m < r.lunch.End
}

// EntryForBatch picks the slot entry for a batch. An empty or unknown batch
// falls back to the slot's first entry.
func EntryForBatch(slot Slot, batch string) Entry {
	if batch != "" {
		for _, e := range slot.Entries {
			if e.Batch == batch {
				return e
			}
		}
	}
	return slot.Entries[0]
}

func minuteOfDay(at time.Time) int {
	return at.Hour()*60 + at.Minute()
}
