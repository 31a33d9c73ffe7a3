package timetable

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the parsed timetable file: the weekly entries plus the lunch
// break.
type Config struct {
	Index *Index
	Lunch Lunch
}

type fileEntry struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Subject   string `json:"subject"`
	Batch     string `json:"batch"`
	Room      string `json:"room"`
	Faculty   string `json:"faculty"`
	Kind      string `json:"kind"`
	ClassName string `json:"className"`
}

type fileSchedule struct {
	Lunch struct {
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
	} `json:"lunch"`
	Entries []fileEntry `json:"entries"`
}

var weekdays = map[string]time.Weekday{
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
}

// LoadFile reads and parses the timetable JSON. The schedule is static
// configuration, so any malformed entry is a startup error.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read timetable: %w", err)
	}
	return Parse(raw)
}

// Parse decodes timetable JSON into an immutable index.
func Parse(raw []byte) (Config, error) {
	var file fileSchedule
	if err := json.Unmarshal(raw, &file); err != nil {
		return Config{}, fmt.Errorf("parse timetable: %w", err)
	}
	if len(file.Entries) == 0 {
		return Config{}, fmt.Errorf("parse timetable: no entries")
	}

	entries := make([]Entry, 0, len(file.Entries))
	for i, fe := range file.Entries {
		day, ok := weekdays[fe.Day]
		if !ok {
			return Config{}, fmt.Errorf("parse timetable: entry %d: unknown day %q", i, fe.Day)
		}
		start, err := parseClock(fe.StartTime)
		if err != nil {
			return Config{}, fmt.Errorf("parse timetable: entry %d: %w", i, err)
		}
		end, err := parseClock(fe.EndTime)
		if err != nil {
			return Config{}, fmt.Errorf("parse timetable: entry %d: %w", i, err)
		}
		if end <= start {
			return Config{}, fmt.Errorf("parse timetable: entry %d: end %q not after start %q", i, fe.EndTime, fe.StartTime)
		}
		if fe.Subject == "" {
			return Config{}, fmt.Errorf("parse timetable: entry %d: subject required", i)
		}
		entries = append(entries, Entry{
			Day:       day,
			Start:     start,
			End:       end,
			Subject:   fe.Subject,
			Batch:     fe.Batch,
			Room:      fe.Room,
			Faculty:   fe.Faculty,
			Kind:      Kind(fe.Kind),
			ClassName: fe.ClassName,
		})
	}

	lunchStart, err := parseClock(file.Lunch.StartTime)
	if err != nil {
		return Config{}, fmt.Errorf("parse timetable: lunch: %w", err)
	}
	lunchEnd, err := parseClock(file.Lunch.EndTime)
	if err != nil {
		return Config{}, fmt.Errorf("parse timetable: lunch: %w", err)
	}

	return Config{
		Index: NewIndex(entries),
		Lunch: Lunch{Start: lunchStart, End: lunchEnd},
	}, nil
}

// parseClock converts "HH:MM" to minute of day.
func parseClock(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad time %q", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad time %q", value)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad time %q", value)
	}
	return h*60 + m, nil
}
