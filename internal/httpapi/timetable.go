package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rollcall/internal/timetable"
)

var weekdayNames = map[string]time.Weekday{
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
}

type entryDTO struct {
	Subject   string `json:"subject"`
	Batch     string `json:"batch,omitempty"`
	Room      string `json:"room,omitempty"`
	Faculty   string `json:"faculty,omitempty"`
	Kind      string `json:"kind"`
	ClassName string `json:"className"`
}

type slotDTO struct {
	Day     string     `json:"day"`
	Timing  string     `json:"timing"`
	Kind    string     `json:"kind"`
	Entries []entryDTO `json:"entries"`
}

func toSlotDTO(slot timetable.Slot) slotDTO {
	entries := make([]entryDTO, 0, len(slot.Entries))
	for _, e := range slot.Entries {
		entries = append(entries, entryDTO{
			Subject:   e.Subject,
			Batch:     e.Batch,
			Room:      e.Room,
			Faculty:   e.Faculty,
			Kind:      string(e.Kind),
			ClassName: e.ClassName,
		})
	}
	return slotDTO{
		Day:     slot.Day.String(),
		Timing:  slot.TimeRange(),
		Kind:    string(slot.Kind),
		Entries: entries,
	}
}

func (h *Handler) timetableDay(c *gin.Context) {
	day, ok := weekdayNames[c.Param("day")]
	if !ok {
		badRequest(c, "unknown weekday")
		return
	}
	slots := h.index.SlotsForDay(day)
	out := make([]slotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, toSlotDTO(slot))
	}
	c.JSON(http.StatusOK, out)
}

// timetableNow reports the schedule at this instant: the running slot, the
// upcoming one, the lunch flag, and a subject/timing suggestion for the
// caller's batch — the prefill teachers open sessions from.
func (h *Handler) timetableNow(c *gin.Context) {
	now := time.Now()
	body := gin.H{
		"lunch":      h.resolver.IsLunch(now),
		"current":    nil,
		"next":       nil,
		"suggestion": nil,
	}

	var suggestFrom *timetable.Slot
	if current, ok := h.resolver.CurrentSlot(now); ok {
		body["current"] = toSlotDTO(current)
		suggestFrom = &current
	}
	if next, ok := h.resolver.NextSlot(now); ok {
		body["next"] = toSlotDTO(next)
		if suggestFrom == nil {
			suggestFrom = &next
		}
	}
	if suggestFrom != nil {
		entry := timetable.EntryForBatch(*suggestFrom, c.Query("batch"))
		body["suggestion"] = gin.H{
			"subject": entry.Subject,
			"timing":  suggestFrom.TimeRange(),
			"kind":    entry.Kind,
		}
	}
	c.JSON(http.StatusOK, body)
}
