package models

import "strings"

// Slot statuses
const (
	StatusFree     = "free"
	StatusOccupied = "occupied"
)

// Canonical lowercase day names, Monday first
var WeekDays = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

// NormalizeDay maps a free-form day string to its canonical lowercase form.
// Returns ok=false for anything that is not one of the seven week days.
func NormalizeDay(day string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(day))
	for _, known := range WeekDays {
		if d == known {
			return known, true
		}
	}
	return "", false
}

// Slot is one schedulable time unit. Time is an opaque label: slots are
// matched by exact string comparison, never by parsed time.
type Slot struct {
	Time   string `json:"time"`
	Status string `json:"status"`
	Event  string `json:"event,omitempty"`
}

// IsFree reports whether the slot can still be booked
func (s *Slot) IsFree() bool {
	return s.Status == StatusFree
}

// WeeklySchedule maps canonical day names to their slots. Slot order within
// a day is whatever order the backing document stores them in.
type WeeklySchedule map[string][]Slot

// ScheduleDocument is the full backing document. The top-level key matches
// the on-disk schedule.json format.
type ScheduleDocument struct {
	WeeklySchedule WeeklySchedule `json:"weeklySchedule"`
}

// Clone returns a deep copy so callers cannot mutate store-owned state
func (ws WeeklySchedule) Clone() WeeklySchedule {
	if ws == nil {
		return nil
	}
	out := make(WeeklySchedule, len(ws))
	for day, slots := range ws {
		copied := make([]Slot, len(slots))
		copy(copied, slots)
		out[day] = copied
	}
	return out
}

// Redacted returns a deep copy with every event description stripped.
// This is the only form that may be serialized into LLM grounding context:
// occupied slots stay visible as occupied, but what occupies them never
// leaves the store.
func (ws WeeklySchedule) Redacted() WeeklySchedule {
	out := ws.Clone()
	for day, slots := range out {
		for i := range slots {
			slots[i].Event = ""
		}
		out[day] = slots
	}
	return out
}

// FindSlot returns the index of the slot with the exact time label, or -1
func FindSlot(slots []Slot, time string) int {
	for i := range slots {
		if slots[i].Time == time {
			return i
		}
	}
	return -1
}
