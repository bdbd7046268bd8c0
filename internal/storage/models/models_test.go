package models

import "testing"

func TestNormalizeDay(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"monday", "monday", true},
		{"Monday", "monday", true},
		{"  TUESDAY  ", "tuesday", true},
		{"sunday", "sunday", true},
		{"someday", "", false},
		{"", "", false},
		{"mon", "", false},
	}

	for _, tc := range cases {
		got, ok := NormalizeDay(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Errorf("NormalizeDay(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestClone_Independence(t *testing.T) {
	original := WeeklySchedule{
		"monday": {
			{Time: "09:00", Status: StatusFree},
			{Time: "10:00", Status: StatusOccupied, Event: "Team sync"},
		},
	}

	cloned := original.Clone()
	cloned["monday"][0].Status = StatusOccupied
	cloned["monday"][0].Event = "Mutated"

	if original["monday"][0].Status != StatusFree {
		t.Errorf("Mutation of clone leaked into original: status = %q", original["monday"][0].Status)
	}
	if original["monday"][0].Event != "" {
		t.Errorf("Mutation of clone leaked into original: event = %q", original["monday"][0].Event)
	}
}

func TestClone_Nil(t *testing.T) {
	var ws WeeklySchedule
	if got := ws.Clone(); got != nil {
		t.Errorf("Clone of nil schedule = %v, want nil", got)
	}
}

func TestRedacted_StripsEvents(t *testing.T) {
	original := WeeklySchedule{
		"monday": {
			{Time: "09:00", Status: StatusFree},
			{Time: "10:00", Status: StatusOccupied, Event: "Dentist appointment for Bob"},
		},
		"friday": {
			{Time: "14:00", Status: StatusOccupied, Event: "Board meeting"},
		},
	}

	redacted := original.Redacted()

	for day, slots := range redacted {
		for _, slot := range slots {
			if slot.Event != "" {
				t.Errorf("Redacted schedule still carries event %q on %s %s", slot.Event, day, slot.Time)
			}
		}
	}

	// Occupancy must survive redaction
	if redacted["monday"][1].Status != StatusOccupied {
		t.Errorf("Redaction changed slot status to %q", redacted["monday"][1].Status)
	}

	// The original is untouched
	if original["monday"][1].Event != "Dentist appointment for Bob" {
		t.Errorf("Redaction mutated the original schedule: %q", original["monday"][1].Event)
	}
}

func TestFindSlot(t *testing.T) {
	slots := []Slot{
		{Time: "09:00", Status: StatusFree},
		{Time: "10:00", Status: StatusFree},
	}

	if idx := FindSlot(slots, "10:00"); idx != 1 {
		t.Errorf("FindSlot(10:00) = %d, want 1", idx)
	}

	// Matching is exact string comparison, no time parsing
	if idx := FindSlot(slots, "9:00"); idx != -1 {
		t.Errorf("FindSlot(9:00) = %d, want -1", idx)
	}
	if idx := FindSlot(slots, "11:00"); idx != -1 {
		t.Errorf("FindSlot(11:00) = %d, want -1", idx)
	}
}
