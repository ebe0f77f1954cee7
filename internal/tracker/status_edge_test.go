package tracker_test

import (
	"testing"

	"jobtracker/tracker-service/internal/tracker"
)

// ParseStatus is case-sensitive: upper-case variants are not valid.
func TestParseStatus_CaseSensitive(t *testing.T) {
	upper := []string{"APPLIED", "Shortlisted", "OA_ASSIGNED", "Interview", "SELECTED", "Rejected"}
	for _, s := range upper {
		if _, err := tracker.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) should reject mixed-case value, got nil error", s)
		}
	}
}

// ParseStatus rejects whitespace-padded strings.
func TestParseStatus_WithWhitespace(t *testing.T) {
	padded := []string{" applied", "applied ", " applied "}
	for _, s := range padded {
		if _, err := tracker.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) should reject padded value, got nil error", s)
		}
	}
}

// Display labels are not accepted as wire values.
func TestParseStatus_RejectsLabels(t *testing.T) {
	if _, err := tracker.ParseStatus("OA Assigned"); err == nil {
		t.Error("ParseStatus(\"OA Assigned\") expected error, got nil")
	}
}

func TestParseStatus_AllConstantsRoundTrip(t *testing.T) {
	for _, s := range tracker.StatusOrder {
		got, err := tracker.ParseStatus(string(s))
		if err != nil {
			t.Errorf("ParseStatus(%q) unexpected error: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseStatus(%q) = %q", s, got)
		}
	}
}

func TestApplication_ReminderWindow(t *testing.T) {
	var app tracker.Application
	if got := app.ReminderWindow(); got != tracker.DefaultReminderDays {
		t.Errorf("ReminderWindow() with nil = %d, want %d", got, tracker.DefaultReminderDays)
	}
	zero := 0
	app.ReminderDaysBefore = &zero
	if got := app.ReminderWindow(); got != 0 {
		t.Errorf("ReminderWindow() with 0 = %d, want 0", got)
	}
	five := 5
	app.ReminderDaysBefore = &five
	if got := app.ReminderWindow(); got != 5 {
		t.Errorf("ReminderWindow() with 5 = %d, want 5", got)
	}
}
