// Package deadline classifies OA and interview dates by urgency and decides
// which of them belong in the upcoming-reminders summary.
//
// The two computations are deliberately different shapes:
//
//	urgency   daysLeft <= 0 | <= 2 | <= 7 | > 7
//	reminder  -1 <= daysLeft <= reminder window (default 2)
package deadline

import (
	"time"

	"jobtracker/tracker-service/internal/tracker"
)

// Urgency is the badge band of a single deadline.
type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyCritical Urgency = "critical"
	UrgencySoon     Urgency = "soon"
	UrgencyNormal   Urgency = "normal"
)

// Deadline labels.
const (
	LabelOA        = "OA"
	LabelInterview = "Interview"
)

const day = int64(24 * time.Hour)

// DaysLeft returns ceil((target - now) / 24h).
func DaysLeft(target, now time.Time) int {
	ns := target.Sub(now).Nanoseconds()
	days := ns / day
	// integer division truncates toward zero, which is already the ceiling
	// for negative values
	if ns%day > 0 {
		days++
	}
	return int(days)
}

// Classify maps daysLeft to its urgency band.
func Classify(daysLeft int) Urgency {
	switch {
	case daysLeft <= 0:
		return UrgencyOverdue
	case daysLeft <= 2:
		return UrgencyCritical
	case daysLeft <= 7:
		return UrgencySoon
	default:
		return UrgencyNormal
	}
}

// Deadline is one dated milestone of an application.
type Deadline struct {
	Label    string    `json:"label"`
	Date     time.Time `json:"date"`
	DaysLeft int       `json:"daysLeft"`
	Urgency  Urgency   `json:"urgency"`
}

// ForApplication returns the OA deadline and the interview date of app, in
// that order, each classified on its own. Missing dates are skipped.
func ForApplication(app *tracker.Application, now time.Time) []Deadline {
	var out []Deadline
	add := func(label string, t *time.Time) {
		if t == nil {
			return
		}
		left := DaysLeft(*t, now)
		out = append(out, Deadline{Label: label, Date: *t, DaysLeft: left, Urgency: Classify(left)})
	}
	add(LabelOA, app.OADeadline)
	add(LabelInterview, app.InterviewDate)
	return out
}

// EffectiveWindow is the reminder window of app in days.
func EffectiveWindow(app *tracker.Application) int {
	return app.ReminderWindow()
}

// IsUpcoming reports whether a deadline daysLeft away is inside window. A
// deadline stays visible for one day after it has passed.
func IsUpcoming(daysLeft, window int) bool {
	return daysLeft <= window && daysLeft >= -1
}

// Reminder groups the upcoming deadlines of one application.
type Reminder struct {
	Application tracker.Application `json:"job"`
	Entries     []Deadline          `json:"entries"`
}

// Upcoming returns a Reminder for every application with at least one
// deadline inside its reminder window, preserving the order of apps.
func Upcoming(apps []tracker.Application, now time.Time) []Reminder {
	out := make([]Reminder, 0)
	for i := range apps {
		app := &apps[i]
		window := EffectiveWindow(app)

		var entries []Deadline
		for _, d := range ForApplication(app, now) {
			if IsUpcoming(d.DaysLeft, window) {
				entries = append(entries, d)
			}
		}
		if len(entries) > 0 {
			out = append(out, Reminder{Application: *app, Entries: entries})
		}
	}
	return out
}
