// Package store holds the pieces shared by the SQL-backed tracker.Store
// implementations in its subpackages.
package store

import (
	"time"

	"jobtracker/tracker-service/internal/tracker"
)

// Table is the name of the applications table in every SQL store.
const Table = "job_applications"

// SelectColumns lists the columns in the order the stores scan them.
const SelectColumns = `id, user_id, company, role, url, status, priority,
	date_applied, oa_deadline, interview_date, reminder_days_before,
	tags, notes, created_at, last_updated`

// Assignment is one "column = value" pair of an UPDATE.
type Assignment struct {
	Column string
	Value  any
}

// Assignments converts the set fields of u to column assignments, in a fixed
// order. Times are normalised to UTC. Tags are passed as []string; stores
// without an array type encode them themselves.
func Assignments(u tracker.Update) []Assignment {
	var out []Assignment
	add := func(col string, v any) { out = append(out, Assignment{Column: col, Value: v}) }

	if u.Company.Set {
		add("company", u.Company.Value)
	}
	if u.Role.Set {
		add("role", u.Role.Value)
	}
	if u.URL.Set {
		add("url", u.URL.Value)
	}
	if u.Status.Set {
		add("status", string(u.Status.Value))
	}
	if u.Priority.Set {
		add("priority", string(u.Priority.Value))
	}
	if u.DateApplied.Set {
		add("date_applied", u.DateApplied.Value.UTC())
	}
	if u.OADeadline.Set {
		add("oa_deadline", UTC(u.OADeadline.Value))
	}
	if u.InterviewDate.Set {
		add("interview_date", UTC(u.InterviewDate.Value))
	}
	if u.ReminderDaysBefore.Set {
		add("reminder_days_before", u.ReminderDaysBefore.Value)
	}
	if u.Tags.Set {
		tags := u.Tags.Value
		if tags == nil {
			tags = []string{}
		}
		add("tags", tags)
	}
	if u.Notes.Set {
		add("notes", u.Notes.Value)
	}
	return out
}

// UTC converts an optional time to UTC, keeping nil.
func UTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// OrderBy returns the ORDER BY expression for order. id breaks ties so that
// listings are stable.
func OrderBy(order tracker.Order) string {
	switch order {
	case tracker.OrderCreatedAsc:
		return "created_at ASC, id ASC"
	case tracker.OrderDateAppliedAsc:
		return "date_applied ASC, id ASC"
	default:
		return "date_applied DESC, id DESC"
	}
}
