package tracker

import (
	"context"
	"time"
)

// DefaultReminderDays is the reminder window used when an application has no
// reminderDaysBefore of its own.
const DefaultReminderDays = 2

// Application is one tracked job application. It is the JSON shape returned
// to clients; the owner id is never serialised.
type Application struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"-"`
	Company            string     `json:"company"`
	Role               string     `json:"role"`
	URL                *string    `json:"url"`
	Status             Status     `json:"status"`
	Priority           Priority   `json:"priority"`
	DateApplied        time.Time  `json:"dateApplied"`
	OADeadline         *time.Time `json:"oaDeadline"`
	InterviewDate      *time.Time `json:"interviewDate"`
	ReminderDaysBefore *int       `json:"reminderDaysBefore"`
	Tags               []string   `json:"tags"`
	Notes              *string    `json:"notes"`
	CreatedAt          time.Time  `json:"createdAt"`
	LastUpdated        time.Time  `json:"lastUpdated"`
}

// ReminderWindow returns reminderDaysBefore, falling back to
// DefaultReminderDays when it is unset.
func (a *Application) ReminderWindow() int {
	if a.ReminderDaysBefore == nil {
		return DefaultReminderDays
	}
	return *a.ReminderDaysBefore
}

// Order selects how a list of applications is sorted by the store.
type Order int

const (
	// OrderDateAppliedDesc is the primary table order.
	OrderDateAppliedDesc Order = iota
	// OrderCreatedAsc is the board's initial load order.
	OrderCreatedAsc
	// OrderDateAppliedAsc is the stats page order.
	OrderDateAppliedAsc
)

// Field is one slot of a partial update. Only fields with Set are written.
type Field[T any] struct {
	Set   bool
	Value T
}

// Assign returns a Field that is set to v.
func Assign[T any](v T) Field[T] { return Field[T]{Set: true, Value: v} }

// Update is a validated partial update. Nullable columns carry pointer
// values so that a set nil clears the column.
type Update struct {
	Company            Field[string]
	Role               Field[string]
	URL                Field[*string]
	Status             Field[Status]
	Priority           Field[Priority]
	DateApplied        Field[time.Time]
	OADeadline         Field[*time.Time]
	InterviewDate      Field[*time.Time]
	ReminderDaysBefore Field[*int]
	Tags               Field[[]string]
	Notes              Field[*string]
}

// Apply writes the set fields of u onto a.
func (u Update) Apply(a *Application) {
	if u.Company.Set {
		a.Company = u.Company.Value
	}
	if u.Role.Set {
		a.Role = u.Role.Value
	}
	if u.URL.Set {
		a.URL = u.URL.Value
	}
	if u.Status.Set {
		a.Status = u.Status.Value
	}
	if u.Priority.Set {
		a.Priority = u.Priority.Value
	}
	if u.DateApplied.Set {
		a.DateApplied = u.DateApplied.Value
	}
	if u.OADeadline.Set {
		a.OADeadline = u.OADeadline.Value
	}
	if u.InterviewDate.Set {
		a.InterviewDate = u.InterviewDate.Value
	}
	if u.ReminderDaysBefore.Set {
		a.ReminderDaysBefore = u.ReminderDaysBefore.Value
	}
	if u.Tags.Set {
		a.Tags = u.Tags.Value
	}
	if u.Notes.Set {
		a.Notes = u.Notes.Value
	}
}

// Store is the persistence boundary. Every method is scoped by the owner id;
// a record owned by someone else behaves exactly like a missing one.
type Store interface {
	List(ctx context.Context, userID string, order Order) ([]Application, error)
	Get(ctx context.Context, userID, id string) (*Application, error)
	Insert(ctx context.Context, app *Application) error
	// Update writes the set fields of u and stamps lastUpdated with now.
	// It returns ErrNotFound when no owned row matched.
	Update(ctx context.Context, userID, id string, u Update, now time.Time) (*Application, error)
	// Delete returns ErrNotFound when no owned row matched.
	Delete(ctx context.Context, userID, id string) error
}

// Publisher receives change notifications. Failures are never fatal.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Event types published by the service.
const (
	EventJobCreated    = "EVENT_JOB_CREATED"
	EventJobUpdated    = "EVENT_JOB_UPDATED"
	EventJobDeleted    = "EVENT_JOB_DELETED"
	EventStatusChanged = "EVENT_STATUS_CHANGED"
)

// Event is a change notification for a single application.
type Event struct {
	Type          string `json:"type"`
	ApplicationID string `json:"applicationId"`
	UserID        string `json:"userId"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
}
