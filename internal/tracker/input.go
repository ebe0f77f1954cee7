package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Nullable distinguishes an omitted field (Set == false) from an explicit
// null (Set && !Valid) and from a value (Set && Valid).
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Value returns a Nullable carrying v.
func Value[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Valid: true, Value: v} }

// Null returns an explicit null.
func Null[T any]() Nullable[T] { return Nullable[T]{Set: true} }

// UnmarshalJSON is only invoked for keys present in the payload, so an
// omitted key leaves Set false.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// TagList accepts either a JSON/YAML array or a comma separated string.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*t = ParseTags(raw)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tags must be a string or an array of strings: %w", err)
	}
	*t = list
	return nil
}

func (t *TagList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*t = ParseTags(node.Value)
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return fmt.Errorf("tags must be a string or a list of strings: %w", err)
	}
	*t = list
	return nil
}

// ParseTags splits free text on commas, trims each segment and drops empty
// ones. Order and duplicates are kept, case is untouched.
func ParseTags(s string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDate accepts RFC 3339 timestamps, HTML datetime-local values and
// plain calendar dates. Values without a zone are read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// optionalText maps "" to nil.
func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateInput is the body of a create request. Only company and role are
// required.
type CreateInput struct {
	Company            string  `json:"company" yaml:"company"`
	Role               string  `json:"role" yaml:"role"`
	URL                *string `json:"url" yaml:"url"`
	Status             *string `json:"status" yaml:"status"`
	Priority           *string `json:"priority" yaml:"priority"`
	DateApplied        *string `json:"dateApplied" yaml:"dateApplied"`
	Notes              *string `json:"notes" yaml:"notes"`
	Tags               TagList `json:"tags" yaml:"tags"`
	OADeadline         *string `json:"oaDeadline" yaml:"oaDeadline"`
	InterviewDate      *string `json:"interviewDate" yaml:"interviewDate"`
	ReminderDaysBefore *int    `json:"reminderDaysBefore" yaml:"reminderDaysBefore"`
}

// build validates in and returns a new Application without id, owner or
// timestamps.
func (in CreateInput) build(now time.Time) (*Application, error) {
	if strings.TrimSpace(in.Company) == "" || strings.TrimSpace(in.Role) == "" {
		return nil, invalid("company and role are required")
	}

	app := &Application{
		Company:     in.Company,
		Role:        in.Role,
		Status:      StatusApplied,
		Priority:    PriorityMedium,
		DateApplied: now,
		Tags:        []string{},
	}

	if in.Status != nil && *in.Status != "" {
		st, err := ParseStatus(*in.Status)
		if err != nil {
			return nil, invalid(err.Error())
		}
		app.Status = st
	}
	if in.Priority != nil && *in.Priority != "" {
		p, err := ParsePriority(*in.Priority)
		if err != nil {
			return nil, invalid(err.Error())
		}
		app.Priority = p
	}
	if in.DateApplied != nil {
		if t, err := ParseDate(*in.DateApplied); err == nil {
			app.DateApplied = t
		}
	}
	if in.URL != nil {
		app.URL = optionalText(*in.URL)
	}
	if in.Notes != nil {
		app.Notes = optionalText(*in.Notes)
	}
	if in.Tags != nil {
		app.Tags = []string(in.Tags)
	}

	var err error
	if app.OADeadline, err = optionalDate("oaDeadline", in.OADeadline); err != nil {
		return nil, err
	}
	if app.InterviewDate, err = optionalDate("interviewDate", in.InterviewDate); err != nil {
		return nil, err
	}
	if in.ReminderDaysBefore != nil {
		if *in.ReminderDaysBefore < 0 {
			return nil, invalid("reminderDaysBefore must not be negative")
		}
		v := *in.ReminderDaysBefore
		app.ReminderDaysBefore = &v
	}
	return app, nil
}

func optionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, invalid(fmt.Sprintf("%s: %v", field, err))
	}
	return &t, nil
}

// UpdateInput is the body of a partial update. Every field follows the
// omitted / null / value rule.
type UpdateInput struct {
	Company            Nullable[string]  `json:"company"`
	Role               Nullable[string]  `json:"role"`
	URL                Nullable[string]  `json:"url"`
	Status             Nullable[string]  `json:"status"`
	Priority           Nullable[string]  `json:"priority"`
	DateApplied        Nullable[string]  `json:"dateApplied"`
	Notes              Nullable[string]  `json:"notes"`
	Tags               Nullable[TagList] `json:"tags"`
	OADeadline         Nullable[string]  `json:"oaDeadline"`
	InterviewDate      Nullable[string]  `json:"interviewDate"`
	ReminderDaysBefore Nullable[int]     `json:"reminderDaysBefore"`
}

// resolve validates in and converts it to a store Update.
func (in UpdateInput) resolve() (Update, error) {
	var u Update

	if in.Company.Set {
		if !in.Company.Valid || strings.TrimSpace(in.Company.Value) == "" {
			return u, invalid("company cannot be empty")
		}
		u.Company = Assign(in.Company.Value)
	}
	if in.Role.Set {
		if !in.Role.Valid || strings.TrimSpace(in.Role.Value) == "" {
			return u, invalid("role cannot be empty")
		}
		u.Role = Assign(in.Role.Value)
	}
	if in.URL.Set {
		u.URL = Assign(optionalText(in.URL.Value))
	}
	if in.Notes.Set {
		u.Notes = Assign(optionalText(in.Notes.Value))
	}
	if in.Status.Set {
		st, err := ParseStatus(in.Status.Value)
		if err != nil {
			return u, invalid(err.Error())
		}
		u.Status = Assign(st)
	}
	if in.Priority.Set {
		p, err := ParsePriority(in.Priority.Value)
		if err != nil {
			return u, invalid(err.Error())
		}
		u.Priority = Assign(p)
	}
	// An unparseable or null dateApplied leaves the stored value alone.
	if in.DateApplied.Set && in.DateApplied.Valid {
		if t, err := ParseDate(in.DateApplied.Value); err == nil {
			u.DateApplied = Assign(t)
		}
	}
	if in.Tags.Set {
		tags := []string{}
		if in.Tags.Valid && in.Tags.Value != nil {
			tags = []string(in.Tags.Value)
		}
		u.Tags = Assign(tags)
	}
	if in.OADeadline.Set {
		t, err := optionalDate("oaDeadline", nullableString(in.OADeadline))
		if err != nil {
			return u, err
		}
		u.OADeadline = Assign(t)
	}
	if in.InterviewDate.Set {
		t, err := optionalDate("interviewDate", nullableString(in.InterviewDate))
		if err != nil {
			return u, err
		}
		u.InterviewDate = Assign(t)
	}
	if in.ReminderDaysBefore.Set {
		if !in.ReminderDaysBefore.Valid {
			u.ReminderDaysBefore = Assign[*int](nil)
		} else {
			if in.ReminderDaysBefore.Value < 0 {
				return u, invalid("reminderDaysBefore must not be negative")
			}
			v := in.ReminderDaysBefore.Value
			u.ReminderDaysBefore = Assign(&v)
		}
	}
	return u, nil
}

func nullableString(n Nullable[string]) *string {
	if !n.Valid {
		return nil
	}
	return &n.Value
}
