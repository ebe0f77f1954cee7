// Package csvexport serialises applications to the spreadsheet export format.
package csvexport

import (
	"errors"
	"strings"
	"time"

	"jobtracker/tracker-service/internal/tracker"
)

// ErrNothingToExport is returned for an empty record set instead of an empty
// file.
var ErrNothingToExport = errors.New("no jobs to export")

// Header is the fixed column order of every export.
var Header = []string{
	"Company",
	"Role",
	"Status",
	"Priority",
	"DateApplied",
	"OADeadline",
	"InterviewDate",
	"Tags",
	"Notes",
	"CreatedAt",
	"LastUpdated",
	"URL",
}

// Export renders apps as CSV. Every cell is quoted, rows are separated by
// CRLF and there is no trailing line break.
func Export(apps []tracker.Application) (string, error) {
	if len(apps) == 0 {
		return "", ErrNothingToExport
	}

	var b strings.Builder
	writeRow(&b, Header)
	for i := range apps {
		b.WriteString("\r\n")
		writeRow(&b, Row(&apps[i]))
	}
	return b.String(), nil
}

// Row returns the cells of a single application in Header order.
func Row(a *tracker.Application) []string {
	return []string{
		a.Company,
		a.Role,
		string(a.Status),
		string(a.Priority),
		Date(a.DateApplied),
		optionalDate(a.OADeadline),
		optionalDate(a.InterviewDate),
		strings.Join(a.Tags, "; "),
		deref(a.Notes),
		Date(a.CreatedAt),
		Date(a.LastUpdated),
		deref(a.URL),
	}
}

// FileName is the download name of an export made at now.
func FileName(now time.Time) string {
	return "job_applications_" + Date(now) + ".csv"
}

// Date truncates t to its UTC calendar date.
func Date(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Date(*t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func writeRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(c, `"`, `""`))
		b.WriteByte('"')
	}
}
