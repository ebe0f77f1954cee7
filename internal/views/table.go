// Package views holds the presentation projections of the tracker: the
// filtered table, the kanban board and the stats dashboard. Each is
// recomputed from the full list of applications; none is mutated in place
// except the board's optimistic move.
package views

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"jobtracker/tracker-service/internal/tracker"
)

// All matches every status or priority in a Filter.
const All = "all"

// Filter is the table's filter bar.
type Filter struct {
	Status   string // a tracker.Status, "" or All
	Priority string // a tracker.Priority, "" or All
	Search   string // case-insensitive substring of company or role
}

// Table returns the applications matching f, most recently applied first.
// apps is not modified.
func Table(apps []tracker.Application, f Filter) []tracker.Application {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(f.Search))

	out := make([]tracker.Application, 0, len(apps))
	for _, a := range apps {
		if f.Status != "" && f.Status != All && string(a.Status) != f.Status {
			continue
		}
		if f.Priority != "" && f.Priority != All && string(a.Priority) != f.Priority {
			continue
		}
		if q != "" &&
			!strings.Contains(fold.String(a.Company), q) &&
			!strings.Contains(fold.String(a.Role), q) {
			continue
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateApplied.After(out[j].DateApplied)
	})
	return out
}

// StatusCount is the number of applications in one status.
type StatusCount struct {
	Status tracker.Status `json:"status"`
	Label  string         `json:"label"`
	Count  int            `json:"count"`
}

// StatusCounts counts apps per status, in canonical status order, including
// empty statuses.
func StatusCounts(apps []tracker.Application) []StatusCount {
	counts := make(map[tracker.Status]int, len(tracker.StatusOrder))
	for _, a := range apps {
		counts[a.Status]++
	}
	out := make([]StatusCount, 0, len(tracker.StatusOrder))
	for _, s := range tracker.StatusOrder {
		out = append(out, StatusCount{Status: s, Label: s.Label(), Count: counts[s]})
	}
	return out
}
