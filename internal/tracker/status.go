// Package tracker defines job applications, their status lifecycle and the
// transport-agnostic service that reads and writes them.
//
// Status display order:
//
//	applied → shortlisted → oa_assigned → interview → {selected | rejected}
//
// The order is advisory only. Any status may follow any other in a single
// update; only unknown values are rejected.
package tracker

import "fmt"

// Status values mirror the status column in every store.
type Status string

const (
	StatusApplied     Status = "applied"
	StatusShortlisted Status = "shortlisted"
	StatusOAAssigned  Status = "oa_assigned"
	StatusInterview   Status = "interview"
	StatusSelected    Status = "selected"
	StatusRejected    Status = "rejected"
)

// StatusOrder is the canonical ordering used by the table filters, the board
// columns and the stats distribution.
var StatusOrder = []Status{
	StatusApplied,
	StatusShortlisted,
	StatusOAAssigned,
	StatusInterview,
	StatusSelected,
	StatusRejected,
}

var statusLabels = map[Status]string{
	StatusApplied:     "Applied",
	StatusShortlisted: "Shortlisted",
	StatusOAAssigned:  "OA Assigned",
	StatusInterview:   "Interview",
	StatusSelected:    "Selected",
	StatusRejected:    "Rejected",
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values. Matching is case-sensitive.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusLabels[st]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// Label returns the human readable name of the status.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Index returns the position of s in StatusOrder, or -1.
func (s Status) Index() int {
	for i, st := range StatusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Priority values mirror the priority column in every store.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// PriorityOrder lists priorities from lowest to highest.
var PriorityOrder = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

var priorityLabels = map[Priority]string{
	PriorityLow:    "Low",
	PriorityMedium: "Medium",
	PriorityHigh:   "High",
}

// ParsePriority converts a raw string to a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if _, ok := priorityLabels[p]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown application priority %q", s)
}

func (p Priority) Label() string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return string(p)
}
