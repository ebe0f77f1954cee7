package views

import (
	"fmt"
	"math"
	"sort"
	"time"

	"jobtracker/tracker-service/internal/csvexport"
	"jobtracker/tracker-service/internal/tracker"
)

// statsWeeks is the number of weekly buckets on the dashboard.
const statsWeeks = 8

// WeekCount is the number of applications sent in one week.
type WeekCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DateCount is the running total of applications up to a calendar date.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats is the dashboard aggregate.
type Stats struct {
	Total              int           `json:"total"`
	OfferRate          int           `json:"offerRate"`
	RejectionRate      int           `json:"rejectionRate"`
	StatusDistribution []StatusCount `json:"statusDistribution"`
	Weekly             []WeekCount   `json:"weekly"`
	Cumulative         []DateCount   `json:"cumulative"`
}

// BuildStats aggregates apps as of now. Week labels are computed in now's
// location.
func BuildStats(apps []tracker.Application, now time.Time) Stats {
	st := Stats{
		Total:              len(apps),
		StatusDistribution: StatusCounts(apps),
		Weekly:             weeklyCounts(apps, now),
		Cumulative:         cumulative(apps),
	}

	var offers, rejections int
	for _, a := range apps {
		switch a.Status {
		case tracker.StatusSelected:
			offers++
		case tracker.StatusRejected:
			rejections++
		}
	}
	st.OfferRate = percent(offers, st.Total)
	st.RejectionRate = percent(rejections, st.Total)
	return st
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

// WeekLabel formats t as "<iso year>-W<iso week>". The ISO year keeps the
// days around New Year in the week they belong to.
func WeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%d", year, week)
}

func weeklyCounts(apps []tracker.Application, now time.Time) []WeekCount {
	weeks := make([]WeekCount, 0, statsWeeks)
	for i := statsWeeks - 1; i >= 0; i-- {
		weeks = append(weeks, WeekCount{Label: WeekLabel(now.AddDate(0, 0, -7*i))})
	}

	for _, a := range apps {
		label := WeekLabel(a.DateApplied.In(now.Location()))
		for i := range weeks {
			if weeks[i].Label == label {
				weeks[i].Count++
				break
			}
		}
	}
	return weeks
}

func cumulative(apps []tracker.Application) []DateCount {
	sorted := append([]tracker.Application(nil), apps...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DateApplied.Before(sorted[j].DateApplied)
	})

	out := make([]DateCount, 0)
	for i, a := range sorted {
		date := csvexport.Date(a.DateApplied)
		if n := len(out); n > 0 && out[n-1].Date == date {
			out[n-1].Count = i + 1
			continue
		}
		out = append(out, DateCount{Date: date, Count: i + 1})
	}
	return out
}
