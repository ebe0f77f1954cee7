// Package storetest is the behaviour suite every tracker.Store must pass.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker/tracker-service/internal/tracker"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) tracker.Store

var base = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }
func tp(t time.Time) *time.Time {
	return &t
}

func sample(id, user string, applied time.Time, created time.Time) *tracker.Application {
	return &tracker.Application{
		ID:          id,
		UserID:      user,
		Company:     "Company " + id,
		Role:        "Role " + id,
		Status:      tracker.StatusApplied,
		Priority:    tracker.PriorityMedium,
		DateApplied: applied,
		Tags:        []string{},
		CreatedAt:   created,
		LastUpdated: created,
	}
}

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("InsertGetRoundTrip", func(t *testing.T) { testRoundTrip(t, newStore(t)) })
	t.Run("ListOrderAndScope", func(t *testing.T) { testListOrder(t, newStore(t)) })
	t.Run("PartialUpdate", func(t *testing.T) { testPartialUpdate(t, newStore(t)) })
	t.Run("UpdateClearsNullable", func(t *testing.T) { testClear(t, newStore(t)) })
	t.Run("OwnershipIsNotFound", func(t *testing.T) { testOwnership(t, newStore(t)) })
	t.Run("DeleteTwice", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("UpdateAfterDelete", func(t *testing.T) { testUpdateAfterDelete(t, newStore(t)) })
	t.Run("TiesBrokenByID", func(t *testing.T) { testTies(t, newStore(t)) })
}

func testRoundTrip(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	a := sample("a1", "u1", base, base)
	a.URL = strp("https://acme.example/1")
	a.Status = tracker.StatusOAAssigned
	a.Priority = tracker.PriorityHigh
	a.OADeadline = tp(base.Add(48 * time.Hour))
	a.InterviewDate = tp(base.Add(96 * time.Hour))
	a.ReminderDaysBefore = intp(0)
	a.Tags = []string{"go", "Go", "remote"}
	a.Notes = strp("it's \"quoted\"")
	require.NoError(t, s.Insert(ctx, a))

	got, err := s.Get(ctx, "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, a.Company, got.Company)
	assert.Equal(t, *a.URL, *got.URL)
	assert.Equal(t, tracker.StatusOAAssigned, got.Status)
	assert.Equal(t, tracker.PriorityHigh, got.Priority)
	assert.True(t, a.DateApplied.Equal(got.DateApplied), "dateApplied %s", got.DateApplied)
	require.NotNil(t, got.OADeadline)
	assert.True(t, a.OADeadline.Equal(*got.OADeadline))
	require.NotNil(t, got.InterviewDate)
	assert.True(t, a.InterviewDate.Equal(*got.InterviewDate))
	require.NotNil(t, got.ReminderDaysBefore)
	assert.Equal(t, 0, *got.ReminderDaysBefore)
	assert.Equal(t, []string{"go", "Go", "remote"}, got.Tags)
	assert.Equal(t, *a.Notes, *got.Notes)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))

	b := sample("a2", "u1", base, base)
	require.NoError(t, s.Insert(ctx, b))
	got, err = s.Get(ctx, "u1", "a2")
	require.NoError(t, err)
	assert.Nil(t, got.URL)
	assert.Nil(t, got.Notes)
	assert.Nil(t, got.OADeadline)
	assert.Nil(t, got.ReminderDaysBefore)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
}

func testListOrder(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	for i, offset := range []int{2, 0, 1} {
		id := fmt.Sprintf("l%d", i)
		a := sample(id, "u1", base.AddDate(0, 0, offset), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.Insert(ctx, a))
	}
	require.NoError(t, s.Insert(ctx, sample("other", "u2", base, base)))

	ids := func(order tracker.Order) []string {
		apps, err := s.List(ctx, "u1", order)
		require.NoError(t, err)
		out := make([]string, len(apps))
		for i, a := range apps {
			out[i] = a.ID
		}
		return out
	}

	assert.Equal(t, []string{"l0", "l2", "l1"}, ids(tracker.OrderDateAppliedDesc))
	assert.Equal(t, []string{"l1", "l2", "l0"}, ids(tracker.OrderDateAppliedAsc))
	assert.Equal(t, []string{"l0", "l1", "l2"}, ids(tracker.OrderCreatedAsc))

	none, err := s.List(ctx, "nobody", tracker.OrderDateAppliedDesc)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testPartialUpdate(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	a := sample("p1", "u1", base, base)
	a.Notes = strp("keep")
	a.Tags = []string{"x"}
	require.NoError(t, s.Insert(ctx, a))

	later := base.Add(time.Hour)
	got, err := s.Update(ctx, "u1", "p1", tracker.Update{
		Status:   tracker.Assign(tracker.StatusInterview),
		Tags:     tracker.Assign([]string{"y", "z"}),
		Priority: tracker.Assign(tracker.PriorityLow),
	}, later)
	require.NoError(t, err)
	assert.Equal(t, tracker.StatusInterview, got.Status)
	assert.Equal(t, tracker.PriorityLow, got.Priority)
	assert.Equal(t, []string{"y", "z"}, got.Tags)
	assert.Equal(t, "keep", *got.Notes)
	assert.Equal(t, a.Company, got.Company)
	assert.True(t, got.LastUpdated.Equal(later))
	assert.True(t, got.CreatedAt.Equal(base))

	// An empty update still bumps lastUpdated.
	evenLater := later.Add(time.Hour)
	got, err = s.Update(ctx, "u1", "p1", tracker.Update{}, evenLater)
	require.NoError(t, err)
	assert.True(t, got.LastUpdated.Equal(evenLater))

	reread, err := s.Get(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, tracker.StatusInterview, reread.Status)
}

func testClear(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	a := sample("c1", "u1", base, base)
	a.URL = strp("https://x")
	a.Notes = strp("n")
	a.OADeadline = tp(base.Add(time.Hour))
	a.InterviewDate = tp(base.Add(2 * time.Hour))
	a.ReminderDaysBefore = intp(3)
	a.Tags = []string{"t"}
	require.NoError(t, s.Insert(ctx, a))

	got, err := s.Update(ctx, "u1", "c1", tracker.Update{
		URL:                tracker.Assign[*string](nil),
		Notes:              tracker.Assign[*string](nil),
		OADeadline:         tracker.Assign[*time.Time](nil),
		InterviewDate:      tracker.Assign[*time.Time](nil),
		ReminderDaysBefore: tracker.Assign[*int](nil),
		Tags:               tracker.Assign([]string{}),
	}, base.Add(time.Minute))
	require.NoError(t, err)
	assert.Nil(t, got.URL)
	assert.Nil(t, got.Notes)
	assert.Nil(t, got.OADeadline)
	assert.Nil(t, got.InterviewDate)
	assert.Nil(t, got.ReminderDaysBefore)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
}

func testOwnership(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, sample("o1", "u1", base, base)))

	_, err := s.Get(ctx, "u2", "o1")
	assert.ErrorIs(t, err, tracker.ErrNotFound)

	_, err = s.Update(ctx, "u2", "o1", tracker.Update{Role: tracker.Assign("hijacked")}, base)
	assert.ErrorIs(t, err, tracker.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "u2", "o1"), tracker.ErrNotFound)

	got, err := s.Get(ctx, "u1", "o1")
	require.NoError(t, err)
	assert.Equal(t, "Role o1", got.Role)

	_, err = s.Get(ctx, "u1", "missing")
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func testDelete(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, sample("d1", "u1", base, base)))

	require.NoError(t, s.Delete(ctx, "u1", "d1"))
	assert.ErrorIs(t, s.Delete(ctx, "u1", "d1"), tracker.ErrNotFound)

	_, err := s.Update(ctx, "u1", "d1", tracker.Update{Role: tracker.Assign("x")}, base)
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func testUpdateAfterDelete(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, sample("r1", "u1", base, base)))
	require.NoError(t, s.Delete(ctx, "u1", "r1"))

	_, err := s.Update(ctx, "u1", "r1", tracker.Update{
		Status: tracker.Assign(tracker.StatusInterview),
	}, base.Add(time.Minute))
	assert.ErrorIs(t, err, tracker.ErrNotFound)

	_, err = s.Get(ctx, "u1", "r1")
	assert.ErrorIs(t, err, tracker.ErrNotFound)
	apps, err := s.List(ctx, "u1", tracker.OrderDateAppliedDesc)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func testTies(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	for _, id := range []string{"t2", "t3", "t1"} {
		require.NoError(t, s.Insert(ctx, sample(id, "u1", base, base)))
	}

	ids := func(order tracker.Order) []string {
		apps, err := s.List(ctx, "u1", order)
		require.NoError(t, err)
		out := make([]string, len(apps))
		for i, a := range apps {
			out[i] = a.ID
		}
		return out
	}

	assert.Equal(t, []string{"t3", "t2", "t1"}, ids(tracker.OrderDateAppliedDesc))
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(tracker.OrderDateAppliedAsc))
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(tracker.OrderCreatedAsc))
}
