// Package memory is an in-process tracker.Store used for local runs and
// tests. Contents are lost when the process exits.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"jobtracker/tracker-service/internal/tracker"
)

var _ tracker.Store = (*Store)(nil)

// Store keeps applications in a map keyed by id.
type Store struct {
	mu   sync.RWMutex
	apps map[string]tracker.Application
}

// New returns an empty Store.
func New() *Store {
	return &Store{apps: make(map[string]tracker.Application)}
}

func (s *Store) List(_ context.Context, userID string, order tracker.Order) ([]tracker.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]tracker.Application, 0)
	for _, a := range s.apps {
		if a.UserID == userID {
			out = append(out, clone(a))
		}
	}
	sortApplications(out, order)
	return out, nil
}

func (s *Store) Get(_ context.Context, userID, id string) (*tracker.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.apps[id]
	if !ok || a.UserID != userID {
		return nil, tracker.ErrNotFound
	}
	c := clone(a)
	return &c, nil
}

func (s *Store) Insert(_ context.Context, app *tracker.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.ID] = clone(*app)
	return nil
}

func (s *Store) Update(_ context.Context, userID, id string, u tracker.Update, now time.Time) (*tracker.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.apps[id]
	if !ok || a.UserID != userID {
		return nil, tracker.ErrNotFound
	}
	u.Apply(&a)
	a.LastUpdated = now
	s.apps[id] = clone(a)
	out := clone(a)
	return &out, nil
}

func (s *Store) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.apps[id]
	if !ok || a.UserID != userID {
		return tracker.ErrNotFound
	}
	delete(s.apps, id)
	return nil
}

// clone deep-copies the tags and every optional field so callers never share
// memory with a stored record.
func clone(a tracker.Application) tracker.Application {
	tags := make([]string, len(a.Tags))
	copy(tags, a.Tags)
	a.Tags = tags
	a.URL = clonePtr(a.URL)
	a.Notes = clonePtr(a.Notes)
	a.OADeadline = clonePtr(a.OADeadline)
	a.InterviewDate = clonePtr(a.InterviewDate)
	a.ReminderDaysBefore = clonePtr(a.ReminderDaysBefore)
	return a
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// sortApplications matches the SQL stores: id breaks ties in the direction of
// the primary key.
func sortApplications(apps []tracker.Application, order tracker.Order) {
	sort.Slice(apps, func(i, j int) bool {
		a, b := apps[i], apps[j]
		switch order {
		case tracker.OrderCreatedAsc:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		case tracker.OrderDateAppliedAsc:
			if !a.DateApplied.Equal(b.DateApplied) {
				return a.DateApplied.Before(b.DateApplied)
			}
			return a.ID < b.ID
		default:
			if !a.DateApplied.Equal(b.DateApplied) {
				return a.DateApplied.After(b.DateApplied)
			}
			return a.ID > b.ID
		}
	})
}
