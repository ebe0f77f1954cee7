package views

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"jobtracker/tracker-service/internal/deadline"
	"jobtracker/tracker-service/internal/tracker"
)

// ErrCardNotFound is returned by Board.Move for an id that is not on the
// board.
var ErrCardNotFound = errors.New("card not found on board")

// Card is one application on the board with its deadline badges.
type Card struct {
	ID          string              `json:"id"`
	Company     string              `json:"company"`
	Role        string              `json:"role"`
	Status      tracker.Status      `json:"status"`
	Priority    tracker.Priority    `json:"priority"`
	DateApplied time.Time           `json:"dateApplied"`
	Tags        []string            `json:"tags"`
	Deadlines   []deadline.Deadline `json:"deadlines"`
}

// Column holds the cards of one status.
type Column struct {
	Status tracker.Status `json:"status"`
	Label  string         `json:"label"`
	Cards  []Card         `json:"cards"`
}

// StatusUpdater persists a status change made on the board.
type StatusUpdater func(ctx context.Context, id string, to tracker.Status) error

// Board is the kanban projection. Columns follow tracker.StatusOrder and
// cards inside a column are sorted by dateApplied, oldest first.
type Board struct {
	Columns []Column `json:"columns"`

	apps []tracker.Application
	now  time.Time
}

// NewBoard builds a board from apps, classifying deadlines against now.
func NewBoard(apps []tracker.Application, now time.Time) *Board {
	b := &Board{apps: append([]tracker.Application(nil), apps...), now: now}
	b.rebuild()
	return b
}

// Move changes the status of card id to `to` immediately, then persists it
// with update. If update fails the card is put back in its previous column
// and the error is returned. The failed request is not retried.
func (b *Board) Move(ctx context.Context, id string, to tracker.Status, update StatusUpdater) error {
	idx := -1
	for i := range b.apps {
		if b.apps[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrCardNotFound
	}

	from := b.apps[idx].Status
	if from == to {
		return nil
	}

	b.apps[idx].Status = to
	b.rebuild()

	if err := update(ctx, id, to); err != nil {
		b.apps[idx].Status = from
		b.rebuild()
		return fmt.Errorf("move %s to %s: %w", id, to, err)
	}
	return nil
}

// Column returns the column of status s.
func (b *Board) Column(s tracker.Status) Column {
	for _, c := range b.Columns {
		if c.Status == s {
			return c
		}
	}
	return Column{Status: s, Label: s.Label(), Cards: []Card{}}
}

func (b *Board) rebuild() {
	byStatus := make(map[tracker.Status][]Card, len(tracker.StatusOrder))
	for i := range b.apps {
		a := &b.apps[i]
		byStatus[a.Status] = append(byStatus[a.Status], Card{
			ID:          a.ID,
			Company:     a.Company,
			Role:        a.Role,
			Status:      a.Status,
			Priority:    a.Priority,
			DateApplied: a.DateApplied,
			Tags:        a.Tags,
			Deadlines:   deadline.ForApplication(a, b.now),
		})
	}

	cols := make([]Column, 0, len(tracker.StatusOrder))
	for _, s := range tracker.StatusOrder {
		cards := byStatus[s]
		if cards == nil {
			cards = []Card{}
		}
		sort.SliceStable(cards, func(i, j int) bool {
			return cards[i].DateApplied.Before(cards[j].DateApplied)
		})
		cols = append(cols, Column{Status: s, Label: s.Label(), Cards: cards})
	}
	b.Columns = cols
}
