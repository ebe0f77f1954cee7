// Package postgres implements tracker.Store on PostgreSQL through pgxpool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobtracker/tracker-service/internal/store"
	"jobtracker/tracker-service/internal/tracker"
)

//go:embed schema.sql
var schemaSQL string

var _ tracker.Store = (*Store)(nil)

// Store encapsulates all job_applications queries.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the table and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// List returns every application owned by userID in the requested order.
func (s *Store) List(ctx context.Context, userID string, order tracker.Order) ([]tracker.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+store.SelectColumns+`
		 FROM `+store.Table+`
		 WHERE user_id = $1
		 ORDER BY `+store.OrderBy(order),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	apps := make([]tracker.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// Get returns a single application by id, validating ownership.
func (s *Store) Get(ctx context.Context, userID, id string) (*tracker.Application, error) {
	a, err := scanApplication(s.pool.QueryRow(ctx,
		`SELECT `+store.SelectColumns+`
		 FROM `+store.Table+`
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, tracker.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

// Insert stores a new application.
func (s *Store) Insert(ctx context.Context, a *tracker.Application) error {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+store.Table+` (`+store.SelectColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		a.ID, a.UserID, a.Company, a.Role, a.URL,
		string(a.Status), string(a.Priority),
		a.DateApplied.UTC(), store.UTC(a.OADeadline), store.UTC(a.InterviewDate),
		a.ReminderDaysBefore, tags, a.Notes,
		a.CreatedAt.UTC(), a.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// Update writes the set fields of u. The ownership filter is part of the
// UPDATE itself, so a row deleted concurrently yields ErrNotFound.
func (s *Store) Update(ctx context.Context, userID, id string, u tracker.Update, now time.Time) (*tracker.Application, error) {
	assignments := store.Assignments(u)

	sets := make([]string, 0, len(assignments)+1)
	args := make([]any, 0, len(assignments)+3)
	for _, as := range assignments {
		args = append(args, as.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", as.Column, len(args)))
	}
	args = append(args, now.UTC())
	sets = append(sets, fmt.Sprintf("last_updated = $%d", len(args)))
	args = append(args, id, userID)

	a, err := scanApplication(s.pool.QueryRow(ctx,
		fmt.Sprintf(
			`UPDATE %s SET %s
			 WHERE id = $%d AND user_id = $%d
			 RETURNING %s`,
			store.Table, strings.Join(sets, ", "), len(args)-1, len(args), store.SelectColumns,
		),
		args...,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, tracker.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	return a, nil
}

// Delete removes an application owned by userID.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM `+store.Table+` WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tracker.ErrNotFound
	}
	return nil
}

func scanApplication(row pgx.Row) (*tracker.Application, error) {
	var (
		a                tracker.Application
		status, priority string
	)
	if err := row.Scan(
		&a.ID, &a.UserID, &a.Company, &a.Role, &a.URL, &status, &priority,
		&a.DateApplied, &a.OADeadline, &a.InterviewDate, &a.ReminderDaysBefore,
		&a.Tags, &a.Notes, &a.CreatedAt, &a.LastUpdated,
	); err != nil {
		return nil, err
	}
	a.Status = tracker.Status(status)
	a.Priority = tracker.Priority(priority)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return &a, nil
}
