// Package sqlite implements tracker.Store on a single SQLite file, for
// single-user and local deployments.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"jobtracker/tracker-service/internal/store"
	"jobtracker/tracker-service/internal/tracker"
)

//go:embed schema.sql
var schemaSQL string

var _ tracker.Store = (*Store)(nil)

// Store provides durable storage on SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - a 5-second busy timeout for lock contention
//   - a single connection, since SQLite has one writer at a time
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies the schema. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) List(ctx context.Context, userID string, order tracker.Order) ([]tracker.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+store.SelectColumns+`
		 FROM `+store.Table+`
		 WHERE user_id = ?
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

func (s *Store) Get(ctx context.Context, userID, id string) (*tracker.Application, error) {
	a, err := scanApplication(s.db.QueryRowContext(ctx,
		`SELECT `+store.SelectColumns+`
		 FROM `+store.Table+`
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tracker.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

func (s *Store) Insert(ctx context.Context, a *tracker.Application) error {
	tags, err := encodeTags(a.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+store.Table+` (`+store.SelectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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

// Update runs the ownership-filtered UPDATE and the read-back in one
// transaction.
func (s *Store) Update(ctx context.Context, userID, id string, u tracker.Update, now time.Time) (*tracker.Application, error) {
	assignments := store.Assignments(u)

	sets := make([]string, 0, len(assignments)+1)
	args := make([]any, 0, len(assignments)+3)
	for _, as := range assignments {
		v := as.Value
		if tags, ok := v.([]string); ok {
			enc, err := encodeTags(tags)
			if err != nil {
				return nil, err
			}
			v = enc
		}
		sets = append(sets, as.Column+" = ?")
		args = append(args, v)
	}
	sets = append(sets, "last_updated = ?")
	args = append(args, now.UTC(), id, userID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE `+store.Table+` SET `+strings.Join(sets, ", ")+`
		 WHERE id = ? AND user_id = ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	} else if n == 0 {
		return nil, tracker.ErrNotFound
	}

	a, err := scanApplication(tx.QueryRowContext(ctx,
		`SELECT `+store.SelectColumns+` FROM `+store.Table+` WHERE id = ? AND user_id = ?`,
		id, userID,
	))
	if err != nil {
		return nil, fmt.Errorf("reload application: %w", err)
	}

	committed = true
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return a, nil
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM `+store.Table+` WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if n == 0 {
		return tracker.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner) (*tracker.Application, error) {
	var (
		a                tracker.Application
		status, priority string
		tags             string
	)
	if err := row.Scan(
		&a.ID, &a.UserID, &a.Company, &a.Role, &a.URL, &status, &priority,
		&a.DateApplied, &a.OADeadline, &a.InterviewDate, &a.ReminderDaysBefore,
		&tags, &a.Notes, &a.CreatedAt, &a.LastUpdated,
	); err != nil {
		return nil, err
	}
	a.Status = tracker.Status(status)
	a.Priority = tracker.Priority(priority)
	a.Tags = []string{}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return &a, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}
