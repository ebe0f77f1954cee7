// Package mysql implements tracker.Store on MySQL through gorm.
package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobtracker/tracker-service/internal/store"
	"jobtracker/tracker-service/internal/tracker"
)

// applicationEntity is the gorm model of one job_applications row.
type applicationEntity struct {
	ID                 string     `gorm:"primaryKey;size:36;column:id"`
	UserID             string     `gorm:"size:191;not null;index:idx_user_date,priority:1;index:idx_user_created,priority:1;column:user_id"`
	Company            string     `gorm:"not null;column:company"`
	Role               string     `gorm:"not null;column:role"`
	URL                *string    `gorm:"type:text;column:url"`
	Status             string     `gorm:"size:16;not null;default:applied;column:status"`
	Priority           string     `gorm:"size:8;not null;default:medium;column:priority"`
	DateApplied        time.Time  `gorm:"precision:3;not null;index:idx_user_date,priority:2;column:date_applied"`
	OADeadline         *time.Time `gorm:"precision:3;column:oa_deadline"`
	InterviewDate      *time.Time `gorm:"precision:3;column:interview_date"`
	ReminderDaysBefore *int       `gorm:"column:reminder_days_before"`
	Tags               []string   `gorm:"type:json;serializer:json;column:tags"`
	Notes              *string    `gorm:"type:text;column:notes"`
	CreatedAt          time.Time  `gorm:"precision:3;autoCreateTime:false;index:idx_user_created,priority:2;column:created_at"`
	LastUpdated        time.Time  `gorm:"precision:3;column:last_updated"`
}

func (applicationEntity) TableName() string {
	return store.Table
}

var _ tracker.Store = (*Store)(nil)

// Store is the gorm-backed repository.
type Store struct {
	db *gorm.DB
}

// New returns a Store using db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or alters the table to match the model.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&applicationEntity{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, userID string, order tracker.Order) ([]tracker.Application, error) {
	var rows []applicationEntity
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(store.OrderBy(order)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	apps := make([]tracker.Application, 0, len(rows))
	for i := range rows {
		apps = append(apps, toApplication(&rows[i]))
	}
	return apps, nil
}

func (s *Store) Get(ctx context.Context, userID, id string) (*tracker.Application, error) {
	var row applicationEntity
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracker.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	a := toApplication(&row)
	return &a, nil
}

func (s *Store) Insert(ctx context.Context, a *tracker.Application) error {
	row := fromApplication(a)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// Update locks the owned row, writes the set columns and reads it back. MySQL
// reports unchanged rows as unaffected, so ownership is decided by the
// locking read rather than by RowsAffected.
func (s *Store) Update(ctx context.Context, userID, id string, u tracker.Update, now time.Time) (*tracker.Application, error) {
	var out tracker.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row applicationEntity
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, userID).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tracker.ErrNotFound
		}
		if err != nil {
			return err
		}

		changes := map[string]any{"last_updated": now.UTC()}
		for _, as := range store.Assignments(u) {
			if tags, ok := as.Value.([]string); ok {
				// map updates bypass the field serializer
				b, err := json.Marshal(tags)
				if err != nil {
					return fmt.Errorf("encode tags: %w", err)
				}
				changes[as.Column] = gorm.Expr("CAST(? AS JSON)", string(b))
				continue
			}
			changes[as.Column] = as.Value
		}
		if err := tx.Model(&row).Updates(changes).Error; err != nil {
			return err
		}

		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
			return err
		}
		out = toApplication(&row)
		return nil
	})
	if errors.Is(err, tracker.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	return &out, nil
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&applicationEntity{})
	if res.Error != nil {
		return fmt.Errorf("delete application: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return tracker.ErrNotFound
	}
	return nil
}

func toApplication(r *applicationEntity) tracker.Application {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return tracker.Application{
		ID:                 r.ID,
		UserID:             r.UserID,
		Company:            r.Company,
		Role:               r.Role,
		URL:                r.URL,
		Status:             tracker.Status(r.Status),
		Priority:           tracker.Priority(r.Priority),
		DateApplied:        r.DateApplied.UTC(),
		OADeadline:         store.UTC(r.OADeadline),
		InterviewDate:      store.UTC(r.InterviewDate),
		ReminderDaysBefore: r.ReminderDaysBefore,
		Tags:               tags,
		Notes:              r.Notes,
		CreatedAt:          r.CreatedAt.UTC(),
		LastUpdated:        r.LastUpdated.UTC(),
	}
}

func fromApplication(a *tracker.Application) applicationEntity {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return applicationEntity{
		ID:                 a.ID,
		UserID:             a.UserID,
		Company:            a.Company,
		Role:               a.Role,
		URL:                a.URL,
		Status:             string(a.Status),
		Priority:           string(a.Priority),
		DateApplied:        a.DateApplied.UTC(),
		OADeadline:         store.UTC(a.OADeadline),
		InterviewDate:      store.UTC(a.InterviewDate),
		ReminderDaysBefore: a.ReminderDaysBefore,
		Tags:               tags,
		Notes:              a.Notes,
		CreatedAt:          a.CreatedAt.UTC(),
		LastUpdated:        a.LastUpdated.UTC(),
	}
}
