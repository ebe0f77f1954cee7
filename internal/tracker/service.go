package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates the job record operations.
// It has no dependency on net/http and is shared by every transport.
type Service struct {
	store Store
	pub   Publisher
	now   func() time.Time
	newID func() string
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the UUIDv7 id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService returns a configured Service. pub may be nil.
func NewService(store Store, pub Publisher, opts ...Option) *Service {
	s := &Service{
		store: store,
		pub:   pub,
		now:   time.Now,
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

// ─── Business logic ───────────────────────────────────────────────────────────

// List returns all applications for the caller, most recently applied first.
func (s *Service) List(ctx context.Context, userID string) ([]Application, error) {
	return s.list(ctx, userID, OrderDateAppliedDesc)
}

// ListForBoard returns all applications for the caller, oldest created first.
func (s *Service) ListForBoard(ctx context.Context, userID string) ([]Application, error) {
	return s.list(ctx, userID, OrderCreatedAsc)
}

// ListForStats returns all applications for the caller, earliest applied first.
func (s *Service) ListForStats(ctx context.Context, userID string) ([]Application, error) {
	return s.list(ctx, userID, OrderDateAppliedAsc)
}

func (s *Service) list(ctx context.Context, userID string, order Order) ([]Application, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	apps, err := s.store.List(ctx, userID, order)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// Get returns a single application owned by the caller.
func (s *Service) Get(ctx context.Context, userID, appID string) (*Application, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if appID == "" {
		return nil, invalid("missing job id")
	}
	return s.store.Get(ctx, userID, appID)
}

// Create validates the input, applies defaults and stores a new application.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Application, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	now := s.now().UTC()
	app, err := in.build(now)
	if err != nil {
		return nil, err
	}
	app.ID = s.newID()
	app.UserID = userID
	app.CreatedAt = now
	app.LastUpdated = now

	if err := s.store.Insert(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.publish(ctx, Event{Type: EventJobCreated, ApplicationID: app.ID, UserID: userID})
	return app, nil
}

// Update applies a partial update to an application owned by the caller.
// Returns ErrNotFound if the application does not exist or belong to userID,
// including when it was deleted between the ownership check and the write.
func (s *Service) Update(ctx context.Context, userID, appID string, in UpdateInput) (*Application, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if appID == "" {
		return nil, invalid("missing job id")
	}

	u, err := in.resolve()
	if err != nil {
		return nil, err
	}

	// Fetch current state (also validates ownership)
	existing, err := s.store.Get(ctx, userID, appID)
	if err != nil {
		return nil, err
	}

	app, err := s.store.Update(ctx, userID, appID, u, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{Type: EventJobUpdated, ApplicationID: appID, UserID: userID})
	if u.Status.Set && u.Status.Value != existing.Status {
		s.publish(ctx, Event{
			Type:          EventStatusChanged,
			ApplicationID: appID,
			UserID:        userID,
			From:          string(existing.Status),
			To:            string(u.Status.Value),
		})
	}
	return app, nil
}

// UpdateStatus is the board's drag-and-drop path: a partial update carrying
// only the status.
func (s *Service) UpdateStatus(ctx context.Context, userID, appID string, status Status) (*Application, error) {
	return s.Update(ctx, userID, appID, UpdateInput{Status: Value(string(status))})
}

// Delete removes an application owned by the caller.
func (s *Service) Delete(ctx context.Context, userID, appID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if appID == "" {
		return invalid("missing job id")
	}
	if err := s.store.Delete(ctx, userID, appID); err != nil {
		return err
	}
	s.publish(ctx, Event{Type: EventJobDeleted, ApplicationID: appID, UserID: userID})
	return nil
}

// publish is non-fatal: a failed notification never fails the mutation.
func (s *Service) publish(ctx context.Context, ev Event) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		log.WithFields(log.Fields{
			"event":         ev.Type,
			"applicationId": ev.ApplicationID,
		}).WithError(err).Warn("publish failed")
	}
}
