package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker/tracker-service/internal/store/sqlite"
	"jobtracker/tracker-service/internal/store/storetest"
	"jobtracker/tracker-service/internal/tracker"
)

func open(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) tracker.Store { return open(t) })
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := open(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	s, err := sqlite.Open(path)
	require.NoError(t, err)

	svc := tracker.NewService(s, nil)
	app, err := svc.Create(context.Background(), "u1", tracker.CreateInput{Company: "Acme", Role: "SWE"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = sqlite.Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(context.Background(), "u1", app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Company)
}
