package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"jobtracker/tracker-service/internal/db"
	"jobtracker/tracker-service/internal/store"
	"jobtracker/tracker-service/internal/store/postgres"
	"jobtracker/tracker-service/internal/store/storetest"
	"jobtracker/tracker-service/internal/tracker"
)

// Runs only when TEST_POSTGRES_URL points at a disposable database.
func TestStore(t *testing.T) {
	url := os.Getenv("TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	pool, err := db.NewPostgresPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := postgres.New(pool)
	require.NoError(t, s.Migrate(ctx))

	storetest.Run(t, func(t *testing.T) tracker.Store {
		_, err := pool.Exec(ctx, "TRUNCATE "+store.Table)
		require.NoError(t, err)
		return s
	})
}
