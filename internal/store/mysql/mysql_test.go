package mysql_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"jobtracker/tracker-service/internal/db"
	"jobtracker/tracker-service/internal/store"
	"jobtracker/tracker-service/internal/store/mysql"
	"jobtracker/tracker-service/internal/store/storetest"
	"jobtracker/tracker-service/internal/tracker"
)

// Runs only when TEST_MYSQL_DSN points at a disposable database.
func TestStore(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}

	ctx := context.Background()
	gdb, err := db.NewMySQL(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.CloseGorm(gdb) })

	s := mysql.New(gdb)
	require.NoError(t, s.Migrate(ctx))

	storetest.Run(t, func(t *testing.T) tracker.Store {
		require.NoError(t, gdb.Exec("DELETE FROM "+store.Table).Error)
		return s
	})
}
