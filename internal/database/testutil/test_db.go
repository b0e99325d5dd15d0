package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gorm-trashbin/internal/database"
)

// TestDBOption adjusts how MustOpenTestDB prepares the database.
type TestDBOption func(*testDBConfig)

type testDBConfig struct {
	seed bool
}

// WithSeedData inserts the default admin account after migrating, matching
// what a fresh production start-up produces.
func WithSeedData() TestDBOption {
	return func(cfg *testDBConfig) {
		cfg.seed = true
	}
}

// MustOpenTestDB opens an in-memory SQLite database with the trash schema
// already migrated. The handle is closed via t.Cleanup, which also discards
// the shared in-memory store before the next test opens its own.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	cfg := testDBConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := database.Open(database.Config{Driver: "sqlite"})
	require.NoError(t, err)

	if cfg.seed {
		require.NoError(t, database.AutoMigrateAndSeed(db))
	} else {
		require.NoError(t, database.AutoMigrate(db))
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
