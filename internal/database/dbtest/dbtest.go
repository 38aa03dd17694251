// Package dbtest opens migrated sqlite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"socialexplore/config"
	"socialexplore/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated database in a fresh temp dir. It is closed when
// the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "socialexplore.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := database.NewDB(&config.DatabaseConfig{
		Driver:          "sqlite",
		DSN:             dsn,
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Hour,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
