package database_test

import (
	"testing"

	"socialexplore/config"
	"socialexplore/internal/database"
	"socialexplore/internal/database/dbtest"
	"socialexplore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_UnsupportedDriver(t *testing.T) {
	_, err := database.NewDB(&config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestAutoMigrate_CreatesTables(t *testing.T) {
	db := dbtest.Open(t)

	for _, m := range []any{
		&models.User{},
		&models.Activity{},
		&models.Participation{},
		&models.FriendRequest{},
		&models.Message{},
		&models.ReadMark{},
	} {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}
	assert.True(t, db.Migrator().HasIndex(&models.ReadMark{}, "idx_read_marks_user_kind_notification"))

	// Re-running is a no-op.
	require.NoError(t, database.AutoMigrate(db))
}
