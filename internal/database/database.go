package database

import (
	"fmt"
	"time"

	"socialexplore/config"
	"socialexplore/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	level := logger.Error // Only log errors, not every SQL query
	if cfg.LogQueries {
		level = logger.Info
	}
	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer; serialize through one connection.
		maxOpen = 1
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	log.Debug().Str("driver", cfg.Driver).Int("max_open_conns", maxOpen).Msg("database connected")
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models. Order matters for
// foreign keys: read_marks references friend_requests and activities.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.Participation{},
		&models.FriendRequest{},
		&models.Message{},
		&models.ReadMark{},
	)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
