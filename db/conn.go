// Package db contains things related to the metadata database
package db

import (
	"bitwise74/secure-file-ops/internal/model"
	"errors"
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type options struct {
	requireMounted bool
}

type Option func(*options)

// RequireMountedFile refuses to create a missing sqlite file. Used inside
// docker containers where the host should mount it using volumes
func RequireMountedFile() Option {
	return func(o *options) {
		o.requireMounted = true
	}
}

// New opens the database picked by driver and migrates all tables. Errors
// are translated so unique index violations surface as gorm.ErrDuplicatedKey
func New(driver, dsn string, opts ...Option) (*gorm.DB, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		if o.requireMounted && dsn != ":memory:" {
			if _, err := os.Stat(dsn); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", dsn)
			}
		}

		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database, %w", driver, err)
	}

	err = db.AutoMigrate(model.User{}, model.File{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
