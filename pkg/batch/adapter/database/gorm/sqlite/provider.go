// Package sqlite registers the SQLite dialector.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/surfin-energy/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/surfin-energy/pkg/batch/adapter/database/gorm"
)

func init() {
	gormadapter.RegisterDialector("sqlite", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		return sqlite.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString returns the file path; the sqlite dialector takes it as is.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	return c.Database
}
