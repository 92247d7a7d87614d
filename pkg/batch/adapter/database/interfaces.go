// Package database defines the connection contracts used by the job
// repository and the schema migrator.
package database

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/surfin-energy/pkg/batch/adapter/database/config"
)

// DBConnection represents an open, named database connection.
type DBConnection interface {
	// Name returns the configuration key the connection was opened from.
	Name() string
	// Type returns the database type ("postgres", "mysql", "sqlite").
	Type() string
	// Config returns the database configuration associated with this connection.
	Config() dbconfig.DatabaseConfig
	// GormDB returns the GORM handle.
	GormDB() *gorm.DB
	// GetSQLDB returns the underlying *sql.DB connection.
	GetSQLDB() (*sql.DB, error)
	// Close closes the connection.
	Close() error
}

// DBConnectionResolver opens connections by name and keeps them until CloseAll.
type DBConnectionResolver interface {
	// ResolveDBConnection returns the connection configured under name,
	// opening it on first use.
	ResolveDBConnection(ctx context.Context, name string) (DBConnection, error)
	// CloseAll closes every connection the resolver has opened.
	CloseAll() error
}
