// Package migration applies embedded SQL schema migrations with golang-migrate.
package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/database"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

const moduleName = "migration"

// Migrator handles database schema migrations.
type Migrator interface {
	// Up applies all pending migrations found under path in migrationFS.
	// tableName is the table golang-migrate keeps its version in.
	Up(ctx context.Context, migrationFS fs.FS, path string, tableName string) error
	// Down rolls back all applied migrations.
	Down(ctx context.Context, migrationFS fs.FS, path string, tableName string) error
	// Version reports the applied version and whether it is dirty.
	Version(migrationFS fs.FS, path string, tableName string) (uint, bool, error)
}

type migratorImpl struct {
	dbConn database.DBConnection
	dbType string
}

// NewMigrator creates a Migrator for dbConn.
func NewMigrator(dbConn database.DBConnection) Migrator {
	return &migratorImpl{
		dbConn: dbConn,
		dbType: dbConn.Type(),
	}
}

func (m *migratorImpl) getDatabaseDriver(sqlDB *sql.DB, tableName string) (migratedb.Driver, error) {
	switch m.dbType {
	case "postgres":
		return postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: tableName})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{MigrationsTable: tableName})
	case "sqlite":
		return sqlite.WithInstance(sqlDB, &sqlite.Config{MigrationsTable: tableName})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", m.dbType)
	}
}

func (m *migratorImpl) getMigrateInstance(migrationFS fs.FS, path string, tableName string) (*migrate.Migrate, error) {
	sqlDB, err := m.dbConn.GetSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sourceDriver, err := iofs.New(migrationFS, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs source driver for path %s: %w", path, err)
	}

	dbDriver, err := m.getDatabaseDriver(sqlDB, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	mInstance, err := migrate.NewWithInstance("iofs", sourceDriver, m.dbType, dbDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mInstance, nil
}

func (m *migratorImpl) run(ctx context.Context, migrationFS fs.FS, path, command, tableName string) error {
	logger.Infof("Executing migration '%s' (DB: %s, Path: %s, Table: %s)", command, m.dbConn.Name(), path, tableName)

	mInstance, err := m.getMigrateInstance(migrationFS, path, tableName)
	if err != nil {
		return exception.NewBatchError(moduleName, "failed to prepare migration", err, false, false)
	}
	// Not closed: closing mInstance would close the shared *sql.DB as well.

	done := make(chan error, 1)
	go func() {
		switch command {
		case "up":
			done <- mInstance.Up()
		case "down":
			done <- mInstance.Down()
		default:
			done <- fmt.Errorf("unsupported migration command: %s", command)
		}
	}()

	var migrateErr error
	select {
	case migrateErr = <-done:
	case <-ctx.Done():
		mInstance.GracefulStop <- true
		migrateErr = <-done
		if migrateErr == nil {
			migrateErr = ctx.Err()
		}
	}

	if errors.Is(migrateErr, migrate.ErrNoChange) {
		logger.Infof("Migration '%s': schema already up to date.", command)
		return nil
	}
	if migrateErr != nil {
		if version, dirty, versionErr := mInstance.Version(); versionErr == nil {
			logger.Errorf("Migration failed at version %d (dirty: %t)", version, dirty)
		}
		return exception.NewBatchError(moduleName, fmt.Sprintf("migration '%s' failed (DB: %s, Path: %s)", command, m.dbType, path), migrateErr, false, false)
	}

	logger.Infof("Migration '%s' completed successfully.", command)
	return nil
}

func (m *migratorImpl) Up(ctx context.Context, migrationFS fs.FS, path string, tableName string) error {
	return m.run(ctx, migrationFS, path, "up", tableName)
}

func (m *migratorImpl) Down(ctx context.Context, migrationFS fs.FS, path string, tableName string) error {
	return m.run(ctx, migrationFS, path, "down", tableName)
}

func (m *migratorImpl) Version(migrationFS fs.FS, path string, tableName string) (uint, bool, error) {
	mInstance, err := m.getMigrateInstance(migrationFS, path, tableName)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := mInstance.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
