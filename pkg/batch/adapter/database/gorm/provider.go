// Package gorm opens GORM connections from the named entries under
// surfin.database. Dialects register themselves from the mysql, postgres
// and sqlite subpackages.
package gorm

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/database"
	dbconfig "github.com/tigerroll/surfin-energy/pkg/batch/adapter/database/config"
	config "github.com/tigerroll/surfin-energy/pkg/batch/core/config"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// DialectorFactory generates a gorm.Dialector from a dbconfig.DatabaseConfig.
type DialectorFactory func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error)

var (
	dialectorRegistry = make(map[string]DialectorFactory)
	dialectorMutex    sync.RWMutex
)

// RegisterDialector registers a DialectorFactory for the given database type.
func RegisterDialector(dbType string, factory DialectorFactory) {
	dialectorMutex.Lock()
	defer dialectorMutex.Unlock()
	if _, exists := dialectorRegistry[dbType]; exists {
		logger.Warnf("Dialector for type '%s' already registered. Overwriting.", dbType)
	}
	dialectorRegistry[dbType] = factory
}

// GetDialectorFactory retrieves the DialectorFactory corresponding to the specified DB type.
func GetDialectorFactory(dbType string) (DialectorFactory, error) {
	dialectorMutex.RLock()
	defer dialectorMutex.RUnlock()
	factory, ok := dialectorRegistry[dbType]
	if !ok {
		return nil, fmt.Errorf("no dialector registered for database type: %s", dbType)
	}
	return factory, nil
}

// DecodeDatabaseConfig reads the entry called name from surfin.database.
func DecodeDatabaseConfig(cfg *config.Config, name string) (dbconfig.DatabaseConfig, error) {
	var dbConfig dbconfig.DatabaseConfig
	raw, ok := cfg.Surfin.AdaptorConfigs[name]
	if !ok {
		return dbConfig, fmt.Errorf("database configuration '%s' not found in surfin.database", name)
	}
	props, ok := raw.(map[string]interface{})
	if !ok {
		return dbConfig, fmt.Errorf("database configuration '%s' must be a mapping, got %T", name, raw)
	}
	if err := configbinder.BindProperties(props, &dbConfig); err != nil {
		return dbConfig, fmt.Errorf("failed to decode database config for '%s': %w", name, err)
	}
	return dbConfig, nil
}

// Open establishes a GORM connection for dbConfig and applies its pool settings.
func Open(dbConfig dbconfig.DatabaseConfig) (*gorm.DB, error) {
	dialectorFactory, err := GetDialectorFactory(dbConfig.Type)
	if err != nil {
		return nil, err
	}
	dialector, err := dialectorFactory(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialector for %s: %w", dbConfig.Type, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to open GORM connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if dbConfig.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.Pool.MaxOpenConns)
	}
	if dbConfig.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.Pool.MaxIdleConns)
	}
	if dbConfig.Pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.Pool.ConnMaxLifetimeMinutes) * time.Minute)
	}
	return db, nil
}

// NewGormLogger routes GORM warnings and slow queries through the framework logger.
func NewGormLogger() gormlogger.Interface {
	return gormlogger.New(gormWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Connection is the GORM implementation of database.DBConnection.
type Connection struct {
	name   string
	db     *gorm.DB
	config dbconfig.DatabaseConfig
}

// NewConnection wraps an open *gorm.DB.
func NewConnection(name string, db *gorm.DB, cfg dbconfig.DatabaseConfig) *Connection {
	return &Connection{name: name, db: db, config: cfg}
}

func (c *Connection) Name() string                    { return c.name }
func (c *Connection) Type() string                    { return c.config.Type }
func (c *Connection) Config() dbconfig.DatabaseConfig { return c.config }
func (c *Connection) GormDB() *gorm.DB                { return c.db }

// GetSQLDB returns the underlying *sql.DB connection.
func (c *Connection) GetSQLDB() (*sql.DB, error) {
	return c.db.DB()
}

// Close closes the underlying *sql.DB.
func (c *Connection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Resolver opens connections from configuration and caches them by name.
type Resolver struct {
	cfg         *config.Config
	connections map[string]database.DBConnection
	mu          sync.Mutex
}

// NewResolver creates a Resolver over cfg.Surfin.AdaptorConfigs.
func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{
		cfg:         cfg,
		connections: make(map[string]database.DBConnection),
	}
}

// ResolveDBConnection returns the cached connection for name, or opens it.
func (r *Resolver) ResolveDBConnection(ctx context.Context, name string) (database.DBConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.connections[name]; ok {
		return conn, nil
	}

	dbConfig, err := DecodeDatabaseConfig(r.cfg, name)
	if err != nil {
		return nil, err
	}
	db, err := Open(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database '%s': %w", name, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database '%s': %w", name, err)
	}

	conn := NewConnection(name, db, dbConfig)
	r.connections[name] = conn
	logger.Infof("Established new DB connection: %s (%s)", name, dbConfig.Type)
	return conn, nil
}

// CloseAll closes all connections managed by this resolver.
func (r *Resolver) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var lastErr error
	for name, conn := range r.connections {
		if err := conn.Close(); err != nil {
			logger.Errorf("Failed to close connection '%s': %v", name, err)
			lastErr = err
		}
		delete(r.connections, name)
	}
	return lastErr
}

var _ database.DBConnectionResolver = (*Resolver)(nil)
