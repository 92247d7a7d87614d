package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	storageConfig "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/config"
	coreConfig "github.com/tigerroll/surfin-energy/pkg/batch/core/config"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// Factory opens a connection for cfg.
type Factory func(ctx context.Context, cfg storageConfig.StorageConfig, name string) (StorageConnection, error)

var (
	factories   = make(map[string]Factory)
	factoriesMu sync.RWMutex
)

// RegisterFactory registers the Factory for a storage type.
func RegisterFactory(storageType string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, exists := factories[storageType]; exists {
		logger.Warnf("Storage factory for type '%s' already registered. Overwriting.", storageType)
	}
	factories[storageType] = factory
}

func getFactory(storageType string) (Factory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	factory, ok := factories[storageType]
	if !ok {
		return nil, fmt.Errorf("no storage factory registered for type: %s", storageType)
	}
	return factory, nil
}

// DecodeStorageConfig reads the entry called name from surfin.storage.
func DecodeStorageConfig(cfg *coreConfig.Config, name string) (storageConfig.StorageConfig, error) {
	var sc storageConfig.StorageConfig
	raw, ok := cfg.Surfin.StorageConfigs[name]
	if !ok {
		return sc, fmt.Errorf("storage configuration '%s' not found in surfin.storage", name)
	}
	props, ok := raw.(map[string]interface{})
	if !ok {
		return sc, fmt.Errorf("storage configuration '%s' must be a mapping, got %T", name, raw)
	}
	if err := configbinder.BindProperties(props, &sc); err != nil {
		return sc, fmt.Errorf("failed to decode storage config for '%s': %w", name, err)
	}
	return sc, nil
}

// Resolver opens storage connections from configuration and caches them by name.
type Resolver struct {
	cfg         *coreConfig.Config
	connections map[string]StorageConnection
	mu          sync.Mutex
}

// NewResolver creates a Resolver over cfg.Surfin.StorageConfigs.
func NewResolver(cfg *coreConfig.Config) *Resolver {
	return &Resolver{
		cfg:         cfg,
		connections: make(map[string]StorageConnection),
	}
}

// ResolveStorageConnection returns the cached connection for name, or opens it.
func (r *Resolver) ResolveStorageConnection(ctx context.Context, name string) (StorageConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.connections[name]; ok {
		return conn, nil
	}
	sc, err := DecodeStorageConfig(r.cfg, name)
	if err != nil {
		return nil, err
	}
	factory, err := getFactory(sc.Type)
	if err != nil {
		return nil, err
	}
	conn, err := factory(ctx, sc, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage '%s': %w", name, err)
	}
	r.connections[name] = conn
	logger.Debugf("Created new storage connection '%s' (%s).", name, sc.Type)
	return conn, nil
}

// CloseAll closes all connections managed by this resolver.
func (r *Resolver) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result *multierror.Error
	for name, conn := range r.connections {
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close storage connection '%s': %w", name, err))
		}
		delete(r.connections, name)
	}
	return result.ErrorOrNil()
}

var _ StorageConnectionResolver = (*Resolver)(nil)
