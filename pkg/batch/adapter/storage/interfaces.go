// Package storage defines the storage connection contract and resolves named
// connections from the surfin.storage configuration section. Backends
// register a Factory from their own package.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotExist is returned by Download when the object is missing.
var ErrObjectNotExist = errors.New("storage: object does not exist")

// StorageConnection is an open connection to one storage backend.
// An empty bucket means the configured default bucket.
type StorageConnection interface {
	Name() string
	Type() string

	// Upload stores data under objectName. The object becomes visible only
	// once the whole stream has been written.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download opens objectName. The caller closes the returned reader.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// Exists reports whether objectName is present.
	Exists(ctx context.Context, bucket, objectName string) (bool, error)
	// ListObjects calls fn for each object under prefix.
	ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error
	// DeleteObject deletes objectName; a missing object is not an error.
	DeleteObject(ctx context.Context, bucket, objectName string) error

	Close() error
}

// StorageConnectionResolver opens connections by name and keeps them until CloseAll.
type StorageConnectionResolver interface {
	ResolveStorageConnection(ctx context.Context, name string) (StorageConnection, error)
	CloseAll() error
}
