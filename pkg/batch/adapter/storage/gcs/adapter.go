// Package gcs provides a Google Cloud Storage implementation of the storage adapter interfaces.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	storageAdapter "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// ProviderType defines the type identifier for this provider.
const ProviderType = "gcs"

func init() {
	storageAdapter.RegisterFactory(ProviderType, NewGCSAdapter)
}

type gcsAdapter struct {
	client *storage.Client
	cfg    storageConfig.StorageConfig
	name   string
}

var _ storageAdapter.StorageConnection = (*gcsAdapter)(nil)

// ClientOptions builds the client options for cfg.
func ClientOptions(cfg storageConfig.StorageConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	return opts
}

// NewGCSAdapter opens a storage client for cfg.
func NewGCSAdapter(ctx context.Context, cfg storageConfig.StorageConfig, name string) (storageAdapter.StorageConnection, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("gcs storage adapter '%s': bucket_name must be specified", name)
	}
	client, err := storage.NewClient(ctx, ClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage adapter '%s': failed to create client: %w", name, err)
	}
	return NewGCSAdapterWithClient(client, cfg, name), nil
}

// NewGCSAdapterWithClient wraps an existing client.
func NewGCSAdapterWithClient(client *storage.Client, cfg storageConfig.StorageConfig, name string) storageAdapter.StorageConnection {
	return &gcsAdapter{client: client, cfg: cfg, name: name}
}

func (a *gcsAdapter) Name() string { return a.name }
func (a *gcsAdapter) Type() string { return ProviderType }

func (a *gcsAdapter) Close() error {
	logger.Debugf("GCS storage adapter '%s' closed.", a.name)
	return a.client.Close()
}

func (a *gcsAdapter) bucket(name string) *storage.BucketHandle {
	if name == "" {
		name = a.cfg.BucketName
	}
	return a.client.Bucket(name)
}

// Upload streams data to the object. GCS publishes it only when the writer closes.
func (a *gcsAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	w := a.bucket(bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return fmt.Errorf("gcs storage adapter '%s': failed to upload '%s': %w", a.name, objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs storage adapter '%s': failed to finalize '%s': %w", a.name, objectName, err)
	}
	return nil
}

func (a *gcsAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	r, err := a.bucket(bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("gcs storage adapter '%s': %s: %w", a.name, objectName, storageAdapter.ErrObjectNotExist)
		}
		return nil, fmt.Errorf("gcs storage adapter '%s': failed to read '%s': %w", a.name, objectName, err)
	}
	return r, nil
}

func (a *gcsAdapter) Exists(ctx context.Context, bucket, objectName string) (bool, error) {
	_, err := a.bucket(bucket).Object(objectName).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("gcs storage adapter '%s': failed to stat '%s': %w", a.name, objectName, err)
}

func (a *gcsAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	it := a.bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gcs storage adapter '%s': failed to list '%s': %w", a.name, prefix, err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
}

func (a *gcsAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	err := a.bucket(bucket).Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs storage adapter '%s': failed to delete '%s': %w", a.name, objectName, err)
	}
	return nil
}
