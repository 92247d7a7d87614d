package gcs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	storageConfig "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/gcs"
)

func TestClientOptions(t *testing.T) {
	assert.Empty(t, gcs.ClientOptions(storageConfig.StorageConfig{}))
	assert.Len(t, gcs.ClientOptions(storageConfig.StorageConfig{CredentialsFile: "/secrets/sa.json"}), 1)
	assert.Len(t, gcs.ClientOptions(storageConfig.StorageConfig{Endpoint: "http://localhost:4443/storage/v1/"}), 2)
}

func TestNewGCSAdapter_RequiresBucket(t *testing.T) {
	_, err := gcs.NewGCSAdapter(context.Background(), storageConfig.StorageConfig{Type: "gcs"}, "archive")
	assert.ErrorContains(t, err, "bucket_name must be specified")
}
