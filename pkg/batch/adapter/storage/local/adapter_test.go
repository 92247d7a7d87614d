package local_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageAdapter "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/surfin-energy/pkg/batch/adapter/storage/local"
	config "github.com/tigerroll/surfin-energy/pkg/batch/core/config"
)

func newAdapter(t *testing.T) (storageAdapter.StorageConnection, string) {
	baseDir := filepath.Join(t.TempDir(), "out")
	conn, err := local.NewLocalAdapter(storageConfig.StorageConfig{Type: "local", BaseDir: baseDir, BucketName: "data"}, "output")
	require.NoError(t, err)
	return conn, baseDir
}

func TestNewLocalAdapter_CreatesBaseDir(t *testing.T) {
	_, baseDir := newAdapter(t)
	info, err := os.Stat(baseDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = local.NewLocalAdapter(storageConfig.StorageConfig{}, "empty")
	assert.ErrorContains(t, err, "BaseDir must be specified")
}

func TestUploadDownload(t *testing.T) {
	conn, baseDir := newAdapter(t)
	ctx := context.Background()

	require.NoError(t, conn.Upload(ctx, "", "ulsan/ulsan_train.csv", strings.NewReader("ID,date\n"), "text/csv"))

	_, err := os.Stat(filepath.Join(baseDir, "data", "ulsan", "ulsan_train.csv"))
	require.NoError(t, err)

	ok, err := conn.Exists(ctx, "", "ulsan/ulsan_train.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	r, err := conn.Download(ctx, "", "ulsan/ulsan_train.csv")
	require.NoError(t, err)
	defer r.Close()
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "ID,date\n", string(body))

	entries, err := os.ReadDir(filepath.Join(baseDir, "data", "ulsan"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestDownload_Missing(t *testing.T) {
	conn, _ := newAdapter(t)
	_, err := conn.Download(context.Background(), "", "nope.csv")
	assert.ErrorIs(t, err, storageAdapter.ErrObjectNotExist)

	ok, err := conn.Exists(context.Background(), "", "nope.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestUpload_FailedStreamLeavesNoObject(t *testing.T) {
	conn, _ := newAdapter(t)
	ctx := context.Background()

	err := conn.Upload(ctx, "", "dangjin/dangjin_test.csv", io.MultiReader(bytes.NewBufferString("ID"), failingReader{}), "text/csv")
	require.Error(t, err)

	ok, err := conn.Exists(ctx, "", "dangjin/dangjin_test.csv")
	require.NoError(t, err)
	assert.False(t, ok)

	var names []string
	require.NoError(t, conn.ListObjects(ctx, "", "", func(name string) error {
		names = append(names, name)
		return nil
	}))
	assert.Empty(t, names)
}

func TestListAndDelete(t *testing.T) {
	conn, _ := newAdapter(t)
	ctx := context.Background()
	for _, name := range []string{"ulsan/a.csv", "ulsan/b.csv", "dangjin/a.csv"} {
		require.NoError(t, conn.Upload(ctx, "", name, strings.NewReader("x"), "text/csv"))
	}

	var names []string
	require.NoError(t, conn.ListObjects(ctx, "", "ulsan/", func(name string) error {
		names = append(names, name)
		return nil
	}))
	sort.Strings(names)
	assert.Equal(t, []string{"ulsan/a.csv", "ulsan/b.csv"}, names)

	require.NoError(t, conn.DeleteObject(ctx, "", "ulsan/a.csv"))
	require.NoError(t, conn.DeleteObject(ctx, "", "ulsan/a.csv"))
	ok, err := conn.Exists(ctx, "", "ulsan/a.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolvePath_RejectsEscape(t *testing.T) {
	conn, _ := newAdapter(t)
	err := conn.Upload(context.Background(), "", "../../etc/passwd", strings.NewReader("x"), "text/plain")
	assert.ErrorContains(t, err, "escapes BaseDir")
}

func TestResolver_OpensRegisteredLocalAdapter(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Surfin.StorageConfigs["output"] = map[string]interface{}{
		"type":     "local",
		"base_dir": t.TempDir(),
	}
	cfg.Surfin.StorageConfigs["archive"] = map[string]interface{}{"type": "ftp"}

	resolver := storageAdapter.NewResolver(cfg)
	ctx := context.Background()

	first, err := resolver.ResolveStorageConnection(ctx, "output")
	require.NoError(t, err)
	assert.Equal(t, local.ProviderType, first.Type())

	second, err := resolver.ResolveStorageConnection(ctx, "output")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = resolver.ResolveStorageConnection(ctx, "archive")
	assert.ErrorContains(t, err, "no storage factory registered for type: ftp")

	_, err = resolver.ResolveStorageConnection(ctx, "missing")
	assert.ErrorContains(t, err, "not found in surfin.storage")

	assert.NoError(t, resolver.CloseAll())
}
