package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/uritemplates/am"
	"github.com/teranos/uritemplates/errors"
)

// writeTree creates empty files at the given slash paths below root.
func writeTree(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
}

func TestLocalSourceList(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "2012/data_001.cdf", "2012/data_002.cdf", "README", "2013/data_001.cdf")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	names, err := LocalSource{Root: root}.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2012/data_001.cdf", "2012/data_002.cdf", "2013/data_001.cdf", "README"}, names)
}

func TestLocalSourceErrors(t *testing.T) {
	_, err := LocalSource{Root: filepath.Join(t.TempDir(), "missing")}.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")

	root := t.TempDir()
	writeTree(t, root, "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = LocalSource{Root: root}.List(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseSource(t *testing.T) {
	ctx := context.Background()

	src, err := ParseSource(ctx, "/srv/data", am.S3Config{})
	require.NoError(t, err)
	assert.Equal(t, LocalSource{Root: "/srv/data"}, src)

	_, err = ParseSource(ctx, "s3:///prefix", am.S3Config{})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))

	src, err = ParseSource(ctx, "s3://bucket/ace/mag", am.S3Config{Region: "us-east-1", Endpoint: "http://localhost:9000", PathStyle: true})
	require.NoError(t, err)
	s3src, ok := src.(*S3Source)
	require.True(t, ok)
	assert.Equal(t, "bucket", s3src.Bucket)
	assert.Equal(t, "ace/mag", s3src.Prefix)
	assert.Equal(t, "s3://bucket/ace/mag", s3src.String())
}
