package s3

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hupe1980/genidx/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	store, err := New(ctx, bucket, fmt.Sprintf("test-genidx-%d/", time.Now().UnixNano()))
	require.NoError(t, err)

	data := make([]byte, 256*1024)
	_, _ = rand.Read(data)

	w, err := store.Create(ctx, "sample.bed.idx")
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "sample.bed.idx")

	b, err := store.Open(ctx, "sample.bed.idx")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), b.Size())

	got, err := blobstore.ReadBytes(ctx, b, 1024, 2048)
	require.NoError(t, err)
	assert.Equal(t, data[1024:2048], got)

	require.NoError(t, store.Delete(ctx, "sample.bed.idx"))
	_, err = store.Open(ctx, "sample.bed.idx")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
