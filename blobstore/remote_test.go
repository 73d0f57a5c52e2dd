package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rangeLog serves ranges of data and records each request.
type rangeLog struct {
	data     []byte
	requests []string
}

func (l *rangeLog) fetch(_ context.Context, off, end int64) (io.ReadCloser, error) {
	l.requests = append(l.requests, fmt.Sprintf("%d-%d", off, end))
	return io.NopCloser(bytes.NewReader(l.data[off:end])), nil
}

func TestRangedBlob(t *testing.T) {
	ctx := context.Background()
	l := &rangeLog{data: []byte("0123456789")}
	b := NewRangedBlob(int64(len(l.data)), l.fetch)

	buf := make([]byte, 4)
	n, err := b.ReadAt(ctx, buf, 2)
	require.NoError(t, err)
	assert.Equal(t, "2345", string(buf[:n]))

	n, err = b.ReadAt(ctx, buf, 8)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "89", string(buf[:n]))

	_, err = b.ReadAt(ctx, buf, 10)
	assert.ErrorIs(t, err, io.EOF)
	n, err = b.ReadAt(ctx, nil, 3)
	assert.NoError(t, err)
	assert.Zero(t, n)

	// The whole index file is fetched with one request.
	l.requests = nil
	rc, err := NewReader(ctx, b)
	require.NoError(t, err)
	all, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, l.data, all)
	assert.Equal(t, []string{"0-10"}, l.requests)

	_, err = b.ReadRange(ctx, 10, 1)
	assert.ErrorIs(t, err, io.EOF)
	_, err = b.ReadRange(ctx, -1, 1)
	assert.ErrorIs(t, err, io.EOF)
}

func TestRangedBlob_FetchError(t *testing.T) {
	boom := errors.New("connection reset")
	b := NewRangedBlob(10, func(context.Context, int64, int64) (io.ReadCloser, error) {
		return nil, boom
	})
	_, err := ReadBytes(context.Background(), b, 0, 5)
	assert.ErrorIs(t, err, boom)
}

func TestUpload_Close(t *testing.T) {
	var got []byte
	u := StartUpload(func(body io.Reader) error {
		var err error
		got, err = io.ReadAll(body)
		return err
	})

	_, err := u.Write([]byte("GIDX"))
	require.NoError(t, err)
	_, err = u.Write([]byte("body"))
	require.NoError(t, err)
	require.NoError(t, u.Sync())
	require.NoError(t, u.Close())
	assert.Equal(t, "GIDXbody", string(got))

	require.NoError(t, u.Close())
	_, err = u.Write([]byte("late"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.NoError(t, u.Abort())
}

func TestUpload_Abort(t *testing.T) {
	published := false
	u := StartUpload(func(body io.Reader) error {
		if _, err := io.ReadAll(body); err != nil {
			return err
		}
		published = true
		return nil
	})

	_, err := u.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, u.Abort())
	assert.False(t, published)
	assert.ErrorIs(t, u.Close(), ErrUploadAborted)
}

func TestUpload_StoreFailure(t *testing.T) {
	denied := errors.New("access denied")
	u := StartUpload(func(io.Reader) error { return denied })

	// Writes fail once the store gave up without reading.
	_, err := u.Write([]byte("data"))
	assert.ErrorIs(t, err, denied)
	assert.ErrorIs(t, u.Close(), denied)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/octet-stream", ContentType("a.bed.idx"))
	assert.Equal(t, "application/gzip", ContentType("a.bed.idx.gz"))
	assert.Equal(t, "application/zstd", ContentType("a.bed.idx.ZST"))
	assert.Equal(t, "application/x-lz4", ContentType("a.bed.idx.lz4"))
}
