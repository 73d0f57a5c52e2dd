package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/hupe1980/genidx/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store implements blobstore.BlobStore for MinIO and S3-compatible storage.
type Store struct {
	client   *minio.Client
	bucket   string
	prefix   string
	partSize uint64
}

// DefaultPartSize is the part size of streamed uploads. Index files are
// rarely larger than one part.
const DefaultPartSize = 16 << 20

var _ blobstore.BlobStore = (*Store)(nil)

// NewStore creates a MinIO blob store. rootPrefix is prepended to all keys
// (e.g. "indexes/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   rootPrefix,
		partSize: DefaultPartSize,
	}
}

// New connects to endpoint with static credentials.
func New(endpoint, accessKey, secretKey string, secure bool, bucket, rootPrefix string) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}
	return NewStore(client, bucket, rootPrefix), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return s.blob(key, info.Size), nil
}

// blob reads key with one ranged GET per call. minio.Object defers the
// request to the first Read, so a missing object surfaces there.
func (s *Store) blob(key string, size int64) *blobstore.RangedBlob {
	return blobstore.NewRangedBlob(size, func(ctx context.Context, off, end int64) (io.ReadCloser, error) {
		opts := minio.GetObjectOptions{}
		if err := opts.SetRange(off, end-1); err != nil {
			return nil, err
		}
		obj, err := s.client.GetObject(ctx, s.bucket, key, opts)
		if err != nil {
			return nil, err
		}
		return obj, nil
	})
}

func (s *Store) putOptions(key string) minio.PutObjectOptions {
	return minio.PutObjectOptions{
		ContentType: blobstore.ContentType(key),
		PartSize:    s.partSize,
	}
}

func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	key := s.key(name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), s.putOptions(key))
	return err
}

// Create streams an index file of unknown length. The client buffers one
// part at a time and publishes the object only when the stream ends
// cleanly.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	key := s.key(name)
	return blobstore.StartUpload(func(body io.Reader) error {
		_, err := s.client.PutObject(ctx, s.bucket, key, body, -1, s.putOptions(key))
		return err
	}), nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if isNotFound(err) {
		return nil
	}
	return err
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		name = strings.TrimPrefix(name, "/")
		if name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}
