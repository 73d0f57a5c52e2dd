package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/genidx/blobstore"
)

// UploadConfig controls how index files are written.
type UploadConfig struct {
	// PartSize is the multipart part size. Index files below it go up in a
	// single PutObject. Default: 8MB.
	PartSize int64
	// Concurrency is the number of parts in flight. Default: 5.
	Concurrency int
	// EnableChecksum asks S3 to verify a CRC32C of every upload.
	// Default: true.
	EnableChecksum bool
	// LeavePartsOnError keeps the parts of a failed multipart upload.
	LeavePartsOnError bool
}

// DefaultUploadConfig returns the default upload settings.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:       8 * 1024 * 1024,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

func newUploader(client manager.UploadAPIClient, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = max(cfg.PartSize, manager.MinUploadPartSize)
		u.Concurrency = max(cfg.Concurrency, 1)
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// computeCRC32C returns the base64 big-endian CRC32C that S3 expects.
func computeCRC32C(data []byte) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], crc32.Checksum(data, castagnoli))
	return base64.StdEncoding.EncodeToString(b[:])
}

// putInput describes an index file object. The content type follows the
// compression suffix of the key.
func (s *Store) putInput(key string, body io.Reader) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(blobstore.ContentType(key)),
	}
}

// Put uploads a whole index file with one PutObject.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	input := s.putInput(s.key(name), bytes.NewReader(data))
	input.ContentLength = aws.Int64(int64(len(data)))
	if s.cfg.EnableChecksum {
		input.ChecksumCRC32C = aws.String(computeCRC32C(data))
	}
	_, err := s.client.PutObject(ctx, input)
	return err
}

// Create streams an index file through the multipart uploader. The
// uploader aborts the multipart upload itself when the body fails, unless
// LeavePartsOnError is set.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	key := s.key(name)
	return blobstore.StartUpload(func(body io.Reader) error {
		input := s.putInput(key, body)
		if s.cfg.EnableChecksum {
			input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
		}
		_, err := s.uploader.Upload(ctx, input)
		return err
	}), nil
}
