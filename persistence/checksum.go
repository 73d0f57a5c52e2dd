package persistence

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"strconv"
)

// A Fingerprint is the CRC32 (IEEE) of a feature file, stored in the index
// header as eight lowercase hex digits. It detects edits that keep the file
// size and modification time, not tampering.
type Fingerprint struct {
	r   io.Reader
	crc uint32
	n   int64
}

// NewFingerprint returns a reader that fingerprints everything read from r.
func NewFingerprint(r io.Reader) *Fingerprint {
	return &Fingerprint{r: r}
}

func (f *Fingerprint) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	f.crc = crc32.Update(f.crc, crc32.IEEETable, p[:n])
	f.n += int64(n)
	return n, err
}

// Sum returns the CRC32 of the bytes read so far.
func (f *Fingerprint) Sum() uint32 { return f.crc }

// Len returns the number of bytes read so far.
func (f *Fingerprint) Len() int64 { return f.n }

// String returns Sum in its stored form.
func (f *Fingerprint) String() string { return FormatChecksum(f.crc) }

// Drain reads the rest of the file, checking ctx between chunks.
func (f *Fingerprint) Drain(ctx context.Context) error {
	buf := make([]byte, 64*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := f.Read(buf); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Match compares the fingerprint with a stored checksum. A malformed stored
// value returns the ParseChecksum error; a different sum returns a
// *ChecksumMismatchError.
func (f *Fingerprint) Match(stored string) error {
	want, err := ParseChecksum(stored)
	if err != nil {
		return err
	}
	if want != f.crc {
		return &ChecksumMismatchError{Expected: want, Actual: f.crc, Bytes: f.n}
	}
	return nil
}

// FormatChecksum renders sum as stored in index headers.
func FormatChecksum(sum uint32) string {
	return fmt.Sprintf("%08x", sum)
}

// ParseChecksum parses a checksum written by FormatChecksum.
func ParseChecksum(s string) (uint32, error) {
	if len(s) != 8 {
		return 0, fmt.Errorf("checksum %q: want 8 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("checksum %q: %w", s, err)
	}
	return uint32(v), nil
}

// ChecksumMismatchError reports a feature file whose contents no longer
// match the fingerprint stored in its index.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
	// Bytes is how much of the file was fingerprinted.
	Bytes int64
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("feature file checksum %08x over %d bytes, index has %08x", e.Actual, e.Bytes, e.Expected)
}

// IsChecksumMismatch reports whether err wraps a *ChecksumMismatchError.
func IsChecksumMismatch(err error) bool {
	var cm *ChecksumMismatchError
	return errors.As(err, &cm)
}
