package persistence

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BinaryWriter writes little-endian primitives to an index stream.
type BinaryWriter struct {
	w         io.Writer
	byteOrder binary.ByteOrder
	buf       [8]byte
}

// NewBinaryWriter creates a new binary writer.
func NewBinaryWriter(w io.Writer) *BinaryWriter {
	return &BinaryWriter{
		w:         w,
		byteOrder: binary.LittleEndian,
	}
}

// WriteInt32 writes a 4-byte signed integer.
func (bw *BinaryWriter) WriteInt32(v int32) error {
	bw.byteOrder.PutUint32(bw.buf[:4], uint32(v))
	_, err := bw.w.Write(bw.buf[:4])
	return err
}

// WriteInt64 writes an 8-byte signed integer.
func (bw *BinaryWriter) WriteInt64(v int64) error {
	bw.byteOrder.PutUint64(bw.buf[:8], uint64(v))
	_, err := bw.w.Write(bw.buf[:8])
	return err
}

// WriteString writes s followed by a zero terminator.
func (bw *BinaryWriter) WriteString(s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidString, s)
	}
	if len(s) > MaxStringLen {
		return fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	if _, err := io.WriteString(bw.w, s); err != nil {
		return err
	}
	bw.buf[0] = 0
	_, err := bw.w.Write(bw.buf[:1])
	return err
}

// WriteHeader writes the magic number followed by the type tag.
func (bw *BinaryWriter) WriteHeader(typeTag int32) error {
	if err := bw.WriteInt32(MagicNumber); err != nil {
		return err
	}
	return bw.WriteInt32(typeTag)
}

// BinaryReader reads little-endian primitives from an index stream.
//
// The reader buffers its input, so the underlying reader must not be
// shared with other consumers.
type BinaryReader struct {
	r         *bufio.Reader
	byteOrder binary.ByteOrder
	buf       [8]byte
}

// NewBinaryReader creates a new binary reader.
func NewBinaryReader(r io.Reader) *BinaryReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &BinaryReader{
		r:         br,
		byteOrder: binary.LittleEndian,
	}
}

// ReadInt32 reads a 4-byte signed integer.
func (br *BinaryReader) ReadInt32() (int32, error) {
	if _, err := io.ReadFull(br.r, br.buf[:4]); err != nil {
		return 0, err
	}
	return int32(br.byteOrder.Uint32(br.buf[:4])), nil
}

// ReadInt64 reads an 8-byte signed integer.
func (br *BinaryReader) ReadInt64() (int64, error) {
	if _, err := io.ReadFull(br.r, br.buf[:8]); err != nil {
		return 0, err
	}
	return int64(br.byteOrder.Uint64(br.buf[:8])), nil
}

// ReadString reads a zero-terminated string.
// A stream that ends before the terminator yields io.ErrUnexpectedEOF.
func (br *BinaryReader) ReadString() (string, error) {
	var sb strings.Builder
	for {
		b, err := br.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		if b == 0 {
			return sb.String(), nil
		}
		if sb.Len() >= MaxStringLen {
			return "", ErrStringTooLong
		}
		sb.WriteByte(b)
	}
}

// ReadHeader reads and validates the magic number and returns the type tag.
func (br *BinaryReader) ReadHeader() (int32, error) {
	magic, err := br.ReadInt32()
	if err != nil {
		return 0, err
	}
	if magic != MagicNumber {
		return 0, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, uint32(magic))
	}
	return br.ReadInt32()
}

// SaveToFile is a helper to save data to a file.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	// Write to a temp file in the same directory to ensure rename is atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	tmpName = ""
	return nil
}
