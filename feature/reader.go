package feature

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LineReader reads newline-terminated records and tracks the byte offset
// of every line. Offsets count raw bytes including line terminators, so
// they can be used as seek positions into the original file.
type LineReader struct {
	r   *bufio.Reader
	pos int64

	// peeked holds a line returned by PeekLine that has not been consumed.
	peeked    bool
	peekLine  string
	peekBytes int64
	peekErr   error
}

// NewLineReader creates a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Position returns the offset of the next line to be read.
func (lr *LineReader) Position() int64 {
	return lr.pos
}

// ReadLine returns the next line without its terminator and the offset at
// which it starts. At end of input it returns io.EOF. A final line without
// a trailing newline is still returned.
func (lr *LineReader) ReadLine() (string, int64, error) {
	line, n, err := lr.next()
	if err != nil {
		return "", lr.pos, err
	}
	off := lr.pos
	lr.pos += n
	return line, off, nil
}

// PeekLine returns the next line without consuming it.
func (lr *LineReader) PeekLine() (string, error) {
	if !lr.peeked {
		lr.peekLine, lr.peekBytes, lr.peekErr = lr.read()
		lr.peeked = true
	}
	return lr.peekLine, lr.peekErr
}

func (lr *LineReader) next() (string, int64, error) {
	if lr.peeked {
		lr.peeked = false
		return lr.peekLine, lr.peekBytes, lr.peekErr
	}
	return lr.read()
}

func (lr *LineReader) read() (string, int64, error) {
	raw, err := lr.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", 0, err
	}
	if len(raw) == 0 {
		return "", 0, io.EOF
	}
	n := int64(len(raw))
	line := strings.TrimSuffix(raw, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, n, nil
}

// Source yields (Feature, offset) pairs from a sorted feature file.
type Source struct {
	lr      *LineReader
	decoder Decoder
}

// NewSource creates a Source. The header must already have been skipped.
func NewSource(lr *LineReader, d Decoder) *Source {
	return &Source{lr: lr, decoder: d}
}

// Next returns the next feature and the offset of the line it came from.
// It returns io.EOF once the input is exhausted.
func (s *Source) Next() (Feature, int64, error) {
	for {
		line, off, err := s.lr.ReadLine()
		if err != nil {
			return Feature{}, off, err
		}
		f, err := s.decoder.Decode(line)
		if errors.Is(err, ErrSkipRecord) {
			continue
		}
		if err != nil {
			return Feature{}, off, &DecodeError{Offset: off, Line: line, cause: err}
		}
		if f.End < f.Start {
			return Feature{}, off, &DecodeError{
				Offset: off,
				Line:   line,
				cause:  fmt.Errorf("end %d before start %d", f.End, f.Start),
			}
		}
		return f, off, nil
	}
}

// Position returns the offset just past the last consumed line.
func (s *Source) Position() int64 {
	return s.lr.Position()
}
