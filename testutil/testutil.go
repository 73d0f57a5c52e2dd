package testutil

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/hupe1980/genidx/feature"
	"github.com/hupe1980/genidx/index"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// SortedFeatures generates perChr features on each chromosome, grouped by
// chromosome and sorted by start. Consecutive starts are at most maxGap
// apart (gaps of zero produce ties) and lengths lie in [1, maxLen].
func (r *RNG) SortedFeatures(chrs []string, perChr, maxGap, maxLen int) []feature.Feature {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]feature.Feature, 0, len(chrs)*perChr)
	for _, chr := range chrs {
		start := r.rand.Intn(maxGap + 1)
		for range perChr {
			length := 1 + r.rand.Intn(maxLen)
			out = append(out, feature.Feature{Chr: chr, Start: start, End: start + length - 1})
			start += r.rand.Intn(maxGap + 1)
		}
	}
	return out
}

// EvenlySpaced returns n features of the given length on chr starting at
// step, 2*step, ...
func EvenlySpaced(chr string, n, step, length int) []feature.Feature {
	out := make([]feature.Feature, n)
	for i := range out {
		start := (i + 1) * step
		out[i] = feature.Feature{Chr: chr, Start: start, End: start + length - 1}
	}
	return out
}

// FormatBED renders features as BED lines (0-based start, exclusive end)
// after the given header lines.
func FormatBED(header []string, features []feature.Feature) string {
	var sb strings.Builder
	for _, h := range header {
		sb.WriteString(h)
		sb.WriteByte('\n')
	}
	for i, f := range features {
		fmt.Fprintf(&sb, "%s\t%d\t%d\tfeature%d\n", f.Chr, f.Start, f.End+1, i)
	}
	return sb.String()
}

// WriteBED writes features to a BED file in a fresh temp dir and returns
// its path.
func WriteBED(t testing.TB, name string, header []string, features []feature.Feature) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(FormatBED(header, features)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// BEDDecoder decodes minimal BED records. Header lines start with '#',
// "track" or "browser".
type BEDDecoder struct{}

func isBEDHeader(line string) bool {
	return strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "track") ||
		strings.HasPrefix(line, "browser")
}

// SkipHeader implements feature.Decoder.
func (BEDDecoder) SkipHeader(r *feature.LineReader) error {
	for {
		line, err := r.PeekLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !isBEDHeader(line) {
			return nil
		}
		if _, _, err := r.ReadLine(); err != nil {
			return err
		}
	}
}

// Decode implements feature.Decoder.
func (BEDDecoder) Decode(line string) (feature.Feature, error) {
	if strings.TrimSpace(line) == "" || isBEDHeader(line) {
		return feature.Feature{}, feature.ErrSkipRecord
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return feature.Feature{}, fmt.Errorf("bed: expected at least 3 fields, got %d", len(fields))
	}
	start, err := strconv.Atoi(fields[1])
	if err != nil {
		return feature.Feature{}, fmt.Errorf("bed: start: %w", err)
	}
	end, err := strconv.Atoi(fields[2])
	if err != nil {
		return feature.Feature{}, fmt.Errorf("bed: end: %w", err)
	}
	return feature.Feature{Chr: fields[0], Start: start, End: max(end-1, start)}, nil
}

// Overlapping filters features on chr that overlap [start, end).
func Overlapping(features []feature.Feature, chr string, start, end int) []feature.Feature {
	var out []feature.Feature
	for _, f := range features {
		if f.Chr == chr && f.Overlaps(start, end) {
			out = append(out, f)
		}
	}
	return out
}

// ScanBlocks decodes the records inside blocks of data and returns those on
// chr overlapping [start, end), in file order. Blocks must be in offset
// order; overlapping byte ranges are scanned once.
func ScanBlocks(data []byte, blocks []index.Block, chr string, start, end int) ([]feature.Feature, error) {
	var out []feature.Feature
	var dec BEDDecoder
	for _, b := range index.Coalesce(blocks) {
		if b.EndPos > int64(len(data)) {
			return nil, fmt.Errorf("block %s beyond end of data (%d bytes)", b, len(data))
		}
		for _, line := range strings.Split(string(data[b.StartPos:b.EndPos]), "\n") {
			f, err := dec.Decode(line)
			if errors.Is(err, feature.ErrSkipRecord) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if f.Chr == chr && f.Overlaps(start, end) {
				out = append(out, f)
			}
		}
	}
	return out, nil
}
