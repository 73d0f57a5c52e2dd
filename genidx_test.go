package genidx

import (
	"bytes"
	"context"
	"errors"
	"hash/crc32"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/genidx/blobstore"
	"github.com/hupe1980/genidx/creator"
	"github.com/hupe1980/genidx/feature"
	"github.com/hupe1980/genidx/index"
	"github.com/hupe1980/genidx/internal/fs"
	"github.com/hupe1980/genidx/persistence"
	"github.com/hupe1980/genidx/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{"track name=test", "#chrom\tstart\tend\tname"}

func TestCreateIndex_NoFalseNegatives(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(2024)
	chrs := []string{"chr1", "chr2", "chrX"}
	features := rng.SortedFeatures(chrs, 500, 300, 6000)
	path := testutil.WriteBED(t, "random.bed", header, features)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	builds := map[string]func() (*index.Index, error){
		"dynamic seek": func() (*index.Index, error) {
			return CreateIndex(ctx, path, testutil.BEDDecoder{})
		},
		"dynamic size": func() (*index.Index, error) {
			return CreateIndex(ctx, path, testutil.BEDDecoder{}, WithBalancingApproach(creator.ForSize))
		},
		"linear": func() (*index.Index, error) {
			return CreateLinearIndex(ctx, path, testutil.BEDDecoder{}, WithBinSize(700))
		},
		"interval": func() (*index.Index, error) {
			return CreateIntervalIndex(ctx, path, testutil.BEDDecoder{}, WithBinSize(13))
		},
	}

	for name, build := range builds {
		t.Run(name, func(t *testing.T) {
			idx, err := build()
			require.NoError(t, err)
			assert.Equal(t, chrs, idx.Chromosomes())

			for range 300 {
				chr := chrs[rng.Intn(len(chrs))]
				start := rng.Intn(160000)
				end := start + 1 + rng.Intn(8000)

				got, err := testutil.ScanBlocks(data, idx.Blocks(chr, start, end), chr, start, end)
				require.NoError(t, err)
				assert.Equal(t, testutil.Overlapping(features, chr, start, end), got, "%s:%d-%d", chr, start, end)
			}
		})
	}
}

func TestCreateIndex_Selection(t *testing.T) {
	ctx := context.Background()
	path := testutil.WriteBED(t, "even.bed", nil, testutil.EvenlySpaced("chr1", 1000, 1000, 100))

	t.Run("for seek time", func(t *testing.T) {
		idx, err := CreateIndex(ctx, path, testutil.BEDDecoder{})
		require.NoError(t, err)
		require.Equal(t, index.TypeLinear, idx.Type())

		chr, _ := idx.ChrIndex("chr1")
		assert.Equal(t, 2000, chr.(*index.LinearChrIndex).BinWidth())
		assert.Equal(t, 1000, idx.FeatureCount())
	})

	t.Run("for size", func(t *testing.T) {
		idx, err := CreateIndex(ctx, path, testutil.BEDDecoder{}, WithBalancingApproach(creator.ForSize), WithParallel(true))
		require.NoError(t, err)
		assert.Equal(t, index.TypeIntervalTree, idx.Type())

		chr, _ := idx.ChrIndex("chr1")
		assert.Len(t, chr.(*index.IntervalChrIndex).Intervals(), 2)
	})
}

func TestCreateIndex_OrderViolation(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bad.bed")
	require.NoError(t, os.WriteFile(path, []byte("chr1\t100\t111\nchr1\t50\t61\n"), 0o644))

	for name, create := range map[string]func(context.Context, string, feature.Decoder, ...Option) (*index.Index, error){
		"dynamic":  CreateIndex,
		"linear":   CreateLinearIndex,
		"interval": CreateIntervalIndex,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := create(ctx, path, testutil.BEDDecoder{})
			require.ErrorIs(t, err, ErrMalformedFeatureFile)

			var ooo *creator.OutOfOrderError
			require.ErrorAs(t, err, &ooo)
			assert.Equal(t, 100, ooo.PrevStart)
		})
	}
}

func TestCreateIndex_UnsortedChromosome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regrouped.bed")
	require.NoError(t, os.WriteFile(path, []byte("chr1\t1\t5\nchr2\t1\t5\nchr1\t10\t15\n"), 0o644))

	_, err := CreateLinearIndex(context.Background(), path, testutil.BEDDecoder{})
	require.ErrorIs(t, err, ErrMalformedFeatureFile)

	var unsorted *creator.UnsortedChromosomeError
	assert.ErrorAs(t, err, &unsorted)
}

func TestCreateIndex_DecodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bed")
	require.NoError(t, os.WriteFile(path, []byte("chr1\t1\t5\nchr1\t7\n"), 0o644))

	_, err := CreateIndex(context.Background(), path, testutil.BEDDecoder{})
	require.ErrorIs(t, err, ErrMalformedFeatureFile)

	var de *feature.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, int64(9), de.Offset)
}

func TestCreateIndex_FeatureFileNotFound(t *testing.T) {
	_, err := CreateIndex(context.Background(), filepath.Join(t.TempDir(), "missing.bed"), testutil.BEDDecoder{})
	assert.ErrorIs(t, err, ErrFeatureFileNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCreateIndex_ReadFault(t *testing.T) {
	path := testutil.WriteBED(t, "faulty.bed", nil, testutil.EvenlySpaced("chr1", 200, 100, 10))

	fsys := fs.NewFaultyFS(nil)
	fsys.AddRule("faulty.bed", fs.Fault{FailAfterBytes: 100})

	_, err := CreateIndex(context.Background(), path, testutil.BEDDecoder{}, WithFileSystem(fsys), WithParallel(true))
	assert.ErrorIs(t, err, fs.ErrInjected)
}

func TestCreateIndex_Canceled(t *testing.T) {
	path := testutil.WriteBED(t, "a.bed", nil, testutil.EvenlySpaced("chr1", 10, 100, 10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CreateIndex(ctx, path, testutil.BEDDecoder{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCreateIndex_Empty(t *testing.T) {
	path := testutil.WriteBED(t, "empty.bed", header, nil)

	idx, err := CreateIndex(context.Background(), path, testutil.BEDDecoder{})
	require.NoError(t, err)
	assert.Empty(t, idx.Chromosomes())
	assert.Equal(t, 0, idx.FeatureCount())
}

func TestCreateIndex_SourceInfo(t *testing.T) {
	path := testutil.WriteBED(t, "a.bed", header, testutil.EvenlySpaced("chr1", 50, 100, 10))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	idx, err := CreateIndex(context.Background(), path, testutil.BEDDecoder{}, WithChecksum(true))
	require.NoError(t, err)

	src := idx.Source()
	assert.Equal(t, path, src.Path)
	assert.Equal(t, int64(len(data)), src.Size)
	assert.Equal(t, persistence.FormatChecksum(crc32.ChecksumIEEE(data)), src.Checksum)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, idx.IsCurrent(info))

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.False(t, idx.IsCurrent(info))
}

func TestVerifySource(t *testing.T) {
	ctx := context.Background()
	path := testutil.WriteBED(t, "a.bed", nil, testutil.EvenlySpaced("chr1", 50, 100, 10))

	plain, err := CreateIndex(ctx, path, testutil.BEDDecoder{})
	require.NoError(t, err)
	summed, err := CreateIndex(ctx, path, testutil.BEDDecoder{}, WithChecksum(true))
	require.NoError(t, err)

	assert.NoError(t, VerifySource(ctx, plain, path))
	assert.NoError(t, VerifySource(ctx, summed, path))

	info, err := os.Stat(path)
	require.NoError(t, err)

	// Same size and modification time, different content.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[0] = 'C'
	require.NoError(t, os.WriteFile(path, data, 0o644))
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	assert.NoError(t, VerifySource(ctx, plain, path))
	err = VerifySource(ctx, summed, path)
	assert.ErrorIs(t, err, ErrStaleIndex)
	assert.True(t, persistence.IsChecksumMismatch(err))

	require.NoError(t, os.WriteFile(path, append(data, "chr1\t9000\t9001\n"...), 0o644))
	assert.ErrorIs(t, VerifySource(ctx, plain, path), ErrStaleIndex)

	assert.ErrorIs(t, VerifySource(ctx, plain, path+".missing"), ErrFeatureFileNotFound)
}

func TestVerifySource_MalformedChecksum(t *testing.T) {
	ctx := context.Background()
	path := testutil.WriteBED(t, "a.bed", nil, testutil.EvenlySpaced("chr1", 20, 100, 10))

	idx, err := CreateIndex(ctx, path, testutil.BEDDecoder{}, WithChecksum(true))
	require.NoError(t, err)

	src := idx.Source()
	src.Checksum = "not-hex!"
	err = VerifySource(ctx, idx.WithSource(src), path)
	assert.ErrorIs(t, err, index.ErrCorrupt)
	assert.NotErrorIs(t, err, ErrStaleIndex)
}

func TestCreateIndex_Idempotent(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(5)
	path := testutil.WriteBED(t, "a.bed", nil, rng.SortedFeatures([]string{"chr1", "chr2"}, 300, 500, 900))

	a, err := CreateIndex(ctx, path, testutil.BEDDecoder{})
	require.NoError(t, err)
	b, err := CreateIndex(ctx, path, testutil.BEDDecoder{}, WithParallel(true))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestWriteLoadIndex(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(11)
	path := testutil.WriteBED(t, "a.bed", header, rng.SortedFeatures([]string{"chr1", "chr2"}, 400, 250, 1200))

	for _, typ := range []string{"linear", "interval"} {
		var (
			idx *index.Index
			err error
		)
		if typ == "linear" {
			idx, err = CreateLinearIndex(ctx, path, testutil.BEDDecoder{}, WithBinSize(300))
		} else {
			idx, err = CreateIntervalIndex(ctx, path, testutil.BEDDecoder{}, WithBinSize(20))
		}
		require.NoError(t, err)

		for _, ext := range []string{"", ".gz", ".zst", ".lz4"} {
			t.Run(typ+ext, func(t *testing.T) {
				idxPath := DefaultIndexPath(path) + ext
				require.NoError(t, WriteIndex(ctx, idx, idxPath))

				loaded, err := LoadIndex(ctx, idxPath)
				require.NoError(t, err)
				assert.True(t, idx.Equal(loaded))

				again := filepath.Join(t.TempDir(), "again.idx"+ext)
				require.NoError(t, WriteIndex(ctx, loaded, again))

				if ext == "" {
					first, err := os.ReadFile(idxPath)
					require.NoError(t, err)
					second, err := os.ReadFile(again)
					require.NoError(t, err)
					assert.True(t, bytes.Equal(first, second), "rewrite is not byte-identical")
				}
			})
		}
	}
}

func TestWriteLoadIndex_BlobStore(t *testing.T) {
	ctx := context.Background()
	path := testutil.WriteBED(t, "a.bed", nil, testutil.EvenlySpaced("chr1", 500, 300, 50))

	idx, err := CreateIndex(ctx, path, testutil.BEDDecoder{})
	require.NoError(t, err)

	mem := blobstore.NewMemoryStore()
	stores := map[string]blobstore.BlobStore{
		"memory": mem,
		"throttled": blobstore.NewThrottledStore(mem, blobstore.ThrottleConfig{
			BytesPerSec:        1 << 20,
			Burst:              512,
			MaxConcurrentReads: 1,
		}),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, WriteIndex(ctx, idx, name+"/a.bed.idx.gz", WithBlobStore(store)))

			names, err := mem.List(ctx, name+"/")
			require.NoError(t, err)
			assert.Equal(t, []string{name + "/a.bed.idx.gz"}, names)

			loaded, err := LoadIndex(ctx, name+"/a.bed.idx.gz", WithBlobStore(store))
			require.NoError(t, err)
			assert.True(t, idx.Equal(loaded))
		})
	}
}

func TestLoadIndex_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		_, err := LoadIndex(ctx, filepath.Join(dir, "missing.idx"))
		var rerr *UnableToReadIndexFileError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, filepath.Join(dir, "missing.idx"), rerr.Path)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("corrupt", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.idx")
		require.NoError(t, os.WriteFile(path, []byte("definitely not an index"), 0o644))

		_, err := LoadIndex(ctx, path)
		var rerr *UnableToReadIndexFileError
		require.ErrorAs(t, err, &rerr)
		assert.Contains(t, err.Error(), "unable to read index file")
	})

	t.Run("truncated", func(t *testing.T) {
		bed := testutil.WriteBED(t, "a.bed", nil, testutil.EvenlySpaced("chr1", 100, 100, 10))
		idx, err := CreateIndex(ctx, bed, testutil.BEDDecoder{})
		require.NoError(t, err)

		var buf bytes.Buffer
		_, err = idx.WriteTo(&buf)
		require.NoError(t, err)

		path := filepath.Join(dir, "truncated.idx")
		require.NoError(t, os.WriteFile(path, buf.Bytes()[:buf.Len()/2], 0o644))

		_, err = LoadIndex(ctx, path)
		var rerr *UnableToReadIndexFileError
		assert.ErrorAs(t, err, &rerr)
	})
}

func TestWriteIndex_Nil(t *testing.T) {
	err := WriteIndex(context.Background(), nil, filepath.Join(t.TempDir(), "x.idx"))
	assert.Error(t, err)
}

func TestMetricsAndLogging(t *testing.T) {
	ctx := context.Background()
	path := testutil.WriteBED(t, "a.bed", nil, testutil.EvenlySpaced("chr1", 1000, 1000, 100))

	var logs bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := &BasicMetricsCollector{}
	opts := []Option{WithLogger(logger), WithMetricsCollector(metrics)}

	idx, err := CreateIndex(ctx, path, testutil.BEDDecoder{}, opts...)
	require.NoError(t, err)
	require.NoError(t, WriteIndex(ctx, idx, DefaultIndexPath(path), opts...))
	_, err = LoadIndex(ctx, DefaultIndexPath(path), opts...)
	require.NoError(t, err)
	_, err = LoadIndex(ctx, path+".nope", opts...)
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(1000), stats.BuildFeatures)
	assert.Equal(t, int64(1), stats.LinearBuilds)
	assert.Zero(t, stats.IntervalTreeBuilds)
	assert.Equal(t, int64(1), stats.WriteCount)
	assert.Equal(t, int64(2), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadErrors)

	out := logs.String()
	assert.Contains(t, out, `"msg":"index built"`)
	assert.Contains(t, out, `"msg":"index type selected"`)
	assert.Contains(t, out, `"winner":"linear"`)
	assert.Contains(t, out, `"interval_tree":{"bin_size":75,"score":75}`)
	assert.Contains(t, out, `"msg":"index load failed"`)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	plain := errors.New("plain")
	assert.Same(t, plain, translateError(plain))

	err := translateError(&index.UnknownTypeError{Tag: 9})
	assert.ErrorIs(t, err, ErrUnableToCreateCorrectIndexType)
	assert.ErrorIs(t, err, index.ErrUnknownType)

	err = translateError(creator.ErrInvalidFeature)
	assert.ErrorIs(t, err, ErrMalformedFeatureFile)
	assert.True(t, strings.HasPrefix(err.Error(), "malformed feature file"))
}
