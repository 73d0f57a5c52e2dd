package index

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/hupe1980/genidx/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLinear(t *testing.T) *Index {
	t.Helper()
	idx, err := New(TypeLinear,
		SourceInfo{Path: "/data/sample.bed", Size: 130, ModTime: 1_700_000_000_000, Checksum: "deadbeef", Flags: 0},
		[]ChrIndex{
			mustLinear(t, "chr1", 100, 50, 3, 0, 40, 40, 90),
			mustLinear(t, "chr2", 100, 10, 1, 90, 130),
		},
		map[string]string{PropFeatureCount: "4", PropFeatureLengthMean: "30"},
	)
	require.NoError(t, err)
	return idx
}

func sampleInterval(t *testing.T) *Index {
	t.Helper()
	idx, err := New(TypeIntervalTree,
		SourceInfo{Path: "sample.bed", Size: 400, ModTime: 1},
		[]ChrIndex{
			mustInterval(t, "chr1",
				Interval{Start: 0, End: 5000, Block: Block{0, 100}},
				Interval{Start: 100, End: 300, Block: Block{100, 200}},
			),
			mustInterval(t, "chrM",
				Interval{Start: 3, End: 9, Block: Block{200, 400}},
			),
		},
		map[string]string{PropFeatureCount: "3"},
	)
	require.NoError(t, err)
	return idx
}

func TestIndex_RoundTrip(t *testing.T) {
	for name, build := range map[string]func(*testing.T) *Index{
		"linear":   sampleLinear,
		"interval": sampleInterval,
	} {
		t.Run(name, func(t *testing.T) {
			idx := build(t)

			var first bytes.Buffer
			n, err := idx.WriteTo(&first)
			require.NoError(t, err)
			assert.Equal(t, int64(first.Len()), n)

			tag := binary.LittleEndian.Uint32(first.Bytes()[4:8])
			assert.Equal(t, uint32(idx.Type()), tag)

			loaded, err := Read(bytes.NewReader(first.Bytes()))
			require.NoError(t, err)
			assert.True(t, idx.Equal(loaded))

			var second bytes.Buffer
			_, err = loaded.WriteTo(&second)
			require.NoError(t, err)
			assert.Equal(t, first.Bytes(), second.Bytes(), "rewrite must be byte-identical")

			for _, chr := range idx.Chromosomes() {
				for s := 0; s < 6000; s += 97 {
					assert.Equal(t, idx.Blocks(chr, s, s+250), loaded.Blocks(chr, s, s+250))
				}
			}
		})
	}
}

func TestRead_UnknownType(t *testing.T) {
	var buf bytes.Buffer
	w := persistence.NewBinaryWriter(&buf)
	require.NoError(t, w.WriteHeader(7))

	_, err := Read(&buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownType)

	var ute *UnknownTypeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, int32(7), ute.Tag)
}

func TestRead_InvalidMagic(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{1, 2, 3, 4, 1, 0, 0, 0}))
	assert.ErrorIs(t, err, persistence.ErrInvalidMagic)
}

func TestRead_UnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	w := persistence.NewBinaryWriter(&buf)
	require.NoError(t, w.WriteHeader(int32(TypeLinear)))
	require.NoError(t, w.WriteInt32(persistence.Version+1))

	_, err := Read(&buf)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestRead_Truncated(t *testing.T) {
	var buf bytes.Buffer
	_, err := sampleInterval(t).WriteTo(&buf)
	require.NoError(t, err)

	data := buf.Bytes()
	for _, cut := range []int{0, 3, 8, 20, len(data) / 2, len(data) - 1} {
		_, err := Read(bytes.NewReader(data[:cut]))
		require.Error(t, err, "cut at %d", cut)
		assert.True(t,
			errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF),
			"cut at %d: %v", cut, err)
	}
}

func TestRead_NegativeCount(t *testing.T) {
	var buf bytes.Buffer
	w := persistence.NewBinaryWriter(&buf)
	require.NoError(t, w.WriteHeader(int32(TypeIntervalTree)))
	require.NoError(t, w.WriteInt32(persistence.Version))
	require.NoError(t, w.WriteString("p"))
	require.NoError(t, w.WriteInt64(0))
	require.NoError(t, w.WriteInt64(0))
	require.NoError(t, w.WriteString(""))
	require.NoError(t, w.WriteInt32(0))
	require.NoError(t, w.WriteInt32(0))  // properties
	require.NoError(t, w.WriteInt32(-1)) // chromosomes

	_, err := Read(&buf)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestIndex_EqualDetectsDifferences(t *testing.T) {
	a := sampleLinear(t)
	b := sampleLinear(t)
	assert.True(t, a.Equal(b))

	c, err := New(TypeLinear, a.Source(), []ChrIndex{
		mustLinear(t, "chr1", 100, 50, 3, 0, 40, 41, 90),
		mustLinear(t, "chr2", 100, 10, 1, 90, 130),
	}, a.Properties())
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(sampleInterval(t)))
	assert.False(t, a.Equal(nil))
}
