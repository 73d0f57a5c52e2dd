package index

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/hupe1980/genidx/persistence"
)

// ChrIndex is the per-chromosome block table. The set of implementations is
// closed: *LinearChrIndex and *IntervalChrIndex.
type ChrIndex interface {
	Name() string
	Type() Type
	// Blocks returns every block of the chromosome in offset order.
	Blocks() []Block
	// BlocksFor returns blocks that may hold features overlapping the
	// half-open range [start, end).
	BlocksFor(start, end int) []Block

	encode(w *persistence.BinaryWriter) error
	equal(other ChrIndex) bool
}

// SourceInfo describes the feature file an index was built from.
type SourceInfo struct {
	Path string
	Size int64
	// ModTime is the modification time in unix milliseconds.
	ModTime int64
	// Checksum is the hex CRC32 of the file contents, or empty.
	Checksum string
	Flags    int32
}

// Index is an immutable set of per-chromosome block tables of one Type.
type Index struct {
	typ    Type
	source SourceInfo
	props  map[string]string
	order  []string
	chrs   map[string]ChrIndex
}

// New assembles an Index. Every chromosome must match typ and appear once;
// chrs keeps the order in which chromosomes occur in the feature file.
func New(typ Type, source SourceInfo, chrs []ChrIndex, props map[string]string) (*Index, error) {
	if !typ.Valid() {
		return nil, &UnknownTypeError{Tag: int32(typ)}
	}
	idx := &Index{
		typ:    typ,
		source: source,
		props:  maps.Clone(props),
		order:  make([]string, 0, len(chrs)),
		chrs:   make(map[string]ChrIndex, len(chrs)),
	}
	if idx.props == nil {
		idx.props = map[string]string{}
	}
	for _, c := range chrs {
		if c.Type() != typ {
			return nil, fmt.Errorf("%w: chromosome %q is %s in a %s index", ErrCorrupt, c.Name(), c.Type(), typ)
		}
		if _, dup := idx.chrs[c.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate chromosome %q", ErrCorrupt, c.Name())
		}
		idx.order = append(idx.order, c.Name())
		idx.chrs[c.Name()] = c
	}
	return idx, nil
}

// Type returns the index strategy.
func (idx *Index) Type() Type { return idx.typ }

// Source returns the metadata of the indexed feature file.
func (idx *Index) Source() SourceInfo { return idx.source }

// Chromosomes returns chromosome names in file order.
func (idx *Index) Chromosomes() []string { return slices.Clone(idx.order) }

// ChrIndex returns the block table for chr.
func (idx *Index) ChrIndex(chr string) (ChrIndex, bool) {
	c, ok := idx.chrs[chr]
	return c, ok
}

// Blocks returns the blocks that may contain features on chr overlapping
// [start, end). Unknown chromosomes yield no blocks.
func (idx *Index) Blocks(chr string, start, end int) []Block {
	c, ok := idx.chrs[chr]
	if !ok {
		return nil
	}
	return c.BlocksFor(start, end)
}

// Properties returns a copy of the string properties.
func (idx *Index) Properties() map[string]string { return maps.Clone(idx.props) }

// Property returns a single property value.
func (idx *Index) Property(key string) (string, bool) {
	v, ok := idx.props[key]
	return v, ok
}

// FeatureCount returns the FEATURE_COUNT property, or -1 when absent.
func (idx *Index) FeatureCount() int {
	v, ok := idx.props[PropFeatureCount]
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

// WithSource returns a copy of idx with its source metadata replaced.
func (idx *Index) WithSource(src SourceInfo) *Index {
	cp := *idx
	cp.source = src
	return &cp
}

// WithProperties returns a copy of idx with props merged over its
// existing properties.
func (idx *Index) WithProperties(props map[string]string) *Index {
	cp := *idx
	cp.props = maps.Clone(idx.props)
	maps.Copy(cp.props, props)
	return &cp
}

// IsCurrent reports whether info still matches the size and modification
// time recorded when the index was built.
func (idx *Index) IsCurrent(info os.FileInfo) bool {
	return info.Size() == idx.source.Size && info.ModTime().UnixMilli() == idx.source.ModTime
}

// Equal reports whether two indexes are structurally identical.
func (idx *Index) Equal(other *Index) bool {
	if idx == nil || other == nil {
		return idx == other
	}
	if idx.typ != other.typ || idx.source != other.source {
		return false
	}
	if !maps.Equal(idx.props, other.props) || !slices.Equal(idx.order, other.order) {
		return false
	}
	for _, name := range idx.order {
		if !idx.chrs[name].equal(other.chrs[name]) {
			return false
		}
	}
	return true
}
