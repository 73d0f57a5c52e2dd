package index

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/hupe1980/genidx/internal/conv"
	"github.com/hupe1980/genidx/persistence"
)

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo serializes idx. It implements io.WriterTo.
func (idx *Index) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := persistence.NewBinaryWriter(cw)
	if err := idx.encode(bw); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

func (idx *Index) encode(bw *persistence.BinaryWriter) error {
	if err := bw.WriteHeader(int32(idx.typ)); err != nil {
		return err
	}
	if err := bw.WriteInt32(persistence.Version); err != nil {
		return err
	}
	if err := bw.WriteString(idx.source.Path); err != nil {
		return err
	}
	if err := bw.WriteInt64(idx.source.Size); err != nil {
		return err
	}
	if err := bw.WriteInt64(idx.source.ModTime); err != nil {
		return err
	}
	if err := bw.WriteString(idx.source.Checksum); err != nil {
		return err
	}
	if err := bw.WriteInt32(idx.source.Flags); err != nil {
		return err
	}

	keys := slices.Sorted(maps.Keys(idx.props))
	nProps, err := conv.IntToInt32(len(keys))
	if err != nil {
		return err
	}
	if err := bw.WriteInt32(nProps); err != nil {
		return err
	}
	for _, k := range keys {
		if err := bw.WriteString(k); err != nil {
			return err
		}
		if err := bw.WriteString(idx.props[k]); err != nil {
			return err
		}
	}

	nChrs, err := conv.IntToInt32(len(idx.order))
	if err != nil {
		return err
	}
	if err := bw.WriteInt32(nChrs); err != nil {
		return err
	}
	for _, name := range idx.order {
		if err := idx.chrs[name].encode(bw); err != nil {
			return fmt.Errorf("chromosome %q: %w", name, err)
		}
	}
	return nil
}

// Read deserializes an index written by WriteTo.
func Read(r io.Reader) (*Index, error) {
	br := persistence.NewBinaryReader(r)

	tag, err := br.ReadHeader()
	if err != nil {
		return nil, err
	}
	typ := Type(tag)
	if !typ.Valid() {
		return nil, &UnknownTypeError{Tag: tag}
	}

	version, err := br.ReadInt32()
	if err != nil {
		return nil, err
	}
	if version != persistence.Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var src SourceInfo
	if src.Path, err = br.ReadString(); err != nil {
		return nil, err
	}
	if src.Size, err = br.ReadInt64(); err != nil {
		return nil, err
	}
	if src.ModTime, err = br.ReadInt64(); err != nil {
		return nil, err
	}
	if src.Checksum, err = br.ReadString(); err != nil {
		return nil, err
	}
	if src.Flags, err = br.ReadInt32(); err != nil {
		return nil, err
	}

	props, err := readProperties(br)
	if err != nil {
		return nil, err
	}

	raw, err := br.ReadInt32()
	if err != nil {
		return nil, err
	}
	nChrs, err := conv.Int32ToLen(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: chromosome count: %w", ErrCorrupt, err)
	}

	chrs := make([]ChrIndex, 0, min(nChrs, 1<<12))
	for i := 0; i < nChrs; i++ {
		var c ChrIndex
		switch typ {
		case TypeLinear:
			c, err = decodeLinear(br)
		case TypeIntervalTree:
			c, err = decodeInterval(br)
		}
		if err != nil {
			return nil, fmt.Errorf("chromosome %d: %w", i, err)
		}
		chrs = append(chrs, c)
	}
	return New(typ, src, chrs, props)
}

func readProperties(br *persistence.BinaryReader) (map[string]string, error) {
	raw, err := br.ReadInt32()
	if err != nil {
		return nil, err
	}
	n, err := conv.Int32ToLen(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: property count: %w", ErrCorrupt, err)
	}
	props := make(map[string]string, min(n, 64))
	for i := 0; i < n; i++ {
		k, err := br.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := br.ReadString()
		if err != nil {
			return nil, err
		}
		props[k] = v
	}
	return props, nil
}
