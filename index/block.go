package index

import "fmt"

// Block is the half-open byte range [StartPos, EndPos) of a feature file.
type Block struct {
	StartPos int64
	EndPos   int64
}

// Size returns the number of bytes in b.
func (b Block) Size() int64 {
	return b.EndPos - b.StartPos
}

func (b Block) String() string {
	return fmt.Sprintf("[%d,%d)", b.StartPos, b.EndPos)
}

// Coalesce merges blocks that touch or overlap in offset space and drops
// empty ones. The input must be sorted by StartPos; it is not modified.
func Coalesce(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Size() <= 0 {
			continue
		}
		if n := len(out); n > 0 && b.StartPos <= out[n-1].EndPos {
			if b.EndPos > out[n-1].EndPos {
				out[n-1].EndPos = b.EndPos
			}
			continue
		}
		out = append(out, b)
	}
	return out
}
