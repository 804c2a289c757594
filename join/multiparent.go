package join

import (
	"errors"
	"fmt"

	"github.com/dentearl/maftools-go/blockset"
)

// ErrMultiParent is returned by CheckMultiParent when two non-root
// Components in different Blocks claim the same chromosome range.
var ErrMultiParent = errors.New("multiple non-root components claim the same range")

// CheckMultiParent fails with ErrMultiParent if any non-root Component of
// any Block in bs overlaps a non-root Component of a different Block on
// the same Sequence. Root-to-root overlap is the within-set/cross-set
// joiners' responsibility and is not checked here.
func CheckMultiParent(bs *blockset.BlockSet) error {
	for _, b := range bs.Blocks() {
		if b.Deleted {
			continue
		}
		root := b.GetRootComponent()
		for _, c := range b.Components {
			if c == root {
				continue
			}
			for _, o := range bs.GetOverlapping(c.Seq, c.ChromStart, c.ChromEnd, blockset.LocationInternal|blockset.LocationLeaf) {
				if o.Block == b {
					continue
				}
				return fmt.Errorf("%w: %s in block %d and block %d", ErrMultiParent, c.Seq.OrgSeq(), b.ID(), o.Block.ID())
			}
		}
	}
	return nil
}
