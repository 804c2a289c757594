package join

import (
	"github.com/dentearl/maftools-go/align"
	"github.com/dentearl/maftools-go/blockset"
	"github.com/dentearl/maftools-go/genome"
)

// chainRootJoins repeatedly pairwise-joins each block's root against a
// root peer returned by overlapFn, re-seeding from the freshly joined
// block until no peer remains or maxBlkWidth (if positive) would be
// exceeded. Joined-away source blocks are marked for deletion and the
// accumulated results are swept in as new blocks.
func chainRootJoins(bs *blockset.BlockSet, overlapFn func(seq *genome.Sequence, chromStart, chromEnd int64) []*align.Component, maxBlkWidth int64) error {
	var newBlocks []*align.Block
	for _, b := range bs.Blocks() {
		if b.Deleted {
			continue
		}
		cur := b
		joinedAny := false
		for {
			root := cur.GetRootComponent()
			if root == nil {
				break
			}
			var peer *align.Component
			for _, p := range overlapFn(root.Seq, root.ChromStart, root.ChromEnd) {
				if p.Block == cur || p.Block.Deleted || p.Block.GetRootComponent() != p {
					continue
				}
				peer = p
				break
			}
			if peer == nil {
				break
			}
			joined, err := PairwiseJoin(cur, root, peer.Block, peer)
			if err != nil {
				return err
			}
			if maxBlkWidth > 0 && joined.AlnWidth > maxBlkWidth {
				break
			}
			if !joinedAny {
				bs.MarkForDeletion(b)
			}
			bs.MarkForDeletion(peer.Block)
			cur = joined
			joinedAny = true
		}
		if joinedAny {
			newBlocks = append(newBlocks, cur)
		}
	}
	bs.SweepDeleted()
	for _, nb := range newBlocks {
		bs.Add(nb)
	}
	return nil
}

// JoinWithinSetDuplicates fuses blocks in bs whose root Components overlap
// on the same Sequence, the within-set duplicate joiner.
func JoinWithinSetDuplicates(bs *blockset.BlockSet) error {
	return chainRootJoins(bs, func(seq *genome.Sequence, chromStart, chromEnd int64) []*align.Component {
		return bs.GetOverlapping(seq, chromStart, chromEnd, blockset.LocationRoot)
	}, 0)
}

// JoinOverlapAdjacent fuses blocks in bs whose root Components overlap or
// abut on the same Sequence, stopping a chain once the fused block would
// exceed maxBlkWidth columns (0 means no cap).
func JoinOverlapAdjacent(bs *blockset.BlockSet, maxBlkWidth int64) error {
	return chainRootJoins(bs, func(seq *genome.Sequence, chromStart, chromEnd int64) []*align.Component {
		return bs.GetOverlappingAdjacent(seq, chromStart, chromEnd, blockset.LocationRoot)
	}, maxBlkWidth)
}
