package join

import (
	"github.com/dentearl/maftools-go/align"
	"github.com/dentearl/maftools-go/blockset"
	"github.com/dentearl/maftools-go/genome"
)

// CrossSetJoin fuses Blocks across setA and setB wherever they share
// overlapping or adjacent coverage of guideGenome on a root Component of
// setA and a root-or-leaf Component of setB. It returns a fresh BlockSet
// holding every joined Block plus every Block from either input that was
// never consumed by a join. setA and setB are swept of the Blocks the
// join consumed.
func CrossSetJoin(reg *genome.Registry, guideGenome *genome.Genome, setA, setB *blockset.BlockSet, source string) (*blockset.BlockSet, error) {
	joined := blockset.NewBlockSet(reg, source)

	for _, a := range setA.Blocks() {
		if a.Deleted {
			continue
		}
		root := a.GetRootComponent()
		if root == nil || root.Seq.Genome != guideGenome {
			continue
		}
		cur := a
		joinedAny := false
		for {
			curRoot := cur.GetRootComponent()
			if curRoot == nil {
				break
			}
			var peer *align.Component
			for _, p := range setB.GetOverlappingAdjacent(curRoot.Seq, curRoot.ChromStart, curRoot.ChromEnd, blockset.LocationRoot|blockset.LocationLeaf) {
				if p.Block.Deleted {
					continue
				}
				peer = p
				break
			}
			if peer == nil {
				break
			}
			out, err := PairwiseJoin(cur, curRoot, peer.Block, peer)
			if err != nil {
				return nil, err
			}
			setB.MarkForDeletion(peer.Block)
			cur = out
			joinedAny = true
		}
		if joinedAny {
			setA.MarkForDeletion(a)
			joined.Add(cur)
		}
	}

	for _, a := range setA.Blocks() {
		if a.Deleted {
			continue
		}
		clone, err := a.Subrange(0, a.AlnWidth)
		if err != nil {
			return nil, err
		}
		joined.Add(clone)
	}
	for _, b := range setB.Blocks() {
		if b.Deleted {
			continue
		}
		clone, err := b.Subrange(0, b.AlnWidth)
		if err != nil {
			return nil, err
		}
		joined.Add(clone)
	}

	setA.SweepDeleted()
	setB.SweepDeleted()
	return joined, nil
}
