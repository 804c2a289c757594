// Package join implements the pairwise block joiner and the higher-level
// within-set duplicate, cross-set, and overlap/adjacency joiners built on
// top of it, plus the component merger and multi-parent validator that
// run after them.
package join

import (
	"errors"
	"fmt"

	"github.com/dentearl/maftools-go/align"
)

// Errors returned by PairwiseJoin.
var (
	ErrGuideSequenceMismatch = errors.New("guide components do not share a sequence")
	ErrGuideNonOverlapping   = errors.New("guide components neither overlap nor abut")
	ErrGuideNeitherIsRoot    = errors.New("neither guide component is its block's root")
	ErrJoinCoordBug          = errors.New("internal coordinate error during join")
)

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func reverseBlockAndRebindGuide(b *align.Block, g *align.Component) (*align.Block, *align.Component) {
	nb := b.ReverseComplement()
	return nb, nb.FindBySequence(g.Seq)
}

// PairwiseJoin merges block1 and block2 at their shared guide Components
// g1 and g2, which must reference the same Sequence, overlap or abut in
// chromosome coordinates, and have at least one of them as its block's
// root. It returns a freshly built, finished Block.
func PairwiseJoin(block1 *align.Block, g1 *align.Component, block2 *align.Block, g2 *align.Component) (*align.Block, error) {
	if g1.Seq != g2.Seq {
		return nil, fmt.Errorf("pairwise join: %w", ErrGuideSequenceMismatch)
	}
	if block1.GetRootComponent() != g1 && block2.GetRootComponent() != g2 {
		return nil, fmt.Errorf("pairwise join: %w", ErrGuideNeitherIsRoot)
	}

	// Step 1: unify strands by reverse-complementing whichever guide is on
	// the minus strand.
	if g1.Strand != g2.Strand {
		if g1.Strand == align.Minus {
			block1, g1 = reverseBlockAndRebindGuide(block1, g1)
		} else {
			block2, g2 = reverseBlockAndRebindGuide(block2, g2)
		}
	}

	// Step 2: order so g1 starts no later than g2.
	if g2.Start < g1.Start {
		block1, block2 = block2, block1
		g1, g2 = g2, g1
	}

	if g1.End < g2.Start {
		return nil, fmt.Errorf("pairwise join: %w", ErrGuideNonOverlapping)
	}

	commonStart := max64(g1.Start, g2.Start)
	commonEnd := min64(g1.End, g2.End)

	var a1s, a1e, a2s, a2e int64
	if commonStart < commonEnd {
		var ok1, ok2 bool
		a1s, a1e, ok1 = g1.SeqRangeToAlnRange(commonStart, commonEnd)
		a2s, a2e, ok2 = g2.SeqRangeToAlnRange(commonStart, commonEnd)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("pairwise join: %w", ErrJoinCoordBug)
		}
	} else {
		// Adjacent, no shared columns: block1 is entirely prefix, block2
		// entirely suffix.
		a1s, a1e = block1.AlnWidth, block1.AlnWidth
		a2s, a2e = 0, 0
	}

	out := align.NewEmptyBlock()
	mapping := make(map[*align.Component]*align.Component)
	var destOrder []*align.Component

	gOut := align.NewEmptyComponent(g1.Seq, g1.Strand, min64(g1.Start, g2.Start))
	mapping[g1] = gOut
	mapping[g2] = gOut
	out.AddComponent(gOut)
	destOrder = append(destOrder, gOut)

	cursors1 := make(map[*align.Component]*align.Cursor, len(block1.Components))
	for _, c := range block1.Components {
		cursors1[c] = align.NewCursor(c)
		if c == g1 {
			continue
		}
		dest := align.NewEmptyComponent(c.Seq, c.Strand, c.Start)
		mapping[c] = dest
		out.AddComponent(dest)
		destOrder = append(destOrder, dest)
	}
	cursors2 := make(map[*align.Component]*align.Cursor, len(block2.Components))
	for _, c := range block2.Components {
		cursors2[c] = align.NewCursor(c)
		if c == g2 {
			continue
		}
		dest := align.NewEmptyComponent(c.Seq, c.Strand, c.Start)
		mapping[c] = dest
		out.AddComponent(dest)
		destOrder = append(destOrder, dest)
	}

	copyBlock := func(b *align.Block, cursors map[*align.Component]*align.Cursor, target int64, exclude *align.Component) error {
		for _, c := range b.Components {
			cur := cursors[c]
			if exclude != nil && c == exclude {
				if err := cur.SetAlignCol(target - 1); err != nil {
					return err
				}
				continue
			}
			if err := mapping[c].AppendFromCursor(cur, target); err != nil {
				return err
			}
		}
		return nil
	}
	padToMax := func() {
		var maxW int64
		for _, d := range destOrder {
			maxW = max64(maxW, d.AlnWidth)
		}
		for _, d := range destOrder {
			for d.AlnWidth < maxW {
				d.AppendGapColumn()
			}
		}
	}

	// Step 6: unshared prefixes.
	if err := copyBlock(block1, cursors1, a1s, nil); err != nil {
		return nil, err
	}
	padToMax()
	if err := copyBlock(block2, cursors2, a2s, nil); err != nil {
		return nil, err
	}
	padToMax()

	// Step 7: shared middle, driven base-by-base along the shared guide
	// sequence range so that guide-side gap runs (insertions unique to one
	// block's other rows) interleave correctly with the single shared
	// column for each guide base.
	for pos := commonStart; pos < commonEnd; pos++ {
		g1Col, _, ok1 := g1.SeqRangeToAlnRange(pos, pos+1)
		g2Col, _, ok2 := g2.SeqRangeToAlnRange(pos, pos+1)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("pairwise join: %w", ErrJoinCoordBug)
		}

		if err := copyBlock(block1, cursors1, g1Col, nil); err != nil { // block1-only insertions before this base
			return nil, err
		}
		padToMax()
		if err := copyBlock(block2, cursors2, g2Col, nil); err != nil { // block2-only insertions before this base
			return nil, err
		}
		padToMax()
		if err := copyBlock(block1, cursors1, g1Col+1, nil); err != nil { // shared base, guide included
			return nil, err
		}
		if err := copyBlock(block2, cursors2, g2Col+1, g2); err != nil { // same base, guide excluded
			return nil, err
		}
		padToMax()
	}

	// Step 8: unshared suffixes.
	if a1e < block1.AlnWidth {
		if err := copyBlock(block1, cursors1, block1.AlnWidth, nil); err != nil {
			return nil, err
		}
		padToMax()
	}
	if a2e < block2.AlnWidth {
		var skip *align.Component
		if g2.End <= g1.End { // g2 has no bases past the common end
			skip = g2
		}
		if err := copyBlock(block2, cursors2, block2.AlnWidth, skip); err != nil {
			return nil, err
		}
		padToMax()
	}

	tree, err := align.Join(block1.Tree, g1, block2.Tree, g2, mapping)
	if err != nil {
		return nil, err
	}
	out.AlnWidth = gOut.AlnWidth // rows grew after AddComponent; all are padded to this width
	out.SetTree(tree)
	if err := out.Finish(); err != nil {
		return nil, err
	}
	return out, nil
}
